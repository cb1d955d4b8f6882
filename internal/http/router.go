package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/auth"
	"furgones/internal/http/frontend"
	"furgones/internal/http/handlers"
	"furgones/internal/rbac"
)

// NewRouter wires both surfaces: the JSON API under /api/v1 and the
// server-rendered pages at the root. Both consume the same rbac policies;
// only the denial presentation differs.
func NewRouter(db *gorm.DB, jwtSecret string) *gin.Engine {
	return NewRouterWithViews(db, jwtSecret, "internal/ui/views/*.tmpl")
}

func NewRouterWithViews(db *gorm.DB, jwtSecret, viewsGlob string) *gin.Engine {
	r := gin.Default()
	r.LoadHTMLGlob(viewsGlob)

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	chk := rbac.Checker{DB: db}
	pol := rbac.NewPolicies(chk)

	// ----- API -----

	r.POST("/api/v1/auth/login", handlers.LoginHandler(db, jwtSecret))

	api := r.Group("/api/v1", auth.OptionalJWT(db, jwtSecret))
	{
		api.GET("/me", handlers.MeHandler(db))

		api.GET("/schools", handlers.ListSchools(db))
		api.GET("/schools/:id", handlers.GetSchool(db))
		api.POST("/schools", requirePolicy(pol.Schools, rbac.ActionCreate), handlers.CreateSchool(db, pol.Schools))
		api.PATCH("/schools/:id", requirePolicy(pol.Schools, rbac.ActionUpdate), handlers.UpdateSchool(db, pol.Schools))
		api.DELETE("/schools/:id", requirePolicy(pol.Schools, rbac.ActionDelete), handlers.DeleteSchool(db, pol.Schools))

		api.GET("/drivers", handlers.ListDrivers(db))
		api.GET("/drivers/:id", handlers.GetDriver(db))
		api.POST("/drivers", requirePolicy(pol.Drivers, rbac.ActionCreate), handlers.CreateDriver(db, pol.Drivers))
		api.PATCH("/drivers/:id", requirePolicy(pol.Drivers, rbac.ActionUpdate), handlers.UpdateDriver(db, pol.Drivers))
		api.DELETE("/drivers/:id", requirePolicy(pol.Drivers, rbac.ActionDelete), handlers.DeleteDriver(db, pol.Drivers))

		api.GET("/vehicles", handlers.ListVehicles(db))
		api.GET("/vehicles/:id", handlers.GetVehicle(db))
		api.POST("/vehicles", requirePolicy(pol.Vehicles, rbac.ActionCreate), handlers.CreateVehicle(db, pol.Vehicles))
		api.PATCH("/vehicles/:id", requirePolicy(pol.Vehicles, rbac.ActionUpdate), handlers.UpdateVehicle(db, pol.Vehicles))
		api.DELETE("/vehicles/:id", requirePolicy(pol.Vehicles, rbac.ActionDelete), handlers.DeleteVehicle(db, pol.Vehicles))
		api.POST("/vehicles/:id/update_location",
			requirePolicy(pol.Vehicles, rbac.ActionUpdateLocation), handlers.UpdateVehicleLocation(db, pol.Vehicles))

		api.GET("/students", handlers.ListStudents(db))
		api.GET("/students/:id", handlers.GetStudent(db))
		api.POST("/students", requirePolicy(pol.Students, rbac.ActionCreate), handlers.CreateStudent(db, pol.Students))
		api.PATCH("/students/:id", requirePolicy(pol.Students, rbac.ActionUpdate), handlers.UpdateStudent(db, pol.Students))
		api.DELETE("/students/:id", requirePolicy(pol.Students, rbac.ActionDelete), handlers.DeleteStudent(db, pol.Students))

		api.GET("/notifications", handlers.ListNotifications(db))
		api.GET("/notifications/:id", handlers.GetNotification(db))
		api.POST("/notifications", requirePolicy(pol.Notifications, rbac.ActionCreate), handlers.CreateNotification(db, pol.Notifications))
		api.PATCH("/notifications/:id", requirePolicy(pol.Notifications, rbac.ActionUpdate), handlers.UpdateNotification(db, pol.Notifications))
		api.DELETE("/notifications/:id", requirePolicy(pol.Notifications, rbac.ActionDelete), handlers.DeleteNotification(db, pol.Notifications))
		api.POST("/notifications/:id/mark_read",
			requirePolicy(pol.Notifications, rbac.ActionMarkRead), handlers.MarkNotificationRead(db, pol.Notifications))

		api.GET("/routes", handlers.ListRoutes(db))
		api.GET("/routes/:id", handlers.GetRoute(db))
		api.POST("/routes", requirePolicy(pol.Routes, rbac.ActionCreate), handlers.CreateRoute(db, pol.Routes))
		api.PATCH("/routes/:id", requirePolicy(pol.Routes, rbac.ActionUpdate), handlers.UpdateRoute(db, pol.Routes))
		api.DELETE("/routes/:id", requirePolicy(pol.Routes, rbac.ActionDelete), handlers.DeleteRoute(db, pol.Routes))

		api.GET("/payments", handlers.ListPayments(db))
		api.GET("/payments/:id", handlers.GetPayment(db))
		api.POST("/payments", requirePolicy(pol.Payments, rbac.ActionCreate), handlers.CreatePayment(db, pol.Payments))
		api.PATCH("/payments/:id", requirePolicy(pol.Payments, rbac.ActionUpdate), handlers.UpdatePayment(db, pol.Payments))
		api.DELETE("/payments/:id", requirePolicy(pol.Payments, rbac.ActionDelete), handlers.DeletePayment(db, pol.Payments))

		api.GET("/attendance", handlers.ListAttendance(db))
		api.GET("/attendance/:id", handlers.GetAttendance(db))
		api.POST("/attendance", requirePolicy(pol.Attendance, rbac.ActionCreate), handlers.CreateAttendance(db, pol.Attendance))
		api.PATCH("/attendance/:id", requirePolicy(pol.Attendance, rbac.ActionUpdate), handlers.UpdateAttendance(db, pol.Attendance))
		api.DELETE("/attendance/:id", requirePolicy(pol.Attendance, rbac.ActionDelete), handlers.DeleteAttendance(db, pol.Attendance))

		api.GET("/audit", handlers.ListAudit(db, chk))
	}

	// ----- Frontend -----

	frontend.Register(r, db, jwtSecret, chk, pol)

	return r
}

// requirePolicy is the request-level pre-check: it consults the policy
// before any database read of the target, so a request the caller can never
// complete costs no object load. Denial is a 403 with the same body shape as
// the object-level gate.
func requirePolicy(pol rbac.Attempter, action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !pol.CanAttempt(c.Request.Context(), user, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "forbidden"})
			return
		}
		c.Next()
	}
}
