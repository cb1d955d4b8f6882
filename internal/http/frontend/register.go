package frontend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/auth"
	"furgones/internal/http/handlers"
	"furgones/internal/rbac"
)

// Register mounts the server-rendered pages. Every page sits behind the
// strict auth middleware: anonymous browser requests bounce to /login. Lists
// are ownership-scoped instead of denied; direct edit access by URL renders a
// 403 page; form-submitted actions redirect back with a flash message.
func Register(r *gin.Engine, db *gorm.DB, jwtSecret string, chk rbac.Checker, pol rbac.Policies) {
	r.GET("/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.tmpl", gin.H{"title": "Login"})
	})
	r.POST("/login", handlers.LoginHandler(db, jwtSecret))
	r.GET("/logout", handlers.LogoutHandler())

	authMW := auth.JWT(db, jwtSecret)

	r.GET("/", authMW, dashboard(db, chk))
	r.GET("/mi-furgon", authMW, myVehicle(db, chk))

	pages := r.Group("/", authMW)
	{
		pages.GET("/schools", listSchools(db, chk))
		pages.GET("/schools/new", newSchoolForm(db, chk))
		pages.POST("/schools/new", createSchool(db, chk))
		pages.GET("/schools/:id", schoolDetail(db))
		pages.GET("/schools/:id/edit", editSchoolForm(db, pol.Schools))
		pages.POST("/schools/:id/edit", updateSchool(db, pol.Schools))

		pages.GET("/drivers", listDrivers(db, chk))
		pages.GET("/drivers/new", newDriverForm(db, chk))
		pages.POST("/drivers/new", createDriver(db, chk))
		pages.GET("/drivers/:id", driverDetail(db))
		pages.GET("/drivers/:id/edit", editDriverForm(db, pol.Drivers))
		pages.POST("/drivers/:id/edit", updateDriver(db, pol.Drivers))

		pages.GET("/vehicles", listVehicles(db, chk))
		pages.GET("/vehicles/new", newVehicleForm(db, chk))
		pages.POST("/vehicles/new", createVehicle(db, chk))
		pages.GET("/vehicles/:id", vehicleDetail(db))
		pages.GET("/vehicles/:id/edit", editVehicleForm(db, pol.Vehicles))
		pages.POST("/vehicles/:id/edit", updateVehicle(db, pol.Vehicles))
		pages.POST("/vehicles/:id/location", updateVehicleLocation(db, pol.Vehicles))

		pages.GET("/students", listStudents(db, chk))
		pages.GET("/students/new", newStudentForm(db, chk))
		pages.POST("/students/new", createStudent(db, chk))
		pages.GET("/students/:id", studentDetail(db))
		pages.GET("/students/:id/edit", editStudentForm(db, pol.Students))
		pages.POST("/students/:id/edit", updateStudent(db, pol.Students))

		pages.GET("/routes", listRoutes(db, chk))
		pages.GET("/routes/new", newRouteForm(db, chk))
		pages.POST("/routes/new", createRoute(db, chk))
		pages.GET("/routes/:id", routeDetail(db))
		pages.GET("/routes/:id/edit", editRouteForm(db, pol.Routes))
		pages.POST("/routes/:id/edit", updateRoute(db, pol.Routes))

		pages.GET("/notifications", listNotifications(db, chk))
		pages.GET("/notifications/new", newNotificationForm(db, chk))
		pages.POST("/notifications/new", createNotification(db, chk))
		pages.GET("/notifications/:id", notificationDetail(db))
		pages.POST("/notifications/:id/read", markNotificationRead(db, pol.Notifications))

		pages.GET("/payments", listPayments(db, chk))
		pages.GET("/payments/new", newPaymentForm(db, chk))
		pages.POST("/payments/new", createPayment(db, chk))
		pages.GET("/payments/:id", paymentDetail(db))

		pages.GET("/attendance", listAttendance(db, chk))
		pages.GET("/attendance/new", newAttendanceForm(db, chk))
		pages.POST("/attendance/new", createAttendance(db, chk))
		pages.GET("/attendance/:id", attendanceDetail(db))
	}
}

// forbiddenPage is the denial for direct navigation to a page the user cannot
// act on. Distinct on purpose from the action-endpoint denial, which
// redirects with a flash message instead.
func forbiddenPage(c *gin.Context) {
	c.HTML(http.StatusForbidden, "forbidden.tmpl", gin.H{"title": "403"})
	c.Abort()
}

func notFoundPage(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.tmpl", gin.H{"title": "404"})
	c.Abort()
}
