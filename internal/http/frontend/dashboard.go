package frontend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/auth"
	"furgones/internal/models"
	"furgones/internal/rbac"
)

func count(db *gorm.DB, model any) int64 {
	var n int64
	db.Model(model).Count(&n)
	return n
}

// dashboard shows global fleet counts plus figures scoped to the current
// user: a conductor's own vehicles, unread notifications relevant to the
// user's role.
func dashboard(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		ctx := c.Request.Context()

		var myVehicles int64
		if chk.HasRole(ctx, user, models.GroupConductor) {
			if profile := chk.DriverProfile(ctx, user); profile != nil {
				db.Model(&models.Vehicle{}).Where("driver_id = ?", profile.ID).Count(&myVehicles)
			}
		}

		var unread int64
		chk.ScopeNotifications(ctx, user).Where("`read` = ?", false).Count(&unread)

		level, msg := takeFlash(c)
		c.HTML(http.StatusOK, "index.tmpl", gin.H{
			"title":           "Panel",
			"user":            user,
			"countVehicles":   count(db, &models.Vehicle{}),
			"countSchools":    count(db, &models.School{}),
			"countDrivers":    count(db, &models.Driver{}),
			"countStudents":   count(db, &models.Student{}),
			"countRoutes":     count(db, &models.Route{}),
			"countPayments":   count(db, &models.Payment{}),
			"countAttendance": count(db, &models.Attendance{}),
			"countMyVehicles": myVehicles,
			"countUnread":     unread,
			"flashLevel":      level,
			"flashMessage":    msg,
		})
	}
}

// myVehicle renders the conductor's own vehicle with its students and
// routes. Admins see the whole fleet here.
func myVehicle(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		ctx := c.Request.Context()

		var vehicles []models.Vehicle
		if chk.IsAdmin(ctx, user) {
			db.Find(&vehicles)
		} else if chk.HasRole(ctx, user, models.GroupConductor) {
			if profile := chk.DriverProfile(ctx, user); profile != nil {
				db.Where("driver_id = ?", profile.ID).Find(&vehicles)
			}
		}

		var students []models.Student
		var routes []models.Route
		if len(vehicles) > 0 {
			db.Where("vehicle_id = ?", vehicles[0].ID).Find(&students)
			db.Where("vehicle_id = ?", vehicles[0].ID).Find(&routes)
		}

		level, msg := takeFlash(c)
		c.HTML(http.StatusOK, "mi_furgon.tmpl", gin.H{
			"title":        "Mi furgón",
			"user":         user,
			"vehicles":     vehicles,
			"students":     students,
			"routes":       routes,
			"flashLevel":   level,
			"flashMessage": msg,
		})
	}
}
