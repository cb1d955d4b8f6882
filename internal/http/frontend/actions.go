package frontend

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/audit"
	"furgones/internal/auth"
	"furgones/internal/models"
	"furgones/internal/rbac"
)

// Form-submitted actions differ from edit pages on purpose: a denial here
// redirects back to the list with a flash error instead of rendering a 403.

// updateVehicleLocation handles the GPS report form. Conductor allowed only
// on their own vehicle, admin on any.
func updateVehicleLocation(db *gorm.DB, pol rbac.VehiclePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var v models.Vehicle
		if err := db.First(&v, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdateLocation, &v) {
			flashError(c, "No autorizado para actualizar ubicación")
			c.Redirect(http.StatusSeeOther, "/vehicles")
			return
		}

		latStr := c.PostForm("latitude")
		lonStr := c.PostForm("longitude")
		if latStr == "" || lonStr == "" {
			flashError(c, "latitude y longitude son requeridos")
			c.Redirect(http.StatusSeeOther, "/vehicles")
			return
		}
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil {
			flashError(c, "latitude y longitude deben ser números")
			c.Redirect(http.StatusSeeOther, "/vehicles")
			return
		}

		now := time.Now()
		v.LastLatitude = &lat
		v.LastLongitude = &lon
		v.LastReportedAt = &now
		if err := db.Save(&v).Error; err != nil {
			flashError(c, "Error actualizando ubicación")
		} else {
			audit.Record(db, user, "update_location", "vehicle", v.ID, v.Plate)
			flashSuccess(c, "Ubicación actualizada")
		}
		c.Redirect(http.StatusSeeOther, "/vehicles")
	}
}

// markNotificationRead flips the read flag from the list page form.
func markNotificationRead(db *gorm.DB, pol rbac.NotificationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var n models.Notification
		if err := db.First(&n, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionMarkRead, &n) {
			flashError(c, "No autorizado")
			c.Redirect(http.StatusSeeOther, "/notifications")
			return
		}

		n.Read = true
		if err := db.Save(&n).Error; err != nil {
			flashError(c, "Error marcando notificación")
		} else {
			audit.Record(db, user, "mark_read", "notification", n.ID, "")
			flashSuccess(c, "Notificación marcada como leída")
		}
		c.Redirect(http.StatusSeeOther, "/notifications")
	}
}
