package handlers

import (
	"encoding/json"
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

func ListVehicles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var vehicles []models.Vehicle
		if err := db.Order("plate").Find(&vehicles).Error; err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
	}
}

func GetVehicle(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var vehicle models.Vehicle
		if err := db.Preload("Driver").Preload("School").First(&vehicle, id).Error; err != nil {
			notFound(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
	}
}

func CreateVehicle(db *gorm.DB, pol rbac.VehiclePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionCreate, nil) {
			forbidden(c)
			return
		}
		var vehicle models.Vehicle
		if err := c.ShouldBindJSON(&vehicle); err != nil {
			badRequest(c, err.Error())
			return
		}
		vehicle.ID = 0
		if err := db.Create(&vehicle).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "create", "vehicle", vehicle.ID, vehicle.Plate)
		c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
	}
}

func UpdateVehicle(db *gorm.DB, pol rbac.VehiclePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var vehicle models.Vehicle
		if err := db.First(&vehicle, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &vehicle) {
			forbidden(c)
			return
		}
		if err := c.ShouldBindJSON(&vehicle); err != nil {
			badRequest(c, err.Error())
			return
		}
		vehicle.ID = id
		if err := db.Save(&vehicle).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "update", "vehicle", vehicle.ID, vehicle.Plate)
		c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
	}
}

func DeleteVehicle(db *gorm.DB, pol rbac.VehiclePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var vehicle models.Vehicle
		if err := db.First(&vehicle, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionDelete, &vehicle) {
			forbidden(c)
			return
		}
		if err := db.Delete(&vehicle).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "delete", "vehicle", id, vehicle.Plate)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// parseCoord accepts a JSON number or a numeric string.
func parseCoord(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// parseReportedAt is forgiving: an absent or unparsable timestamp falls back
// to now instead of erroring.
func parseReportedAt(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}

// UpdateVehicleLocation stores a GPS report for the vehicle. Authorization
// runs before input validation: a conductor may report only for a vehicle
// they drive, admins for any. Malformed coordinates are a 400 with a detail
// message and leave the vehicle untouched.
func UpdateVehicleLocation(db *gorm.DB, pol rbac.VehiclePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var vehicle models.Vehicle
		if err := db.First(&vehicle, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdateLocation, &vehicle) {
			forbidden(c)
			return
		}

		var body struct {
			Latitude   any    `json:"latitude"`
			Longitude  any    `json:"longitude"`
			ReportedAt string `json:"reported_at"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}
		if body.Latitude == nil || body.Longitude == nil {
			badRequest(c, "latitude and longitude are required")
			return
		}
		lat, okLat := parseCoord(body.Latitude)
		lon, okLon := parseCoord(body.Longitude)
		if !okLat || !okLon {
			badRequest(c, "latitude and longitude must be numbers")
			return
		}

		reportedAt := parseReportedAt(body.ReportedAt)
		vehicle.LastLatitude = &lat
		vehicle.LastLongitude = &lon
		vehicle.LastReportedAt = &reportedAt
		if err := db.Save(&vehicle).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "update_location", "vehicle", vehicle.ID, vehicle.Plate)
		c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
	}
}
