package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/audit"
	"furgones/internal/auth"
	"furgones/internal/models"
	"furgones/internal/rbac"
)

func ListRoutes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var routes []models.Route
		if err := db.Order("start_time").Find(&routes).Error; err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"routes": routes})
	}
}

func GetRoute(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var route models.Route
		if err := db.Preload("Vehicle").First(&route, id).Error; err != nil {
			notFound(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"route": route})
	}
}

func CreateRoute(db *gorm.DB, pol rbac.RoutePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionCreate, nil) {
			forbidden(c)
			return
		}
		var route models.Route
		if err := c.ShouldBindJSON(&route); err != nil {
			badRequest(c, err.Error())
			return
		}
		route.ID = 0
		if err := db.Create(&route).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "create", "route", route.ID, string(route.Type))
		c.JSON(http.StatusCreated, gin.H{"route": route})
	}
}

// UpdateRoute admits admins and the conductor driving the route's vehicle.
func UpdateRoute(db *gorm.DB, pol rbac.RoutePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var route models.Route
		if err := db.First(&route, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &route) {
			forbidden(c)
			return
		}
		prevVehicle := cloneID(route.VehicleID)
		if err := c.ShouldBindJSON(&route); err != nil {
			badRequest(c, err.Error())
			return
		}
		route.ID = id
		if !pol.IsAdmin(c.Request.Context(), user) {
			route.VehicleID = prevVehicle
		}
		if err := db.Save(&route).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "update", "route", route.ID, string(route.Type))
		c.JSON(http.StatusOK, gin.H{"route": route})
	}
}

func DeleteRoute(db *gorm.DB, pol rbac.RoutePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var route models.Route
		if err := db.First(&route, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionDelete, &route) {
			forbidden(c)
			return
		}
		if err := db.Delete(&route).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "delete", "route", id, string(route.Type))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
