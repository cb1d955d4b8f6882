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

func ListDrivers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var drivers []models.Driver
		if err := db.Order("name").Find(&drivers).Error; err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"drivers": drivers})
	}
}

func GetDriver(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var driver models.Driver
		if err := db.First(&driver, id).Error; err != nil {
			notFound(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"driver": driver})
	}
}

func CreateDriver(db *gorm.DB, pol rbac.DriverPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionCreate, nil) {
			forbidden(c)
			return
		}
		var driver models.Driver
		if err := c.ShouldBindJSON(&driver); err != nil {
			badRequest(c, err.Error())
			return
		}
		driver.ID = 0
		if err := db.Create(&driver).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "create", "driver", driver.ID, driver.Name)
		c.JSON(http.StatusCreated, gin.H{"driver": driver})
	}
}

// UpdateDriver allows admins to edit any profile and a conductor to edit the
// profile linked to their own account.
func UpdateDriver(db *gorm.DB, pol rbac.DriverPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var driver models.Driver
		if err := db.First(&driver, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &driver) {
			forbidden(c)
			return
		}
		// The account link is admin-managed; keep the loaded value unless an
		// admin sent a new one.
		prevUser := cloneID(driver.UserID)
		if err := c.ShouldBindJSON(&driver); err != nil {
			badRequest(c, err.Error())
			return
		}
		driver.ID = id
		if !pol.IsAdmin(c.Request.Context(), user) {
			driver.UserID = prevUser
		}
		if err := db.Save(&driver).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "update", "driver", driver.ID, driver.Name)
		c.JSON(http.StatusOK, gin.H{"driver": driver})
	}
}

func DeleteDriver(db *gorm.DB, pol rbac.DriverPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var driver models.Driver
		if err := db.First(&driver, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionDelete, &driver) {
			forbidden(c)
			return
		}
		if err := db.Delete(&driver).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "delete", "driver", id, driver.Name)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
