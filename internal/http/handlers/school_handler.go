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

func ListSchools(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var schools []models.School
		if err := db.Order("name").Find(&schools).Error; err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"schools": schools})
	}
}

func GetSchool(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var school models.School
		if err := db.First(&school, id).Error; err != nil {
			notFound(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"school": school})
	}
}

func CreateSchool(db *gorm.DB, pol rbac.SchoolPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionCreate, nil) {
			forbidden(c)
			return
		}
		var school models.School
		if err := c.ShouldBindJSON(&school); err != nil {
			badRequest(c, err.Error())
			return
		}
		school.ID = 0
		if err := db.Create(&school).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "create", "school", school.ID, school.Name)
		c.JSON(http.StatusCreated, gin.H{"school": school})
	}
}

func UpdateSchool(db *gorm.DB, pol rbac.SchoolPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var school models.School
		if err := db.First(&school, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &school) {
			forbidden(c)
			return
		}
		if err := c.ShouldBindJSON(&school); err != nil {
			badRequest(c, err.Error())
			return
		}
		school.ID = id
		if err := db.Save(&school).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "update", "school", school.ID, school.Name)
		c.JSON(http.StatusOK, gin.H{"school": school})
	}
}

func DeleteSchool(db *gorm.DB, pol rbac.SchoolPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var school models.School
		if err := db.First(&school, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionDelete, &school) {
			forbidden(c)
			return
		}
		if err := db.Delete(&school).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "delete", "school", id, school.Name)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
