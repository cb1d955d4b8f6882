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

func ListStudents(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var students []models.Student
		if err := db.Order("name").Find(&students).Error; err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"students": students})
	}
}

func GetStudent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var student models.Student
		if err := db.Preload("Vehicle").First(&student, id).Error; err != nil {
			notFound(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"student": student})
	}
}

func CreateStudent(db *gorm.DB, pol rbac.StudentPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionCreate, nil) {
			forbidden(c)
			return
		}
		var student models.Student
		if err := c.ShouldBindJSON(&student); err != nil {
			badRequest(c, err.Error())
			return
		}
		student.ID = 0
		if err := db.Create(&student).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "create", "student", student.ID, student.Name)
		c.JSON(http.StatusCreated, gin.H{"student": student})
	}
}

// UpdateStudent loads the target before deciding: an apoderado may update
// only their own student, a conductor never may, an admin always may.
func UpdateStudent(db *gorm.DB, pol rbac.StudentPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var student models.Student
		if err := db.First(&student, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &student) {
			forbidden(c)
			return
		}
		// Guardianship and vehicle assignment are admin-managed links.
		prevGuardian, prevVehicle := cloneID(student.GuardianID), cloneID(student.VehicleID)
		if err := c.ShouldBindJSON(&student); err != nil {
			badRequest(c, err.Error())
			return
		}
		student.ID = id
		if !pol.IsAdmin(c.Request.Context(), user) {
			student.GuardianID = prevGuardian
			student.VehicleID = prevVehicle
		}
		if err := db.Save(&student).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "update", "student", student.ID, student.Name)
		c.JSON(http.StatusOK, gin.H{"student": student})
	}
}

func DeleteStudent(db *gorm.DB, pol rbac.StudentPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var student models.Student
		if err := db.First(&student, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionDelete, &student) {
			forbidden(c)
			return
		}
		if err := db.Delete(&student).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "delete", "student", id, student.Name)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
