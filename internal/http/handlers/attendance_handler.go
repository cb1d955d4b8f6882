package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/audit"
	"furgones/internal/auth"
	"furgones/internal/models"
	"furgones/internal/rbac"
)

func ListAttendance(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var records []models.Attendance
		if err := db.Order("date DESC").Find(&records).Error; err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"attendance": records})
	}
}

func GetAttendance(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var record models.Attendance
		if err := db.Preload("Student").First(&record, id).Error; err != nil {
			notFound(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"attendance": record})
	}
}

func CreateAttendance(db *gorm.DB, pol rbac.AttendancePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionCreate, nil) {
			forbidden(c)
			return
		}
		var record models.Attendance
		if err := c.ShouldBindJSON(&record); err != nil {
			badRequest(c, err.Error())
			return
		}
		if record.StudentID == 0 {
			badRequest(c, "student_id is required")
			return
		}
		record.ID = 0
		if err := db.Create(&record).Error; err != nil {
			// The store enforces one record per (student, date).
			if strings.Contains(strings.ToLower(err.Error()), "unique") ||
				strings.Contains(strings.ToLower(err.Error()), "duplicate") {
				c.JSON(http.StatusConflict, gin.H{"detail": "attendance already recorded for that date"})
				return
			}
			serverError(c, err)
			return
		}
		audit.Record(db, user, "create", "attendance", record.ID, fmt.Sprintf("student %d", record.StudentID))
		c.JSON(http.StatusCreated, gin.H{"attendance": record})
	}
}

func UpdateAttendance(db *gorm.DB, pol rbac.AttendancePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var record models.Attendance
		if err := db.First(&record, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &record) {
			forbidden(c)
			return
		}
		prevStudent := record.StudentID
		if err := c.ShouldBindJSON(&record); err != nil {
			badRequest(c, err.Error())
			return
		}
		record.ID = id
		if !pol.IsAdmin(c.Request.Context(), user) {
			record.StudentID = prevStudent
		}
		if err := db.Save(&record).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "update", "attendance", record.ID, fmt.Sprintf("student %d", record.StudentID))
		c.JSON(http.StatusOK, gin.H{"attendance": record})
	}
}

func DeleteAttendance(db *gorm.DB, pol rbac.AttendancePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var record models.Attendance
		if err := db.First(&record, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionDelete, &record) {
			forbidden(c)
			return
		}
		if err := db.Delete(&record).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "delete", "attendance", id, fmt.Sprintf("student %d", record.StudentID))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
