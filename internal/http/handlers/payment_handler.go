package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/audit"
	"furgones/internal/auth"
	"furgones/internal/models"
	"furgones/internal/rbac"
)

func ListPayments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payments []models.Payment
		if err := db.Order("date DESC").Find(&payments).Error; err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payments": payments})
	}
}

func GetPayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var payment models.Payment
		if err := db.Preload("Student").First(&payment, id).Error; err != nil {
			notFound(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payment": payment})
	}
}

func CreatePayment(db *gorm.DB, pol rbac.PaymentPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionCreate, nil) {
			forbidden(c)
			return
		}
		var payment models.Payment
		if err := c.ShouldBindJSON(&payment); err != nil {
			badRequest(c, err.Error())
			return
		}
		if payment.StudentID == 0 {
			badRequest(c, "student_id is required")
			return
		}
		payment.ID = 0
		if err := db.Create(&payment).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "create", "payment", payment.ID, payment.Reference)
		c.JSON(http.StatusCreated, gin.H{"payment": payment})
	}
}

func UpdatePayment(db *gorm.DB, pol rbac.PaymentPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var payment models.Payment
		if err := db.First(&payment, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &payment) {
			forbidden(c)
			return
		}
		prevStudent := payment.StudentID
		if err := c.ShouldBindJSON(&payment); err != nil {
			badRequest(c, err.Error())
			return
		}
		payment.ID = id
		if !pol.IsAdmin(c.Request.Context(), user) {
			payment.StudentID = prevStudent
		}
		if err := db.Save(&payment).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "update", "payment", payment.ID, payment.Reference)
		c.JSON(http.StatusOK, gin.H{"payment": payment})
	}
}

func DeletePayment(db *gorm.DB, pol rbac.PaymentPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var payment models.Payment
		if err := db.First(&payment, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionDelete, &payment) {
			forbidden(c)
			return
		}
		if err := db.Delete(&payment).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "delete", "payment", id, fmt.Sprintf("student %d", payment.StudentID))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
