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

func ListNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var notifications []models.Notification
		if err := db.Order("created_at DESC").Find(&notifications).Error; err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifications})
	}
}

func GetNotification(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var n models.Notification
		if err := db.First(&n, id).Error; err != nil {
			notFound(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notification": n})
	}
}

func CreateNotification(db *gorm.DB, pol rbac.NotificationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionCreate, nil) {
			forbidden(c)
			return
		}
		var n models.Notification
		if err := c.ShouldBindJSON(&n); err != nil {
			badRequest(c, err.Error())
			return
		}
		n.ID = 0
		n.Read = false
		if err := db.Create(&n).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "create", "notification", n.ID, string(n.Type))
		c.JSON(http.StatusCreated, gin.H{"notification": n})
	}
}

// UpdateNotification edits a notification's content and links. The policy
// keeps plain updates admin-only; mark_read has its own endpoint.
func UpdateNotification(db *gorm.DB, pol rbac.NotificationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var n models.Notification
		if err := db.First(&n, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &n) {
			forbidden(c)
			return
		}
		if err := c.ShouldBindJSON(&n); err != nil {
			badRequest(c, err.Error())
			return
		}
		n.ID = id
		if err := db.Save(&n).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "update", "notification", n.ID, string(n.Type))
		c.JSON(http.StatusOK, gin.H{"notification": n})
	}
}

func DeleteNotification(db *gorm.DB, pol rbac.NotificationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var n models.Notification
		if err := db.First(&n, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionDelete, &n) {
			forbidden(c)
			return
		}
		if err := db.Delete(&n).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "delete", "notification", id, string(n.Type))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// MarkNotificationRead flips the read flag. Idempotent: marking an already
// read notification succeeds and leaves the flag set.
func MarkNotificationRead(db *gorm.DB, pol rbac.NotificationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var n models.Notification
		if err := db.First(&n, id).Error; err != nil {
			notFound(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionMarkRead, &n) {
			forbidden(c)
			return
		}
		n.Read = true
		if err := db.Save(&n).Error; err != nil {
			serverError(c, err)
			return
		}
		audit.Record(db, user, "mark_read", "notification", n.ID, "")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
