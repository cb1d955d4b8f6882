package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/auth"
	"furgones/internal/models"
	"furgones/internal/rbac"
)

// ListAudit returns the mutation trail, newest first. Admin only.
func ListAudit(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !chk.IsAdmin(c.Request.Context(), user) {
			forbidden(c)
			return
		}
		var entries []models.AuditLog
		if err := db.Order("created_at DESC").Limit(200).Find(&entries).Error; err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"audit": entries})
	}
}
