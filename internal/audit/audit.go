package audit

import (
	"log"

	"gorm.io/gorm"

	"furgones/internal/models"
)

// Record appends an audit row for a successful mutation. Failures are logged
// and swallowed; auditing never fails the request that triggered it.
func Record(db *gorm.DB, user *models.User, action, entity string, entityID int64, detail string) {
	entry := models.AuditLog{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if user != nil {
		entry.UserID = &user.ID
		entry.UserEmail = user.Email
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("audit: failed to record %s %s/%d: %v", action, entity, entityID, err)
	}
}
