package models

import "time"

type NotificationType string

const (
	NotificationInfo  NotificationType = "info"
	NotificationAlert NotificationType = "alert"
	NotificationEvent NotificationType = "evento"
)

// Notification targets at most one student and/or one vehicle. Both links nil
// means a general notification that only administrators can act on.
type Notification struct {
	ID        int64            `gorm:"primaryKey"`
	Type      NotificationType `gorm:"size:20;default:info"`
	Message   string           `gorm:"type:text;not null"`
	StudentID *int64
	Student   *Student `gorm:"foreignKey:StudentID"`
	VehicleID *int64
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID"`
	CreatedAt time.Time
	Read      bool `gorm:"default:false"`
}
