package models

import "time"

// AuditLog records who mutated what. Append-only; written by the API
// handlers after a successful write.
type AuditLog struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    *int64 `gorm:"index"`
	UserEmail string `gorm:"size:255"`
	Action    string `gorm:"size:50;not null"`
	Entity    string `gorm:"size:50;not null"`
	EntityID  int64
	Detail    string `gorm:"size:500"`
	CreatedAt time.Time
}
