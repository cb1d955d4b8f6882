package models

import "time"

// Driver is the conductor profile. The link to a login account is optional:
// a driver can exist in the fleet before their account is provisioned.
type Driver struct {
	ID            int64  `gorm:"primaryKey"`
	RUT           string `gorm:"uniqueIndex;size:20;not null"`
	Name          string `gorm:"size:255;not null"`
	Phone         string `gorm:"size:50"`
	LicenseNumber string `gorm:"size:100"`
	LicenseType   string `gorm:"size:50"`
	LicenseExpiry *time.Time
	UserID        *int64 `gorm:"uniqueIndex"`
	User          *User  `gorm:"foreignKey:UserID"`
}
