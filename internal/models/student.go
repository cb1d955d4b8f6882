package models

import "time"

type Student struct {
	ID            int64  `gorm:"primaryKey"`
	RUT           string `gorm:"uniqueIndex;size:20;not null"`
	Name          string `gorm:"size:255;not null"`
	BirthDate     *time.Time
	Address       string `gorm:"size:255"`
	Phone         string `gorm:"size:50"`
	GuardianName  string `gorm:"size:255"`
	GuardianPhone string `gorm:"size:50"`
	VehicleID     *int64
	Vehicle       *Vehicle `gorm:"foreignKey:VehicleID"`
	// GuardianID links the student to the apoderado's login account.
	GuardianID *int64
	Guardian   *User `gorm:"foreignKey:GuardianID"`
}
