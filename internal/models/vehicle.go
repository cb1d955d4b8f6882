package models

import (
	"time"

	"gorm.io/datatypes"
)

type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "activo"
	VehicleInactive    VehicleStatus = "inactivo"
	VehicleMaintenance VehicleStatus = "mantenimiento"
)

type Vehicle struct {
	ID               int64         `gorm:"primaryKey"`
	Plate            string        `gorm:"uniqueIndex;size:50;not null"`
	Model            string        `gorm:"size:100"`
	Year             *int
	MaxCapacity      int           `gorm:"default:20"`
	CurrentCapacity  int           `gorm:"default:0"`
	InspectionStatus VehicleStatus `gorm:"size:30;default:activo"`
	InspectionDate   *time.Time
	DriverID         *int64
	Driver           *Driver `gorm:"foreignKey:DriverID"`
	SchoolID         *int64
	School           *School        `gorm:"foreignKey:SchoolID"`
	Metadata         datatypes.JSON `gorm:"type:json"`

	// GPS tracking fields, written only through the update-location path.
	LastLatitude   *float64
	LastLongitude  *float64
	LastReportedAt *time.Time
	CurrentStatus  string `gorm:"size:50"`
}

// Occupancy returns current occupancy as a percentage of capacity.
func (v *Vehicle) Occupancy() float64 {
	if v.MaxCapacity == 0 {
		return 0
	}
	return float64(v.CurrentCapacity) / float64(v.MaxCapacity) * 100
}

// HasSeats reports whether the vehicle can take another student. Informational
// only; nothing in the write path enforces it.
func (v *Vehicle) HasSeats() bool {
	return v.CurrentCapacity < v.MaxCapacity
}
