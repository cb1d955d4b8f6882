package models

import "time"

type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "presente"
	AttendancePickedUp  AttendanceStatus = "recogido"
	AttendanceDelivered AttendanceStatus = "entregado"
	AttendanceAbsent    AttendanceStatus = "ausente"
)

// Attendance is unique per (student, date); the store enforces it.
type Attendance struct {
	ID        int64     `gorm:"primaryKey"`
	StudentID int64     `gorm:"not null;uniqueIndex:idx_attendance_student_date"`
	Student   *Student
	Date      time.Time `gorm:"not null;uniqueIndex:idx_attendance_student_date"`
	Status    AttendanceStatus `gorm:"size:20;not null"`
	VehicleID *int64
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID"`
}
