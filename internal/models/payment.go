package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pendiente"
	PaymentPaid      PaymentStatus = "pagado"
	PaymentCancelled PaymentStatus = "cancelado"
)

type Payment struct {
	ID        int64 `gorm:"primaryKey"`
	StudentID int64 `gorm:"not null;index"`
	Student   *Student
	Amount    float64 `gorm:"not null"`
	Date      *time.Time
	Status    PaymentStatus `gorm:"size:20;default:pendiente"`
	Reference string        `gorm:"size:255"`
}
