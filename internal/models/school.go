package models

type School struct {
	ID            int64  `gorm:"primaryKey"`
	Name          string `gorm:"size:255;not null"`
	Address       string `gorm:"size:255"`
	Phone         string `gorm:"size:50"`
	EntryTime     string `gorm:"size:5"`
	DepartureTime string `gorm:"size:5"`
}
