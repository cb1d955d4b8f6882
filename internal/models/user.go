package models

import "time"

// Group is a named role (Administrador, Conductor, Apoderado). Membership is
// set-valued; policy code resolves overlapping memberships in a fixed
// precedence order, never by map iteration.
type Group struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:150;not null"`
}

const (
	GroupAdministrador = "Administrador"
	GroupConductor     = "Conductor"
	GroupApoderado     = "Apoderado"
)

type User struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Name         string `gorm:"size:200"`
	PasswordHash string `gorm:"size:255" json:"-"`
	IsStaff      bool   `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Groups       []Group `gorm:"many2many:user_groups;"`
}
