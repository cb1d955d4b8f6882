package main

import (
	"log"

	"furgones/internal/config"
	"furgones/internal/db"
	"furgones/internal/models"
	"furgones/internal/seed"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDriver, cfg.DSN)
	db.AutoMigrate(gdb,
		&models.Group{},
		&models.User{},
		&models.School{},
		&models.Driver{},
		&models.Vehicle{},
		&models.Student{},
		&models.Notification{},
		&models.Route{},
		&models.Payment{},
		&models.Attendance{},
		&models.AuditLog{},
	)

	if err := seed.FirstSetup(gdb); err != nil {
		log.Fatalf("❌ Seed failed: %v", err)
	}
}
