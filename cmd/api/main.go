package main

import (
	"fmt"
	"log"

	"furgones/internal/config"
	"furgones/internal/db"
	httpserver "furgones/internal/http"
	"furgones/internal/models"
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

	r := httpserver.NewRouter(gdb, cfg.JWTSecret)
	log.Printf("🚀 Server listening on :%s\n", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}
