package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver  string // "mysql" or "sqlite"
	DSN       string
	JWTSecret string
	AppPort   string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := Config{
		DBDriver:  os.Getenv("DB_DRIVER"),
		DSN:       os.Getenv("DB_DSN"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		AppPort:   os.Getenv("APP_PORT"),
	}

	if cfg.DBDriver == "" {
		cfg.DBDriver = "mysql"
	}
	if cfg.DSN == "" {
		if cfg.DBDriver == "sqlite" {
			cfg.DSN = "furgones.db"
		} else {
			log.Fatal("❌ DB_DSN not set in environment")
		}
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-only"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	return cfg
}
