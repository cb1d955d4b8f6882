package db

import (
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens the configured database. mysql in production, sqlite for
// local development.
func Connect(driver, dsn string) *gorm.DB {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		dialector = mysql.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	sqlDB, _ := gdb.DB()
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("❌ Database ping failed: %v", err)
	}

	log.Println("✅ Database connected successfully")
	return gdb
}

func AutoMigrate(gdb *gorm.DB, entities ...any) {
	if err := gdb.AutoMigrate(entities...); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
}
