package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"furgones/internal/models"
)

// NewDB opens an in-memory sqlite database with the full schema migrated.
// Each call is an isolated database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
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
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Token signs a bearer token for the user, the same shape the login handler
// issues.
func Token(t *testing.T, secret string, u *models.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   u.ID,
		"email": u.Email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// Groups ensures the three role groups exist and returns them by name.
func Groups(t *testing.T, db *gorm.DB) map[string]*models.Group {
	t.Helper()
	out := map[string]*models.Group{}
	for _, name := range []string{models.GroupAdministrador, models.GroupConductor, models.GroupApoderado} {
		g := models.Group{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&g).Error; err != nil {
			t.Fatalf("group %s: %v", name, err)
		}
		out[name] = &g
	}
	return out
}

// NewUser creates a user with the given password and group memberships.
func NewUser(t *testing.T, db *gorm.DB, email, password string, staff bool, groups ...*models.Group) *models.User {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{Email: email, Name: email, PasswordHash: string(h), IsStaff: staff}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	for _, g := range groups {
		if err := db.Model(&u).Association("Groups").Append(g); err != nil {
			t.Fatalf("assign group: %v", err)
		}
	}
	return &u
}

// NewDriver creates a conductor profile linked to the given user (nil for an
// unlinked profile).
func NewDriver(t *testing.T, db *gorm.DB, rut string, user *models.User) *models.Driver {
	t.Helper()
	d := models.Driver{RUT: rut, Name: "Driver " + rut}
	if user != nil {
		d.UserID = &user.ID
	}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("create driver: %v", err)
	}
	return &d
}

// NewVehicle creates a vehicle, optionally assigned to a driver profile.
func NewVehicle(t *testing.T, db *gorm.DB, plate string, driver *models.Driver) *models.Vehicle {
	t.Helper()
	v := models.Vehicle{Plate: plate, MaxCapacity: 20}
	if driver != nil {
		v.DriverID = &driver.ID
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return &v
}

// NewStudent creates a student, optionally linked to a guardian account and a
// vehicle.
func NewStudent(t *testing.T, db *gorm.DB, rut string, guardian *models.User, vehicle *models.Vehicle) *models.Student {
	t.Helper()
	s := models.Student{RUT: rut, Name: "Student " + rut}
	if guardian != nil {
		s.GuardianID = &guardian.ID
	}
	if vehicle != nil {
		s.VehicleID = &vehicle.ID
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	return &s
}
