package seed

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"furgones/internal/models"
)

func hash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash seed password: %v", err)
	}
	return string(h)
}

func ensureUser(db *gorm.DB, email, name, password string, staff bool, groups ...*models.Group) (*models.User, error) {
	user := models.User{Email: email, Name: name, PasswordHash: hash(password), IsStaff: staff}
	if err := db.Where("email = ?", email).FirstOrCreate(&user).Error; err != nil {
		return nil, err
	}
	for _, g := range groups {
		if err := db.Model(&user).Association("Groups").Append(g); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// FirstSetup creates the role groups, an admin account and a small demo
// fleet. Idempotent: safe to run on every boot.
func FirstSetup(db *gorm.DB) error {
	// -------------------------
	// 1) Role groups
	// -------------------------
	adminGroup := models.Group{Name: models.GroupAdministrador}
	conductorGroup := models.Group{Name: models.GroupConductor}
	apoderadoGroup := models.Group{Name: models.GroupApoderado}
	for _, g := range []*models.Group{&adminGroup, &conductorGroup, &apoderadoGroup} {
		if err := db.Where("name = ?", g.Name).FirstOrCreate(g).Error; err != nil {
			return err
		}
	}

	// -------------------------
	// 2) Accounts
	// -------------------------
	if _, err := ensureUser(db, "admin@furgones.local", "Administrador", "admin1234", true, &adminGroup); err != nil {
		return err
	}
	conductorUser, err := ensureUser(db, "conductor@furgones.local", "Pedro Soto", "conductor1234", false, &conductorGroup)
	if err != nil {
		return err
	}
	apoderadoUser, err := ensureUser(db, "apoderado@furgones.local", "María Pérez", "apoderado1234", false, &apoderadoGroup)
	if err != nil {
		return err
	}

	// -------------------------
	// 3) Demo fleet
	// -------------------------
	school := models.School{Name: "Colegio Montessori Temuco", Address: "Av. Alemania 0555", Phone: "+56 45 2 123456"}
	if err := db.Where("name = ?", school.Name).FirstOrCreate(&school).Error; err != nil {
		return err
	}

	driver := models.Driver{RUT: "12.345.678-9", Name: "Pedro Soto", Phone: "+56 9 1234 5678",
		LicenseNumber: "A-12345", LicenseType: "A3", UserID: &conductorUser.ID}
	if err := db.Where("rut = ?", driver.RUT).FirstOrCreate(&driver).Error; err != nil {
		return err
	}

	vehicle := models.Vehicle{Plate: "ABCD-12", Model: "Hyundai H1", MaxCapacity: 15,
		DriverID: &driver.ID, SchoolID: &school.ID}
	if err := db.Where("plate = ?", vehicle.Plate).FirstOrCreate(&vehicle).Error; err != nil {
		return err
	}

	student := models.Student{RUT: "23.456.789-0", Name: "Sofía Pérez", GuardianName: "María Pérez",
		VehicleID: &vehicle.ID, GuardianID: &apoderadoUser.ID}
	if err := db.Where("rut = ?", student.RUT).FirstOrCreate(&student).Error; err != nil {
		return err
	}

	route := models.Route{VehicleID: &vehicle.ID, Type: models.RouteOutbound,
		Stops: "Labranza, Av. Alemania, Centro", StartTime: "07:30", EndTime: "08:30"}
	if err := db.Where("vehicle_id = ? AND type = ?", vehicle.ID, route.Type).FirstOrCreate(&route).Error; err != nil {
		return err
	}

	notification := models.Notification{Type: models.NotificationInfo,
		Message: "Bienvenido al sistema de furgones", StudentID: &student.ID, VehicleID: &vehicle.ID}
	var existing int64
	db.Model(&models.Notification{}).Where("message = ?", notification.Message).Count(&existing)
	if existing == 0 {
		if err := db.Create(&notification).Error; err != nil {
			return err
		}
	}

	today := time.Now().Truncate(24 * time.Hour)
	attendance := models.Attendance{StudentID: student.ID, Date: today, Status: models.AttendancePresent, VehicleID: &vehicle.ID}
	if err := db.Where("student_id = ? AND date = ?", student.ID, today).FirstOrCreate(&attendance).Error; err != nil {
		return err
	}

	log.Println("✅ Seed data ready")
	return nil
}
