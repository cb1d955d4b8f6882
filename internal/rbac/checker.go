package rbac

import (
	"context"

	"gorm.io/gorm"

	"furgones/internal/models"
)

// Checker resolves roles and ownership against the database. Every call reads
// current rows; membership and ownership are never cached across requests, so
// an admin reassignment takes effect on the next decision.
type Checker struct{ DB *gorm.DB }

// HasRole reports whether the user belongs to the named group. Anonymous
// users and query errors resolve to false.
func (c Checker) HasRole(ctx context.Context, user *models.User, group string) bool {
	if user == nil || user.ID == 0 {
		return false
	}
	var count int64
	err := c.DB.WithContext(ctx).
		Table("user_groups ug").
		Joins("JOIN `groups` g ON g.id = ug.group_id").
		Where("ug.user_id = ? AND g.name = ?", user.ID, group).
		Count(&count).Error
	if err != nil {
		return false
	}
	return count > 0
}

// IsAdmin reports staff status or Administrador membership. Checked first in
// every policy; it short-circuits ownership logic entirely.
func (c Checker) IsAdmin(ctx context.Context, user *models.User) bool {
	if user == nil || user.ID == 0 {
		return false
	}
	return user.IsStaff || c.HasRole(ctx, user, models.GroupAdministrador)
}

// DriverProfile returns the user's conductor profile, or nil if the user has
// none (or is anonymous, or the lookup fails).
func (c Checker) DriverProfile(ctx context.Context, user *models.User) *models.Driver {
	if user == nil || user.ID == 0 {
		return nil
	}
	var d models.Driver
	if err := c.DB.WithContext(ctx).Where("user_id = ?", user.ID).First(&d).Error; err != nil {
		return nil
	}
	return &d
}

// OwnsVehicle reports whether the user's driver profile matches the vehicle's
// driver link. Identity equality on the foreign key, never a struct compare:
// the same vehicle may be loaded through different query paths. Total over
// missing profiles and unassigned vehicles.
func (c Checker) OwnsVehicle(ctx context.Context, user *models.User, vehicle *models.Vehicle) bool {
	if vehicle == nil || vehicle.DriverID == nil {
		return false
	}
	profile := c.DriverProfile(ctx, user)
	return profile != nil && *vehicle.DriverID == profile.ID
}

// OwnsStudent reports whether the user is the student's apoderado.
func (c Checker) OwnsStudent(user *models.User, student *models.Student) bool {
	if user == nil || user.ID == 0 || student == nil || student.GuardianID == nil {
		return false
	}
	return *student.GuardianID == user.ID
}

// vehicleByID loads the vehicle behind an optional link. Nil in, nil out.
func (c Checker) vehicleByID(ctx context.Context, id *int64) *models.Vehicle {
	if id == nil {
		return nil
	}
	var v models.Vehicle
	if err := c.DB.WithContext(ctx).First(&v, *id).Error; err != nil {
		return nil
	}
	return &v
}

// studentByID loads the student behind an optional link. Nil in, nil out.
func (c Checker) studentByID(ctx context.Context, id *int64) *models.Student {
	if id == nil {
		return nil
	}
	var s models.Student
	if err := c.DB.WithContext(ctx).First(&s, *id).Error; err != nil {
		return nil
	}
	return &s
}
