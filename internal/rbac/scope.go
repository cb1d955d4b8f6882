package rbac

import (
	"context"

	"gorm.io/gorm"

	"furgones/internal/models"
)

// List scoping for the frontend: pages never 403 a list, they narrow it to
// what the user owns. An empty result renders as an empty list. Role
// precedence is admin, then conductor, then apoderado; a user holding both
// driver and guardian roles is scoped as a driver.

func none(q *gorm.DB) *gorm.DB { return q.Where("1 = 0") }

// ScopeVehicles narrows a vehicle query: conductors see vehicles they drive,
// apoderados see vehicles their students ride.
func (c Checker) ScopeVehicles(ctx context.Context, user *models.User) *gorm.DB {
	q := c.DB.WithContext(ctx).Model(&models.Vehicle{})
	if c.IsAdmin(ctx, user) {
		return q
	}
	if c.HasRole(ctx, user, models.GroupConductor) {
		profile := c.DriverProfile(ctx, user)
		if profile == nil {
			return none(q)
		}
		return q.Where("driver_id = ?", profile.ID)
	}
	if c.HasRole(ctx, user, models.GroupApoderado) {
		return q.Where("id IN (?)", c.DB.Model(&models.Student{}).
			Select("vehicle_id").Where("guardian_id = ? AND vehicle_id IS NOT NULL", user.ID))
	}
	return none(q)
}

// ScopeStudents narrows a student query: apoderados see their own students,
// conductors see students assigned to their vehicles.
func (c Checker) ScopeStudents(ctx context.Context, user *models.User) *gorm.DB {
	q := c.DB.WithContext(ctx).Model(&models.Student{})
	if c.IsAdmin(ctx, user) {
		return q
	}
	if c.HasRole(ctx, user, models.GroupConductor) {
		profile := c.DriverProfile(ctx, user)
		if profile == nil {
			return none(q)
		}
		return q.Where("vehicle_id IN (?)", c.DB.Model(&models.Vehicle{}).
			Select("id").Where("driver_id = ?", profile.ID))
	}
	if c.HasRole(ctx, user, models.GroupApoderado) {
		return q.Where("guardian_id = ?", user.ID)
	}
	return none(q)
}

// ScopeNotifications narrows by the linked student (apoderado) or linked
// vehicle (conductor). General notifications only show for admins.
func (c Checker) ScopeNotifications(ctx context.Context, user *models.User) *gorm.DB {
	q := c.DB.WithContext(ctx).Model(&models.Notification{})
	if c.IsAdmin(ctx, user) {
		return q
	}
	if c.HasRole(ctx, user, models.GroupConductor) {
		profile := c.DriverProfile(ctx, user)
		if profile == nil {
			return none(q)
		}
		return q.Where("vehicle_id IN (?)", c.DB.Model(&models.Vehicle{}).
			Select("id").Where("driver_id = ?", profile.ID))
	}
	if c.HasRole(ctx, user, models.GroupApoderado) {
		return q.Where("student_id IN (?)", c.DB.Model(&models.Student{}).
			Select("id").Where("guardian_id = ?", user.ID))
	}
	return none(q)
}

// ScopePayments narrows to payments of the apoderado's own students.
// Conductors have no business with payments.
func (c Checker) ScopePayments(ctx context.Context, user *models.User) *gorm.DB {
	q := c.DB.WithContext(ctx).Model(&models.Payment{})
	if c.IsAdmin(ctx, user) {
		return q
	}
	if c.HasRole(ctx, user, models.GroupApoderado) {
		return q.Where("student_id IN (?)", c.DB.Model(&models.Student{}).
			Select("id").Where("guardian_id = ?", user.ID))
	}
	return none(q)
}

// ScopeAttendance narrows to the apoderado's students, or for conductors to
// students riding their vehicles.
func (c Checker) ScopeAttendance(ctx context.Context, user *models.User) *gorm.DB {
	q := c.DB.WithContext(ctx).Model(&models.Attendance{})
	if c.IsAdmin(ctx, user) {
		return q
	}
	if c.HasRole(ctx, user, models.GroupConductor) {
		profile := c.DriverProfile(ctx, user)
		if profile == nil {
			return none(q)
		}
		return q.Where("student_id IN (?)", c.DB.Model(&models.Student{}).
			Select("id").Where("vehicle_id IN (?)", c.DB.Model(&models.Vehicle{}).
				Select("id").Where("driver_id = ?", profile.ID)))
	}
	if c.HasRole(ctx, user, models.GroupApoderado) {
		return q.Where("student_id IN (?)", c.DB.Model(&models.Student{}).
			Select("id").Where("guardian_id = ?", user.ID))
	}
	return none(q)
}
