package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"furgones/internal/models"
)

func TestScopeVehicles(t *testing.T) {
	f, ctx := newFixture(t)
	chk := f.pol.Vehicles.Checker

	var mine []models.Vehicle
	assert.NoError(t, chk.ScopeVehicles(ctx, f.driverA).Find(&mine).Error)
	if assert.Len(t, mine, 1) {
		assert.Equal(t, f.vehicleV1.ID, mine[0].ID)
	}

	var all []models.Vehicle
	assert.NoError(t, chk.ScopeVehicles(ctx, f.admin).Find(&all).Error)
	assert.Len(t, all, 2)

	// an apoderado sees the vehicle their student rides
	var guardianView []models.Vehicle
	assert.NoError(t, chk.ScopeVehicles(ctx, f.guardianG).Find(&guardianView).Error)
	if assert.Len(t, guardianView, 1) {
		assert.Equal(t, f.vehicleV1.ID, guardianView[0].ID)
	}

	// no role at all: empty, not an error
	nobody := &models.User{ID: 9999}
	var nothing []models.Vehicle
	assert.NoError(t, chk.ScopeVehicles(ctx, nobody).Find(&nothing).Error)
	assert.Empty(t, nothing)
}

func TestScopeStudents(t *testing.T) {
	f, ctx := newFixture(t)
	chk := f.pol.Students.Checker

	var gs []models.Student
	assert.NoError(t, chk.ScopeStudents(ctx, f.guardianG).Find(&gs).Error)
	if assert.Len(t, gs, 1) {
		assert.Equal(t, f.studentS1.ID, gs[0].ID)
	}

	// conductor sees students riding their vehicle
	var ds []models.Student
	assert.NoError(t, chk.ScopeStudents(ctx, f.driverA).Find(&ds).Error)
	if assert.Len(t, ds, 1) {
		assert.Equal(t, f.studentS1.ID, ds[0].ID)
	}

	var all []models.Student
	assert.NoError(t, chk.ScopeStudents(ctx, f.admin).Find(&all).Error)
	assert.Len(t, all, 2)
}

func TestScopeNotifications(t *testing.T) {
	f, ctx := newFixture(t)
	chk := f.pol.Notifications.Checker
	db := chk.DB

	forS1 := models.Notification{Message: "s1", StudentID: &f.studentS1.ID}
	forV2 := models.Notification{Message: "v2", VehicleID: &f.vehicleV2.ID}
	general := models.Notification{Message: "general"}
	for _, n := range []*models.Notification{&forS1, &forV2, &general} {
		assert.NoError(t, db.Create(n).Error)
	}

	var gn []models.Notification
	assert.NoError(t, chk.ScopeNotifications(ctx, f.guardianG).Find(&gn).Error)
	if assert.Len(t, gn, 1) {
		assert.Equal(t, "s1", gn[0].Message)
	}

	var bn []models.Notification
	assert.NoError(t, chk.ScopeNotifications(ctx, f.driverB).Find(&bn).Error)
	if assert.Len(t, bn, 1) {
		assert.Equal(t, "v2", bn[0].Message)
	}

	// general notifications surface only for admins
	var an []models.Notification
	assert.NoError(t, chk.ScopeNotifications(ctx, f.admin).Find(&an).Error)
	assert.Len(t, an, 3)
}

func TestScopePaymentsAndAttendance(t *testing.T) {
	f, ctx := newFixture(t)
	chk := f.pol.Payments.Checker
	db := chk.DB

	assert.NoError(t, db.Create(&models.Payment{StudentID: f.studentS1.ID, Amount: 30000}).Error)
	assert.NoError(t, db.Create(&models.Payment{StudentID: f.studentS2.ID, Amount: 30000}).Error)

	var gp []models.Payment
	assert.NoError(t, chk.ScopePayments(ctx, f.guardianG).Find(&gp).Error)
	if assert.Len(t, gp, 1) {
		assert.Equal(t, f.studentS1.ID, gp[0].StudentID)
	}

	// conductors see no payments at all
	var dp []models.Payment
	assert.NoError(t, chk.ScopePayments(ctx, f.driverA).Find(&dp).Error)
	assert.Empty(t, dp)
}
