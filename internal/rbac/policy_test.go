package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"furgones/internal/models"
	"furgones/internal/testutil"
)

// fixture wires the recurring cast: an admin, two conductors with one
// vehicle each, and two apoderados with one student each.
type fixture struct {
	pol Policies

	admin      *models.User
	driverA    *models.User
	driverB    *models.User
	guardianG  *models.User
	guardianH  *models.User
	vehicleV1  *models.Vehicle
	vehicleV2  *models.Vehicle
	studentS1  *models.Student
	studentS2  *models.Student
	profileA   *models.Driver
	profileB   *models.Driver
}

func newFixture(t *testing.T) (*fixture, context.Context) {
	db := testutil.NewDB(t)
	groups := testutil.Groups(t, db)

	f := &fixture{pol: NewPolicies(Checker{DB: db})}
	f.admin = testutil.NewUser(t, db, "admin@x.cl", "pw", false, groups[models.GroupAdministrador])
	f.driverA = testutil.NewUser(t, db, "a@x.cl", "pw", false, groups[models.GroupConductor])
	f.driverB = testutil.NewUser(t, db, "b@x.cl", "pw", false, groups[models.GroupConductor])
	f.guardianG = testutil.NewUser(t, db, "g@x.cl", "pw", false, groups[models.GroupApoderado])
	f.guardianH = testutil.NewUser(t, db, "h@x.cl", "pw", false, groups[models.GroupApoderado])
	f.profileA = testutil.NewDriver(t, db, "1-9", f.driverA)
	f.profileB = testutil.NewDriver(t, db, "2-7", f.driverB)
	f.vehicleV1 = testutil.NewVehicle(t, db, "AA-11", f.profileA)
	f.vehicleV2 = testutil.NewVehicle(t, db, "BB-22", f.profileB)
	f.studentS1 = testutil.NewStudent(t, db, "10-1", f.guardianG, f.vehicleV1)
	f.studentS2 = testutil.NewStudent(t, db, "11-2", f.guardianH, f.vehicleV2)
	return f, context.Background()
}

func TestReadsAlwaysPermittedAtRequestLevel(t *testing.T) {
	f, ctx := newFixture(t)
	for _, user := range []*models.User{nil, f.driverA, f.guardianG, f.admin} {
		assert.True(t, f.pol.Schools.CanAttempt(ctx, user, ActionRead))
		assert.True(t, f.pol.Vehicles.CanAttempt(ctx, user, ActionRead))
		assert.True(t, f.pol.Students.CanAttempt(ctx, user, ActionRead))
		assert.True(t, f.pol.Routes.CanAttempt(ctx, user, ActionRead))
		assert.True(t, f.pol.Notifications.CanAttempt(ctx, user, ActionRead))
		assert.True(t, f.pol.Payments.CanAttempt(ctx, user, ActionRead))
		assert.True(t, f.pol.Attendance.CanAttempt(ctx, user, ActionRead))
	}
}

func TestUnauthenticatedWritesDeniedAtRequestLevel(t *testing.T) {
	f, ctx := newFixture(t)
	for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
		assert.False(t, f.pol.Schools.CanAttempt(ctx, nil, action))
		assert.False(t, f.pol.Vehicles.CanAttempt(ctx, nil, action))
		assert.False(t, f.pol.Students.CanAttempt(ctx, nil, action))
		assert.False(t, f.pol.Routes.CanAttempt(ctx, nil, action))
		assert.False(t, f.pol.Payments.CanAttempt(ctx, nil, action))
	}
	assert.False(t, f.pol.Vehicles.CanAttempt(ctx, nil, ActionUpdateLocation))
	assert.False(t, f.pol.Notifications.CanAttempt(ctx, nil, ActionMarkRead))
}

func TestAdminShortCircuitsEverything(t *testing.T) {
	f, ctx := newFixture(t)
	assert.True(t, f.pol.Schools.CanPerform(ctx, f.admin, ActionUpdate, nil))
	assert.True(t, f.pol.Vehicles.CanPerform(ctx, f.admin, ActionUpdate, f.vehicleV1))
	assert.True(t, f.pol.Vehicles.CanPerform(ctx, f.admin, ActionUpdateLocation, f.vehicleV2))
	assert.True(t, f.pol.Students.CanPerform(ctx, f.admin, ActionUpdate, f.studentS2))
	assert.True(t, f.pol.Routes.CanPerform(ctx, f.admin, ActionDelete, &models.Route{}))
	assert.True(t, f.pol.Notifications.CanPerform(ctx, f.admin, ActionMarkRead, &models.Notification{}))
}

func TestConductorUpdateLocationOwnVehicleOnly(t *testing.T) {
	f, ctx := newFixture(t)

	assert.True(t, f.pol.Vehicles.CanPerform(ctx, f.driverA, ActionUpdateLocation, f.vehicleV1))
	assert.False(t, f.pol.Vehicles.CanPerform(ctx, f.driverA, ActionUpdateLocation, f.vehicleV2))
	assert.False(t, f.pol.Vehicles.CanPerform(ctx, f.driverB, ActionUpdateLocation, f.vehicleV1))

	// only the location action is driver-writable, ownership notwithstanding
	assert.False(t, f.pol.Vehicles.CanPerform(ctx, f.driverA, ActionUpdate, f.vehicleV1))
	assert.False(t, f.pol.Vehicles.CanPerform(ctx, f.driverA, ActionDelete, f.vehicleV1))
	assert.False(t, f.pol.Vehicles.CanAttempt(ctx, f.driverA, ActionUpdate))
	assert.True(t, f.pol.Vehicles.CanAttempt(ctx, f.driverA, ActionUpdateLocation))
}

func TestUnknownWriteActionDenied(t *testing.T) {
	f, ctx := newFixture(t)
	assert.False(t, f.pol.Vehicles.CanAttempt(ctx, f.driverA, Action("patch")))
	assert.False(t, f.pol.Vehicles.CanPerform(ctx, f.driverA, Action("patch"), f.vehicleV1))
	assert.False(t, f.pol.Notifications.CanAttempt(ctx, f.guardianG, Action("mystery")))
}

func TestGuardianWritesOwnStudentOnly(t *testing.T) {
	f, ctx := newFixture(t)

	assert.True(t, f.pol.Students.CanPerform(ctx, f.guardianG, ActionUpdate, f.studentS1))
	assert.False(t, f.pol.Students.CanPerform(ctx, f.guardianG, ActionUpdate, f.studentS2))

	orphan := &models.Student{ID: 99, RUT: "99-9", Name: "Sin apoderado"}
	assert.False(t, f.pol.Students.CanPerform(ctx, f.guardianG, ActionUpdate, orphan))

	// request-level is permissive for authenticated users; the object check
	// is the one that decides
	assert.True(t, f.pol.Students.CanAttempt(ctx, f.guardianG, ActionUpdate))
	assert.True(t, f.pol.Students.CanAttempt(ctx, f.driverA, ActionUpdate))
	assert.False(t, f.pol.Students.CanAttempt(ctx, nil, ActionUpdate))
}

func TestConductorNeverWritesStudents(t *testing.T) {
	f, ctx := newFixture(t)

	// S1 rides driver A's own vehicle; still no write access
	assert.False(t, f.pol.Students.CanPerform(ctx, f.driverA, ActionUpdate, f.studentS1))
	assert.False(t, f.pol.Students.CanPerform(ctx, f.driverA, ActionDelete, f.studentS1))
	assert.False(t, f.pol.Students.CanPerform(ctx, f.driverA, ActionCreate, nil))
}

func TestNotificationMarkRead(t *testing.T) {
	f, ctx := newFixture(t)

	forS1 := &models.Notification{StudentID: &f.studentS1.ID}
	forV1 := &models.Notification{VehicleID: &f.vehicleV1.ID}
	general := &models.Notification{}

	assert.True(t, f.pol.Notifications.CanPerform(ctx, f.guardianG, ActionMarkRead, forS1))
	assert.False(t, f.pol.Notifications.CanPerform(ctx, f.guardianH, ActionMarkRead, forS1))
	assert.True(t, f.pol.Notifications.CanPerform(ctx, f.driverA, ActionMarkRead, forV1))
	assert.False(t, f.pol.Notifications.CanPerform(ctx, f.driverB, ActionMarkRead, forV1))

	// no links: only admins may act
	assert.False(t, f.pol.Notifications.CanPerform(ctx, f.guardianG, ActionMarkRead, general))
	assert.False(t, f.pol.Notifications.CanPerform(ctx, f.driverA, ActionMarkRead, general))
	assert.True(t, f.pol.Notifications.CanPerform(ctx, f.admin, ActionMarkRead, general))

	// a driver cannot mark a student-only notification, nor a guardian a
	// vehicle-only one
	assert.False(t, f.pol.Notifications.CanPerform(ctx, f.driverA, ActionMarkRead, forS1))
	assert.False(t, f.pol.Notifications.CanPerform(ctx, f.guardianG, ActionMarkRead, forV1))
}

func TestRouteWrites(t *testing.T) {
	f, ctx := newFixture(t)

	routeV1 := &models.Route{VehicleID: &f.vehicleV1.ID}
	routeNone := &models.Route{}

	assert.True(t, f.pol.Routes.CanPerform(ctx, f.driverA, ActionUpdate, routeV1))
	assert.False(t, f.pol.Routes.CanPerform(ctx, f.driverB, ActionUpdate, routeV1))
	assert.False(t, f.pol.Routes.CanPerform(ctx, f.driverA, ActionUpdate, routeNone))
	assert.False(t, f.pol.Routes.CanPerform(ctx, f.driverA, ActionDelete, routeV1))
	assert.False(t, f.pol.Routes.CanPerform(ctx, f.guardianG, ActionUpdate, routeV1))
	assert.True(t, f.pol.Routes.CanPerform(ctx, f.admin, ActionUpdate, routeNone))
}

func TestDriverProfileSelfEdit(t *testing.T) {
	f, ctx := newFixture(t)

	assert.True(t, f.pol.Drivers.CanPerform(ctx, f.driverA, ActionUpdate, f.profileA))
	assert.False(t, f.pol.Drivers.CanPerform(ctx, f.driverA, ActionUpdate, f.profileB))
	assert.True(t, f.pol.Drivers.CanPerform(ctx, f.admin, ActionUpdate, f.profileB))
	assert.False(t, f.pol.Drivers.CanPerform(ctx, f.driverA, ActionDelete, f.profileA))

	// profile with no linked account: nobody but admin
	unlinked := &models.Driver{ID: 42, RUT: "42-0"}
	assert.False(t, f.pol.Drivers.CanPerform(ctx, f.driverA, ActionUpdate, unlinked))
	assert.True(t, f.pol.Drivers.CanPerform(ctx, f.admin, ActionUpdate, unlinked))
}

func TestPaymentAndAttendanceGuardianRules(t *testing.T) {
	f, ctx := newFixture(t)

	payS1 := &models.Payment{StudentID: f.studentS1.ID, Amount: 35000}
	payS2 := &models.Payment{StudentID: f.studentS2.ID, Amount: 35000}
	attS1 := &models.Attendance{StudentID: f.studentS1.ID}

	assert.True(t, f.pol.Payments.CanPerform(ctx, f.guardianG, ActionUpdate, payS1))
	assert.False(t, f.pol.Payments.CanPerform(ctx, f.guardianG, ActionUpdate, payS2))
	assert.False(t, f.pol.Payments.CanPerform(ctx, f.driverA, ActionUpdate, payS1))
	assert.True(t, f.pol.Attendance.CanPerform(ctx, f.guardianG, ActionUpdate, attS1))
	assert.False(t, f.pol.Attendance.CanPerform(ctx, f.guardianH, ActionUpdate, attS1))
	assert.True(t, f.pol.Payments.CanPerform(ctx, f.admin, ActionDelete, payS1))
}

func TestOwnershipReassignmentTakesEffectImmediately(t *testing.T) {
	f, ctx := newFixture(t)
	db := f.pol.Vehicles.DB

	assert.True(t, f.pol.Vehicles.CanPerform(ctx, f.driverA, ActionUpdateLocation, f.vehicleV1))

	// admin reassigns V1 to driver B
	if err := db.Model(&models.Vehicle{}).Where("id = ?", f.vehicleV1.ID).
		Update("driver_id", f.profileB.ID).Error; err != nil {
		t.Fatal(err)
	}
	var v1 models.Vehicle
	if err := db.First(&v1, f.vehicleV1.ID).Error; err != nil {
		t.Fatal(err)
	}
	assert.False(t, f.pol.Vehicles.CanPerform(ctx, f.driverA, ActionUpdateLocation, &v1))
	assert.True(t, f.pol.Vehicles.CanPerform(ctx, f.driverB, ActionUpdateLocation, &v1))
}
