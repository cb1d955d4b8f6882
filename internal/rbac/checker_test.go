package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"furgones/internal/models"
	"furgones/internal/testutil"
)

func TestHasRole_Anonymous(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Groups(t, db)
	chk := Checker{DB: db}
	ctx := context.Background()

	assert.False(t, chk.HasRole(ctx, nil, models.GroupAdministrador))
	assert.False(t, chk.HasRole(ctx, nil, models.GroupConductor))
	assert.False(t, chk.HasRole(ctx, &models.User{}, models.GroupApoderado))
	assert.False(t, chk.HasRole(ctx, nil, "NoSuchGroup"))
}

func TestHasRole_Membership(t *testing.T) {
	db := testutil.NewDB(t)
	groups := testutil.Groups(t, db)
	chk := Checker{DB: db}
	ctx := context.Background()

	conductor := testutil.NewUser(t, db, "c@x.cl", "pw", false, groups[models.GroupConductor])
	assert.True(t, chk.HasRole(ctx, conductor, models.GroupConductor))
	assert.False(t, chk.HasRole(ctx, conductor, models.GroupAdministrador))
	assert.False(t, chk.HasRole(ctx, conductor, models.GroupApoderado))
}

func TestHasRole_ReadsCurrentMembership(t *testing.T) {
	db := testutil.NewDB(t)
	groups := testutil.Groups(t, db)
	chk := Checker{DB: db}
	ctx := context.Background()

	u := testutil.NewUser(t, db, "u@x.cl", "pw", false)
	assert.False(t, chk.HasRole(ctx, u, models.GroupConductor))

	// membership change takes effect on the very next decision
	if err := db.Model(u).Association("Groups").Append(groups[models.GroupConductor]); err != nil {
		t.Fatal(err)
	}
	assert.True(t, chk.HasRole(ctx, u, models.GroupConductor))
}

func TestIsAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	groups := testutil.Groups(t, db)
	chk := Checker{DB: db}
	ctx := context.Background()

	staff := testutil.NewUser(t, db, "staff@x.cl", "pw", true)
	admin := testutil.NewUser(t, db, "admin@x.cl", "pw", false, groups[models.GroupAdministrador])
	plain := testutil.NewUser(t, db, "plain@x.cl", "pw", false)

	assert.True(t, chk.IsAdmin(ctx, staff))
	assert.True(t, chk.IsAdmin(ctx, admin))
	assert.False(t, chk.IsAdmin(ctx, plain))
	assert.False(t, chk.IsAdmin(ctx, nil))
}

func TestOwnsVehicle(t *testing.T) {
	db := testutil.NewDB(t)
	groups := testutil.Groups(t, db)
	chk := Checker{DB: db}
	ctx := context.Background()

	userA := testutil.NewUser(t, db, "a@x.cl", "pw", false, groups[models.GroupConductor])
	userB := testutil.NewUser(t, db, "b@x.cl", "pw", false, groups[models.GroupConductor])
	driverA := testutil.NewDriver(t, db, "1-9", userA)
	driverB := testutil.NewDriver(t, db, "2-7", userB)
	v1 := testutil.NewVehicle(t, db, "AA-11", driverA)
	v2 := testutil.NewVehicle(t, db, "BB-22", driverB)
	unassigned := testutil.NewVehicle(t, db, "CC-33", nil)

	assert.True(t, chk.OwnsVehicle(ctx, userA, v1))
	assert.False(t, chk.OwnsVehicle(ctx, userA, v2))
	assert.False(t, chk.OwnsVehicle(ctx, userB, v1))

	// partially populated graph: no driver on the vehicle, no profile on the
	// user, nil everything: all resolve to false, never panic
	assert.False(t, chk.OwnsVehicle(ctx, userA, unassigned))
	noProfile := testutil.NewUser(t, db, "np@x.cl", "pw", false, groups[models.GroupConductor])
	assert.False(t, chk.OwnsVehicle(ctx, noProfile, v1))
	assert.False(t, chk.OwnsVehicle(ctx, nil, v1))
	assert.False(t, chk.OwnsVehicle(ctx, userA, nil))
}

func TestOwnsStudent(t *testing.T) {
	db := testutil.NewDB(t)
	groups := testutil.Groups(t, db)
	chk := Checker{DB: db}

	guardian := testutil.NewUser(t, db, "g@x.cl", "pw", false, groups[models.GroupApoderado])
	other := testutil.NewUser(t, db, "o@x.cl", "pw", false, groups[models.GroupApoderado])
	owned := testutil.NewStudent(t, db, "10-1", guardian, nil)
	orphan := testutil.NewStudent(t, db, "11-2", nil, nil)

	assert.True(t, chk.OwnsStudent(guardian, owned))
	assert.False(t, chk.OwnsStudent(other, owned))
	assert.False(t, chk.OwnsStudent(guardian, orphan))
	assert.False(t, chk.OwnsStudent(nil, owned))
	assert.False(t, chk.OwnsStudent(guardian, nil))
}

func TestDriverProfile_Missing(t *testing.T) {
	db := testutil.NewDB(t)
	chk := Checker{DB: db}
	ctx := context.Background()

	u := testutil.NewUser(t, db, "x@x.cl", "pw", false)
	assert.Nil(t, chk.DriverProfile(ctx, u))
	assert.Nil(t, chk.DriverProfile(ctx, nil))
}
