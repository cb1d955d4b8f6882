package rbac

import (
	"context"

	"furgones/internal/models"
)

// Action names the operation being authorized. Write actions are whitelisted
// by name per policy; anything unrecognized is denied, never ambiguous-allow.
type Action string

const (
	ActionRead           Action = "read"
	ActionCreate         Action = "create"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionUpdateLocation Action = "update_location"
	ActionMarkRead       Action = "mark_read"
)

// IsWrite reports whether the action mutates state.
func (a Action) IsWrite() bool { return a != ActionRead }

// Attempter is the request-level decision point: a coarse check performed
// before the target object is loaded, so outright-denied requests never touch
// the data layer. Both the API and the frontend gate consume the same
// policies; only the denial presentation differs.
type Attempter interface {
	CanAttempt(ctx context.Context, user *models.User, action Action) bool
}

func authenticated(user *models.User) bool { return user != nil && user.ID != 0 }

// SchoolPolicy: read anyone, write admin only.
type SchoolPolicy struct{ Checker }

func (p SchoolPolicy) CanAttempt(ctx context.Context, user *models.User, action Action) bool {
	if !action.IsWrite() {
		return true
	}
	return p.IsAdmin(ctx, user)
}

func (p SchoolPolicy) CanPerform(ctx context.Context, user *models.User, action Action, _ *models.School) bool {
	return p.CanAttempt(ctx, user, action)
}

// DriverPolicy: read anyone; admin full; a conductor may update only the
// profile linked to their own account.
type DriverPolicy struct{ Checker }

func (p DriverPolicy) CanAttempt(ctx context.Context, user *models.User, action Action) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	return action == ActionUpdate && p.HasRole(ctx, user, models.GroupConductor)
}

func (p DriverPolicy) CanPerform(ctx context.Context, user *models.User, action Action, d *models.Driver) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	if action == ActionUpdate && p.HasRole(ctx, user, models.GroupConductor) {
		return d != nil && d.UserID != nil && authenticated(user) && *d.UserID == user.ID
	}
	return false
}

// VehiclePolicy: read anyone; admin full; a conductor may perform only the
// update_location action, and only on a vehicle they drive. Every other
// write, including a plain update of an owned vehicle, is admin territory.
type VehiclePolicy struct{ Checker }

func (p VehiclePolicy) CanAttempt(ctx context.Context, user *models.User, action Action) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	return action == ActionUpdateLocation && p.HasRole(ctx, user, models.GroupConductor)
}

func (p VehiclePolicy) CanPerform(ctx context.Context, user *models.User, action Action, v *models.Vehicle) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	if action == ActionUpdateLocation && p.HasRole(ctx, user, models.GroupConductor) {
		return p.OwnsVehicle(ctx, user, v)
	}
	return false
}

// StudentPolicy: read anyone; writes may be attempted by any authenticated
// user so the object-level check can decide; there an apoderado may update or
// delete only their own student. Conductors never write students, even when
// the student rides their vehicle. Creation stays admin-only.
type StudentPolicy struct{ Checker }

func (p StudentPolicy) CanAttempt(ctx context.Context, user *models.User, action Action) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	return authenticated(user)
}

func (p StudentPolicy) CanPerform(ctx context.Context, user *models.User, action Action, s *models.Student) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	if (action == ActionUpdate || action == ActionDelete) && p.HasRole(ctx, user, models.GroupApoderado) {
		return p.OwnsStudent(user, s)
	}
	return false
}

// NotificationPolicy: admin full; mark_read is additionally open to the
// apoderado of the linked student and the conductor of the linked vehicle. A
// general notification (no links) is only actionable by admins.
type NotificationPolicy struct{ Checker }

func (p NotificationPolicy) CanAttempt(ctx context.Context, user *models.User, action Action) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	if action == ActionMarkRead {
		return p.HasRole(ctx, user, models.GroupConductor) || p.HasRole(ctx, user, models.GroupApoderado)
	}
	return false
}

func (p NotificationPolicy) CanPerform(ctx context.Context, user *models.User, action Action, n *models.Notification) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	if action == ActionMarkRead && n != nil {
		if p.HasRole(ctx, user, models.GroupConductor) &&
			p.OwnsVehicle(ctx, user, p.vehicleByID(ctx, n.VehicleID)) {
			return true
		}
		if p.HasRole(ctx, user, models.GroupApoderado) &&
			p.OwnsStudent(user, p.studentByID(ctx, n.StudentID)) {
			return true
		}
	}
	return false
}

// RoutePolicy: admin full; a conductor may update a route iff they drive the
// route's vehicle. Routes without a vehicle belong to admins alone.
type RoutePolicy struct{ Checker }

func (p RoutePolicy) CanAttempt(ctx context.Context, user *models.User, action Action) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	return action == ActionUpdate && p.HasRole(ctx, user, models.GroupConductor)
}

func (p RoutePolicy) CanPerform(ctx context.Context, user *models.User, action Action, r *models.Route) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	if action == ActionUpdate && r != nil && p.HasRole(ctx, user, models.GroupConductor) {
		return p.OwnsVehicle(ctx, user, p.vehicleByID(ctx, r.VehicleID))
	}
	return false
}

// PaymentPolicy: admin full; an apoderado may update payments of their own
// students.
type PaymentPolicy struct{ Checker }

func (p PaymentPolicy) CanAttempt(ctx context.Context, user *models.User, action Action) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	return action == ActionUpdate && p.HasRole(ctx, user, models.GroupApoderado)
}

func (p PaymentPolicy) CanPerform(ctx context.Context, user *models.User, action Action, pay *models.Payment) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	if action == ActionUpdate && pay != nil && p.HasRole(ctx, user, models.GroupApoderado) {
		return p.OwnsStudent(user, p.studentByID(ctx, &pay.StudentID))
	}
	return false
}

// AttendancePolicy: same shape as payments.
type AttendancePolicy struct{ Checker }

func (p AttendancePolicy) CanAttempt(ctx context.Context, user *models.User, action Action) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	return action == ActionUpdate && p.HasRole(ctx, user, models.GroupApoderado)
}

func (p AttendancePolicy) CanPerform(ctx context.Context, user *models.User, action Action, a *models.Attendance) bool {
	if !action.IsWrite() {
		return true
	}
	if p.IsAdmin(ctx, user) {
		return true
	}
	if action == ActionUpdate && a != nil && p.HasRole(ctx, user, models.GroupApoderado) {
		return p.OwnsStudent(user, p.studentByID(ctx, &a.StudentID))
	}
	return false
}

// Policies bundles one policy per resource type so both gates share the same
// rule tables.
type Policies struct {
	Schools       SchoolPolicy
	Drivers       DriverPolicy
	Vehicles      VehiclePolicy
	Students      StudentPolicy
	Notifications NotificationPolicy
	Routes        RoutePolicy
	Payments      PaymentPolicy
	Attendance    AttendancePolicy
}

func NewPolicies(chk Checker) Policies {
	return Policies{
		Schools:       SchoolPolicy{chk},
		Drivers:       DriverPolicy{chk},
		Vehicles:      VehiclePolicy{chk},
		Students:      StudentPolicy{chk},
		Notifications: NotificationPolicy{chk},
		Routes:        RoutePolicy{chk},
		Payments:      PaymentPolicy{chk},
		Attendance:    AttendancePolicy{chk},
	}
}
