package frontend

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/audit"
	"furgones/internal/auth"
	"furgones/internal/models"
	"furgones/internal/rbac"
)

// Create pages are admin-only everywhere; edit pages run the per-resource
// object-level check after loading the target, and render the forbidden page
// on denial (direct URL access, not a form action).

type formField struct {
	Name  string
	Label string
	Value string
}

func renderForm(c *gin.Context, title, action string, fields []formField) {
	level, msg := takeFlash(c)
	c.HTML(http.StatusOK, "form.tmpl", gin.H{
		"title":        title,
		"action":       action,
		"fields":       fields,
		"flashLevel":   level,
		"flashMessage": msg,
	})
}

func optInt64(s string) *int64 {
	if s == "" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func i64str(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func requireAdminPage(c *gin.Context, chk rbac.Checker) bool {
	if !chk.IsAdmin(c.Request.Context(), auth.CurrentUser(c)) {
		forbiddenPage(c)
		return false
	}
	return true
}

// ----- schools -----

func schoolFields(s *models.School) []formField {
	return []formField{
		{"name", "Nombre", s.Name},
		{"address", "Dirección", s.Address},
		{"phone", "Teléfono", s.Phone},
		{"entry_time", "Horario entrada", s.EntryTime},
		{"departure_time", "Horario salida", s.DepartureTime},
	}
}

func bindSchoolForm(c *gin.Context, s *models.School) {
	s.Name = c.PostForm("name")
	s.Address = c.PostForm("address")
	s.Phone = c.PostForm("phone")
	s.EntryTime = c.PostForm("entry_time")
	s.DepartureTime = c.PostForm("departure_time")
}

func newSchoolForm(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		renderForm(c, "Nuevo colegio", "/schools/new", schoolFields(&models.School{}))
	}
}

func createSchool(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		var s models.School
		bindSchoolForm(c, &s)
		if err := db.Create(&s).Error; err != nil {
			flashError(c, "Error creando colegio")
		} else {
			audit.Record(db, auth.CurrentUser(c), "create", "school", s.ID, s.Name)
			flashSuccess(c, "Colegio creado correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/schools")
	}
}

func editSchoolForm(db *gorm.DB, pol rbac.SchoolPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s models.School
		if err := db.First(&s, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		if !pol.CanPerform(c.Request.Context(), auth.CurrentUser(c), rbac.ActionUpdate, &s) {
			forbiddenPage(c)
			return
		}
		renderForm(c, "Editar colegio", fmt.Sprintf("/schools/%d/edit", s.ID), schoolFields(&s))
	}
}

func updateSchool(db *gorm.DB, pol rbac.SchoolPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s models.School
		if err := db.First(&s, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		if !pol.CanPerform(c.Request.Context(), auth.CurrentUser(c), rbac.ActionUpdate, &s) {
			forbiddenPage(c)
			return
		}
		bindSchoolForm(c, &s)
		if err := db.Save(&s).Error; err != nil {
			flashError(c, "Error actualizando colegio")
		} else {
			audit.Record(db, auth.CurrentUser(c), "update", "school", s.ID, s.Name)
			flashSuccess(c, "Colegio actualizado correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/schools")
	}
}

// ----- drivers -----

func driverFields(d *models.Driver) []formField {
	return []formField{
		{"rut", "RUT", d.RUT},
		{"name", "Nombre", d.Name},
		{"phone", "Teléfono", d.Phone},
		{"license_number", "Número licencia", d.LicenseNumber},
		{"license_type", "Tipo licencia", d.LicenseType},
	}
}

func bindDriverForm(c *gin.Context, d *models.Driver) {
	d.RUT = c.PostForm("rut")
	d.Name = c.PostForm("name")
	d.Phone = c.PostForm("phone")
	d.LicenseNumber = c.PostForm("license_number")
	d.LicenseType = c.PostForm("license_type")
}

func newDriverForm(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		renderForm(c, "Nuevo conductor", "/drivers/new", driverFields(&models.Driver{}))
	}
}

func createDriver(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		var d models.Driver
		bindDriverForm(c, &d)
		d.UserID = optInt64(c.PostForm("user_id"))
		if err := db.Create(&d).Error; err != nil {
			flashError(c, "Error creando conductor")
		} else {
			audit.Record(db, auth.CurrentUser(c), "create", "driver", d.ID, d.Name)
			flashSuccess(c, "Conductor creado correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/drivers")
	}
}

func editDriverForm(db *gorm.DB, pol rbac.DriverPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var d models.Driver
		if err := db.First(&d, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		if !pol.CanPerform(c.Request.Context(), auth.CurrentUser(c), rbac.ActionUpdate, &d) {
			forbiddenPage(c)
			return
		}
		renderForm(c, "Editar conductor", fmt.Sprintf("/drivers/%d/edit", d.ID), driverFields(&d))
	}
}

func updateDriver(db *gorm.DB, pol rbac.DriverPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var d models.Driver
		if err := db.First(&d, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &d) {
			forbiddenPage(c)
			return
		}
		bindDriverForm(c, &d)
		if pol.IsAdmin(c.Request.Context(), user) {
			if uid := c.PostForm("user_id"); uid != "" {
				d.UserID = optInt64(uid)
			}
		}
		if err := db.Save(&d).Error; err != nil {
			flashError(c, "Error actualizando conductor")
		} else {
			audit.Record(db, user, "update", "driver", d.ID, d.Name)
			flashSuccess(c, "Conductor actualizado correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/drivers")
	}
}

// ----- vehicles -----

func vehicleFields(v *models.Vehicle) []formField {
	return []formField{
		{"plate", "Patente", v.Plate},
		{"model", "Modelo", v.Model},
		{"max_capacity", "Capacidad máxima", strconv.Itoa(v.MaxCapacity)},
		{"driver_id", "Conductor (id)", i64str(v.DriverID)},
		{"school_id", "Colegio (id)", i64str(v.SchoolID)},
	}
}

func bindVehicleForm(c *gin.Context, v *models.Vehicle) {
	v.Plate = c.PostForm("plate")
	v.Model = c.PostForm("model")
	if n, err := strconv.Atoi(c.PostForm("max_capacity")); err == nil {
		v.MaxCapacity = n
	}
	v.DriverID = optInt64(c.PostForm("driver_id"))
	v.SchoolID = optInt64(c.PostForm("school_id"))
}

func newVehicleForm(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		renderForm(c, "Nuevo furgón", "/vehicles/new", vehicleFields(&models.Vehicle{MaxCapacity: 20}))
	}
}

func createVehicle(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		v := models.Vehicle{MaxCapacity: 20}
		bindVehicleForm(c, &v)
		if err := db.Create(&v).Error; err != nil {
			flashError(c, "Error creando furgón")
		} else {
			audit.Record(db, auth.CurrentUser(c), "create", "vehicle", v.ID, v.Plate)
			flashSuccess(c, "Furgón creado correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/vehicles")
	}
}

func editVehicleForm(db *gorm.DB, pol rbac.VehiclePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var v models.Vehicle
		if err := db.First(&v, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		if !pol.CanPerform(c.Request.Context(), auth.CurrentUser(c), rbac.ActionUpdate, &v) {
			forbiddenPage(c)
			return
		}
		renderForm(c, "Editar furgón", fmt.Sprintf("/vehicles/%d/edit", v.ID), vehicleFields(&v))
	}
}

func updateVehicle(db *gorm.DB, pol rbac.VehiclePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var v models.Vehicle
		if err := db.First(&v, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &v) {
			forbiddenPage(c)
			return
		}
		bindVehicleForm(c, &v)
		if err := db.Save(&v).Error; err != nil {
			flashError(c, "Error actualizando furgón")
		} else {
			audit.Record(db, user, "update", "vehicle", v.ID, v.Plate)
			flashSuccess(c, "Furgón actualizado correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/vehicles")
	}
}

// ----- students -----

func studentFields(s *models.Student) []formField {
	return []formField{
		{"rut", "RUT", s.RUT},
		{"name", "Nombre", s.Name},
		{"address", "Dirección", s.Address},
		{"phone", "Teléfono", s.Phone},
		{"guardian_name", "Nombre apoderado", s.GuardianName},
		{"guardian_phone", "Teléfono apoderado", s.GuardianPhone},
	}
}

func bindStudentForm(c *gin.Context, s *models.Student) {
	s.RUT = c.PostForm("rut")
	s.Name = c.PostForm("name")
	s.Address = c.PostForm("address")
	s.Phone = c.PostForm("phone")
	s.GuardianName = c.PostForm("guardian_name")
	s.GuardianPhone = c.PostForm("guardian_phone")
}

func newStudentForm(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		renderForm(c, "Nuevo estudiante", "/students/new", studentFields(&models.Student{}))
	}
}

func createStudent(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		var s models.Student
		bindStudentForm(c, &s)
		s.VehicleID = optInt64(c.PostForm("vehicle_id"))
		s.GuardianID = optInt64(c.PostForm("guardian_id"))
		if err := db.Create(&s).Error; err != nil {
			flashError(c, "Error creando estudiante")
		} else {
			audit.Record(db, auth.CurrentUser(c), "create", "student", s.ID, s.Name)
			flashSuccess(c, "Estudiante creado correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/students")
	}
}

func editStudentForm(db *gorm.DB, pol rbac.StudentPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s models.Student
		if err := db.First(&s, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		if !pol.CanPerform(c.Request.Context(), auth.CurrentUser(c), rbac.ActionUpdate, &s) {
			forbiddenPage(c)
			return
		}
		renderForm(c, "Editar estudiante", fmt.Sprintf("/students/%d/edit", s.ID), studentFields(&s))
	}
}

func updateStudent(db *gorm.DB, pol rbac.StudentPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s models.Student
		if err := db.First(&s, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &s) {
			forbiddenPage(c)
			return
		}
		bindStudentForm(c, &s)
		if pol.IsAdmin(c.Request.Context(), user) {
			s.VehicleID = optInt64(c.PostForm("vehicle_id"))
			s.GuardianID = optInt64(c.PostForm("guardian_id"))
		}
		if err := db.Save(&s).Error; err != nil {
			flashError(c, "Error actualizando estudiante")
		} else {
			audit.Record(db, user, "update", "student", s.ID, s.Name)
			flashSuccess(c, "Estudiante actualizado correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/students")
	}
}

// ----- routes -----

func routeFields(r *models.Route) []formField {
	return []formField{
		{"type", "Tipo", string(r.Type)},
		{"vehicle_id", "Furgón (id)", i64str(r.VehicleID)},
		{"stops", "Paradas", r.Stops},
		{"start_time", "Hora inicio", r.StartTime},
		{"end_time", "Hora término", r.EndTime},
	}
}

func bindRouteForm(c *gin.Context, r *models.Route) {
	if t := c.PostForm("type"); t != "" {
		r.Type = models.RouteType(t)
	}
	r.Stops = c.PostForm("stops")
	r.StartTime = c.PostForm("start_time")
	r.EndTime = c.PostForm("end_time")
}

func newRouteForm(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		renderForm(c, "Nueva ruta", "/routes/new", routeFields(&models.Route{Type: models.RouteOutbound}))
	}
}

func createRoute(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		r := models.Route{Type: models.RouteOutbound}
		bindRouteForm(c, &r)
		r.VehicleID = optInt64(c.PostForm("vehicle_id"))
		if err := db.Create(&r).Error; err != nil {
			flashError(c, "Error creando ruta")
		} else {
			audit.Record(db, auth.CurrentUser(c), "create", "route", r.ID, string(r.Type))
			flashSuccess(c, "Ruta creada correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/routes")
	}
}

func editRouteForm(db *gorm.DB, pol rbac.RoutePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var r models.Route
		if err := db.First(&r, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		if !pol.CanPerform(c.Request.Context(), auth.CurrentUser(c), rbac.ActionUpdate, &r) {
			forbiddenPage(c)
			return
		}
		renderForm(c, "Editar ruta", fmt.Sprintf("/routes/%d/edit", r.ID), routeFields(&r))
	}
}

func updateRoute(db *gorm.DB, pol rbac.RoutePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		var r models.Route
		if err := db.First(&r, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		user := auth.CurrentUser(c)
		if !pol.CanPerform(c.Request.Context(), user, rbac.ActionUpdate, &r) {
			forbiddenPage(c)
			return
		}
		bindRouteForm(c, &r)
		if pol.IsAdmin(c.Request.Context(), user) {
			if vid := c.PostForm("vehicle_id"); vid != "" {
				r.VehicleID = optInt64(vid)
			}
		}
		if err := db.Save(&r).Error; err != nil {
			flashError(c, "Error actualizando ruta")
		} else {
			audit.Record(db, user, "update", "route", r.ID, string(r.Type))
			flashSuccess(c, "Ruta actualizada correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/routes")
	}
}

// ----- notifications / payments / attendance (create only; admin) -----

func newNotificationForm(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		renderForm(c, "Nueva notificación", "/notifications/new", []formField{
			{"type", "Tipo", "info"},
			{"message", "Mensaje", ""},
			{"student_id", "Estudiante (id)", ""},
			{"vehicle_id", "Furgón (id)", ""},
		})
	}
}

func createNotification(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		n := models.Notification{
			Type:      models.NotificationType(c.DefaultPostForm("type", "info")),
			Message:   c.PostForm("message"),
			StudentID: optInt64(c.PostForm("student_id")),
			VehicleID: optInt64(c.PostForm("vehicle_id")),
		}
		if err := db.Create(&n).Error; err != nil {
			flashError(c, "Error creando notificación")
		} else {
			audit.Record(db, auth.CurrentUser(c), "create", "notification", n.ID, string(n.Type))
			flashSuccess(c, "Notificación creada correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/notifications")
	}
}

func newPaymentForm(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		renderForm(c, "Nuevo pago", "/payments/new", []formField{
			{"student_id", "Estudiante (id)", ""},
			{"amount", "Monto", ""},
			{"status", "Estado", "pendiente"},
			{"reference", "Referencia", ""},
		})
	}
}

func createPayment(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		studentID := optInt64(c.PostForm("student_id"))
		amount, err := strconv.ParseFloat(c.PostForm("amount"), 64)
		if studentID == nil || err != nil {
			flashError(c, "Estudiante y monto son requeridos")
			c.Redirect(http.StatusSeeOther, "/payments")
			return
		}
		now := time.Now()
		p := models.Payment{
			StudentID: *studentID,
			Amount:    amount,
			Date:      &now,
			Status:    models.PaymentStatus(c.DefaultPostForm("status", "pendiente")),
			Reference: c.PostForm("reference"),
		}
		if err := db.Create(&p).Error; err != nil {
			flashError(c, "Error creando pago")
		} else {
			audit.Record(db, auth.CurrentUser(c), "create", "payment", p.ID, p.Reference)
			flashSuccess(c, "Pago creado correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/payments")
	}
}

func newAttendanceForm(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		renderForm(c, "Nueva asistencia", "/attendance/new", []formField{
			{"student_id", "Estudiante (id)", ""},
			{"date", "Fecha", time.Now().Format("2006-01-02")},
			{"status", "Estado", "presente"},
			{"vehicle_id", "Furgón (id)", ""},
		})
	}
}

func createAttendance(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdminPage(c, chk) {
			return
		}
		studentID := optInt64(c.PostForm("student_id"))
		date, err := time.Parse("2006-01-02", c.PostForm("date"))
		if studentID == nil || err != nil {
			flashError(c, "Estudiante y fecha son requeridos")
			c.Redirect(http.StatusSeeOther, "/attendance")
			return
		}
		a := models.Attendance{
			StudentID: *studentID,
			Date:      date,
			Status:    models.AttendanceStatus(c.DefaultPostForm("status", "presente")),
			VehicleID: optInt64(c.PostForm("vehicle_id")),
		}
		if err := db.Create(&a).Error; err != nil {
			flashError(c, "Ya existe asistencia para esa fecha")
		} else {
			audit.Record(db, auth.CurrentUser(c), "create", "attendance", a.ID, "")
			flashSuccess(c, "Asistencia registrada correctamente.")
		}
		c.Redirect(http.StatusSeeOther, "/attendance")
	}
}
