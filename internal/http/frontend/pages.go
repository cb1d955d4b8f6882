package frontend

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"furgones/internal/auth"
	"furgones/internal/models"
	"furgones/internal/rbac"
)

// List pages never deny: they render whatever the ownership scope yields,
// including nothing. Detail pages require only login, since reads are
// permissive by policy.

type row struct {
	ID    int64
	Cells []string
}

func renderList(c *gin.Context, title, base string, headers []string, rows []row) {
	level, msg := takeFlash(c)
	c.HTML(http.StatusOK, "list.tmpl", gin.H{
		"title":        title,
		"base":         base,
		"headers":      headers,
		"rows":         rows,
		"flashLevel":   level,
		"flashMessage": msg,
	})
}

func renderDetail(c *gin.Context, title string, pairs [][2]string) {
	c.HTML(http.StatusOK, "detail.tmpl", gin.H{"title": title, "pairs": pairs})
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func listSchools(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var schools []models.School
		db.Order("name").Find(&schools)
		rows := make([]row, 0, len(schools))
		for _, s := range schools {
			rows = append(rows, row{s.ID, []string{s.Name, s.Address, s.Phone}})
		}
		renderList(c, "Colegios", "/schools", []string{"Nombre", "Dirección", "Teléfono"}, rows)
	}
}

func schoolDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s models.School
		if err := db.First(&s, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		renderDetail(c, s.Name, [][2]string{
			{"Nombre", s.Name}, {"Dirección", s.Address}, {"Teléfono", s.Phone},
			{"Entrada", s.EntryTime}, {"Salida", s.DepartureTime},
		})
	}
}

func listDrivers(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var drivers []models.Driver
		db.Order("name").Find(&drivers)
		rows := make([]row, 0, len(drivers))
		for _, d := range drivers {
			rows = append(rows, row{d.ID, []string{d.Name, d.RUT, d.Phone, d.LicenseNumber}})
		}
		renderList(c, "Conductores", "/drivers", []string{"Nombre", "RUT", "Teléfono", "Licencia"}, rows)
	}
}

func driverDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var d models.Driver
		if err := db.First(&d, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		renderDetail(c, d.Name, [][2]string{
			{"Nombre", d.Name}, {"RUT", d.RUT}, {"Teléfono", d.Phone},
			{"Licencia", d.LicenseNumber}, {"Tipo", d.LicenseType},
		})
	}
}

func listVehicles(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var vehicles []models.Vehicle
		chk.ScopeVehicles(c.Request.Context(), user).Order("plate").Find(&vehicles)
		rows := make([]row, 0, len(vehicles))
		for _, v := range vehicles {
			rows = append(rows, row{v.ID, []string{
				v.Plate, v.Model,
				fmt.Sprintf("%d/%d", v.CurrentCapacity, v.MaxCapacity),
				string(v.InspectionStatus),
				fmtTime(v.LastReportedAt),
			}})
		}
		renderList(c, "Furgones", "/vehicles",
			[]string{"Patente", "Modelo", "Ocupación", "Estado", "Último reporte"}, rows)
	}
}

func vehicleDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var v models.Vehicle
		if err := db.Preload("Driver").Preload("School").First(&v, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		driverName := "-"
		if v.Driver != nil {
			driverName = v.Driver.Name
		}
		lat, lon := "-", "-"
		if v.LastLatitude != nil {
			lat = fmt.Sprintf("%f", *v.LastLatitude)
		}
		if v.LastLongitude != nil {
			lon = fmt.Sprintf("%f", *v.LastLongitude)
		}
		seats := "no"
		if v.HasSeats() {
			seats = "sí"
		}
		renderDetail(c, v.Plate, [][2]string{
			{"Patente", v.Plate}, {"Modelo", v.Model},
			{"Conductor", driverName},
			{"Ocupación", fmt.Sprintf("%d/%d (%.0f%%)", v.CurrentCapacity, v.MaxCapacity, v.Occupancy())},
			{"Cupos disponibles", seats},
			{"Latitud", lat}, {"Longitud", lon},
			{"Último reporte", fmtTime(v.LastReportedAt)},
		})
	}
}

func listStudents(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var students []models.Student
		chk.ScopeStudents(c.Request.Context(), user).Order("name").Find(&students)
		rows := make([]row, 0, len(students))
		for _, s := range students {
			rows = append(rows, row{s.ID, []string{s.Name, s.RUT, s.GuardianName, s.GuardianPhone}})
		}
		renderList(c, "Estudiantes", "/students",
			[]string{"Nombre", "RUT", "Apoderado", "Teléfono apoderado"}, rows)
	}
}

func studentDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s models.Student
		if err := db.Preload("Vehicle").First(&s, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		vehicle := "-"
		if s.Vehicle != nil {
			vehicle = s.Vehicle.Plate
		}
		renderDetail(c, s.Name, [][2]string{
			{"Nombre", s.Name}, {"RUT", s.RUT}, {"Dirección", s.Address},
			{"Apoderado", s.GuardianName}, {"Furgón", vehicle},
		})
	}
}

func listRoutes(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var routes []models.Route
		db.Preload("Vehicle").Order("start_time").Find(&routes)
		rows := make([]row, 0, len(routes))
		for _, r := range routes {
			plate := "-"
			if r.Vehicle != nil {
				plate = r.Vehicle.Plate
			}
			rows = append(rows, row{r.ID, []string{string(r.Type), plate, r.Stops, r.StartTime, r.EndTime}})
		}
		renderList(c, "Rutas", "/routes",
			[]string{"Tipo", "Furgón", "Paradas", "Inicio", "Término"}, rows)
	}
}

func routeDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var r models.Route
		if err := db.Preload("Vehicle").First(&r, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		plate := "-"
		if r.Vehicle != nil {
			plate = r.Vehicle.Plate
		}
		renderDetail(c, fmt.Sprintf("Ruta %d", r.ID), [][2]string{
			{"Tipo", string(r.Type)}, {"Furgón", plate}, {"Paradas", r.Stops},
			{"Inicio", r.StartTime}, {"Término", r.EndTime},
		})
	}
}

func listNotifications(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var notifications []models.Notification
		chk.ScopeNotifications(c.Request.Context(), user).Order("created_at DESC").Find(&notifications)
		rows := make([]row, 0, len(notifications))
		for _, n := range notifications {
			read := "no"
			if n.Read {
				read = "sí"
			}
			rows = append(rows, row{n.ID, []string{string(n.Type), n.Message, read}})
		}
		renderList(c, "Notificaciones", "/notifications",
			[]string{"Tipo", "Mensaje", "Leída"}, rows)
	}
}

func notificationDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var n models.Notification
		if err := db.Preload("Student").Preload("Vehicle").First(&n, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		student, vehicle := "-", "-"
		if n.Student != nil {
			student = n.Student.Name
		}
		if n.Vehicle != nil {
			vehicle = n.Vehicle.Plate
		}
		read := "no"
		if n.Read {
			read = "sí"
		}
		renderDetail(c, fmt.Sprintf("Notificación %d", n.ID), [][2]string{
			{"Tipo", string(n.Type)}, {"Mensaje", n.Message},
			{"Estudiante", student}, {"Furgón", vehicle},
			{"Leída", read}, {"Creada", n.CreatedAt.Format("2006-01-02 15:04")},
		})
	}
}

func listPayments(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var payments []models.Payment
		chk.ScopePayments(c.Request.Context(), user).Order("date DESC").Find(&payments)
		rows := make([]row, 0, len(payments))
		for _, p := range payments {
			rows = append(rows, row{p.ID, []string{
				fmt.Sprintf("%.2f", p.Amount), fmtDate(p.Date), string(p.Status), p.Reference,
			}})
		}
		renderList(c, "Pagos", "/payments",
			[]string{"Monto", "Fecha", "Estado", "Referencia"}, rows)
	}
}

func paymentDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p models.Payment
		if err := db.Preload("Student").First(&p, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		student := fmt.Sprintf("%d", p.StudentID)
		if p.Student != nil {
			student = p.Student.Name
		}
		renderDetail(c, fmt.Sprintf("Pago %d", p.ID), [][2]string{
			{"Estudiante", student}, {"Monto", fmt.Sprintf("%.2f", p.Amount)},
			{"Fecha", fmtDate(p.Date)}, {"Estado", string(p.Status)},
			{"Referencia", p.Reference},
		})
	}
}

func listAttendance(db *gorm.DB, chk rbac.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var records []models.Attendance
		chk.ScopeAttendance(c.Request.Context(), user).Order("date DESC").Find(&records)
		rows := make([]row, 0, len(records))
		for _, a := range records {
			rows = append(rows, row{a.ID, []string{
				fmt.Sprintf("%d", a.StudentID), a.Date.Format("2006-01-02"), string(a.Status),
			}})
		}
		renderList(c, "Asistencias", "/attendance",
			[]string{"Estudiante", "Fecha", "Estado"}, rows)
	}
}

func attendanceDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var a models.Attendance
		if err := db.Preload("Student").Preload("Vehicle").First(&a, c.Param("id")).Error; err != nil {
			notFoundPage(c)
			return
		}
		student := fmt.Sprintf("%d", a.StudentID)
		if a.Student != nil {
			student = a.Student.Name
		}
		vehicle := "-"
		if a.Vehicle != nil {
			vehicle = a.Vehicle.Plate
		}
		renderDetail(c, fmt.Sprintf("Asistencia %d", a.ID), [][2]string{
			{"Estudiante", student}, {"Fecha", a.Date.Format("2006-01-02")},
			{"Estado", string(a.Status)}, {"Furgón", vehicle},
		})
	}
}
