package frontend

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"furgones/internal/models"
	"furgones/internal/rbac"
	"furgones/internal/testutil"
)

const testSecret = "test-secret"

type uiEnv struct {
	db *gorm.DB
	r  *gin.Engine

	admin    *models.User
	driverA  *models.User
	driverB  *models.User
	guardian *models.User

	v1 *models.Vehicle
	v2 *models.Vehicle
	s1 *models.Student
	s2 *models.Student
}

func newUIEnv(t *testing.T) *uiEnv {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	groups := testutil.Groups(t, db)

	e := &uiEnv{db: db}
	e.admin = testutil.NewUser(t, db, "admin@x.cl", "pw", false, groups[models.GroupAdministrador])
	e.driverA = testutil.NewUser(t, db, "a@x.cl", "pw", false, groups[models.GroupConductor])
	e.driverB = testutil.NewUser(t, db, "b@x.cl", "pw", false, groups[models.GroupConductor])
	e.guardian = testutil.NewUser(t, db, "g@x.cl", "pw", false, groups[models.GroupApoderado])
	profileA := testutil.NewDriver(t, db, "1-9", e.driverA)
	profileB := testutil.NewDriver(t, db, "2-7", e.driverB)
	e.v1 = testutil.NewVehicle(t, db, "AA-11", profileA)
	e.v2 = testutil.NewVehicle(t, db, "BB-22", profileB)
	e.s1 = testutil.NewStudent(t, db, "10-1", e.guardian, e.v1)
	e.s2 = testutil.NewStudent(t, db, "11-2", nil, e.v2)

	r := gin.New()
	r.LoadHTMLGlob("../../ui/views/*.tmpl")
	chk := rbac.Checker{DB: db}
	Register(r, db, testSecret, chk, rbac.NewPolicies(chk))
	e.r = r
	return e
}

// get performs a browser-style GET (Accept: text/html) with the user's token
// cookie.
func (e *uiEnv) get(t *testing.T, path string, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "text/html")
	if user != nil {
		req.AddCookie(&http.Cookie{Name: "token", Value: testutil.Token(t, testSecret, user)})
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *uiEnv) postForm(t *testing.T, path string, user *models.User, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if user != nil {
		req.AddCookie(&http.Cookie{Name: "token", Value: testutil.Token(t, testSecret, user)})
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func readFlash(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookie {
			msg, err := url.QueryUnescape(c.Value)
			require.NoError(t, err)
			return msg
		}
	}
	return ""
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	e := newUIEnv(t)
	for _, path := range []string{"/", "/vehicles", "/students", "/notifications"} {
		w := e.get(t, path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestVehicleListScopedToDriver(t *testing.T) {
	e := newUIEnv(t)

	w := e.get(t, "/vehicles", e.driverA)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "AA-11")
	assert.NotContains(t, body, "BB-22")

	w = e.get(t, "/vehicles", e.admin)
	body = w.Body.String()
	assert.Contains(t, body, "AA-11")
	assert.Contains(t, body, "BB-22")
}

func TestStudentListScopedToGuardian(t *testing.T) {
	e := newUIEnv(t)

	w := e.get(t, "/students", e.guardian)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Student 10-1")
	assert.NotContains(t, body, "Student 11-2")
}

func TestEmptyScopedListRendersNormally(t *testing.T) {
	e := newUIEnv(t)
	// a guardian with no students gets an empty page, never a 403
	g := testutil.Groups(t, e.db)
	lonely := testutil.NewUser(t, e.db, "lonely@x.cl", "pw", false, g[models.GroupApoderado])

	w := e.get(t, "/students", lonely)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Student ")
}

func TestEditPageForbiddenForStranger(t *testing.T) {
	e := newUIEnv(t)

	// direct URL access to an unowned student's edit page is an HTTP 403
	w := e.get(t, "/students/2/edit", e.guardian)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// own student renders the form
	w = e.get(t, "/students/1/edit", e.guardian)
	assert.Equal(t, http.StatusOK, w.Code)

	// driver editing any student: forbidden page
	w = e.get(t, "/students/1/edit", e.driverA)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVehicleEditPageAdminOnly(t *testing.T) {
	e := newUIEnv(t)

	// even the owning conductor cannot open the vehicle edit page
	w := e.get(t, "/vehicles/1/edit", e.driverA)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.get(t, "/vehicles/1/edit", e.admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePagesAdminOnly(t *testing.T) {
	e := newUIEnv(t)
	for _, path := range []string{"/schools/new", "/vehicles/new", "/students/new", "/routes/new"} {
		w := e.get(t, path, e.guardian)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		w = e.get(t, path, e.admin)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestLocationActionDenialRedirectsWithFlash(t *testing.T) {
	e := newUIEnv(t)

	// denial on a form action is a redirect with a message, not a 403 page
	w := e.postForm(t, "/vehicles/2/location", e.driverA,
		url.Values{"latitude": {"-38.7"}, "longitude": {"-72.5"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/vehicles", w.Header().Get("Location"))
	assert.Contains(t, readFlash(t, w), "No autorizado")

	var v models.Vehicle
	require.NoError(t, e.db.First(&v, e.v2.ID).Error)
	assert.Nil(t, v.LastLatitude)
}

func TestLocationActionSuccess(t *testing.T) {
	e := newUIEnv(t)

	w := e.postForm(t, "/vehicles/1/location", e.driverA,
		url.Values{"latitude": {"-38.7"}, "longitude": {"-72.5"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, readFlash(t, w), "Ubicación actualizada")

	var v models.Vehicle
	require.NoError(t, e.db.First(&v, e.v1.ID).Error)
	require.NotNil(t, v.LastLatitude)
	assert.Equal(t, -38.7, *v.LastLatitude)
	assert.NotNil(t, v.LastReportedAt)
}

func TestLocationActionValidation(t *testing.T) {
	e := newUIEnv(t)

	w := e.postForm(t, "/vehicles/1/location", e.driverA,
		url.Values{"longitude": {"-72.5"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, readFlash(t, w), "requeridos")

	w = e.postForm(t, "/vehicles/1/location", e.driverA,
		url.Values{"latitude": {"abc"}, "longitude": {"-72.5"}})
	assert.Contains(t, readFlash(t, w), "números")
}

func TestMarkReadActionFlash(t *testing.T) {
	e := newUIEnv(t)
	n := models.Notification{Message: "hola", StudentID: &e.s1.ID}
	require.NoError(t, e.db.Create(&n).Error)

	// stranger conductor: redirect + error flash, flag untouched
	w := e.postForm(t, "/notifications/1/read", e.driverB, url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/notifications", w.Header().Get("Location"))
	assert.Contains(t, readFlash(t, w), "No autorizado")

	var got models.Notification
	require.NoError(t, e.db.First(&got, n.ID).Error)
	assert.False(t, got.Read)

	// owner guardian: success flash, flag set
	w = e.postForm(t, "/notifications/1/read", e.guardian, url.Values{})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, readFlash(t, w), "leída")
	require.NoError(t, e.db.First(&got, n.ID).Error)
	assert.True(t, got.Read)
}

func TestAnonymousFormPostRedirectsToLogin(t *testing.T) {
	e := newUIEnv(t)

	// form submissions ask for HTML too; they get the login page, not JSON
	req := httptest.NewRequest(http.MethodPost, "/vehicles/1/location",
		strings.NewReader("latitude=1&longitude=2"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	var v models.Vehicle
	require.NoError(t, e.db.First(&v, e.v1.ID).Error)
	assert.Nil(t, v.LastLatitude)
}

func TestNotificationPaymentAttendanceDetails(t *testing.T) {
	e := newUIEnv(t)
	n := models.Notification{Message: "aviso importante", StudentID: &e.s1.ID}
	require.NoError(t, e.db.Create(&n).Error)
	now := time.Now()
	p := models.Payment{StudentID: e.s1.ID, Amount: 45000, Date: &now,
		Status: models.PaymentPaid, Reference: "REF-1"}
	require.NoError(t, e.db.Create(&p).Error)
	a := models.Attendance{StudentID: e.s1.ID, Date: now,
		Status: models.AttendancePresent, VehicleID: &e.v1.ID}
	require.NoError(t, e.db.Create(&a).Error)

	w := e.get(t, "/notifications/1", e.guardian)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "aviso importante")

	w = e.get(t, "/payments/1", e.guardian)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "45000.00")
	assert.Contains(t, body, "Student 10-1")

	w = e.get(t, "/attendance/1", e.guardian)
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, "presente")
	assert.Contains(t, body, "AA-11")

	w = e.get(t, "/payments/999", e.guardian)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVehicleDetailShowsOccupancy(t *testing.T) {
	e := newUIEnv(t)
	require.NoError(t, e.db.Model(&models.Vehicle{}).
		Where("id = ?", e.v1.ID).Update("current_capacity", 20).Error)

	w := e.get(t, "/vehicles/1", e.driverA)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "20/20 (100%)")
	assert.Contains(t, body, "<dt>Cupos disponibles</dt><dd>no</dd>")
}

func TestDetailPagesLoginOnly(t *testing.T) {
	e := newUIEnv(t)

	// reads are permissive: any logged-in user can open a detail page
	w := e.get(t, "/vehicles/2", e.driverA)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.get(t, "/vehicles/999", e.driverA)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardCounts(t *testing.T) {
	e := newUIEnv(t)
	n := models.Notification{Message: "aviso", VehicleID: &e.v1.ID}
	require.NoError(t, e.db.Create(&n).Error)

	w := e.get(t, "/", e.driverA)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Mis furgones: 1")
	assert.Contains(t, body, "Notificaciones sin leer</a>: 1")
}

func TestAdminEditFormSubmission(t *testing.T) {
	e := newUIEnv(t)

	w := e.postForm(t, "/vehicles/1/edit", e.admin, url.Values{
		"plate": {"AA-11"}, "model": {"Mercedes Sprinter"}, "max_capacity": {"18"},
		"driver_id": {"1"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	var v models.Vehicle
	require.NoError(t, e.db.First(&v, e.v1.ID).Error)
	assert.Equal(t, "Mercedes Sprinter", v.Model)
	assert.Equal(t, 18, v.MaxCapacity)
}
