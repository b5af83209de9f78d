package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanmarcoclinic/portal/internal/admin"
	"github.com/sanmarcoclinic/portal/internal/backend"
	"github.com/sanmarcoclinic/portal/internal/login"
	"github.com/sanmarcoclinic/portal/internal/observability/metrics"
	"github.com/sanmarcoclinic/portal/internal/patient"
	"github.com/sanmarcoclinic/portal/internal/session"
	"github.com/sanmarcoclinic/portal/pkg/logging"
)

type stubBackend struct{}

func (stubBackend) Login(ctx context.Context, role, email, password string) (*backend.LoginResponse, error) {
	return &backend.LoginResponse{AccessToken: "tok", UserType: role, UserID: 1, Nome: "Test", Cognome: "Utente"}, nil
}
func (stubBackend) ListDoctors(ctx context.Context, token string) ([]backend.Doctor, error) {
	return nil, nil
}
func (stubBackend) AvailableSlots(ctx context.Context, token, spec, start, end string) (*backend.SlotsResponse, error) {
	return &backend.SlotsResponse{}, nil
}
func (stubBackend) CreateAppointment(ctx context.Context, token string, req backend.BookingRequest) (*backend.Appointment, error) {
	return &backend.Appointment{}, nil
}
func (stubBackend) DetailedAppointments(ctx context.Context, token string, f backend.AppointmentFilter) ([]backend.AppointmentDetailed, error) {
	return nil, nil
}
func (stubBackend) CancelAppointment(ctx context.Context, token string, id int, motivo string) error {
	return nil
}
func (stubBackend) GetAppointment(ctx context.Context, token string, id int) (*backend.Appointment, error) {
	return &backend.Appointment{ID: id}, nil
}
func (stubBackend) SearchPatients(ctx context.Context, token, search string) ([]backend.Patient, error) {
	return nil, nil
}
func (stubBackend) PatientHistory(ctx context.Context, token string, id int) (*backend.PatientHistory, error) {
	return &backend.PatientHistory{}, nil
}
func (stubBackend) ListRooms(ctx context.Context, token string) ([]backend.Room, error) {
	return nil, nil
}
func (stubBackend) WaitingList(ctx context.Context, token string) ([]backend.WaitingEntry, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (http.Handler, *session.Manager) {
	t.Helper()
	logger := logging.NewWithWriter("error", testWriter{t})
	mgr := session.NewManager(session.NewMemoryStore(), "secret", time.Hour, "portal_session", false, logger)
	m := metrics.NewPortalMetrics(prometheus.NewRegistry())
	var be stubBackend
	r := New(Deps{
		Logger:   logger,
		Metrics:  m,
		Sessions: mgr,
		Login:    login.NewHandler(be, mgr, logger),
		Patient:  patient.NewHandler(be, logger),
		Admin:    admin.NewHandler(be, logger),
	})
	return r, mgr
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsEndpointExposed(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaticAssetsServed(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/static/style.css", "/static/portal.js"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotZero(t, rec.Body.Len(), path)
	}
}

func TestGuardedAreasRedirectAnonymous(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/patient", "/admin", "/"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestRootRedirectsByRole(t *testing.T) {
	r, mgr := newTestRouter(t)

	issue := func(role string) []*http.Cookie {
		rec := httptest.NewRecorder()
		s := &session.Session{Token: "tok", Role: role, UserID: 1, DisplayName: "Test Utente"}
		require.NoError(t, mgr.Issue(context.Background(), rec, s))
		return rec.Result().Cookies()
	}

	cases := map[string]string{
		session.RolePatient: "/patient",
		session.RoleDoctor:  "/admin",
	}
	for role, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range issue(role) {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, want, rec.Header().Get("Location"))
	}
}

func TestWrongRoleCannotCrossAreas(t *testing.T) {
	r, mgr := newTestRouter(t)

	rec := httptest.NewRecorder()
	s := &session.Session{Token: "tok", Role: session.RolePatient, UserID: 1}
	require.NoError(t, mgr.Issue(context.Background(), rec, s))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	out := httptest.NewRecorder()
	r.ServeHTTP(out, req)
	require.Equal(t, http.StatusSeeOther, out.Code)
	assert.Equal(t, "/login", out.Header().Get("Location"))
}
