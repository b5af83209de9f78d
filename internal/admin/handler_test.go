package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanmarcoclinic/portal/internal/backend"
	"github.com/sanmarcoclinic/portal/internal/session"
	"github.com/sanmarcoclinic/portal/pkg/logging"
)

type fakeBackend struct {
	doctors     []backend.Doctor
	detailed    []backend.AppointmentDetailed
	appointment *backend.Appointment
	patients    []backend.Patient
	history     *backend.PatientHistory
	rooms       []backend.Room
	waiting     []backend.WaitingEntry

	detailedErr    error
	appointmentErr error
	historyErr     error

	filters       []backend.AppointmentFilter
	searches      []string
	historyCalls  []int
	detailRequest int
}

func (f *fakeBackend) ListDoctors(ctx context.Context, token string) ([]backend.Doctor, error) {
	return f.doctors, nil
}

func (f *fakeBackend) DetailedAppointments(ctx context.Context, token string, filter backend.AppointmentFilter) ([]backend.AppointmentDetailed, error) {
	f.filters = append(f.filters, filter)
	if f.detailedErr != nil {
		return nil, f.detailedErr
	}
	return f.detailed, nil
}

func (f *fakeBackend) GetAppointment(ctx context.Context, token string, id int) (*backend.Appointment, error) {
	f.detailRequest = id
	if f.appointmentErr != nil {
		return nil, f.appointmentErr
	}
	return f.appointment, nil
}

func (f *fakeBackend) SearchPatients(ctx context.Context, token, search string) ([]backend.Patient, error) {
	f.searches = append(f.searches, search)
	return f.patients, nil
}

func (f *fakeBackend) PatientHistory(ctx context.Context, token string, patientID int) (*backend.PatientHistory, error) {
	f.historyCalls = append(f.historyCalls, patientID)
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeBackend) ListRooms(ctx context.Context, token string) ([]backend.Room, error) {
	return f.rooms, nil
}

func (f *fakeBackend) WaitingList(ctx context.Context, token string) ([]backend.WaitingEntry, error) {
	return f.waiting, nil
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func newTestHandler(t *testing.T, fb *fakeBackend) (*Handler, http.Handler) {
	t.Helper()
	h := NewHandler(fb, logging.NewWithWriter("error", testWriter{t})).
		WithClock(func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			s := &session.Session{ID: "sid-doc", Token: "tok", Role: session.RoleDoctor, UserID: 3, DisplayName: "Anna Bianchi"}
			next.ServeHTTP(w, req.WithContext(session.WithSession(req.Context(), s)))
		})
	})
	h.Routes(r)
	return h, r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPageLoadsOwnAgendaForToday(t *testing.T) {
	fb := &fakeBackend{
		doctors: []backend.Doctor{{ID: 3, Nome: "Anna", Cognome: "Bianchi", Specializzazione: "Cardiologia"}},
		detailed: []backend.AppointmentDetailed{
			{ID: 1, DataAppuntamento: "2026-09-01", OraInizio: "09:00", Stato: "programmato", NomePaziente: "Mario Rossi"},
		},
	}
	_, r := newTestHandler(t, fb)

	rec := get(t, r, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Anna Bianchi")
	assert.Contains(t, body, "Mario Rossi")

	require.Len(t, fb.filters, 1)
	assert.Equal(t, 3, fb.filters[0].DoctorID)
	assert.Equal(t, "2026-09-01", fb.filters[0].Data)
}

func TestAgendaRequiresDoctorAndDate(t *testing.T) {
	fb := &fakeBackend{}
	_, r := newTestHandler(t, fb)

	for _, path := range []string{"/agenda", "/agenda?doctor_id=3", "/agenda?data=2026-09-02"} {
		rec := get(t, r, path)
		assert.Contains(t, rec.Body.String(), "Seleziona un medico e una data", path)
	}
	assert.Empty(t, fb.filters)
}

func TestAgendaForwardsFilter(t *testing.T) {
	fb := &fakeBackend{detailed: []backend.AppointmentDetailed{
		{ID: 5, DataAppuntamento: "2026-09-02", OraInizio: "11:30", Stato: "programmato", NomePaziente: "Carla Neri"},
	}}
	_, r := newTestHandler(t, fb)

	rec := get(t, r, "/agenda?doctor_id=7&data=2026-09-02")
	assert.Contains(t, rec.Body.String(), "Carla Neri")
	require.Len(t, fb.filters, 1)
	assert.Equal(t, backend.AppointmentFilter{DoctorID: 7, Data: "2026-09-02"}, fb.filters[0])
}

func TestAppointmentsOptionalFilters(t *testing.T) {
	fb := &fakeBackend{}
	_, r := newTestHandler(t, fb)

	get(t, r, "/appointments?data_from=2026-09-01&data_to=2026-09-30&stato=programmato")
	require.Len(t, fb.filters, 1)
	assert.Equal(t, backend.AppointmentFilter{DataFrom: "2026-09-01", DataTo: "2026-09-30", Stato: "programmato"}, fb.filters[0])

	// No filters at all is a valid full listing.
	get(t, r, "/appointments")
	require.Len(t, fb.filters, 2)
	assert.Equal(t, backend.AppointmentFilter{}, fb.filters[1])
}

func TestPatientsSearchPassthrough(t *testing.T) {
	fb := &fakeBackend{patients: []backend.Patient{
		{ID: 9, Nome: "Mario", Cognome: "Rossi", CodiceFiscale: "RSSMRA80A01H501U"},
	}}
	_, r := newTestHandler(t, fb)

	body := get(t, r, "/patients?search=ross").Body.String()
	assert.Contains(t, body, "Rossi")
	assert.Equal(t, []string{"ross"}, fb.searches)
}

func TestPatientHistoryModal(t *testing.T) {
	fb := &fakeBackend{history: &backend.PatientHistory{
		Patient:     backend.HistoryPatient{Nome: "Mario Rossi", CodiceFiscale: "RSSMRA80A01H501U"},
		History:     []backend.HistoryVisit{{Data: "2026-04-10", Medico: "Anna Bianchi", TipoVisita: "controllo", Stato: "completato"}},
		TotalVisits: 1,
	}}
	_, r := newTestHandler(t, fb)

	body := get(t, r, "/patients/9/history").Body.String()
	assert.Contains(t, body, "Mario Rossi")
	assert.Contains(t, body, "data-modal-dismiss")
	assert.Equal(t, []int{9}, fb.historyCalls)
}

func TestPatientHistoryBadID(t *testing.T) {
	fb := &fakeBackend{}
	_, r := newTestHandler(t, fb)

	rec := get(t, r, "/patients/abc/history")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fb.historyCalls)
}

func TestAppointmentDetailModal(t *testing.T) {
	note := "portare referti"
	fb := &fakeBackend{appointment: &backend.Appointment{
		ID: 21, DataAppuntamento: "2026-09-05", OraInizio: "10:00",
		DurataMinuti: 30, TipoVisita: "visita_specialistica", Stato: "programmato", Note: &note,
	}}
	_, r := newTestHandler(t, fb)

	body := get(t, r, "/appointments/21/detail?paziente=Mario+Rossi").Body.String()
	assert.Contains(t, body, "Mario Rossi")
	assert.Contains(t, body, "portare referti")
	assert.Equal(t, 21, fb.detailRequest)
}

func TestAppointmentDetailDegradesOnFailure(t *testing.T) {
	fb := &fakeBackend{appointmentErr: &backend.APIError{StatusCode: 500}}
	_, r := newTestHandler(t, fb)

	rec := get(t, r, "/appointments/21/detail?paziente=Mario+Rossi")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Mario Rossi")
	assert.Contains(t, body, "21")
	assert.Contains(t, body, "data-modal-dismiss")
}

func TestRoomsAndWaitingListPreserveBackendOrder(t *testing.T) {
	eq := `["ECG", "Defibrillatore"]`
	fb := &fakeBackend{
		rooms: []backend.Room{
			{ID: 1, Numero: "101", Nome: "Cardiologia A", Attrezzature: &eq, Capienza: 2, Attiva: true},
			{ID: 2, Numero: "102", Nome: "Cardiologia B", Capienza: 1, Attiva: false},
		},
		waiting: []backend.WaitingEntry{
			{ID: 1, Paziente: "Primo Urgente", Priorita: "urgente", DataRichiesta: "2026-08-30"},
			{ID: 2, Paziente: "Secondo Media", Priorita: "media", DataRichiesta: "2026-08-28"},
		},
	}
	_, r := newTestHandler(t, fb)

	rooms := get(t, r, "/rooms").Body.String()
	assert.Less(t, strings.Index(rooms, "101"), strings.Index(rooms, "102"))
	assert.Contains(t, rooms, "Defibrillatore")

	waiting := get(t, r, "/waiting-list").Body.String()
	assert.Less(t, strings.Index(waiting, "Primo Urgente"), strings.Index(waiting, "Secondo Media"))
}

func TestTabSwitch(t *testing.T) {
	fb := &fakeBackend{}
	h, r := newTestHandler(t, fb)

	req := httptest.NewRequest(http.MethodPost, "/tab/sale", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sale", h.activeTab("sid-doc"))

	req = httptest.NewRequest(http.MethodPost, "/tab/nonesiste", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "sale", h.activeTab("sid-doc"))
}
