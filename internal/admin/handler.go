// Package admin is the doctor/admin page controller: agenda, appointment
// filters, patient lookup with history, rooms and the waiting list.
package admin

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sanmarcoclinic/portal/internal/backend"
	"github.com/sanmarcoclinic/portal/internal/session"
	"github.com/sanmarcoclinic/portal/internal/view"
	"github.com/sanmarcoclinic/portal/pkg/logging"
)

// Backend is the slice of the backend client this controller uses.
type Backend interface {
	ListDoctors(ctx context.Context, token string) ([]backend.Doctor, error)
	DetailedAppointments(ctx context.Context, token string, filter backend.AppointmentFilter) ([]backend.AppointmentDetailed, error)
	GetAppointment(ctx context.Context, token string, id int) (*backend.Appointment, error)
	SearchPatients(ctx context.Context, token, search string) ([]backend.Patient, error)
	PatientHistory(ctx context.Context, token string, patientID int) (*backend.PatientHistory, error)
	ListRooms(ctx context.Context, token string) ([]backend.Room, error)
	WaitingList(ctx context.Context, token string) ([]backend.WaitingEntry, error)
}

// Handler wires the admin page routes.
type Handler struct {
	svc    Backend
	logger *logging.Logger
	now    func() time.Time

	mu   sync.Mutex
	tabs map[string]string // session id -> active tab
}

// NewHandler creates an admin controller.
func NewHandler(svc Backend, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:    svc,
		logger: logger.Component("admin"),
		now:    time.Now,
		tabs:   make(map[string]string),
	}
}

// WithClock overrides the controller's clock for tests.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Routes mounts the admin endpoints on a router already guarded for the
// doctor role.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.page)
	r.Get("/agenda", h.agenda)
	r.Get("/appointments", h.appointments)
	r.Get("/patients", h.patients)
	r.Get("/patients/{id}/history", h.patientHistory)
	r.Get("/appointments/{id}/detail", h.appointmentDetail)
	r.Get("/rooms", h.rooms)
	r.Get("/waiting-list", h.waitingList)
	r.Post("/tab/{name}", h.switchTab)
}

func (h *Handler) activeTab(sessionID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if tab, ok := h.tabs[sessionID]; ok {
		return tab
	}
	return "agenda"
}

// safeHTML marks already-rendered fragment output for inclusion in a page
// template. Fragments escape their own inputs.
func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

func writeFragment(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	today := h.now().Format("2006-01-02")

	data := view.AdminPageData{
		DisplayName:     s.DisplayName,
		Subtitle:        "Dr. " + s.DisplayName,
		ActiveTab:       h.activeTab(s.ID),
		CurrentDoctorID: s.UserID,
		Today:           today,
	}

	doctors, err := h.svc.ListDoctors(r.Context(), s.Token)
	if err != nil {
		h.logger.Warn("doctors load failed", "error", err)
	}
	data.Doctors = doctors

	// The logged-in doctor's own agenda for today is loaded up front.
	data.Agenda = safeHTML(h.renderAgenda(r.Context(), s, s.UserID, today))

	writeFragment(w, view.AdminPage(data))
}

func (h *Handler) renderAgenda(ctx context.Context, s *session.Session, doctorID int, data string) string {
	rows, err := h.svc.DetailedAppointments(ctx, s.Token, backend.AppointmentFilter{DoctorID: doctorID, Data: data})
	if err != nil {
		h.logger.Warn("agenda load failed", "doctor_id", doctorID, "data", data, "error", err)
		return view.Alert("error", "Errore nel caricamento dell'agenda")
	}
	return view.Agenda(rows)
}

func (h *Handler) agenda(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	doctorID, _ := strconv.Atoi(r.URL.Query().Get("doctor_id"))
	data := r.URL.Query().Get("data")
	if doctorID <= 0 || data == "" {
		writeFragment(w, view.Alert("warning", "Seleziona un medico e una data"))
		return
	}
	writeFragment(w, h.renderAgenda(r.Context(), s, doctorID, data))
}

func (h *Handler) appointments(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	q := r.URL.Query()
	filter := backend.AppointmentFilter{
		DataFrom: q.Get("data_from"),
		DataTo:   q.Get("data_to"),
		Stato:    q.Get("stato"),
	}
	rows, err := h.svc.DetailedAppointments(r.Context(), s.Token, filter)
	if err != nil {
		h.logger.Warn("appointments load failed", "error", err)
		writeFragment(w, view.Alert("error", "Errore nel caricamento degli appuntamenti"))
		return
	}
	writeFragment(w, view.Appointments(rows))
}

func (h *Handler) patients(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	rows, err := h.svc.SearchPatients(r.Context(), s.Token, r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Warn("patients load failed", "error", err)
		writeFragment(w, view.Alert("error", "Errore nel caricamento dei pazienti"))
		return
	}
	writeFragment(w, view.Patients(rows))
}

func (h *Handler) patientHistory(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}
	hist, err := h.svc.PatientHistory(r.Context(), s.Token, id)
	if err != nil {
		h.logger.Warn("patient history load failed", "patient_id", id, "error", err)
		writeFragment(w, view.DetailModal(view.Alert("error", "Errore nel caricamento dello storico del paziente")))
		return
	}
	writeFragment(w, view.DetailModal(view.PatientHistoryModal(hist)))
}

func (h *Handler) appointmentDetail(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	nomePaziente := r.URL.Query().Get("paziente")
	apt, err := h.svc.GetAppointment(r.Context(), s.Token, id)
	if err != nil {
		// The row already carries the patient name, so the modal degrades to
		// that instead of failing.
		h.logger.Warn("appointment detail load failed", "appointment_id", id, "error", err)
		writeFragment(w, view.DetailModal(view.AppointmentDetailFallback(nomePaziente, id)))
		return
	}
	writeFragment(w, view.DetailModal(view.AppointmentDetail(apt, nomePaziente)))
}

func (h *Handler) rooms(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	rooms, err := h.svc.ListRooms(r.Context(), s.Token)
	if err != nil {
		h.logger.Warn("rooms load failed", "error", err)
		writeFragment(w, view.Alert("error", "Errore nel caricamento delle sale"))
		return
	}
	writeFragment(w, view.Rooms(rooms))
}

func (h *Handler) waitingList(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	entries, err := h.svc.WaitingList(r.Context(), s.Token)
	if err != nil {
		h.logger.Warn("waiting list load failed", "error", err)
		writeFragment(w, view.Alert("error", "Errore nel caricamento della lista d'attesa"))
		return
	}
	writeFragment(w, view.WaitingList(entries))
}

var adminTabs = map[string]bool{"agenda": true, "appuntamenti": true, "pazienti": true, "sale": true, "attesa": true}

func (h *Handler) switchTab(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	name := chi.URLParam(r, "name")
	if !adminTabs[name] {
		http.Error(w, "unknown tab", http.StatusBadRequest)
		return
	}
	h.mu.Lock()
	h.tabs[s.ID] = name
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
