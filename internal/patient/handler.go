// Package patient is the patient-facing page controller: booking workflow,
// own appointments with cancellation, and visit history.
package patient

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sanmarcoclinic/portal/internal/backend"
	"github.com/sanmarcoclinic/portal/internal/booking"
	"github.com/sanmarcoclinic/portal/internal/session"
	"github.com/sanmarcoclinic/portal/internal/view"
	"github.com/sanmarcoclinic/portal/pkg/logging"
)

// Backend is the slice of the backend client this controller uses.
type Backend interface {
	booking.Service
	DetailedAppointments(ctx context.Context, token string, filter backend.AppointmentFilter) ([]backend.AppointmentDetailed, error)
	CancelAppointment(ctx context.Context, token string, id int, motivo string) error
	PatientHistory(ctx context.Context, token string, patientID int) (*backend.PatientHistory, error)
}

// viewModel carries one session's UI state. All fields are explicit here
// instead of ambient globals; the mutex confines them to one request at a
// time.
type viewModel struct {
	mu            sync.Mutex
	flow          *booking.Workflow
	pendingCancel int // appointment id awaiting confirmation, 0 = none
	activeTab     string
}

// Handler wires the patient page routes. One view model per session id.
type Handler struct {
	svc    Backend
	logger *logging.Logger
	now    func() time.Time

	mu  sync.Mutex
	vms map[string]*viewModel
}

// NewHandler creates a patient controller.
func NewHandler(svc Backend, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		svc:    svc,
		logger: logger.Component("patient"),
		now:    time.Now,
		vms:    make(map[string]*viewModel),
	}
}

// WithClock overrides the controller's clock for tests.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Routes mounts the patient endpoints on a router already guarded for the
// patient role.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.page)
	r.Post("/slots/search", h.searchSlots)
	r.Post("/slots/select", h.selectSlot)
	r.Post("/book", h.book)
	r.Get("/appointments", h.appointments)
	r.Get("/history", h.history)
	r.Post("/cancel/{id}", h.openCancel)
	r.Post("/cancel/confirm", h.confirmCancel)
	r.Post("/cancel/dismiss", h.dismissCancel)
	r.Post("/tab/{name}", h.switchTab)
}

func (h *Handler) vm(sessionID string) *viewModel {
	h.mu.Lock()
	defer h.mu.Unlock()
	vm, ok := h.vms[sessionID]
	if !ok {
		vm = &viewModel{flow: booking.NewWorkflow(h.svc).WithClock(h.now), activeTab: "prenota"}
		h.vms[sessionID] = vm
	}
	return vm
}

func (h *Handler) today() string {
	return h.now().Format("2006-01-02")
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
	vm := h.vm(s.ID)
	vm.mu.Lock()
	defer vm.mu.Unlock()

	data := view.PatientPageData{
		DisplayName: s.DisplayName,
		Subtitle:    "Benvenuto, " + s.DisplayName,
		ActiveTab:   vm.activeTab,
	}

	specs, err := vm.flow.LoadSpecializations(r.Context(), s.Token)
	if err != nil {
		h.logger.Warn("specializations load failed", "error", err)
		data.Flash = safeHTML(view.Alert("error", "Errore nel caricamento delle specializzazioni"))
	}
	data.Specializations = specs
	data.Appointments = safeHTML(h.renderAppointments(r.Context(), s))

	writeFragment(w, view.PatientPage(data))
}

func (h *Handler) renderAppointments(ctx context.Context, s *session.Session) string {
	rows, err := h.svc.DetailedAppointments(ctx, s.Token, backend.AppointmentFilter{PatientID: s.UserID})
	if err != nil {
		h.logger.Warn("appointments load failed", "patient_id", s.UserID, "error", err)
		return view.Alert("error", "Errore nel caricamento degli appuntamenti")
	}
	// Date and status narrowing is a view concern; the backend is queried
	// by patient id only.
	return view.PatientAppointments(view.UpcomingScheduled(rows, h.today()))
}

func (h *Handler) appointments(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	writeFragment(w, h.renderAppointments(r.Context(), s))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	hist, err := h.svc.PatientHistory(r.Context(), s.Token, s.UserID)
	if err != nil {
		h.logger.Warn("history load failed", "patient_id", s.UserID, "error", err)
		writeFragment(w, view.Alert("error", "Errore nel caricamento dello storico"))
		return
	}
	writeFragment(w, view.History(hist))
}

func (h *Handler) searchSlots(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	vm := h.vm(s.ID)
	vm.mu.Lock()
	defer vm.mu.Unlock()

	total, err := vm.flow.SearchSlots(r.Context(), s.Token, r.FormValue("specializzazione"))
	switch {
	case errors.Is(err, booking.ErrMissingSpecialization):
		writeFragment(w, view.Alert("warning", "Seleziona una specializzazione"))
	case errors.Is(err, booking.ErrNoAvailability):
		writeFragment(w, view.Alert("warning", "Nessuna disponibilità trovata per questa specializzazione"))
	case err != nil:
		writeFragment(w, view.Alert("error", "Errore nella ricerca delle disponibilità"))
	default:
		html := view.Alert("success", "Trovati "+strconv.Itoa(total)+" slot disponibili")
		html += view.SlotList(vm.flow.Slots(), vm.flow.SelectedIndex())
		writeFragment(w, html)
	}
}

func (h *Handler) selectSlot(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	vm := h.vm(s.ID)
	vm.mu.Lock()
	defer vm.mu.Unlock()

	index, err := strconv.Atoi(r.FormValue("slot"))
	if err == nil {
		err = vm.flow.SelectSlot(index)
	}
	if err != nil {
		writeFragment(w, view.Alert("warning", "Seleziona un orario disponibile"))
		return
	}
	writeFragment(w, view.SlotList(vm.flow.Slots(), vm.flow.SelectedIndex()))
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	vm := h.vm(s.ID)
	vm.mu.Lock()
	defer vm.mu.Unlock()

	durata, err := strconv.Atoi(r.FormValue("durata"))
	if err != nil || durata <= 0 {
		durata = 30
	}

	_, err = vm.flow.Confirm(r.Context(), s.Token, s.UserID,
		r.FormValue("tipo_visita"), durata, r.FormValue("note"))
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, booking.ErrNoSelection):
		writeFragment(w, view.Alert("warning", "Seleziona un orario disponibile"))
	case errors.As(err, &apiErr):
		detail := apiErr.Detail
		if detail == "" {
			detail = "Errore nella prenotazione"
		}
		writeFragment(w, view.Alert("error", detail))
	case err != nil:
		writeFragment(w, view.Alert("error", "Errore nella prenotazione dell'appuntamento"))
	default:
		writeFragment(w, view.BookingSuccess("Appuntamento prenotato con successo!"))
	}
}

func (h *Handler) openCancel(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	vm := h.vm(s.ID)
	vm.mu.Lock()
	vm.pendingCancel = id
	vm.mu.Unlock()
	writeFragment(w, view.CancelModal(id))
}

func (h *Handler) confirmCancel(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	vm := h.vm(s.ID)
	vm.mu.Lock()
	id := vm.pendingCancel
	vm.pendingCancel = 0
	vm.mu.Unlock()

	if id == 0 {
		writeFragment(w, h.renderAppointments(r.Context(), s))
		return
	}

	err := h.svc.CancelAppointment(r.Context(), s.Token, id, r.FormValue("motivo"))
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr):
		detail := apiErr.Detail
		if detail == "" {
			detail = "Errore nella cancellazione"
		}
		// The appointment stays in the refreshed list: no optimistic removal.
		writeFragment(w, view.Alert("error", detail)+h.renderAppointments(r.Context(), s))
	case err != nil:
		writeFragment(w, view.Alert("error", "Errore nella cancellazione dell'appuntamento")+h.renderAppointments(r.Context(), s))
	default:
		writeFragment(w, view.Alert("success", "Appuntamento cancellato con successo")+h.renderAppointments(r.Context(), s))
	}
}

func (h *Handler) dismissCancel(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	vm := h.vm(s.ID)
	vm.mu.Lock()
	vm.pendingCancel = 0
	vm.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

var patientTabs = map[string]bool{"prenota": true, "appuntamenti": true, "storico": true}

func (h *Handler) switchTab(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	name := chi.URLParam(r, "name")
	if !patientTabs[name] {
		http.Error(w, "unknown tab", http.StatusBadRequest)
		return
	}
	vm := h.vm(s.ID)
	vm.mu.Lock()
	vm.activeTab = name
	vm.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
