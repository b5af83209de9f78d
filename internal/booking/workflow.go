// Package booking implements the slot search → selection → confirmation
// sequence as an explicit state machine held on the patient's view model.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sanmarcoclinic/portal/internal/backend"
)

// State names the workflow's position. Transitions only move forward except
// for the reset back to Idle after a successful booking.
type State int

const (
	StateIdle State = iota
	StateSpecializationsLoaded
	StateSlotsSearched
	StateSlotSelected
)

// searchWindowDays is the fixed trailing availability window starting today.
const searchWindowDays = 30

// maxRenderedSlots caps how many returned slots are kept; there is no
// further pagination.
const maxRenderedSlots = 50

var (
	// ErrNoAvailability reports an empty slot search; the workflow state is
	// left unchanged so the user can search again.
	ErrNoAvailability = errors.New("booking: no availability for this specialization")
	// ErrMissingSpecialization rejects a search without a chosen specialization.
	ErrMissingSpecialization = errors.New("booking: specialization required")
	// ErrNoSelection rejects a confirmation without a selected slot. No
	// network request is made.
	ErrNoSelection = errors.New("booking: no slot selected")
	// ErrInvalidSlot rejects a selection outside the rendered slot list.
	ErrInvalidSlot = errors.New("booking: slot index out of range")
)

// Service is the slice of the backend client the workflow drives.
type Service interface {
	ListDoctors(ctx context.Context, token string) ([]backend.Doctor, error)
	AvailableSlots(ctx context.Context, token, specializzazione, startDate, endDate string) (*backend.SlotsResponse, error)
	CreateAppointment(ctx context.Context, token string, req backend.BookingRequest) (*backend.Appointment, error)
}

// Workflow is the per-session booking state machine. It is confined to a
// single logical flow; the owning view model serializes access.
type Workflow struct {
	svc Service
	now func() time.Time

	state           State
	specializations []string
	slots           []backend.Slot
	selected        int // index into slots, -1 when none
}

// NewWorkflow creates an idle workflow around a backend service.
func NewWorkflow(svc Service) *Workflow {
	return &Workflow{svc: svc, now: time.Now, selected: -1}
}

// WithClock overrides the workflow's clock. Tests pin the search window
// with it.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// State returns the current machine position.
func (w *Workflow) State() State { return w.state }

// Specializations returns the loaded selector entries.
func (w *Workflow) Specializations() []string { return w.specializations }

// Slots returns the rendered slot list of the last search.
func (w *Workflow) Slots() []backend.Slot { return w.slots }

// Selected returns the single selected slot, nil when none.
func (w *Workflow) Selected() *backend.Slot {
	if w.selected < 0 || w.selected >= len(w.slots) {
		return nil
	}
	return &w.slots[w.selected]
}

// SelectedIndex returns the selected slot's index, -1 when none.
func (w *Workflow) SelectedIndex() int {
	if w.Selected() == nil {
		return -1
	}
	return w.selected
}

// LoadSpecializations derives the distinct specializations from the doctor
// roster, deduplicated in first-occurrence order, and populates the selector.
func (w *Workflow) LoadSpecializations(ctx context.Context, token string) ([]string, error) {
	doctors, err := w.svc.ListDoctors(ctx, token)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(doctors))
	specs := make([]string, 0, len(doctors))
	for _, d := range doctors {
		if d.Specializzazione == "" || seen[d.Specializzazione] {
			continue
		}
		seen[d.Specializzazione] = true
		specs = append(specs, d.Specializzazione)
	}
	w.specializations = specs
	if w.state == StateIdle {
		w.state = StateSpecializationsLoaded
	}
	return specs, nil
}

// SearchSlots queries availability for the specialization over the fixed
// 30-day window starting today, inclusive. An empty result leaves the state
// unchanged; otherwise at most the first 50 slots are kept, in received
// order, and any prior selection is cleared.
func (w *Workflow) SearchSlots(ctx context.Context, token, specializzazione string) (int, error) {
	if specializzazione == "" {
		return 0, ErrMissingSpecialization
	}
	start := w.now()
	end := start.AddDate(0, 0, searchWindowDays)
	resp, err := w.svc.AvailableSlots(ctx, token, specializzazione,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	if len(resp.AvailableSlots) == 0 {
		return 0, ErrNoAvailability
	}
	slots := resp.AvailableSlots
	if len(slots) > maxRenderedSlots {
		slots = slots[:maxRenderedSlots]
	}
	w.slots = slots
	w.selected = -1
	w.state = StateSlotsSearched
	return resp.Total, nil
}

// SelectSlot overwrites the single selection. At most one slot is selected
// at any time.
func (w *Workflow) SelectSlot(index int) error {
	if w.state != StateSlotsSearched && w.state != StateSlotSelected {
		return ErrInvalidSlot
	}
	if index < 0 || index >= len(w.slots) {
		return ErrInvalidSlot
	}
	w.selected = index
	w.state = StateSlotSelected
	return nil
}

// Confirm assembles the booking request from the selection and form fields
// and submits it. Success resets the workflow to Idle with the slot list and
// selection cleared; failure keeps the selection so the user can retry
// without re-searching.
func (w *Workflow) Confirm(ctx context.Context, token string, patientID int, tipoVisita string, durataMinuti int, note string) (*backend.Appointment, error) {
	slot := w.Selected()
	if slot == nil {
		return nil, ErrNoSelection
	}
	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	req := backend.BookingRequest{
		DoctorID:         slot.DoctorID,
		PatientID:        patientID,
		DataAppuntamento: slot.Data,
		OraInizio:        slot.Ora,
		DurataMinuti:     durataMinuti,
		TipoVisita:       tipoVisita,
		Note:             notePtr,
	}
	apt, err := w.svc.CreateAppointment(ctx, token, req)
	if err != nil {
		return nil, err
	}
	w.slots = nil
	w.selected = -1
	w.state = StateIdle
	return apt, nil
}
