package view

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanmarcoclinic/portal/internal/backend"
)

func strPtr(s string) *string { return &s }

func TestSlotListMarksSingleSelection(t *testing.T) {
	slots := []backend.Slot{
		{Data: "2026-09-02", Ora: "09:00:00", NomeMedico: "Anna Russo"},
		{Data: "2026-09-02", Ora: "09:30:00", NomeMedico: "Anna Russo"},
		{Data: "2026-09-03", Ora: "10:00:00", NomeMedico: "Luca Greco"},
	}

	out := SlotList(slots, 1)
	assert.Equal(t, 1, strings.Count(out, "slot selected"))

	out = SlotList(slots, -1)
	assert.Zero(t, strings.Count(out, "slot selected"))
}

func TestSlotListPreservesOrder(t *testing.T) {
	slots := []backend.Slot{
		{Ora: "11:00:00", Data: "2026-09-05", NomeMedico: "A"},
		{Ora: "08:00:00", Data: "2026-09-02", NomeMedico: "B"},
	}
	out := SlotList(slots, -1)
	assert.Less(t, strings.Index(out, "11:00"), strings.Index(out, "08:00"))
}

func TestUpcomingScheduledFilter(t *testing.T) {
	rows := []backend.AppointmentDetailed{
		{ID: 1, DataAppuntamento: "2026-08-20", Stato: "programmato"}, // past
		{ID: 2, DataAppuntamento: "2026-09-10", Stato: "programmato"},
		{ID: 3, DataAppuntamento: "2026-09-10", Stato: "cancellato"},
		{ID: 4, DataAppuntamento: "2026-09-01", Stato: "programmato"}, // today counts
		{ID: 5, DataAppuntamento: "2026-12-01", Stato: "completato"},
	}

	got := UpcomingScheduled(rows, "2026-09-01")
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 4, got[1].ID)
}

func TestPatientAppointmentsEmpty(t *testing.T) {
	out := PatientAppointments(nil)
	assert.Contains(t, out, "Nessun appuntamento programmato")
}

func TestPatientAppointmentsTable(t *testing.T) {
	out := PatientAppointments([]backend.AppointmentDetailed{{
		ID:               12,
		DataAppuntamento: "2026-09-10",
		OraInizio:        "09:30:00",
		TipoVisita:       "controllo",
		Stato:            "programmato",
		NomeMedico:       "Anna Russo",
		Specializzazione: "Cardiologia",
	}})
	assert.Contains(t, out, "giovedì 10 settembre 2026")
	assert.Contains(t, out, "09:30")
	assert.Contains(t, out, `data-cancel-id="12"`)
	assert.Contains(t, out, "badge-info")
}

func TestAgendaRequiresRows(t *testing.T) {
	assert.Contains(t, Agenda(nil), "Nessun appuntamento per questa data")
}

func TestAgendaRoomFallback(t *testing.T) {
	out := Agenda([]backend.AppointmentDetailed{{
		ID: 3, OraInizio: "10:00:00", NomePaziente: "Mario Bianchi",
		TipoVisita: "visita specialistica", DurataMinuti: 45, Stato: "programmato",
		TelefonoPaziente: "333 1234567",
	}})
	assert.Contains(t, out, "Non assegnata")
	assert.Contains(t, out, "Totale appuntamenti: 1")
	assert.Contains(t, out, `data-detail-id="3"`)
}

func TestRoomEquipmentDecoding(t *testing.T) {
	enc := `["ECG","Defibrillatore","Ecografo"]`
	room := backend.Room{Attrezzature: &enc}
	assert.Equal(t, []string{"ECG", "Defibrillatore", "Ecografo"}, RoomEquipment(room))

	assert.Nil(t, RoomEquipment(backend.Room{}))

	bad := `not-json`
	assert.Nil(t, RoomEquipment(backend.Room{Attrezzature: &bad}))
}

func TestRoomsRenderEquipmentInOrder(t *testing.T) {
	enc := `["ECG","Ecografo"]`
	out := Rooms([]backend.Room{{Numero: "101", Nome: "Ambulatorio 1", Capienza: 2, Attiva: true, Attrezzature: &enc}})
	assert.Contains(t, out, "<li>ECG</li>")
	assert.Contains(t, out, "<li>Ecografo</li>")
	assert.Less(t, strings.Index(out, "<li>ECG</li>"), strings.Index(out, "<li>Ecografo</li>"))
	assert.Contains(t, out, "badge-success")
}

func TestRoomsWithoutEquipmentRenderEmptyList(t *testing.T) {
	out := Rooms([]backend.Room{{Numero: "102", Nome: "Ambulatorio 2", Capienza: 1, Attiva: false}})
	assert.NotContains(t, out, "<li>")
	assert.Contains(t, out, "Non attiva")
}

func TestWaitingListKeepsBackendOrder(t *testing.T) {
	entries := []backend.WaitingEntry{
		{Paziente: "Zeta Verdi", Priorita: "bassa", TipoVisita: "controllo", DataRichiesta: "2026-08-01T09:00:00"},
		{Paziente: "Anna Rossi", Priorita: "urgente", TipoVisita: "visita", DataRichiesta: "2026-08-15T09:00:00"},
	}
	out := WaitingList(entries)
	assert.Less(t, strings.Index(out, "Zeta Verdi"), strings.Index(out, "Anna Rossi"))
	assert.Contains(t, out, "Urgente")
	assert.Contains(t, out, "Non specificato")
}

func TestAppointmentDetailFallback(t *testing.T) {
	out := AppointmentDetailFallback("Mario Bianchi", 77)
	assert.Contains(t, out, "Mario Bianchi")
	assert.Contains(t, out, "77")
	assert.Contains(t, out, "Dettagli completi non disponibili")
}

func TestAppointmentDetail(t *testing.T) {
	note := "paziente allergico"
	out := AppointmentDetail(&backend.Appointment{
		ID: 77, DataAppuntamento: "2026-09-10", OraInizio: "09:00:00",
		DurataMinuti: 30, TipoVisita: "controllo", Stato: "programmato", Note: &note,
	}, "Mario Bianchi")
	assert.Contains(t, out, "Dettagli Appuntamento #77")
	assert.Contains(t, out, "paziente allergico")
	assert.Contains(t, out, "Mario Bianchi")
}

func TestCancelModal(t *testing.T) {
	out := CancelModal(55)
	assert.Contains(t, out, "Cancella Appuntamento #55")
	assert.Contains(t, out, `name="motivo"`)
}

func TestAlertEscapes(t *testing.T) {
	out := Alert("error", `<b>boom</b>`)
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "alert-error")
}

func TestPatientPageListsSpecializationsInOrder(t *testing.T) {
	out := PatientPage(PatientPageData{
		DisplayName:     "Mario Bianchi",
		Specializations: []string{"Cardiologia", "Dermatologia"},
	})
	assert.Contains(t, out, `<option value="Cardiologia">`)
	assert.Less(t, strings.Index(out, "Cardiologia"), strings.Index(out, "Dermatologia"))
	assert.Contains(t, out, "tab-prenota")
}

func TestAdminPagePreselectsCurrentDoctor(t *testing.T) {
	out := AdminPage(AdminPageData{
		Doctors: []backend.Doctor{
			{ID: 1, Nome: "Anna", Cognome: "Russo", Specializzazione: "Cardiologia"},
			{ID: 2, Nome: "Luca", Cognome: "Greco", Specializzazione: "Ortopedia"},
		},
		CurrentDoctorID: 2,
		Today:           "2026-09-01",
	})
	assert.Contains(t, out, fmt.Sprintf(`value="%d" selected`, 2))
	assert.NotContains(t, out, `value="1" selected`)
	assert.Contains(t, out, `value="2026-09-01"`)
}
