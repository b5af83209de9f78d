package view

import (
	"bytes"
	"encoding/json"
	"html/template"

	"github.com/sanmarcoclinic/portal/internal/backend"
)

var fragmentFuncs = template.FuncMap{
	"formatDate":      FormatDate,
	"formatShortDate": FormatShortDate,
	"formatTime":      FormatTime,
	"statusBadge":     StatusBadge,
	"priorityBadge":   PriorityBadge,
	"orDash":          orDash,
	"orDashInt":       orDashInt,
	"orFallback":      orFallback,
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(fragmentFuncs).Parse(text))
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return `<div class="alert alert-error">Errore di rendering</div>`
	}
	return buf.String()
}

var alertTmpl = mustParse("alert", `<div class="alert alert-{{.Kind}}">{{.Message}}</div>`)

// Alert renders a dismissable message panel. Kind is one of
// info, success, warning, error.
func Alert(kind, message string) string {
	return render(alertTmpl, struct{ Kind, Message string }{kind, message})
}

// Loading renders the pending-request placeholder for a panel.
func Loading(message string) string {
	return `<div class="loading">` + template.HTMLEscapeString(message) + `</div>`
}

// EmptyState renders the no-data placeholder for a panel.
func EmptyState(message string) string {
	return `<div class="empty-state">` + template.HTMLEscapeString(message) + `</div>`
}

var slotListTmpl = mustParse("slots", `<div id="slots-container">
{{- range $i, $s := .Slots}}
<button class="slot{{if eq $i $.Selected}} selected{{end}}" data-slot-form="slot-select" name="slot" value="{{$i}}">
<div class="slot-time">{{formatTime $s.Ora}}</div>
<div class="slot-info">{{formatDate $s.Data}}</div>
<div class="slot-info">{{$s.NomeMedico}}</div>
</button>
{{- end}}
</div>`)

// SlotList renders the searched slots in received order. selected is the
// index of the single chosen slot, or -1 for none.
func SlotList(slots []backend.Slot, selected int) string {
	return render(slotListTmpl, struct {
		Slots    []backend.Slot
		Selected int
	}{slots, selected})
}

var patientAppointmentsTmpl = mustParse("patient-appointments", `<table><thead><tr>
<th>Data</th><th>Ora</th><th>Medico</th><th>Tipo Visita</th><th>Stato</th><th>Azioni</th>
</tr></thead><tbody>
{{- range .}}
<tr>
<td>{{formatDate .DataAppuntamento}}</td>
<td>{{formatTime .OraInizio}}</td>
<td>{{.NomeMedico}}<br><small>{{.Specializzazione}}</small></td>
<td>{{.TipoVisita}}</td>
<td>{{statusBadge .Stato}}</td>
<td><button class="btn btn-danger btn-sm" data-cancel-id="{{.ID}}">Cancella</button></td>
</tr>
{{- end}}
</tbody></table>`)

// PatientAppointments renders the caller's upcoming appointments table.
func PatientAppointments(rows []backend.AppointmentDetailed) string {
	if len(rows) == 0 {
		return EmptyState("Nessun appuntamento programmato")
	}
	return render(patientAppointmentsTmpl, rows)
}

// UpcomingScheduled filters appointment rows down to future scheduled ones.
// The backend is queried by patient id only; date and status narrowing is a
// view-layer concern.
func UpcomingScheduled(rows []backend.AppointmentDetailed, today string) []backend.AppointmentDetailed {
	out := make([]backend.AppointmentDetailed, 0, len(rows))
	for _, row := range rows {
		if row.DataAppuntamento >= today && row.Stato == "programmato" {
			out = append(out, row)
		}
	}
	return out
}

var historyTmpl = mustParse("history", `<table><thead><tr>
<th>Data</th><th>Medico</th><th>Specializzazione</th><th>Tipo Visita</th><th>Stato</th><th>Note</th>
</tr></thead><tbody>
{{- range .History}}
<tr>
<td>{{formatDate .Data}}</td>
<td>{{.Medico}}</td>
<td>{{.Specializzazione}}</td>
<td>{{.TipoVisita}}</td>
<td>{{statusBadge .Stato}}</td>
<td>{{orDash .Note}}</td>
</tr>
{{- end}}
</tbody></table>
<p class="mt-2 text-center"><strong>Totale visite: {{.TotalVisits}}</strong></p>`)

// History renders a patient's own visit history.
func History(h *backend.PatientHistory) string {
	if h == nil || len(h.History) == 0 {
		return EmptyState("Nessuna visita registrata")
	}
	return render(historyTmpl, h)
}

var agendaTmpl = mustParse("agenda", `<table><thead><tr>
<th>Ora</th><th>Paziente</th><th>Tipo Visita</th><th>Durata</th><th>Sala</th><th>Stato</th><th>Contatto</th><th>Azioni</th>
</tr></thead><tbody>
{{- range .}}
<tr>
<td><strong>{{formatTime .OraInizio}}</strong></td>
<td>{{.NomePaziente}}</td>
<td>{{.TipoVisita}}</td>
<td>{{.DurataMinuti}} min</td>
<td>{{orFallback .SalaNumero "Non assegnata"}}</td>
<td>{{statusBadge .Stato}}</td>
<td><small>{{.TelefonoPaziente}}</small></td>
<td><button class="btn btn-sm btn-primary" data-detail-id="{{.ID}}" data-detail-name="{{.NomePaziente}}">Dettagli</button></td>
</tr>
{{- end}}
</tbody></table>
<p class="mt-2"><strong>Totale appuntamenti: {{len .}}</strong></p>`)

// Agenda renders a single doctor's appointments for a single date.
func Agenda(rows []backend.AppointmentDetailed) string {
	if len(rows) == 0 {
		return EmptyState("Nessun appuntamento per questa data")
	}
	return render(agendaTmpl, rows)
}

var appointmentsTmpl = mustParse("appointments", `<table><thead><tr>
<th>Data</th><th>Ora</th><th>Medico</th><th>Paziente</th><th>Tipo Visita</th><th>Sala</th><th>Stato</th>
</tr></thead><tbody>
{{- range .}}
<tr>
<td>{{formatDate .DataAppuntamento}}</td>
<td>{{formatTime .OraInizio}}</td>
<td>{{.NomeMedico}}<br><small>{{.Specializzazione}}</small></td>
<td>{{.NomePaziente}}</td>
<td>{{.TipoVisita}}</td>
<td>{{orDash .SalaNumero}}</td>
<td>{{statusBadge .Stato}}</td>
</tr>
{{- end}}
</tbody></table>
<p class="mt-2"><strong>Totale: {{len .}} appuntamenti</strong></p>`)

// Appointments renders the global appointment list.
func Appointments(rows []backend.AppointmentDetailed) string {
	if len(rows) == 0 {
		return EmptyState("Nessun appuntamento trovato")
	}
	return render(appointmentsTmpl, rows)
}

var patientsTmpl = mustParse("patients", `<table><thead><tr>
<th>Nome</th><th>Codice Fiscale</th><th>Data Nascita</th><th>Contatti</th><th>Azioni</th>
</tr></thead><tbody>
{{- range .}}
<tr>
<td><strong>{{.Nome}} {{.Cognome}}</strong></td>
<td>{{.CodiceFiscale}}</td>
<td>{{formatShortDate .DataNascita}}</td>
<td>{{.Telefono}}<br><small>{{.Email}}</small></td>
<td><button class="btn btn-sm btn-primary" data-history-id="{{.ID}}">Storico</button></td>
</tr>
{{- end}}
</tbody></table>`)

// Patients renders the patient search results.
func Patients(rows []backend.Patient) string {
	if len(rows) == 0 {
		return EmptyState("Nessun paziente trovato")
	}
	return render(patientsTmpl, rows)
}

// RoomEquipment decodes the backend's JSON-encoded equipment field. An
// absent or malformed field yields an empty list.
func RoomEquipment(room backend.Room) []string {
	if room.Attrezzature == nil || *room.Attrezzature == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(*room.Attrezzature), &items); err != nil {
		return nil
	}
	return items
}

type roomCard struct {
	backend.Room
	Equipment []string
}

var roomsTmpl = mustParse("rooms", `<div class="grid">
{{- range .}}
<div class="card">
<h3>Sala {{.Numero}}</h3>
<p><strong>{{.Nome}}</strong></p>
<p>Piano: {{orDashInt .Piano}}</p>
<p>Capienza: {{.Capienza}} persone</p>
<p>Stato: {{if .Attiva}}<span class="badge badge-success">Attiva</span>{{else}}<span class="badge badge-danger">Non attiva</span>{{end}}</p>
<div class="mt-1"><strong>Attrezzature:</strong>
<ul>
{{- range .Equipment}}<li>{{.}}</li>{{end}}
</ul>
</div>
</div>
{{- end}}
</div>`)

// Rooms renders the read-only room roster cards.
func Rooms(rooms []backend.Room) string {
	cards := make([]roomCard, 0, len(rooms))
	for _, r := range rooms {
		cards = append(cards, roomCard{Room: r, Equipment: RoomEquipment(r)})
	}
	return render(roomsTmpl, cards)
}

var waitingTmpl = mustParse("waiting", `<table><thead><tr>
<th>Paziente</th><th>Telefono</th><th>Tipo Visita</th><th>Specializzazione</th><th>Medico</th><th>Priorità</th><th>Data Richiesta</th>
</tr></thead><tbody>
{{- range .}}
<tr>
<td><strong>{{.Paziente}}</strong></td>
<td>{{.Telefono}}</td>
<td>{{.TipoVisita}}</td>
<td>{{orDash .Specializzazione}}</td>
<td>{{orFallback .Medico "Non specificato"}}</td>
<td>{{priorityBadge .Priorita}}</td>
<td>{{formatShortDate .DataRichiesta}}</td>
</tr>
{{- end}}
</tbody></table>`)

// WaitingList renders waiting entries in the backend's order; the portal
// never re-sorts them.
func WaitingList(entries []backend.WaitingEntry) string {
	if len(entries) == 0 {
		return EmptyState("Nessun paziente in lista d'attesa")
	}
	return render(waitingTmpl, entries)
}

var detailTmpl = mustParse("detail", `<div class="mb-2">
<h4>Dettagli Appuntamento #{{.ID}}</h4>
<hr>
<p><strong>Paziente:</strong> {{.NomePaziente}}</p>
<p><strong>Tipo Visita:</strong> {{.TipoVisita}}</p>
<p><strong>Data:</strong> {{formatDate .DataAppuntamento}}</p>
<p><strong>Orario:</strong> {{formatTime .OraInizio}}</p>
<p><strong>Durata:</strong> {{.DurataMinuti}} minuti</p>
<p><strong>Stato:</strong> {{statusBadge .Stato}}</p>
<p><strong>Note:</strong> {{orFallback .Note "Nessuna nota"}}</p>
</div>`)

type detailData struct {
	backend.Appointment
	NomePaziente string
}

// AppointmentDetail renders the detail modal body for an appointment. The
// patient name comes from the already rendered agenda row because the
// appointment resource carries only ids.
func AppointmentDetail(apt *backend.Appointment, nomePaziente string) string {
	return render(detailTmpl, detailData{Appointment: *apt, NomePaziente: nomePaziente})
}

var detailFallbackTmpl = mustParse("detail-fallback", `<div class="mb-2">
<h4>Paziente: {{.NomePaziente}}</h4>
<p>ID Appuntamento: {{.ID}}</p>
<p><em>Dettagli completi non disponibili</em></p>
</div>`)

// AppointmentDetailFallback is the reduced-information view used when the
// detail fetch fails after the list fetch succeeded.
func AppointmentDetailFallback(nomePaziente string, id int) string {
	return render(detailFallbackTmpl, struct {
		NomePaziente string
		ID           int
	}{nomePaziente, id})
}

var patientHistoryModalTmpl = mustParse("patient-history-modal", `<div class="mb-2">
<h4>Paziente: {{.Patient.Nome}}</h4>
<p>Codice Fiscale: {{.Patient.CodiceFiscale}}</p>
<p><strong>Totale visite: {{.TotalVisits}}</strong></p>
</div>
{{- if .History}}
<table><thead><tr>
<th>Data</th><th>Medico</th><th>Tipo Visita</th><th>Stato</th><th>Note</th>
</tr></thead><tbody>
{{- range .History}}
<tr>
<td>{{formatDate .Data}}</td>
<td>{{.Medico}}<br><small>{{.Specializzazione}}</small></td>
<td>{{.TipoVisita}}</td>
<td>{{statusBadge .Stato}}</td>
<td>{{orDash .Note}}</td>
</tr>
{{- end}}
</tbody></table>
{{- end}}`)

// PatientHistoryModal renders the admin-side history modal body.
func PatientHistoryModal(h *backend.PatientHistory) string {
	return render(patientHistoryModalTmpl, h)
}

var cancelModalTmpl = mustParse("cancel-modal", `<div class="modal active" id="cancel-modal">
<div class="modal-content">
<h3>Cancella Appuntamento #{{.}}</h3>
<p>Vuoi davvero cancellare questo appuntamento?</p>
<form data-modal-form="cancel-confirm">
<label for="cancel-reason">Motivo (facoltativo)</label>
<textarea id="cancel-reason" name="motivo"></textarea>
<div class="modal-actions">
<button type="submit" class="btn btn-danger">Conferma</button>
<button type="button" class="btn" data-modal-dismiss>Annulla</button>
</div>
</form>
</div>
</div>`)

// CancelModal renders the cancellation confirmation dialog for one
// appointment id.
func CancelModal(appointmentID int) string {
	return render(cancelModalTmpl, appointmentID)
}

// BookingSuccess renders the confirmation alert. The data-reset-booking
// marker tells the page glue to clear the form and hide the slot list.
func BookingSuccess(message string) string {
	return `<div class="alert alert-success" data-reset-booking>` + template.HTMLEscapeString(message) + `</div>`
}

var detailModalTmpl = mustParse("detail-modal", `<div class="modal active" id="patient-modal">
<div class="modal-content">
<div id="patient-details">{{.}}</div>
<div class="modal-actions"><button type="button" class="btn" data-modal-dismiss>Chiudi</button></div>
</div>
</div>`)

// DetailModal wraps an already rendered (trusted) body in the shared
// overlay chrome.
func DetailModal(body string) string {
	return render(detailModalTmpl, template.HTML(body))
}
