package view

import (
	"html/template"

	"github.com/sanmarcoclinic/portal/internal/backend"
)

// Shared page chrome. The inline script is the only browser-side glue: it
// posts forms as fragments and swaps the returned HTML into the target
// container, leaving all state on the server.
const layoutHead = `<!DOCTYPE html>
<html lang="it">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - Centro Medico San Marco</title>
<link rel="stylesheet" href="/static/style.css">
</head>
<body>
<header>
<h1>Centro Medico San Marco</h1>
<p>{{.Subtitle}}</p>
{{if .DisplayName}}<form method="post" action="/logout" class="logout"><button class="btn btn-sm">Esci</button></form>{{end}}
</header>
<div id="alert-container">{{.Flash}}</div>
`

const layoutFoot = `<div id="modal-root"></div>
<script src="/static/portal.js"></script>
</body>
</html>`

var loginPageTmpl = mustParse("login-page", layoutHead+`
<main class="container">
<h2>Accedi</h2>
{{if .Error}}<div class="alert alert-error">{{.Error}}</div>{{end}}
<form method="post" action="/login" class="card">
<label for="role">Accesso</label>
<select id="role" name="role">
<option value="patient">Paziente</option>
<option value="doctor">Medico</option>
</select>
<label for="email">Email</label>
<input id="email" name="email" type="email" required>
<label for="password">Password</label>
<input id="password" name="password" type="password" required>
<button type="submit" class="btn btn-primary">Entra</button>
</form>
</main>
`+layoutFoot)

// LoginPageData feeds the login form shell.
type LoginPageData struct {
	Title       string
	Subtitle    string
	DisplayName string
	Flash       template.HTML
	Error       string
}

// LoginPage renders the role-tabbed login form. errMsg is the backend's
// rejection detail, empty on first render.
func LoginPage(errMsg string) string {
	return render(loginPageTmpl, LoginPageData{Title: "Accesso", Subtitle: "Prenotazioni online", Error: errMsg})
}

var patientPageTmpl = mustParse("patient-page", layoutHead+`
<main class="container">
<nav class="nav-tabs">
<button data-tab="prenota" {{if eq .ActiveTab "prenota"}}class="active"{{end}}>Prenota Visita</button>
<button data-tab="appuntamenti" {{if eq .ActiveTab "appuntamenti"}}class="active"{{end}}>I Miei Appuntamenti</button>
<button data-tab="storico" {{if eq .ActiveTab "storico"}}class="active"{{end}}>Storico Visite</button>
</nav>
<section class="tab-content {{if ne .ActiveTab "prenota"}}hidden{{end}}" id="tab-prenota">
<form id="booking-search" data-fragment data-target="slots-wrap" method="post" action="/patient/slots/search">
<label for="specializzazione">Specializzazione</label>
<select id="specializzazione" name="specializzazione" required>
<option value="">Seleziona...</option>
{{- range .Specializations}}
<option value="{{.}}">{{.}}</option>
{{- end}}
</select>
<button type="submit" class="btn btn-primary">Cerca Disponibilità</button>
</form>
<div id="slots-wrap"></div>
<form id="booking-form" data-fragment data-target="booking-result" method="post" action="/patient/book">
<label for="tipo-visita">Tipo Visita</label>
<select id="tipo-visita" name="tipo_visita">
<option value="visita specialistica">Visita specialistica</option>
<option value="controllo">Controllo</option>
<option value="prima visita">Prima visita</option>
</select>
<label for="durata">Durata (minuti)</label>
<select id="durata" name="durata">
<option value="30">30</option>
<option value="45">45</option>
<option value="60">60</option>
</select>
<label for="note">Note</label>
<textarea id="note" name="note"></textarea>
<button type="submit" class="btn btn-success">Conferma Prenotazione</button>
</form>
<div id="booking-result"></div>
</section>
<section class="tab-content {{if ne .ActiveTab "appuntamenti"}}hidden{{end}}" id="tab-appuntamenti">
<div id="appointments-list" data-load="/patient/appointments">{{.Appointments}}</div>
</section>
<section class="tab-content {{if ne .ActiveTab "storico"}}hidden{{end}}" id="tab-storico">
<div id="history-list" data-load="/patient/history"></div>
</section>
</main>
`+layoutFoot)

// PatientPageData feeds the patient page shell.
type PatientPageData struct {
	Title           string
	Subtitle        string
	DisplayName     string
	Flash           template.HTML
	ActiveTab       string
	Specializations []string
	Appointments    template.HTML
}

// PatientPage renders the patient controller's full page.
func PatientPage(data PatientPageData) string {
	data.Title = "Area Paziente"
	if data.Subtitle == "" {
		data.Subtitle = "Benvenuto"
	}
	if data.ActiveTab == "" {
		data.ActiveTab = "prenota"
	}
	return render(patientPageTmpl, data)
}

var adminPageTmpl = mustParse("admin-page", layoutHead+`
<main class="container">
<nav class="nav-tabs">
<button data-tab="agenda" {{if eq .ActiveTab "agenda"}}class="active"{{end}}>Agenda</button>
<button data-tab="appuntamenti" {{if eq .ActiveTab "appuntamenti"}}class="active"{{end}}>Appuntamenti</button>
<button data-tab="pazienti" {{if eq .ActiveTab "pazienti"}}class="active"{{end}}>Pazienti</button>
<button data-tab="sale" {{if eq .ActiveTab "sale"}}class="active"{{end}}>Sale</button>
<button data-tab="attesa" {{if eq .ActiveTab "attesa"}}class="active"{{end}}>Lista d'Attesa</button>
</nav>
<section class="tab-content {{if ne .ActiveTab "agenda"}}hidden{{end}}" id="tab-agenda">
<form data-fragment data-target="agenda-content" method="get" action="/admin/agenda">
<label for="agenda-doctor">Medico</label>
<select id="agenda-doctor" name="doctor_id">
<option value="">Seleziona...</option>
{{- range .Doctors}}
<option value="{{.ID}}" {{if eq .ID $.CurrentDoctorID}}selected{{end}}>{{.Nome}} {{.Cognome}} - {{.Specializzazione}}</option>
{{- end}}
</select>
<label for="agenda-date">Data</label>
<input id="agenda-date" name="data" type="date" value="{{.Today}}">
<button type="submit" class="btn btn-primary">Carica Agenda</button>
</form>
<div id="agenda-content">{{.Agenda}}</div>
</section>
<section class="tab-content {{if ne .ActiveTab "appuntamenti"}}hidden{{end}}" id="tab-appuntamenti">
<form data-fragment data-target="all-appointments-list" method="get" action="/admin/appointments">
<label for="filter-date-from">Dal</label>
<input id="filter-date-from" name="data_from" type="date">
<label for="filter-date-to">Al</label>
<input id="filter-date-to" name="data_to" type="date">
<label for="filter-status">Stato</label>
<select id="filter-status" name="stato">
<option value="">Tutti</option>
<option value="programmato">Programmato</option>
<option value="completato">Completato</option>
<option value="cancellato">Cancellato</option>
</select>
<button type="submit" class="btn btn-primary">Filtra</button>
</form>
<div id="all-appointments-list"></div>
</section>
<section class="tab-content {{if ne .ActiveTab "pazienti"}}hidden{{end}}" id="tab-pazienti">
<form data-fragment data-target="patients-list" method="get" action="/admin/patients">
<label for="search-patient">Cerca per nome o codice fiscale</label>
<input id="search-patient" name="search" type="text">
<button type="submit" class="btn btn-primary">Cerca</button>
</form>
<div id="patients-list"></div>
</section>
<section class="tab-content {{if ne .ActiveTab "sale"}}hidden{{end}}" id="tab-sale">
<div id="rooms-list" data-load="/admin/rooms"></div>
</section>
<section class="tab-content {{if ne .ActiveTab "attesa"}}hidden{{end}}" id="tab-attesa">
<div id="waiting-list" data-load="/admin/waiting-list"></div>
</section>
</main>
`+layoutFoot)

// AdminPageData feeds the doctor/admin page shell.
type AdminPageData struct {
	Title           string
	Subtitle        string
	DisplayName     string
	Flash           template.HTML
	ActiveTab       string
	Doctors         []backend.Doctor
	CurrentDoctorID int
	Today           string
	Agenda          template.HTML
}

// AdminPage renders the doctor/admin controller's full page.
func AdminPage(data AdminPageData) string {
	data.Title = "Area Medici"
	if data.Subtitle == "" {
		data.Subtitle = "Gestione appuntamenti"
	}
	if data.ActiveTab == "" {
		data.ActiveTab = "agenda"
	}
	return render(adminPageTmpl, data)
}
