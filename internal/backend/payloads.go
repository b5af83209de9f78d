package backend

// Wire types mirror the clinic backend's JSON contract, which uses Italian
// field names throughout.

// Doctor is a row from GET /doctors/.
type Doctor struct {
	ID               int    `json:"id"`
	Nome             string `json:"nome"`
	Cognome          string `json:"cognome"`
	Specializzazione string `json:"specializzazione"`
}

// Slot is a bookable (doctor, date, time) triple from the availability search.
type Slot struct {
	Data             string `json:"data"`
	Ora              string `json:"ora"`
	DoctorID         int    `json:"doctor_id"`
	NomeMedico       string `json:"nome_medico"`
	Specializzazione string `json:"specializzazione"`
}

// SlotsResponse wraps GET /appointments/available-slots.
type SlotsResponse struct {
	AvailableSlots []Slot `json:"available_slots"`
	Total          int    `json:"total"`
}

// BookingRequest is the payload for POST /appointments/.
type BookingRequest struct {
	DoctorID         int     `json:"doctor_id"`
	PatientID        int     `json:"patient_id"`
	DataAppuntamento string  `json:"data_appuntamento"`
	OraInizio        string  `json:"ora_inizio"`
	DurataMinuti     int     `json:"durata_minuti"`
	TipoVisita       string  `json:"tipo_visita"`
	Note             *string `json:"note"`
}

// Appointment is the backend's full appointment resource.
type Appointment struct {
	ID                  int     `json:"id"`
	DoctorID            int     `json:"doctor_id"`
	PatientID           int     `json:"patient_id"`
	RoomID              *int    `json:"room_id"`
	DataAppuntamento    string  `json:"data_appuntamento"`
	OraInizio           string  `json:"ora_inizio"`
	DurataMinuti        int     `json:"durata_minuti"`
	TipoVisita          string  `json:"tipo_visita"`
	Stato               string  `json:"stato"`
	Note                *string `json:"note"`
	MotivoCancellazione *string `json:"motivo_cancellazione"`
}

// AppointmentDetailed is a row from GET /appointments/detailed.
type AppointmentDetailed struct {
	ID               int     `json:"id"`
	DataAppuntamento string  `json:"data_appuntamento"`
	OraInizio        string  `json:"ora_inizio"`
	DurataMinuti     int     `json:"durata_minuti"`
	TipoVisita       string  `json:"tipo_visita"`
	Stato            string  `json:"stato"`
	Note             *string `json:"note"`
	NomeMedico       string  `json:"nome_medico"`
	Specializzazione string  `json:"specializzazione"`
	NomePaziente     string  `json:"nome_paziente"`
	TelefonoPaziente string  `json:"telefono_paziente"`
	SalaNumero       *string `json:"sala_numero"`
}

// AppointmentFilter narrows GET /appointments/detailed. Zero values are
// omitted from the query string.
type AppointmentFilter struct {
	PatientID int
	DoctorID  int
	Data      string
	DataFrom  string
	DataTo    string
	Stato     string
}

// Patient is a row from GET /patients/.
type Patient struct {
	ID            int    `json:"id"`
	Nome          string `json:"nome"`
	Cognome       string `json:"cognome"`
	CodiceFiscale string `json:"codice_fiscale"`
	DataNascita   string `json:"data_nascita"`
	Telefono      string `json:"telefono"`
	Email         string `json:"email"`
}

// HistoryVisit is one past visit in a patient's history.
type HistoryVisit struct {
	Data             string  `json:"data"`
	Medico           string  `json:"medico"`
	Specializzazione string  `json:"specializzazione"`
	TipoVisita       string  `json:"tipo_visita"`
	Stato            string  `json:"stato"`
	Note             *string `json:"note"`
}

// HistoryPatient is the patient header of a history response.
type HistoryPatient struct {
	Nome          string `json:"nome"`
	CodiceFiscale string `json:"codice_fiscale"`
}

// PatientHistory wraps GET /patients/{id}/history.
type PatientHistory struct {
	Patient     HistoryPatient `json:"patient"`
	History     []HistoryVisit `json:"history"`
	TotalVisits int            `json:"total_visits"`
}

// Room is a row from GET /rooms/. Attrezzature carries a JSON-encoded list
// of equipment names; the view layer decodes it.
type Room struct {
	ID           int     `json:"id"`
	Numero       string  `json:"numero"`
	Nome         string  `json:"nome"`
	Piano        *int    `json:"piano"`
	Attrezzature *string `json:"attrezzature"`
	Capienza     int     `json:"capienza"`
	Attiva       bool    `json:"attiva"`
}

// WaitingEntry is a row from GET /appointments/waiting-list, already ordered
// by the backend (priority, then request date).
type WaitingEntry struct {
	ID               int     `json:"id"`
	Paziente         string  `json:"paziente"`
	Telefono         string  `json:"telefono"`
	TipoVisita       string  `json:"tipo_visita"`
	Specializzazione *string `json:"specializzazione"`
	Medico           *string `json:"medico"`
	Priorita         string  `json:"priorita"`
	DataRichiesta    string  `json:"data_richiesta"`
	Note             *string `json:"note"`
}

// LoginResponse is the body of POST /auth/login/{patient|doctor}.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserType    string `json:"user_type"`
	UserID      int    `json:"user_id"`
	Nome        string `json:"nome"`
	Cognome     string `json:"cognome"`
}
