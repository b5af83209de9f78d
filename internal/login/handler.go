// Package login serves the role-tabbed login form and exchanges backend
// credentials for a portal session.
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanmarcoclinic/portal/internal/backend"
	"github.com/sanmarcoclinic/portal/internal/session"
	"github.com/sanmarcoclinic/portal/internal/view"
	"github.com/sanmarcoclinic/portal/pkg/logging"
)

// Authenticator is the slice of the backend client used to log in.
type Authenticator interface {
	Login(ctx context.Context, role, email, password string) (*backend.LoginResponse, error)
}

// Handler serves /login and /logout.
type Handler struct {
	auth     Authenticator
	sessions *session.Manager
	logger   *logging.Logger
}

// NewHandler creates a login controller.
func NewHandler(auth Authenticator, sessions *session.Manager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{auth: auth, sessions: sessions, logger: logger.Component("login")}
}

// Routes mounts the unauthenticated login endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/login", h.form)
	r.Post("/login", h.submit)
	r.Post("/logout", h.logout)
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(view.LoginPage("")))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	role := r.FormValue("role")
	if role != session.RolePatient && role != session.RoleDoctor {
		role = session.RolePatient
	}
	email := r.FormValue("email")
	password := r.FormValue("password")

	resp, err := h.auth.Login(r.Context(), role, email, password)
	if err != nil {
		msg := "Errore durante l'accesso"
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			msg = "Credenziali non valide"
		}
		h.logger.Warn("login rejected", "role", role, "error", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(view.LoginPage(msg)))
		return
	}

	s := &session.Session{
		Token:       resp.AccessToken,
		Role:        resp.UserType,
		UserID:      resp.UserID,
		DisplayName: resp.Nome + " " + resp.Cognome,
	}
	if err := h.sessions.Issue(r.Context(), w, s); err != nil {
		h.logger.Error("session issue failed", "error", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	target := "/patient"
	if resp.UserType == session.RoleDoctor {
		target = "/admin"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
