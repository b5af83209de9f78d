// Package session implements the portal's session guard: a signed cookie
// referencing a server-side session record that carries the backend token,
// the role marker and the per-user identity.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sanmarcoclinic/portal/pkg/logging"
)

// Roles gate which page and backend calls are permitted.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// ErrNotFound is returned by stores when no session record exists.
var ErrNotFound = errors.New("session: not found")

// Session is the server-side record behind a portal cookie.
type Session struct {
	ID          string `json:"id"`
	Token       string `json:"token"`
	Role        string `json:"role"`
	UserID      int    `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// Store persists session records for the cookie TTL.
type Store interface {
	Put(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type contextKey string

const sessionKey contextKey = "portalSession"

// Manager issues, resolves and revokes sessions.
type Manager struct {
	store      Store
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	logger     *logging.Logger
}

// NewManager wires a session manager around a store and signing secret.
func NewManager(store Store, secret string, ttl time.Duration, cookieName string, secure bool, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	if cookieName == "" {
		cookieName = "portal_session"
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Manager{
		store:      store,
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
		logger:     logger,
	}
}

// Issue creates a session record, signs a cookie referencing it and sets it
// on the response.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.ID = uuid.NewString()
	if err := m.store.Put(ctx, s, m.ttl); err != nil {
		return err
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   s.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Resolve reads the cookie, verifies its signature and loads the session
// record. Any failure means there is no usable session.
func (m *Manager) Resolve(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, err
	}
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("session: invalid cookie")
	}
	return m.store.Get(r.Context(), claims.Subject)
}

// Clear destroys the session record and expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if s, err := m.Resolve(r); err == nil {
		if err := m.store.Delete(r.Context(), s.ID); err != nil {
			m.logger.Warn("session delete failed", "session_id", s.ID, "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Require guards a page for one role. A missing or wrong-role session
// redirects to the login entry point before any backend call is made.
func (m *Manager) Require(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Resolve(r)
			if err != nil || s.Role != role {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// WithSession attaches a session to the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session attached by Require.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}
