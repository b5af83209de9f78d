// Package router assembles the portal's HTTP surface: login, the two
// role-guarded page controllers, static assets and operational endpoints.
package router

import (
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanmarcoclinic/portal/internal/admin"
	"github.com/sanmarcoclinic/portal/internal/http/middleware"
	"github.com/sanmarcoclinic/portal/internal/login"
	"github.com/sanmarcoclinic/portal/internal/observability/metrics"
	"github.com/sanmarcoclinic/portal/internal/patient"
	"github.com/sanmarcoclinic/portal/internal/session"
	"github.com/sanmarcoclinic/portal/pkg/logging"
)

//go:embed static
var staticFS embed.FS

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *logging.Logger
	Metrics  *metrics.PortalMetrics
	Sessions *session.Manager
	Login    *login.Handler
	Patient  *patient.Handler
	Admin    *admin.Handler
}

// New builds the portal router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.PageMetrics(d.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))

	d.Login.Routes(r)

	// The root picks the right area for an existing session, or the login
	// form when there is none.
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		s, err := d.Sessions.Resolve(req)
		switch {
		case err != nil:
			http.Redirect(w, req, "/login", http.StatusSeeOther)
		case s.Role == session.RoleDoctor:
			http.Redirect(w, req, "/admin", http.StatusSeeOther)
		default:
			http.Redirect(w, req, "/patient", http.StatusSeeOther)
		}
	})

	r.Route("/patient", func(pr chi.Router) {
		pr.Use(d.Sessions.Require(session.RolePatient))
		d.Patient.Routes(pr)
	})
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(d.Sessions.Require(session.RoleDoctor))
		d.Admin.Routes(ar)
	})

	return r
}
