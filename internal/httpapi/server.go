// Package httpapi wires the HTTP surface of the ledger service. Handlers stay
// thin, delegating all ledger semantics to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tinwood/ledgerd/internal/service/book"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	svc       *book.Service
	staticDir string
	log       *slog.Logger
	rt        *chi.Mux
}

// Options tune the server beyond its service dependency.
type Options struct {
	// StaticDir is served at / for the bundled web UI; empty disables it.
	StaticDir string
	// AllowedOrigins configures CORS; nil allows none.
	AllowedOrigins []string
}

// New constructs the HTTP server with routes and middleware.
func New(svc *book.Service, opts Options, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	s := &Server{svc: svc, staticDir: opts.StaticDir, log: logger, rt: r}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route
// middleware.
func (s *Server) routes() {
	s.rt.Route("/api", func(r chi.Router) {
		r.Get("/list", s.listLedgers)
		r.Route("/{ledger}", func(r chi.Router) {
			r.Post("/init", s.initLedger)
			r.With(s.validateTransaction()).Post("/credit", s.credit)
			r.With(s.validateTransaction()).Post("/debit", s.debit)
			r.With(s.validateTransaction()).Post("/edit/{seq}", s.edit)
			r.Get("/", s.getLedger)
			r.With(s.validateListEntries()).Get("/entries", s.listEntries)
			r.With(s.validateRule()).Post("/cron", s.createRule)
			r.Get("/crons", s.listRules)
			r.Delete("/cron/{id}", s.deleteRule)
		})
	})
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
	if s.staticDir != "" {
		s.staticRoutes()
	}
}
