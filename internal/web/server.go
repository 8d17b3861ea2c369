// Package web provides the HTTP server and JSON API for the label wizard.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/labelmerge/internal/config"
	"github.com/JonMunkholm/labelmerge/internal/session"
	"github.com/JonMunkholm/labelmerge/internal/web/middleware"
)

// contentSecurityPolicy allows the wizard's own scripts and the inline
// styles of rendered label documents.
const contentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

// Server is the HTTP server for the label wizard.
type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	limiter  *IngestLimiter
	router   *chi.Mux
	server   *http.Server

	rateLimiters []*rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, sessions *session.Manager) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		limiter:  NewIngestLimiter(cfg.Ingest.MaxConcurrent, cfg.Ingest.MaxWaitTime),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimit(s.cfg.Rate.RequestsPerMinute))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Ingest and render are the expensive routes; they get a tighter budget.
	upload := func(r chi.Router) chi.Router { return r }
	if s.cfg.Rate.Enabled {
		limit := s.newRateLimit(s.cfg.Rate.UploadLimit)
		upload = func(r chi.Router) chi.Router { return r.With(limit) }
	}

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Catalogs
		r.Get("/formats", s.handleListFormats)
		r.Get("/fields", s.handleListFields)

		// Stateless pipeline
		r.Post("/detect", s.handleDetect)
		upload(r).Post("/render", s.handleRender)

		// Wizard sessions
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleResetSession)
				upload(r).Post("/file", s.handleSessionFile)
				r.Put("/mapping", s.handleSessionMapping)
				r.Put("/format", s.handleSessionFormat)
				r.Post("/step", s.handleSessionStep)
				r.Get("/preview", s.handleSessionPreview)
				r.Get("/labels", s.handleSessionLabels)
			})
		})
	})
}

func (s *Server) newRateLimit(perMinute int) func(http.Handler) http.Handler {
	rl := newRateLimiter(perMinute, time.Minute)
	s.rateLimiters = append(s.rateLimiters, rl)
	return rl.middleware(s)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones and then for
// any file still being parsed.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.rateLimiters {
		rl.stop()
	}
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode error", "error", err)
	}
}
