// Package web provides the HTTP server and handlers for the manifest upload UI.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/manifestnorm/internal/config"
	"github.com/JonMunkholm/manifestnorm/internal/export"
	"github.com/JonMunkholm/manifestnorm/internal/history"
	"github.com/JonMunkholm/manifestnorm/internal/manifest"
	weblog "github.com/JonMunkholm/manifestnorm/internal/web/middleware"
)

// Deps are the collaborators the server dispatches to.
type Deps struct {
	Pipeline *manifest.Pipeline
	Limiter  *manifest.Limiter
	Exporter *export.Service
	History  history.Store
}

// Server is the HTTP server for the manifest normalizer.
type Server struct {
	cfg      *config.Config
	pipeline *manifest.Pipeline
	limiter  *manifest.Limiter
	exporter *export.Service
	history  history.Store
	sessions *sessionStore
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: deps.Pipeline,
		limiter:  deps.Limiter,
		exporter: deps.Exporter,
		history:  deps.History,
		sessions: newSessionStore(DefaultSessionTTL),
		router:   chi.NewRouter(),
	}
	if s.limiter == nil {
		s.limiter = manifest.NewLimiter(cfg.Processing.MaxConcurrent, cfg.Processing.MaxWaitTime)
	}
	if s.history == nil {
		s.history = history.NewMemoryStore(history.DefaultMemoryCapacity)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(weblog.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "text/html", "application/json", "text/csv"))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/layouts", s.handleLayouts)

		r.Post("/classify", s.handleClassify)
		r.Post("/process", s.handleProcess)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Get("/export.{format}", s.handleDownload)
			r.Post("/save", s.handleSave)
			r.Delete("/", s.handleDiscard)
		})

		r.Get("/history", s.handleHistory)

		r.Get("/counter", s.handleCounter)
		r.Post("/counter/reset", s.handleCounterReset)
	})
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
	return s.server.ListenAndServe()
}

// Shutdown waits for in-flight files to finish, then stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if st := s.limiter.Status(); st.Active > 0 {
		slog.Info("shutdown.waiting", "active", st.Active)
		if err := s.limiter.WaitForDrain(ctx); err != nil {
			slog.Warn("shutdown.drain.timeout", "error", err)
		}
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		// htmx is loaded from unpkg; styles are inline.
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
