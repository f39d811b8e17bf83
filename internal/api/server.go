// Package api provides the HTTP API server for Family Guardian.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/familyguardian/guardian/internal/guardian"
	"github.com/familyguardian/guardian/internal/logging"
	"github.com/familyguardian/guardian/internal/metrics"
	"github.com/familyguardian/guardian/internal/storage"
)

// Server deadlines. RequestTimeout must stay below WriteTimeout.
const (
	RequestTimeout = 10 * time.Second
	ReadTimeout    = 15 * time.Second
	WriteTimeout   = 15 * time.Second
	IdleTimeout    = 60 * time.Second
)

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	svc       *guardian.Service
	metrics   *metrics.Metrics
	listLimit int
	origins   []string
	log       *logging.Logger
}

// Config for the server
type Config struct {
	Addr           string
	Service        *guardian.Service
	Metrics        *metrics.Metrics // optional; nil disables /metrics
	ListLimit      int              // default page size for /api/alerts
	AllowedOrigins []string
}

// New creates a new API server
func New(cfg Config) *Server {
	limit := cfg.ListLimit
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		svc:       cfg.Service,
		metrics:   cfg.Metrics,
		listLimit: limit,
		origins:   origins,
		log:       logging.WithField("component", "api"),
	}

	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	return s
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logging.Standard(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Elderly user device
		r.Post("/flag-event", s.handleFlagEvent)

		// Family dashboard
		r.Get("/alerts", s.handleGetAlerts)
		r.Post("/action-alert", s.handleActionAlert)
		r.Get("/safe-contacts", s.handleGetSafeContacts)
		r.Get("/blocked-contacts", s.handleGetBlockedContacts)
		r.Get("/stats", s.handleGetStats)
	})

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router = r
}

// Router returns the HTTP handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.log.Info("API server starting on http://%s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Warn("failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Status: "error", Message: message})
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
