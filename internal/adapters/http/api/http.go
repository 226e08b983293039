// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/portfolio/internal/app"
	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/internal/ui/monitor"
	"github.com/okian/portfolio/pkg/logger"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// Messages returned in failure envelopes.
const (
	MsgInvalidBody  = "Invalid request body."
	MsgStoreFailure = "Failed to save submission."
	MsgUnauthorized = "Unauthorized."
	MsgInternal     = "Internal server error."
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Limiter

	// Submit validates and stores a portfolio request.
	Submit(ctx context.Context, req app.SubmitRequest) (app.Outcome, error)

	// List returns every stored request.
	List(ctx context.Context) ([]model.SubmissionRecord, error)

	// IngestAlert records a browser alert and queues it for delivery.
	IngestAlert(ctx context.Context, a model.Alert) (model.Alert, error)

	// RecordVitals feeds browser readings into the server side monitor.
	RecordVitals(ctx context.Context, snap model.PerformanceSnapshot, memoryLimit float64) []model.Alert

	Themes() []model.ThemeDescriptor
	Diagnostics(ctx context.Context, env monitor.Environment) ([]model.DiagnosticResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps          Dependencies
	statsProvider StatsProvider
	origin        string
	jwtSecret     string
	clientKey     KeyFunc
	logger        logger.Logger

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *dashboardHandler
	schemas          *schemaSet
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:             deps,
		statsProvider:    statsProvider,
		origin:           "*",
		clientKey:        ClientKey(nil),
		logger:           logger.NamedOrNop("api"),
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		dashboardHandler: newDashboardHandler(),
		schemas:          mustLoadSchemas(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/api/submit", s.cors(MetricsMiddleware(
		s.submitLimit(s.handleSubmit), "submit")))
	mux.HandleFunc("/api/theme-alerts", s.cors(MetricsMiddleware(
		s.alertLimit(s.handleThemeAlert), "theme_alerts")))
	mux.HandleFunc("/api/vitals", s.cors(MetricsMiddleware(
		s.alertLimit(s.handleVitals), "vitals")))
	mux.HandleFunc("/api/themes", s.cors(MetricsMiddleware(s.handleThemes, "themes")))
	mux.HandleFunc("/api/diagnostics", s.cors(MetricsMiddleware(s.handleDiagnostics, "diagnostics")))

	if s.jwtSecret != "" {
		mux.HandleFunc("/api/requests", s.cors(MetricsMiddleware(
			s.requireToken(s.handleListRequests), "requests")))
	} else {
		s.logger.Info(ctx, "admin listing disabled: no jwt secret configured")
	}
}

func (s *Server) cors(next http.HandlerFunc) http.HandlerFunc {
	return CORSMiddleware(s.origin, next)
}

func (s *Server) submitLimit(next http.HandlerFunc) http.HandlerFunc {
	return RateLimitMiddleware(s.deps.AllowSubmission, s.clientKey, MsgRateLimited, next)
}

func (s *Server) alertLimit(next http.HandlerFunc) http.HandlerFunc {
	return RateLimitMiddleware(s.deps.AllowAlert, s.clientKey, MsgAlertRateLimited, next)
}

// envelope is the body of every /api response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}
