// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/healthtwin/riskengine/internal/adapters/repository"
	"github.com/healthtwin/riskengine/internal/domain/model"
	"github.com/healthtwin/riskengine/internal/domain/scoring"
	"github.com/healthtwin/riskengine/internal/domain/types"
	"github.com/healthtwin/riskengine/pkg/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Headers read or written by the risk endpoints.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderAssessmentID   = "X-Assessment-ID"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AssessCardiac(ctx context.Context, meta model.Meta, in scoring.CardiacInput) (scoring.CardiacResult, model.Receipt, error)
	AssessFatigue(ctx context.Context, meta model.Meta, in scoring.FatigueInput) (scoring.FatigueResult, model.Receipt, error)
	Rejected(kind scoring.Kind)

	Assessment(ctx context.Context, id uuid.UUID) (model.Assessment, error)
	Assessments(ctx context.Context, f repository.Filter) ([]model.Assessment, error)

	GetStats(ctx context.Context) types.Stats
	Ready(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	riskHandler    *RiskHandler
	historyHandler *HistoryHandler
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(deps),
		riskHandler:    NewRiskHandler(deps),
		historyHandler: NewHistoryHandler(deps),
		logger:         logger.Get().Named("http"),
	}
}

// Routes builds the router with middleware and every API route. Extra
// mounts (documentation, debug handlers) are attached after the API.
func (s *Server) Routes(mounts ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", NewKind("api.route", ErrNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind("api.route", ErrMethodNotAllowed))
	})

	s.Register(r)
	for _, mount := range mounts {
		mount(r)
	}
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", MetricsMiddleware(s.healthHandler.HandleLiveness, "liveness"))
	r.Get("/ready", MetricsMiddleware(s.healthHandler.HandleReadiness, "readiness"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	riskRoutes := func(r chi.Router) {
		r.Post("/cardiac", MetricsMiddleware(s.riskHandler.HandleCardiac, "risk_cardiac"))
		r.Post("/fatigue", MetricsMiddleware(s.riskHandler.HandleFatigue, "risk_fatigue"))
	}
	r.Route("/risk", riskRoutes)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/risk", riskRoutes)
		r.Get("/assessments", MetricsMiddleware(s.historyHandler.HandleList, "assessments"))
		r.Get("/assessments/{id}", MetricsMiddleware(s.historyHandler.HandleGet, "assessment"))
	})
}

type errorResponse struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Fields  []scoring.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // factor text contains "<"
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}

	var verr *scoring.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}

// decodeBody reads a single JSON object from the request body.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errors.New("empty body")
		default:
			return fmt.Errorf("malformed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}
