package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/healthtwin/riskengine/pkg/metrics"
)

// ServiceName is reported by the liveness endpoint.
const ServiceName = "risk-engine"

type livenessResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ReadinessChecker reports whether the service can take traffic.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// HealthHandler handles liveness, readiness and metrics requests.
type HealthHandler struct {
	ready   ReadinessChecker
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(ready ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		ready:   ready,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleLiveness handles GET / requests.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, livenessResponse{Status: "healthy", Service: ServiceName})
}

// HandleReadiness handles GET /ready. It fails while the history store
// is unreachable.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	const op = "api.readiness"

	if err := h.ready.Ready(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusOK, livenessResponse{Status: "ready", Service: ServiceName})
}

// HandleMetrics serves the Prometheus exposition from the custom registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
