package api

import (
	"context"
	"net/http"

	"github.com/healthtwin/riskengine/internal/domain/types"
)

// StatsProvider reports assessment counters and pipeline state.
type StatsProvider interface {
	GetStats(ctx context.Context) types.Stats
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a stats handler backed by provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats writes a fresh snapshot; counters move on every request so
// responses must not be cached.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.provider.GetStats(r.Context()))
}
