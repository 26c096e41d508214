package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/healthtwin/riskengine/internal/adapters/repository"
	"github.com/healthtwin/riskengine/internal/domain/model"
	"github.com/healthtwin/riskengine/internal/domain/scoring"
)

// HistoryDependencies defines the read operations used by HistoryHandler.
type HistoryDependencies interface {
	Assessment(ctx context.Context, id uuid.UUID) (model.Assessment, error)
	Assessments(ctx context.Context, f repository.Filter) ([]model.Assessment, error)
}

// HistoryHandler serves recorded assessments.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

type listResponse struct {
	Assessments []model.Assessment `json:"assessments"`
	Count       int                `json:"count"`
}

// HandleList handles GET /api/v1/assessments?kind=&subject_id=&min_level=&limit=.
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_assessments"

	q := r.URL.Query()
	f := repository.Filter{
		Kind:      scoring.Kind(q.Get("kind")),
		SubjectID: q.Get("subject_id"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		f.Limit = n
	}
	if raw := q.Get("min_level"); raw != "" {
		level, err := scoring.ParseLevel(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		f.MinLevel = level
	}

	list, err := h.deps.Assessments(r.Context(), f)
	if err != nil {
		writeHistoryError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Assessments: list, Count: len(list)})
}

// HandleGet handles GET /api/v1/assessments/{id}.
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_assessment"

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	a, err := h.deps.Assessment(r.Context(), id)
	if err != nil {
		writeHistoryError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeHistoryError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrInvalidLimit), errors.Is(err, repository.ErrInvalidKind),
		errors.Is(err, repository.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrHistoryDisabled):
		writeError(w, http.StatusServiceUnavailable, "history_disabled", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}
