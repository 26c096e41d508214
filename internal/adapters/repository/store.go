// Package repository stores the history of scored assessments.
//
// Two implementations are provided: MemoryStore, a bounded ring kept in
// process memory, and PostgresStore, backed by a pgx connection pool.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthtwin/riskengine/internal/domain/model"
	"github.com/healthtwin/riskengine/internal/domain/scoring"
)

// List limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Filter narrows a history listing. Zero values match everything.
type Filter struct {
	Kind      scoring.Kind
	SubjectID string
	MinLevel  scoring.Level // matches this band and every band above it
	Limit     int           // 0 means DefaultListLimit
}

// Normalize applies the default limit and rejects out-of-range values.
func (f Filter) Normalize() (Filter, error) {
	switch {
	case f.Limit == 0:
		f.Limit = DefaultListLimit
	case f.Limit < 0 || f.Limit > MaxListLimit:
		return f, ErrInvalidLimit
	}
	if f.Kind != "" && !f.Kind.Valid() {
		return f, ErrInvalidKind
	}
	if f.MinLevel != "" && f.MinLevel.Rank() < 0 {
		return f, ErrInvalidLevel
	}
	return f, nil
}

func (f Filter) match(a *model.Assessment) bool {
	if f.Kind != "" && a.Kind != f.Kind {
		return false
	}
	if f.SubjectID != "" && a.SubjectID != f.SubjectID {
		return false
	}
	if f.MinLevel != "" && a.RiskLevel.Rank() < f.MinLevel.Rank() {
		return false
	}
	return true
}

// levels returns the band names matched by MinLevel, lowest first.
func (f Filter) levels() []string {
	var out []string
	for _, l := range []scoring.Level{scoring.LevelLow, scoring.LevelModerate, scoring.LevelHigh, scoring.LevelCritical} {
		if l.Rank() >= f.MinLevel.Rank() {
			out = append(out, l.String())
		}
	}
	return out
}

// Store provides read/write access to assessment history.
type Store interface {
	// Save records an assessment. Saving an ID twice is a no-op.
	Save(ctx context.Context, a model.Assessment) error

	// Get returns one assessment. Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id uuid.UUID) (model.Assessment, error)

	// List returns matching assessments, newest first.
	List(ctx context.Context, f Filter) ([]model.Assessment, error)

	// Count returns the number of stored assessments.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// Pinger is implemented by stores that can report whether they are able
// to serve requests.
type Pinger interface {
	Ping(ctx context.Context) error
}
