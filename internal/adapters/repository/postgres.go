package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthtwin/riskengine/internal/domain/model"
	"github.com/healthtwin/riskengine/internal/domain/scoring"
)

var _ Store = (*PostgresStore)(nil)

const assessmentColumns = `id, kind, subject_id, score, risk_level, factors, fit_to_work, input, assessed_at`

// NewPool creates a pgxpool.Pool for dsn and verifies connectivity by
// pinging the database before returning. maxConns is applied when positive.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: parse database url: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	poolCfg.MaxConnLifetime = 1 * time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("repository: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository: ping: %w", err)
	}
	return pool, nil
}

// PostgresStore implements Store on the risk_assessments table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool. The store owns the pool and closes
// it on Close.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, a model.Assessment) error { //nolint:gocritic // hugeParam: mirrors Store
	factors := a.Factors
	if factors == nil {
		factors = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO risk_assessments (`+assessmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, string(a.Kind), a.SubjectID, a.Score, string(a.RiskLevel), factors, a.FitToWork, []byte(a.Input), a.AssessedAt)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (model.Assessment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+assessmentColumns+` FROM risk_assessments WHERE id = $1`, id)
	a, err := scanAssessment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Assessment{}, ErrNotFound
	}
	if err != nil {
		return model.Assessment{}, fmt.Errorf("query assessment: %w", err)
	}
	return a, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]model.Assessment, error) {
	f, err := f.Normalize()
	if err != nil {
		return nil, err
	}

	query, args := buildListQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	out := make([]model.Assessment, 0, f.Limit)
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, nil
}

// Count implements Store.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM risk_assessments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("repository: health check: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// buildListQuery renders the SELECT for f with positional arguments.
func buildListQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		args = append(args, string(f.Kind))
		where = append(where, "kind = $"+strconv.Itoa(len(args)))
	}
	if f.SubjectID != "" {
		args = append(args, f.SubjectID)
		where = append(where, "subject_id = $"+strconv.Itoa(len(args)))
	}
	if f.MinLevel != "" {
		args = append(args, f.levels())
		where = append(where, "risk_level = ANY($"+strconv.Itoa(len(args))+")")
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + assessmentColumns + ` FROM risk_assessments`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	args = append(args, f.Limit)
	b.WriteString(" ORDER BY assessed_at DESC, id LIMIT $" + strconv.Itoa(len(args)))
	return b.String(), args
}

// scanAssessment reads one row in assessmentColumns order.
func scanAssessment(row pgx.Row) (model.Assessment, error) {
	var (
		a     model.Assessment
		kind  string
		level string
		input []byte
	)
	if err := row.Scan(&a.ID, &kind, &a.SubjectID, &a.Score, &level, &a.Factors, &a.FitToWork, &input, &a.AssessedAt); err != nil {
		return model.Assessment{}, err
	}
	a.Kind = scoring.Kind(kind)
	if !a.Kind.Valid() {
		return model.Assessment{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	lvl, err := scoring.ParseLevel(level)
	if err != nil {
		return model.Assessment{}, err
	}
	a.RiskLevel = lvl
	a.Input = input
	a.AssessedAt = a.AssessedAt.UTC()
	return a, nil
}
