// Package service wires the scorers to the history pipeline and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/healthtwin/riskengine/internal/adapters/mq/queue"
	workerpool "github.com/healthtwin/riskengine/internal/adapters/mq/worker"
	"github.com/healthtwin/riskengine/internal/adapters/repository"
	"github.com/healthtwin/riskengine/internal/domain/dedupe"
	"github.com/healthtwin/riskengine/internal/domain/model"
	"github.com/healthtwin/riskengine/internal/domain/scoring"
	"github.com/healthtwin/riskengine/internal/domain/types"
	"github.com/healthtwin/riskengine/pkg/logger"
	"github.com/healthtwin/riskengine/pkg/metrics"
)

// Default pipeline sizes.
const (
	defaultWorkerCount = 4
	defaultQueueSize   = 10_000
	defaultDedupeSize  = 50_000
	defaultHistorySize = 10_000
)

// Service scores assessments and records them asynchronously.
type Service struct {
	mu sync.RWMutex

	cardiac *scoring.CardiacScorer
	fatigue *scoring.FatigueScorer

	store   repository.Store
	deduper dedupe.Deduper
	queue   *eventqueue.InMemoryQueue
	pool    *workerpool.Pool

	workerCount   int
	queueSize     int
	dedupeSize    int
	historySize   int
	recordHistory bool
	now           func() time.Time

	cardiacCount atomic.Int64
	fatigueCount atomic.Int64
	invalidCount atomic.Int64
	dupCount     atomic.Int64
	droppedCount atomic.Int64

	started   bool
	stopped   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration. Scoring works
// immediately; history recording starts with Start.
func New(opts ...Option) *Service {
	s := &Service{
		cardiac:       scoring.NewCardiacScorer(),
		fatigue:       scoring.NewFatigueScorer(),
		workerCount:   defaultWorkerCount,
		queueSize:     defaultQueueSize,
		dedupeSize:    defaultDedupeSize,
		historySize:   defaultHistorySize,
		recordHistory: true,
		now:           time.Now,
		startedAt:     time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start initializes and starts the history pipeline. A stopped service
// cannot be restarted because Stop closed its store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}
	s.startedAt = s.now()

	if !s.recordHistory {
		s.started = true
		s.logger.Info(ctx, "risk service started, history recording disabled")
		return nil
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithCapacity(s.historySize))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "risk service started",
		logger.String("store", backendName(s.store)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains pending history writes and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping risk service...")

	var errs []error
	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain history queue: %w", err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history store: %w", err))
		}
	}

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "risk service stopped")
	return errors.Join(errs...)
}

// AssessCardiac validates and scores a vital-signs snapshot.
func (s *Service) AssessCardiac(ctx context.Context, meta model.Meta, in scoring.CardiacInput) (scoring.CardiacResult, model.Receipt, error) {
	if err := in.Validate(); err != nil {
		s.Rejected(scoring.KindCardiac)
		return scoring.CardiacResult{}, model.Receipt{}, err
	}

	res := s.cardiac.Score(in)
	s.cardiacCount.Add(1)
	metrics.RecordAssessment(scoring.KindCardiac.String(), res.RiskLevel.String(), float64(res.RiskScore))

	a, err := model.NewCardiacAssessment(meta, in, res, s.now())
	if err != nil {
		s.logger.Error(ctx, "build history record", logger.Error(err))
		return res, model.Receipt{}, nil
	}
	return res, s.record(ctx, meta, a), nil
}

// AssessFatigue validates and scores sleep history.
func (s *Service) AssessFatigue(ctx context.Context, meta model.Meta, in scoring.FatigueInput) (scoring.FatigueResult, model.Receipt, error) {
	if err := in.Validate(); err != nil {
		s.Rejected(scoring.KindFatigue)
		return scoring.FatigueResult{}, model.Receipt{}, err
	}

	if in.ShiftType != "" && !in.KnownShift() {
		s.logger.Debug(ctx, "unrecognized shift type",
			logger.String("shift_type", in.ShiftType),
		)
	}

	res := s.fatigue.Score(in)
	s.fatigueCount.Add(1)
	metrics.RecordAssessment(scoring.KindFatigue.String(), res.RiskLevel.String(), res.FatigueScore)
	if !res.FitToWork {
		metrics.RecordUnfitForWork()
	}

	a, err := model.NewFatigueAssessment(meta, in, res, s.now())
	if err != nil {
		s.logger.Error(ctx, "build history record", logger.Error(err))
		return res, model.Receipt{}, nil
	}
	return res, s.record(ctx, meta, a), nil
}

// Rejected counts a request refused before scoring, including bodies the
// HTTP layer turned away for missing fields.
func (s *Service) Rejected(kind scoring.Kind) {
	s.invalidCount.Add(1)
	metrics.RecordValidationError(kind.String())
}

// record hands a to the history pipeline without blocking. Failures are
// logged and counted; they never reach the caller.
func (s *Service) record(ctx context.Context, meta model.Meta, a model.Assessment) model.Receipt { //nolint:gocritic // hugeParam: copied into the queue anyway
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || s.queue == nil {
		return model.Receipt{}
	}

	var key string
	if meta.IdempotencyKey != "" {
		key = a.Kind.String() + ":" + meta.IdempotencyKey
	}
	if key != "" && s.deduper.SeenAndRecord(ctx, key) {
		s.dupCount.Add(1)
		metrics.RecordDuplicateSubmission()
		s.logger.Debug(ctx, "duplicate idempotency key, not recorded",
			logger.String("key", meta.IdempotencyKey),
			logger.String("kind", a.Kind.String()),
		)
		return model.Receipt{Duplicate: true}
	}

	if err := s.queue.Enqueue(ctx, a); err != nil {
		if key != "" {
			s.deduper.Unrecord(ctx, key)
		}
		s.droppedCount.Add(1)
		s.logger.Warn(ctx, "history record dropped",
			logger.String("assessment_id", a.ID.String()),
			logger.String("kind", a.Kind.String()),
			logger.Error(err),
		)
		return model.Receipt{}
	}
	return model.Receipt{ID: a.ID, Recorded: true}
}

// Assessment returns one recorded assessment.
func (s *Service) Assessment(ctx context.Context, id uuid.UUID) (model.Assessment, error) {
	store, err := s.historyStore()
	if err != nil {
		return model.Assessment{}, err
	}
	return store.Get(ctx, id)
}

// Assessments lists recorded assessments, newest first.
func (s *Service) Assessments(ctx context.Context, f repository.Filter) ([]model.Assessment, error) {
	store, err := s.historyStore()
	if err != nil {
		return nil, err
	}
	return store.List(ctx, f)
}

func (s *Service) historyStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.recordHistory || s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store, nil
}

// Ready reports whether the service is started and its history store
// answers a ping.
func (s *Service) Ready(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if !s.recordHistory {
		return nil
	}
	if p, ok := s.store.(repository.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("ping history store: %w", err)
		}
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		CardiacAssessments: s.cardiacCount.Load(),
		FatigueAssessments: s.fatigueCount.Load(),
		ValidationFailures: s.invalidCount.Load(),
		DuplicateRequests:  s.dupCount.Load(),
		QueueDropped:       s.droppedCount.Load(),
		HistoryEnabled:     s.recordHistory,
		UptimeSeconds:      s.now().Sub(s.startedAt).Seconds(),
	}

	if s.started && s.recordHistory {
		stats.HistoryBackend = backendName(s.store)
		stats.QueueSize = s.queue.Len(ctx)
		stats.QueueCapacity = s.queue.Capacity()
		stats.WorkerCount = s.pool.Size()
		stats.DedupeKeys = s.deduper.Size()
		if n, err := s.store.Count(ctx); err == nil {
			stats.HistoryRecords = n
		} else {
			s.logger.Warn(ctx, "count history records", logger.Error(err))
		}
	}
	return stats
}

func backendName(store repository.Store) string {
	switch store.(type) {
	case *repository.MemoryStore:
		return "memory"
	case *repository.PostgresStore:
		return "postgres"
	case nil:
		return ""
	default:
		return "custom"
	}
}
