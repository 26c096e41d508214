package service

import (
	"time"

	"github.com/healthtwin/riskengine/internal/adapters/repository"
	"github.com/healthtwin/riskengine/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of history writers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of assessments awaiting storage.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithHistorySize sets the capacity of the default in-memory store.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithRecordHistory enables or disables assessment recording.
func WithRecordHistory(enabled bool) Option {
	return func(s *Service) {
		s.recordHistory = enabled
	}
}

// WithStore replaces the default in-memory history store. The service
// takes ownership and closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used to stamp assessments.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
