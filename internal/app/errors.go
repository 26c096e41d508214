package service

import (
	"errors"

	"github.com/healthtwin/riskengine/internal/adapters/repository"
)

// ErrHistoryDisabled is returned by history reads when recording is off or
// the service has not been started.
var ErrHistoryDisabled = repository.ErrHistoryDisabled

// Lifecycle errors.
var (
	ErrNotStarted = errors.New("risk service not started")
	ErrStopped    = errors.New("risk service stopped")
)
