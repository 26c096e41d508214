package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrNotFound     = errors.New("assessment not found")
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrInvalidKind  = errors.New("invalid assessment kind")
	ErrInvalidLevel = errors.New("invalid risk level")
	ErrClosed       = errors.New("store closed")

	// ErrHistoryDisabled is returned by callers that run without a store.
	ErrHistoryDisabled = errors.New("assessment history disabled")
)
