package api

import (
	"errors"
)

// Sentinel kinds for API errors.
var (
	ErrServe            = errors.New("http serve failed")
	ErrBadRequest       = errors.New("bad request")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrUnavailable      = errors.New("unavailable")
	ErrInternal         = errors.New("internal error")
)

// OpError ties an error kind to the handler operation that produced it.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &OpError{Op: op, Kind: kind}
}

// WrapKind classifies err as kind for op.
func WrapKind(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}
