package scoring

import (
	"errors"
	"strings"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects every rejected field of an input record.
// It matches ErrInvalidInput via errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// Add records a rejected field.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// Err returns e when at least one field was rejected, nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
