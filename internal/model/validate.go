package model

import (
	"errors"
	"strings"
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrEmptyName     = errors.New("name is required")
)

// ValidationErrors collects every problem found in a payload.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = "- " + err.Error()
	}
	return "validation failed:\n" + strings.Join(msgs, "\n")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	return v
}

// orNil returns nil for an empty set so callers can return it directly.
func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
