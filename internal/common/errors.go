package common

import (
	"errors"
	"fmt"
	"strings"
)

// Business logic errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrInternal           = errors.New("internal error")
	ErrUnknownContentType = errors.New("unknown content type")
	ErrDuplicateSlug      = errors.New("slug already exists")

	// Validation
	ErrValidationFailed = errors.New("validation failed")

	// Tender revision chain
	ErrNotLatestVersion = errors.New("only the latest version of a tender can be forked")
	ErrVersionConflict  = errors.New("tender chain was modified concurrently")
)

// ValidationError lists the offending fields; it matches ErrValidationFailed with errors.Is
type ValidationError struct {
	Missing []string          `json:"missing,omitempty"`
	Invalid map[string]string `json:"invalid,omitempty"`
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	for field, reason := range e.Invalid {
		parts = append(parts, fmt.Sprintf("%s %s", field, reason))
	}
	if len(parts) == 0 {
		return ErrValidationFailed.Error()
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// AddMissing records a required field that was not supplied
func (e *ValidationError) AddMissing(field string) {
	e.Missing = append(e.Missing, field)
}

// AddInvalid records a field whose value could not be accepted
func (e *ValidationError) AddInvalid(field, reason string) {
	if e.Invalid == nil {
		e.Invalid = map[string]string{}
	}
	e.Invalid[field] = reason
}

// Empty reports whether no problem was recorded
func (e *ValidationError) Empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// OrNil returns e when it holds problems, nil otherwise
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}
