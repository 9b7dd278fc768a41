// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import "errors"

var (
	// ErrNotFound is returned when a session, estimate, or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when an owner token does not match the session
	// or a declared owner does not resolve to a known user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionFinalized is returned when a terminal session is asked to
	// finalize again.
	ErrSessionFinalized = errors.New("session already finalized")
	// ErrInvalidEstimateValue is returned for negative estimate values and for
	// finalize values outside (0, 300].
	ErrInvalidEstimateValue = errors.New("invalid estimate value")
)

// ValidationError carries field-level input problems that callers can surface
// to users without parsing message text.
type ValidationError struct {
	FieldErrors map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	for field, msg := range v.FieldErrors {
		return "validation failed: " + field + ": " + msg
	}
	return "validation failed"
}

// HasErrors reports whether any field-level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add records a field-level validation error.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
