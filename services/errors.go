package services

import "fmt"

// Error taxonomy surfaced to handlers. Anything else bubbling out of a service
// is treated as an internal error. Repeat grants of badges and titles are
// defined behavior, not conflicts — only lost races and duplicate acceptances
// produce a ConflictError.

// ValidationError: out-of-order step, missing required check-in, malformed input
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError: duplicate acceptance, lost race on a step advance
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// NotFoundError: missing quest, step, profile, or user-quest row
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found", e.Resource) }
