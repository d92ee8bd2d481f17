package domain

import (
	"errors"
	"fmt"
)

// Domain error types for consistent error handling across the application.
// These errors represent business rule violations and domain constraints.

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when authentication is required but not provided.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the player lacks permission for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when there's a conflict with the current state.
	ErrConflict = errors.New("conflict")

	// ErrStoreUnavailable marks a transient failure against the backing store.
	// Callers may retry the triggering action; no state has changed.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Submission guard rejections. Each wraps a base error so errors.Is keeps
// working, but carries a distinguishable reason for the caller.

var (
	// ErrDuplicateSubmission: a player already has a dish in this round.
	ErrDuplicateSubmission = errors.New("dish already submitted for this round")

	// ErrDuplicateRating: this voter already rated this dish.
	ErrDuplicateRating = errors.New("dish already rated by this voter")

	// ErrSelfRating: a voter may never rate their own dish.
	ErrSelfRating = errors.New("self-rating forbidden")

	// ErrRoundNotOpen: the round does not accept writes in its current status.
	ErrRoundNotOpen = errors.New("round not open for voting")
)

// DomainError wraps a base error with additional context.
type DomainError struct {
	// Base is the underlying error type (e.g., ErrNotFound)
	Base error

	// Message provides human-readable context
	Message string

	// Field indicates which field caused the error (for validation errors)
	Field string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Base.Error(), e.Message, e.Field)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Base.Error(), e.Message)
	}
	return e.Base.Error()
}

// Unwrap returns the base error for errors.Is/As support.
func (e *DomainError) Unwrap() error {
	return e.Base
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Base:    ErrNotFound,
		Message: resource,
	}
}

// NewValidationError creates a validation error for a specific field.
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Base:    ErrInvalidInput,
		Message: message,
		Field:   field,
	}
}

// NewConflictError creates a conflict error with context.
func NewConflictError(message string) *DomainError {
	return &DomainError{
		Base:    ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a forbidden error with context.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{
		Base:    ErrForbidden,
		Message: message,
	}
}

// NewUnauthorizedError creates an unauthorized error with context.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{
		Base:    ErrUnauthorized,
		Message: message,
	}
}

// NewDuplicateSubmissionError rejects a second dish from the same owner
// in the same round.
func NewDuplicateSubmissionError() *DomainError {
	return &DomainError{
		Base:    ErrDuplicateSubmission,
		Message: "one dish per player per round",
	}
}

// NewDuplicateRatingError rejects a second rating from the same voter for
// the same dish.
func NewDuplicateRatingError() *DomainError {
	return &DomainError{
		Base:    ErrDuplicateRating,
		Message: "each dish can be rated once per voter",
	}
}

// NewSelfRatingError rejects a voter rating their own dish.
func NewSelfRatingError() *DomainError {
	return &DomainError{
		Base:    ErrSelfRating,
		Message: "players cannot rate their own dish",
	}
}

// NewRoundNotOpenError rejects a write against a round whose status does
// not accept it.
func NewRoundNotOpenError(status RoundStatus) *DomainError {
	return &DomainError{
		Base:    ErrRoundNotOpen,
		Message: fmt.Sprintf("round status is %s", status),
	}
}

// NewStoreError wraps a transient store failure.
func NewStoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsForbidden checks if an error is a forbidden error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnauthorized checks if an error is unauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsStoreUnavailable checks if an error is a transient store failure.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsDuplicateSubmission checks for the one-dish-per-round rejection.
func IsDuplicateSubmission(err error) bool {
	return errors.Is(err, ErrDuplicateSubmission)
}

// IsDuplicateRating checks for the one-rating-per-dish rejection.
func IsDuplicateRating(err error) bool {
	return errors.Is(err, ErrDuplicateRating)
}

// IsSelfRating checks for the self-rating rejection.
func IsSelfRating(err error) bool {
	return errors.Is(err, ErrSelfRating)
}

// IsRoundNotOpen checks for writes against a round that is not voting_open.
func IsRoundNotOpen(err error) bool {
	return errors.Is(err, ErrRoundNotOpen)
}
