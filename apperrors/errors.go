package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain error taxonomy. Services wrap these with
// context; controllers match on them with errors.Is to pick the HTTP status.
var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation error")
	ErrClassificationMismatch = errors.New("classification mismatch")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInsufficientCollateral = errors.New("insufficient collateral")
	ErrConflict               = errors.New("conflict")
)

// Kind returns the machine-readable error kind for a domain error, or
// "Internal" when the error does not belong to the taxonomy.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrClassificationMismatch):
		return "ClassificationMismatch"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrInvalidStateTransition):
		return "InvalidStateTransition"
	case errors.Is(err, ErrInsufficientCollateral):
		return "InsufficientCollateral"
	case errors.Is(err, ErrConflict):
		return "ConflictError"
	}
	return "Internal"
}

// NewNotFoundError reports an unknown id for the named resource
func NewNotFoundError(resource string, id uint) error {
	return fmt.Errorf("%s %d: %w", resource, id, ErrNotFound)
}

// NewValidationError reports malformed or inconsistent input
func NewValidationError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

// NewClassificationMismatchError reports a reclassification submission whose
// fromClass does not match the batch's current classification
func NewClassificationMismatchError(fromClass, current string) error {
	return fmt.Errorf("fromClass %q does not match current classification %q: %w",
		fromClass, current, ErrClassificationMismatch)
}

// NewInvalidStateTransitionError reports an attempted transition out of a
// terminal state
func NewInvalidStateTransitionError(resource, from, to string) error {
	return fmt.Errorf("%s cannot move from %s to %s: %w", resource, from, to, ErrInvalidStateTransition)
}

// NewInsufficientCollateralError reports a loan that would over-pledge a batch
func NewInsufficientCollateralError(requested, available int64) error {
	return fmt.Errorf("requested %d units, %d available: %w", requested, available, ErrInsufficientCollateral)
}

// NewConflictError reports a write blocked by existing references
func NewConflictError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrConflict)
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is a ValidationError, including the
// ClassificationMismatch detail kind
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrClassificationMismatch)
}
