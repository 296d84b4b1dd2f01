package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrAssessmentNotFound = fmt.Errorf("%w: assessment", ErrNotFound)
	ErrGroupNotFound      = fmt.Errorf("%w: profile group", ErrNotFound)

	// Input validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Numerical errors
	ErrSingularMatrix = errors.New("singular matrix")
	ErrNonConvergence = errors.New("iteration budget exhausted before convergence")

	// Handoff errors
	ErrMalformedHandoff = errors.New("malformed solver handoff")
)

// Error constructors with context

// NewInvalidInputError reports a validation failure on a named field.
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: field %q: %s", ErrInvalidInput, field, reason)
}

// NewSingularMatrixError reports a matrix that could not be inverted.
// The context names the matrix (covariance, bordered Hessian, ...).
func NewSingularMatrixError(context string, detail string) error {
	if detail == "" {
		return fmt.Errorf("%w: %s", ErrSingularMatrix, context)
	}
	return fmt.Errorf("%w: %s: %s", ErrSingularMatrix, context, detail)
}

// NewNonConvergenceError reports a solve that ran out of iterations. The
// residual is the last observed value of the aggregate convergence test.
func NewNonConvergenceError(iterations int, residual float64) error {
	return fmt.Errorf("%w: %d iterations, residual %.6g", ErrNonConvergence, iterations, residual)
}

// NewMalformedHandoffError reports a solution or parameter bundle that is
// missing required fields or has the wrong shape.
func NewMalformedHandoffError(field string, reason string) error {
	return fmt.Errorf("%w: field %q: %s", ErrMalformedHandoff, field, reason)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsSingularMatrixError(err error) bool {
	return errors.Is(err, ErrSingularMatrix)
}

// IsNonConvergenceError distinguishes the one non-fatal condition: the caller
// still receives a best-effort solution alongside this error.
func IsNonConvergenceError(err error) bool {
	return errors.Is(err, ErrNonConvergence)
}

func IsMalformedHandoffError(err error) bool {
	return errors.Is(err, ErrMalformedHandoff)
}
