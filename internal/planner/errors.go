package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks inputs the planner refuses to run with.
	ErrValidation = errors.New("planner: invalid input")
	// ErrInvalidStep is returned for a non-positive rounding step or block size.
	ErrInvalidStep = fmt.Errorf("%w: step must be positive", ErrValidation)
	// ErrInvalidWindow is returned when the date window is empty.
	ErrInvalidWindow = fmt.Errorf("%w: end date before start date", ErrValidation)
)

// ValidationError names the offending field of a rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match field errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
