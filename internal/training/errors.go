package training

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrPersistence        = errors.New("persistence error")
	ErrUnknownComplex     = errors.New("unknown complex")
	ErrNoComplexSelected  = errors.New("no complex selected")
	ErrExerciseOutOfRange = errors.New("exercise index out of range")
	ErrSetOutOfRange      = errors.New("set index out of range")
	ErrInvalidState       = errors.New("operation not allowed in current state")
	ErrInvalidDirection   = errors.New("invalid navigation direction")
	ErrDiscardRejected    = errors.New("discarding current progress was not confirmed")
)

// ValidationError rejects user input: missing or non-positive weight/reps,
// or ratings outside [MinRating, MaxRating]. The rejected operation changes nothing.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps a failed save call. The session summary has already
// been added to the local history when this is returned.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist session: %s", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
