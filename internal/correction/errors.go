package correction

import (
	"errors"
	"fmt"
)

var (
	ErrWrongStage = errors.New("correction: wrong stage")
	ErrNotFound   = errors.New("correction: not found")
)

func wrongStage(op string, at Stage) error {
	return fmt.Errorf("%w: %s not allowed in %s", ErrWrongStage, op, at)
}

// RetryableError wraps a model or persistence failure during Analyze. The
// workflow stays in Analyze and the same call can be repeated.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string { return "correction " + e.Op + ": " + e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }
