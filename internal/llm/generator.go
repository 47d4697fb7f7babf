package llm

import (
	"context"
	"errors"
	"fmt"
)

// InlineImage is an image sent next to the prompt.
type InlineImage struct {
	MIMEType string
	Data     []byte
}

// Request is one text generation call.
type Request struct {
	Prompt      string
	Image       *InlineImage
	Temperature float32
	MaxTokens   int32
}

// Generator produces raw model text. Implementations must return a
// *ServiceError for transport or provider failures.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ServiceError is any failure talking to the language model.
type ServiceError struct {
	Op     string
	Status int // HTTP status when the provider reported one
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llm %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ErrParseRecoveredEmpty is logged when model output held no usable JSON and
// an empty result was substituted. It is never returned.
var ErrParseRecoveredEmpty = errors.New("llm: unparsable model output recovered as empty")

func asServiceError(op string, err error) error {
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return &ServiceError{Op: op, Err: err}
}
