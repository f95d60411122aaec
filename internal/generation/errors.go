package generation

import (
	"errors"
	"fmt"
)

// Kind classifies why a generation call produced nothing usable.
type Kind string

const (
	KindUnreachable    Kind = "unreachable"     // network failure, timeout, cancelled context
	KindEmptyPayload   Kind = "empty_payload"   // the service answered with no text
	KindServiceFailure Kind = "service_failure" // the service reported an error or blocked the prompt
)

// GenerationError is returned for every failed call to the generative service.
// It is never retried here; the user re-issues the action.
type GenerationError struct {
	Persona string
	Kind    Kind
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generation (%s) failed: %s", e.Persona, e.Kind)
	}
	return fmt.Sprintf("generation (%s) failed: %s: %v", e.Persona, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ErrNoResponse is the cause attached to empty-payload failures.
var ErrNoResponse = errors.New("no response from model")

// IsGenerationError reports whether err (or anything it wraps) is a *GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

func newError(persona string, kind Kind, err error) error {
	return &GenerationError{Persona: persona, Kind: kind, Err: err}
}
