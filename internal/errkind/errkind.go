// Package errkind defines typed errors with machine-readable categories.
// Every failure surfaced to the caller carries a Kind naming the stage that
// produced it, so the CLI can report `<kind>: <message>` and callers can
// branch without string matching.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConfigMissing indicates a required environment variable is absent.
	ConfigMissing Kind = "config_missing"
	// SchemaUnavailable indicates the database or its catalog could not be read.
	SchemaUnavailable Kind = "schema_unavailable"
	// GenerationFailed indicates the model produced no usable SQL.
	GenerationFailed Kind = "generation_failed"
	// RejectedQuery indicates the candidate SQL failed validation.
	RejectedQuery Kind = "rejected_query"
	// ExecutionFailed indicates the database rejected the validated query.
	ExecutionFailed Kind = "execution_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }
func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }

func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf walks the error chain and returns the Kind of the outermost E, or
// "" when the chain carries none.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
