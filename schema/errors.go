package schema

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a validation failure.
type ErrorKind uint8

const (
	// ErrMissingField reports a required field absent from the tree.
	ErrMissingField ErrorKind = iota
	// ErrTypeMismatch reports a present field of the wrong type.
	ErrTypeMismatch
	// ErrCheckFailed reports a post-validation check rejecting a value.
	ErrCheckFailed
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrMissingField:
		return "missing field"
	case ErrTypeMismatch:
		return "type mismatch"
	case ErrCheckFailed:
		return "check failed"
	default:
		return "unknown"
	}
}

// ValidationError is a single validation failure at one path.
type ValidationError struct {
	// Path locates the problem in path expression form.
	Path string

	// Kind classifies the failure.
	Kind ErrorKind

	// Message describes what is wrong.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every failure found across one validation
// pass. It is never truncated.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e.Errors), strings.Join(msgs, "\n  - "))
}

// Add records a failure.
func (e *ValidationErrors) Add(path string, kind ErrorKind, message string) {
	e.Errors = append(e.Errors, &ValidationError{Path: path, Kind: kind, Message: message})
}

// HasErrors reports whether any failure was recorded.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Len returns the number of recorded failures.
func (e *ValidationErrors) Len() int {
	return len(e.Errors)
}

// ByPath returns the failures recorded for an exact path.
func (e *ValidationErrors) ByPath(path string) []*ValidationError {
	var out []*ValidationError
	for _, err := range e.Errors {
		if err.Path == path {
			out = append(out, err)
		}
	}
	return out
}

// AsError returns nil when no failure was recorded, otherwise the list
// itself.
func (e *ValidationErrors) AsError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func missingField(errs *ValidationErrors, path string) {
	errs.Add(path, ErrMissingField, "required field is missing")
}

func typeMismatch(errs *ValidationErrors, path string, expected, found string) {
	errs.Add(path, ErrTypeMismatch, fmt.Sprintf("expected %s, found %s", expected, found))
}
