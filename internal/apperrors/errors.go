package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to map it to a
// transport response or a retry decision.
type Kind int

const (
	// Validation means the input was malformed and the request never
	// reached an external collaborator.
	Validation Kind = iota
	// NotFound means a referenced user or card does not exist.
	NotFound
	// Conflict is reserved for uniqueness violations (duplicate email
	// or document number on registration).
	Conflict
	// Dependency means a downstream store or service was unavailable
	// or timed out. Retryable; must never be reported as NotFound.
	Dependency
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Dependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error carries a kind alongside the usual message and wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the kind of err, or ok=false if err carries none.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
