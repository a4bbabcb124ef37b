// Package errs carries the three error kinds the engine and its host
// distinguish: Config (fatal at startup), Readback (handled locally, skip
// analysis), and Internal (a bug; fatal).
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error for the caller's dispatch logic.
type Kind int

const (
	// Config signals a construction-time violation (non-power-of-two line
	// size or set count, zero associativity, a cache size that doesn't
	// divide evenly). The host must treat this as fatal.
	Config Kind = iota
	// Readback signals a failed memory-readback bridge call for an
	// address that would otherwise be analyzed. The engine swallows
	// these: counters still update, the affected line is skipped for
	// transfer/reuse analysis.
	Readback
	// Internal signals an assertion violation inside the engine itself —
	// a bug, not an external condition.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Readback:
		return "readback"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a typed, causal error: Kind drives dispatch, Cause (when present)
// is preserved via github.com/pkg/errors so a fatal path can still log a
// full stack.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to Cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs a causeless Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind around an existing cause,
// recording a stack trace via github.com/pkg/errors so the fatal paths
// (Config, Internal) can print one.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.WithStack(cause)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
