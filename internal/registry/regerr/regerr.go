// Package regerr defines the closed set of error kinds produced by the
// registry core and maps them to HTTP status codes at the API boundary.
package regerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the error kinds a registry operation can fail with.
type Kind int

const (
	// Internal covers anything not otherwise classified, including panics
	// recovered at a handler boundary.
	Internal Kind = iota
	InvalidName
	InvalidVersion
	ParseError
	VersionNotNewer
	NotFound
	IOError
	VCSError
	ChecksumFailure
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case InvalidName:
		return "InvalidName"
	case InvalidVersion:
		return "InvalidVersion"
	case ParseError:
		return "ParseError"
	case VersionNotNewer:
		return "VersionNotNewer"
	case NotFound:
		return "NotFound"
	case IOError:
		return "IOError"
	case VCSError:
		return "VCSError"
	case ChecksumFailure:
		return "ChecksumFailure"
	case Unavailable:
		return "Unavailable"
	default:
		return "Internal"
	}
}

// Status reports the HTTP status code spec.md §7 assigns to the Kind.
func (k Kind) Status() int {
	switch k {
	case InvalidName, InvalidVersion, ParseError, VersionNotNewer, NotFound:
		return statusFor(k)
	default:
		return http.StatusInternalServerError
	}
}

func statusFor(k Kind) int {
	if k == NotFound {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// Error is a registry error carrying a Kind, the operation that produced it,
// and an optional wrapped cause. It composes with errors.Is/As/Unwrap so
// callers can walk the chain the way the HTTP surface needs to (spec.md §6,
// one detail per link, outermost first).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for the given kind and operation, wrapping err.
func New(op string, k Kind, err error) *Error {
	return &Error{Kind: k, Op: op, Err: err}
}

// KindOf walks the error chain for the first *Error and reports its Kind.
// An error with no *Error in its chain is treated as Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Status reports the HTTP status the HTTP surface should use for err.
func Status(err error) int {
	return KindOf(err).Status()
}
