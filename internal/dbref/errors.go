package dbref

import (
	"errors"
	"fmt"
)

// Kind classifies reference failures.
type Kind int

const (
	KindUnknown Kind = iota
	// KindMalformedSource is returned by Create when the identifier source
	// cannot produce an $id.
	KindMalformedSource
	// KindInvalidRefType is returned by Get when $ref is not a string.
	KindInvalidRefType
	// KindInvalidDBType is returned by Get when $db is not a string.
	KindInvalidDBType
)

// Numeric codes reported with resolver type errors. These are stable.
const (
	CodeInvalidRefType = 10
	CodeInvalidDBType  = 11
)

func (k Kind) String() string {
	switch k {
	case KindMalformedSource:
		return "REF_MALFORMED_SOURCE"
	case KindInvalidRefType:
		return "REF_INVALID_REF_TYPE"
	case KindInvalidDBType:
		return "REF_INVALID_DB_TYPE"
	default:
		return "REF_UNKNOWN"
	}
}

var (
	// ErrMissingID indicates a document-like source without an _id field.
	ErrMissingID = errors.New("cannot find _id key")
	// ErrUnsupportedSource indicates a source (file, connection, channel...)
	// that has no identifier mapping.
	ErrUnsupportedSource = errors.New("unsupported identifier source")
	// ErrEmptyCollection indicates an empty collection name.
	ErrEmptyCollection = errors.New("collection name is required")
	// ErrInvalidRefType indicates a $ref field that is not a string.
	ErrInvalidRefType = errors.New("$ref field must be a string")
	// ErrInvalidDBType indicates a $db field that is not a string.
	ErrInvalidDBType = errors.New("$db field must be a string")
)

// Error is the error type returned by Create and Get for reference-level
// failures. Collaborator failures are not converted to Error.
type Error struct {
	Op     string // "create" or "get"
	Kind   Kind
	Code   int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("dbref %s: %v", e.Op, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel carried by e, or an *Error of
// the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the numeric code of the first *Error in err's chain.
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

func malformed(err error, detail string) *Error {
	return &Error{Op: "create", Kind: KindMalformedSource, Err: err, Detail: detail}
}
