// Package apperr defines the business error taxonomy shared by the
// matching and lifecycle packages and translated to HTTP by the API.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business failure.
type Kind int

// Error kinds. Every kind is recoverable by the caller.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindInvalidOperation
	KindConflict
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Messages callers and tests match on.
const (
	MsgOnlyFoundClaimable = "only found items can be claimed"
	MsgOwnItem            = "cannot claim own item"
	MsgAlreadyClaimed     = "already claimed"
	MsgAlreadyDecided     = "already decided"
	MsgAdminOnly          = "admin role required"
)

// Error is a classified business error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced item, claim or user that does not exist.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// Validation reports malformed input.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// InvalidOperation reports a business-rule violation.
func InvalidOperation(format string, args ...any) *Error {
	return newf(KindInvalidOperation, format, args...)
}

// Conflict reports a lost concurrent-mutation race.
func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

// Forbidden reports a caller lacking the required capability.
func Forbidden(format string, args ...any) *Error {
	return newf(KindForbidden, format, args...)
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the business message of err, or "" if err is not an *Error.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
