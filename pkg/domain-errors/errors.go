// Package domainerrors provides coded errors for the engine's failure
// taxonomy. Services attach a stable machine-readable code to every error
// that crosses a module boundary; transports translate codes to status
// codes without inspecting error strings.
//
// Stores do not use this package directly: they return pkg/platform/sentinel
// values and services translate those into coded errors.
package domainerrors

import "errors"

// Code is the stable, wire-visible error code. Values are snake_case and
// are written verbatim into JSON error envelopes.
type Code string

const (
	// CodeInvalidInput marks malformed or semantically invalid caller input
	// (bad UUIDs, reversed time slots, missing required fields).
	CodeInvalidInput Code = "invalid_input"

	// CodeBadRequest marks undecodable or structurally broken requests.
	CodeBadRequest Code = "bad_request"

	// CodeNotFound marks references to entities that do not exist.
	CodeNotFound Code = "not_found"

	// CodeAlreadyLifted marks an attempt to lift a restriction twice.
	CodeAlreadyLifted Code = "already_lifted"

	// CodeConflict marks state conflicts: a duplicate active authorization
	// for a pair, or revoking an authorization that is already revoked.
	CodeConflict Code = "conflict"

	// CodeStorage marks ledger or store I/O failures. The cause is wrapped.
	CodeStorage Code = "storage_error"

	// CodeTimeout marks deadline expiry before an operation could start.
	CodeTimeout Code = "timeout"

	// CodeUnauthorized marks missing or invalid staff credentials.
	CodeUnauthorized Code = "unauthorized"

	// CodeInternal marks unexpected failures. Descriptions are not exposed
	// to callers for this code.
	CodeInternal Code = "internal_error"
)

// Error is a domain error carrying a Code, a human-readable message, and an
// optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return string(e.Code) + ": " + e.Message
	}
	return string(e.Code)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Is makes two domain errors equal when code and message match, so tests
// can assert with errors.Is against a freshly constructed error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a domain error with a code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Unwrap for logging and sentinel checks.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// Is is a readable alias for HasCode at call sites that test error codes.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return CodeInternal
}
