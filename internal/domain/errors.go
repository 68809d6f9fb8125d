// Package domain defines the stable error taxonomy shared by the service
// layer and the HTTP layer.
package domain

import "errors"

// Code identifies a class of domain failure. The set is closed: storage or
// transport faults are not domain errors and must not be mapped onto it.
type Code string

const (
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "RESERVATION_CONFLICT"
)

// Error is a structured, user-facing failure with a stable code.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Unauthorized reports a missing, invalid, or expired credential, or a
// principal that no longer exists.
func Unauthorized(message string) error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// InvalidArgument reports malformed or unresolvable input.
func InvalidArgument(message string) error {
	return &Error{Code: CodeInvalidArgument, Message: message}
}

// NotFound reports a resource that is absent or not visible to the caller.
func NotFound(message string) error {
	return &Error{Code: CodeNotFound, Message: message}
}

// Conflict reports an overlapping booking for the same room and time.
func Conflict(message string) error {
	return &Error{Code: CodeConflict, Message: message}
}

// AsError unwraps err into a *Error if it is one.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
