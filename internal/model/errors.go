package model

import "errors"

var (
	// ErrValidation marks a missing or malformed inbound field
	ErrValidation = errors.New("validation failed")
	// ErrAuthentication marks a failed or tokenless AA network login
	ErrAuthentication = errors.New("login failed")
	// ErrDownstream marks any failed AA network exchange
	ErrDownstream = errors.New("aa network request failed")
	// ErrStoreUnavailable marks a failed session store call
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// DownstreamError wraps the cause of a failed consent operation.
// It matches both ErrDownstream and the wrapped cause under errors.Is.
type DownstreamError struct {
	Op  string
	Err error
}

func (e *DownstreamError) Error() string {
	return "failed to " + e.Op + ": " + e.Err.Error()
}

func (e *DownstreamError) Unwrap() []error {
	return []error{ErrDownstream, e.Err}
}

// ErrSessionNotFound is returned when updating a session that does not exist
var ErrSessionNotFound = errors.New("session not found")
