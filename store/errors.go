package store

import (
	"errors"
	"fmt"
)

var (
	ErrMissingResource     = errors.New("attendance resource not found")
	ErrMalformedResource   = errors.New("attendance resource is malformed")
	ErrPersistFailure      = errors.New("failed to persist attendance")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrUnknownDay          = errors.New("unknown trip day")
	ErrUnknownAttendee     = errors.New("unknown attendee")
	ErrNotLoaded           = errors.New("roster not loaded")
)

// PersistError reports a failed write-back. The mutation that triggered it
// is already applied in memory.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPersistFailure, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersistFailure, e.Err}
}
