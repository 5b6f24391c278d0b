// Package service holds the fleet core: device and gateway managers with
// the uniqueness, capacity and ownership rules, and the audit logging that
// accompanies every gateway mutation.
package service

import (
	"errors"
	"fmt"
)

// Domain error kinds. Handlers map ErrNotFound to 404 and ErrConflict to
// 409 via errors.Is; anything else is an internal failure.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Error carries a human-readable message while staying matchable against
// the kind sentinels through Unwrap.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

func notFoundf(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &Error{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}
