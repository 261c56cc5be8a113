package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrFull              = errors.New("no capacity left")
	ErrConflict          = errors.New("schedule conflict")
	ErrAlreadyQueued     = errors.New("already queued")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnauthorized      = errors.New("unauthorized")
)

// ConflictError names the registered sessions that overlap the requested one.
type ConflictError struct {
	SessionID string
	Conflicts []ItinerarySession
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, s := range e.Conflicts {
		ids = append(ids, s.ID)
	}
	return fmt.Sprintf("%s: session %s overlaps %s", ErrConflict, e.SessionID, strings.Join(ids, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
