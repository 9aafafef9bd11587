package events

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotRegistered indicates a detach of a listener that is not currently
	// attached to the registry it claims: already detached, foreign, or stale.
	ErrNotRegistered = errors.New("listener is not registered for this event")

	// ErrInvalidPriority indicates a priority outside Lowest..Monitor.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidBinding indicates a bulk registration tuple is incomplete.
	ErrInvalidBinding = errors.New("invalid handler binding")
)

// DetachError wraps a failed detach with the listener it concerned.
type DetachError struct {
	// ListenerID identifies the listener.
	ListenerID string
	// Event names the event the listener claims to belong to.
	Event string
	// Err is the underlying error, usually ErrNotRegistered.
	Err error
}

// Error implements the error interface.
func (e *DetachError) Error() string {
	return fmt.Sprintf("detach listener %s from %s: %v", e.ListenerID, e.Event, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *DetachError) Unwrap() error {
	return e.Err
}

// ListenerError wraps the failure of one listener during a raise.
// The raise stops at the first ListenerError.
type ListenerError struct {
	// ListenerID identifies the listener that failed.
	ListenerID string
	// Priority is the tier the listener was registered at.
	Priority Priority
	// Event names the event being raised.
	Event string
	// Err is the error returned by the listener.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("event %s: listener %s (%s): %v", e.Event, e.ListenerID, e.Priority, e.Err)
}

// Unwrap returns the listener's error for errors.Is/As support.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// PanicError captures a listener panic when panic recovery is enabled.
type PanicError struct {
	// ListenerID identifies the listener that panicked.
	ListenerID string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("listener %s panicked: %v", e.ListenerID, e.Value)
}

// errListenerPanicked marks spans of raises that unwound through a panic.
var errListenerPanicked = errors.New("listener panicked")
