package events

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"
)

// callback is a tagged union over the two listener shapes. Exactly one
// field is set, fixed at registration.
type callback struct {
	plain      func(payload any) error
	withHandle func(payload any, l *Listener) error
}

// Listener is the handle of one registered callback. Handles compare by
// identity: two listeners with the same priority and callback are distinct.
//
// A Listener belongs to exactly one event or bus key for its lifetime.
// Once detached it cannot be attached again; add a new listener instead.
type Listener struct {
	id       string
	priority Priority
	cb       callback

	// owner is weak so a handle held by a subscriber does not keep the
	// event's registry alive.
	owner    weak.Pointer[dispatcher]
	detached atomic.Bool
}

func newListener(owner *dispatcher, priority Priority, cb callback) *Listener {
	return &Listener{
		id:       uuid.NewString(),
		priority: priority,
		cb:       cb,
		owner:    weak.Make(owner),
	}
}

// ID returns a unique identifier used in logs, traces and errors.
func (l *Listener) ID() string {
	return l.id
}

// Priority returns the tier the listener was registered at.
func (l *Listener) Priority() Priority {
	return l.priority
}

// RequiresHandle reports whether the callback receives the Listener itself.
func (l *Listener) RequiresHandle() bool {
	return l.cb.withHandle != nil
}

// Detached reports whether the listener has been removed.
func (l *Listener) Detached() bool {
	return l.detached.Load()
}

// Detach removes the listener from the event it belongs to.
// A second call fails with ErrNotRegistered.
func (l *Listener) Detach() error {
	owner := l.owner.Value()
	if owner == nil {
		return &DetachError{ListenerID: l.id, Event: "<collected>", Err: ErrNotRegistered}
	}
	return owner.detach(l)
}

// String implements fmt.Stringer.
func (l *Listener) String() string {
	return fmt.Sprintf("listener(%s, %s)", l.id, l.priority)
}

// invoke runs the callback. With recoverPanics set, a panic is returned
// as a *PanicError instead of unwinding the raiser.
func (l *Listener) invoke(payload any, recoverPanics bool) (err error) {
	if recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{ListenerID: l.id, Value: r, Stack: string(debug.Stack())}
			}
		}()
	}
	if l.cb.withHandle != nil {
		return l.cb.withHandle(payload, l)
	}
	return l.cb.plain(payload)
}
