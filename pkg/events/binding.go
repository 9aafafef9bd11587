package events

import (
	"fmt"
	"reflect"
)

// Binding is one resolved (payload type, callback, priority) tuple ready for
// bulk registration on a Bus. Build bindings with Bind or with an adapter such
// as package discover.
type Binding struct {
	// Type is the bus key: the payload type or capability interface.
	Type reflect.Type
	// Priority is the listener's tier.
	Priority Priority
	// Accepts reports whether a raised payload satisfies Type.
	Accepts func(payload any) bool
	// Invoke calls the handler with a payload accepted by Accepts.
	Invoke func(payload any) error
}

// HandlerSource supplies bindings for RegisterBulk.
type HandlerSource interface {
	EventHandlers() ([]Binding, error)
}

// Bindings is a HandlerSource over a fixed slice.
type Bindings []Binding

// EventHandlers implements HandlerSource.
func (b Bindings) EventHandlers() ([]Binding, error) {
	return b, nil
}

// Bind builds a binding for payloads satisfying K.
func Bind[K any](fn Handler[K], priority Priority) Binding {
	return Binding{
		Type:     reflect.TypeFor[K](),
		Priority: priority,
		Accepts:  accepts[K],
		Invoke: func(payload any) error {
			return fn(payload.(K))
		},
	}
}

// accepts is the capability check: a payload satisfies K when it asserts to K.
// For an interface K that is any type implementing it; otherwise only K itself.
func accepts[K any](payload any) bool {
	_, ok := payload.(K)
	return ok
}

func (b Binding) validate() error {
	switch {
	case b.Type == nil:
		return fmt.Errorf("%w: missing type", ErrInvalidBinding)
	case b.Accepts == nil:
		return fmt.Errorf("%w: %s: missing matcher", ErrInvalidBinding, b.Type)
	case b.Invoke == nil:
		return fmt.Errorf("%w: %s: missing callback", ErrInvalidBinding, b.Type)
	case !b.Priority.Valid():
		return fmt.Errorf("%w: %s: %w", ErrInvalidBinding, b.Type, ErrInvalidPriority)
	}
	return nil
}
