package events

import (
	"context"
	"reflect"
)

// Payload is the capability every event argument satisfies. Any Go value
// qualifies; narrower capabilities are expressed as interfaces.
// A bus listener registered for Payload receives every typed raise.
type Payload = any

// Handler handles a typed payload.
type Handler[T any] func(payload T) error

// HandlerWithListener handles a typed payload and receives its own
// listener handle, typically to detach itself.
type HandlerWithListener[T any] func(payload T, l *Listener) error

// Access is the subscribe-only view of an Event[T].
type Access[T any] interface {
	AddListener(fn Handler[T], opts ...ListenerOption) *Listener
	AddListenerWithHandle(fn HandlerWithListener[T], opts ...ListenerOption) *Listener
}

// Event is a publishable event carrying payloads of type T.
//
// Raise calls listeners synchronously on the caller's goroutine, by tier
// from Lowest to Monitor and newest-first within a tier. A listener error
// stops the raise and is returned to the raiser, so publishing is only as
// safe as the listeners attached to it.
type Event[T any] struct {
	opts   options
	d      *dispatcher
	access Access[T]
}

// NewEvent creates a typed event.
func NewEvent[T any](opts ...Option) *Event[T] {
	e := &Event[T]{opts: newOptions(opts)}
	name := e.opts.name
	if name == "" {
		name = typeName(reflect.TypeFor[T]())
	}
	e.d = newDispatcher(name, &e.opts)
	e.access = eventAccess[T]{e: e}
	return e
}

// Name returns the name used in logs, metrics and errors.
func (e *Event[T]) Name() string {
	return e.d.name
}

// AddListener attaches fn at the default tier unless WithPriority is given.
func (e *Event[T]) AddListener(fn Handler[T], opts ...ListenerOption) *Listener {
	p := e.opts.resolvePriority(opts)
	return e.d.add(p, callback{plain: func(payload any) error {
		return fn(asPayload[T](payload))
	}})
}

// AddListenerWithHandle attaches fn, passing it its own handle on each call.
func (e *Event[T]) AddListenerWithHandle(fn HandlerWithListener[T], opts ...ListenerOption) *Listener {
	p := e.opts.resolvePriority(opts)
	return e.d.add(p, callback{withHandle: func(payload any, l *Listener) error {
		return fn(asPayload[T](payload), l)
	}})
}

// DetachListener removes l. It fails with ErrNotRegistered if l is not
// attached to this event.
func (e *Event[T]) DetachListener(l *Listener) error {
	return e.d.detach(l)
}

// DetachAllListeners removes every listener. It is safe to call repeatedly.
func (e *Event[T]) DetachAllListeners() {
	e.d.detachAll()
}

// Listeners returns the attached listeners in registration order.
func (e *Event[T]) Listeners() []*Listener {
	return e.d.all()
}

// Len returns the number of attached listeners.
func (e *Event[T]) Len() int {
	return e.d.len()
}

// Access returns a view that can subscribe but not raise.
func (e *Event[T]) Access() Access[T] {
	return e.access
}

// Raise delivers payload to every listener, then to the bus configured
// with WithBus. The first listener error aborts delivery and is returned.
func (e *Event[T]) Raise(payload T) error {
	return e.RaiseContext(context.Background(), payload)
}

// RaiseContext is Raise with a context for tracing and metrics.
// The context does not cancel delivery.
func (e *Event[T]) RaiseContext(ctx context.Context, payload T) error {
	if err := e.d.dispatch(ctx, payload); err != nil {
		return err
	}
	if e.opts.bus != nil {
		return e.opts.bus.Dispatch(ctx, payload)
	}
	return nil
}

type eventAccess[T any] struct {
	e *Event[T]
}

func (a eventAccess[T]) AddListener(fn Handler[T], opts ...ListenerOption) *Listener {
	return a.e.AddListener(fn, opts...)
}

func (a eventAccess[T]) AddListenerWithHandle(fn HandlerWithListener[T], opts ...ListenerOption) *Listener {
	return a.e.AddListenerWithHandle(fn, opts...)
}

// asPayload converts back from the erased form. A nil interface payload
// becomes T's zero value.
func asPayload[T any](payload any) T {
	if payload == nil {
		var zero T
		return zero
	}
	return payload.(T)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
