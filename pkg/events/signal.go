package events

import "context"

// SignalAccess is the subscribe-only view of a Signal.
type SignalAccess interface {
	AddListener(fn func() error, opts ...ListenerOption) *Listener
	AddListenerWithHandle(fn func(l *Listener) error, opts ...ListenerOption) *Listener
}

// Signal is an event without a payload. Signals are never forwarded to a
// Bus; ordering and failure semantics match Event.
type Signal struct {
	opts   options
	d      *dispatcher
	access SignalAccess
}

// NewSignal creates a payload-less event.
func NewSignal(opts ...Option) *Signal {
	s := &Signal{opts: newOptions(opts)}
	name := s.opts.name
	if name == "" {
		name = "signal"
	}
	s.d = newDispatcher(name, &s.opts)
	s.access = signalAccess{s: s}
	return s
}

// Name returns the name used in logs, metrics and errors.
func (s *Signal) Name() string {
	return s.d.name
}

// AddListener attaches fn at the default tier unless WithPriority is given.
func (s *Signal) AddListener(fn func() error, opts ...ListenerOption) *Listener {
	p := s.opts.resolvePriority(opts)
	return s.d.add(p, callback{plain: func(any) error {
		return fn()
	}})
}

// AddListenerWithHandle attaches fn, passing it its own handle on each call.
func (s *Signal) AddListenerWithHandle(fn func(l *Listener) error, opts ...ListenerOption) *Listener {
	p := s.opts.resolvePriority(opts)
	return s.d.add(p, callback{withHandle: func(_ any, l *Listener) error {
		return fn(l)
	}})
}

// DetachListener removes l, failing with ErrNotRegistered if it is not attached.
func (s *Signal) DetachListener(l *Listener) error {
	return s.d.detach(l)
}

// DetachAllListeners removes every listener.
func (s *Signal) DetachAllListeners() {
	s.d.detachAll()
}

// Listeners returns the attached listeners in registration order.
func (s *Signal) Listeners() []*Listener {
	return s.d.all()
}

// Len returns the number of attached listeners.
func (s *Signal) Len() int {
	return s.d.len()
}

// Access returns a view that can subscribe but not raise.
func (s *Signal) Access() SignalAccess {
	return s.access
}

// Raise calls every listener. The first listener error aborts the raise.
func (s *Signal) Raise() error {
	return s.RaiseContext(context.Background())
}

// RaiseContext is Raise with a context for tracing and metrics.
func (s *Signal) RaiseContext(ctx context.Context) error {
	return s.d.dispatch(ctx, nil)
}

type signalAccess struct {
	s *Signal
}

func (a signalAccess) AddListener(fn func() error, opts ...ListenerOption) *Listener {
	return a.s.AddListener(fn, opts...)
}

func (a signalAccess) AddListenerWithHandle(fn func(l *Listener) error, opts ...ListenerOption) *Listener {
	return a.s.AddListenerWithHandle(fn, opts...)
}
