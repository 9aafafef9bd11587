package events

import (
	"context"
	"reflect"
	"sync"

	"github.com/lunarlife/undefined-events/pkg/events/observability"
	"github.com/lunarlife/undefined-events/pkg/events/registry"
)

// Bus routes payloads to listeners registered by payload type or by
// capability. A listener registered for K receives every payload that
// satisfies K: the type K itself, or any type implementing K when K is an
// interface.
//
// A Bus is an explicit object. Create one at the composition root and hand
// it to the events that should forward to it with WithBus.
type Bus struct {
	opts options

	// gate makes bulk registration atomic with respect to raises:
	// registrations hold it exclusively, raises hold it shared while they
	// snapshot the matching entries.
	gate    sync.RWMutex
	entries *registry.Registry[*busEntry]
}

// busEntry holds the listeners interested in one key.
type busEntry struct {
	key     reflect.Type
	accepts func(payload any) bool
	d       *dispatcher
}

// NewBus creates an empty bus. WithBus is ignored.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		opts:    newOptions(opts),
		entries: registry.New[*busEntry](),
	}
	b.opts.bus = nil
	return b
}

// entry returns the entry for key, creating it on first use.
// Callers hold gate exclusively.
func (b *Bus) entry(key reflect.Type, accepts func(any) bool) *busEntry {
	e, _ := b.entries.GetOrCreate(key, func() *busEntry {
		return &busEntry{
			key:     key,
			accepts: accepts,
			d:       newDispatcher(typeName(key), &b.opts),
		}
	})
	return e
}

// Register attaches fn for every payload satisfying K.
func Register[K any](b *Bus, fn Handler[K], opts ...ListenerOption) *Listener {
	p := b.opts.resolvePriority(opts)

	b.gate.Lock()
	defer b.gate.Unlock()
	return b.entry(reflect.TypeFor[K](), accepts[K]).d.add(p, callback{plain: func(payload any) error {
		return fn(payload.(K))
	}})
}

// RegisterWithHandle attaches fn for every payload satisfying K, passing it
// its own handle on each call.
func RegisterWithHandle[K any](b *Bus, fn HandlerWithListener[K], opts ...ListenerOption) *Listener {
	p := b.opts.resolvePriority(opts)

	b.gate.Lock()
	defer b.gate.Unlock()
	return b.entry(reflect.TypeFor[K](), accepts[K]).d.add(p, callback{withHandle: func(payload any, l *Listener) error {
		return fn(payload.(K), l)
	}})
}

// RegisterBulk registers every binding supplied by src. The batch becomes
// visible to raisers all at once. If any binding is invalid nothing is
// registered.
func (b *Bus) RegisterBulk(src HandlerSource) ([]*Listener, error) {
	bindings, err := src.EventHandlers()
	if err != nil {
		return nil, err
	}
	for _, bnd := range bindings {
		if err := bnd.validate(); err != nil {
			return nil, err
		}
	}

	b.gate.Lock()
	defer b.gate.Unlock()

	listeners := make([]*Listener, 0, len(bindings))
	for _, bnd := range bindings {
		e := b.entry(bnd.Type, bnd.Accepts)
		listeners = append(listeners, e.d.add(bnd.Priority, callback{plain: bnd.Invoke}))
	}
	return listeners, nil
}

// RegisterBindings is RegisterBulk over a plain list.
func (b *Bus) RegisterBindings(bindings ...Binding) ([]*Listener, error) {
	return b.RegisterBulk(Bindings(bindings))
}

// Dispatch delivers payload to every key it satisfies. Within a key the
// Event ordering rules apply and raises run one at a time; the order across
// keys is not specified. A listener must not dispatch a payload that reaches
// its own key.
// The first listener error aborts delivery and is returned.
// A nil payload or a payload no key accepts is a no-op.
func (b *Bus) Dispatch(ctx context.Context, payload any) error {
	if payload == nil {
		return nil
	}

	type step struct {
		e     *busEntry
		order []*Listener
	}

	b.gate.RLock()
	var plan []step
	b.entries.Range(func(_ reflect.Type, e *busEntry) bool {
		if e.accepts(payload) {
			if order := e.d.snapshot(); len(order) > 0 {
				plan = append(plan, step{e: e, order: order})
			}
		}
		return true
	})
	b.gate.RUnlock()

	for _, s := range plan {
		if err := s.e.d.dispatchOrder(ctx, s.order, payload); err != nil {
			return err
		}
	}
	return nil
}

// Detach removes a listener that was registered on this bus.
func (b *Bus) Detach(l *Listener) error {
	if l == nil {
		return &DetachError{ListenerID: "<nil>", Event: "bus", Err: ErrNotRegistered}
	}
	owner := l.owner.Value()
	if owner == nil || owner.opts != &b.opts {
		return &DetachError{ListenerID: l.id, Event: "bus", Err: ErrNotRegistered}
	}
	return owner.detach(l)
}

// Keys returns the registered keys in first-registration order.
func (b *Bus) Keys() []reflect.Type {
	return b.entries.Keys()
}

// Listeners returns the listeners registered for key, in registration order.
func (b *Bus) Listeners(key reflect.Type) []*Listener {
	e, ok := b.entries.Get(key)
	if !ok {
		return nil
	}
	return e.d.all()
}

// Reset detaches every listener and forgets every key. It exists for test
// isolation; handles obtained before Reset fail to detach afterwards.
func (b *Bus) Reset() {
	b.gate.Lock()
	removed := b.entries.Clear()
	b.gate.Unlock()

	for _, e := range removed {
		e.d.detachAll()
	}
	observability.LogBusReset(b.opts.logger, len(removed))
}
