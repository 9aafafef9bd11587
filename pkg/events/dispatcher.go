package events

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/lunarlife/undefined-events/pkg/events/observability"
)

// dispatcher owns the listeners of one event (or one bus key).
//
// Listeners live in two views kept consistent under mu: a bucket per
// priority tier, in insertion order, and a flat list in insertion order.
//
// Raises are serialized by raiseMu, held from the snapshot until the last
// listener returns. mu guards only the listener views and is never held
// while a listener runs, so listeners may detach themselves or others and
// add listeners. Each listener still attached at call time is invoked;
// listeners added during a raise do not receive the payload in flight.
// Raising the same event again from one of its own listeners deadlocks.
type dispatcher struct {
	name string
	opts *options

	raiseMu sync.Mutex

	mu        sync.Mutex
	buckets   [priorityCount][]*Listener
	listeners []*Listener
}

func newDispatcher(name string, opts *options) *dispatcher {
	return &dispatcher{name: name, opts: opts}
}

// add appends a listener to its tier and to the flat list.
func (d *dispatcher) add(priority Priority, cb callback) *Listener {
	l := newListener(d, priority, cb)

	d.mu.Lock()
	d.buckets[priority] = append(d.buckets[priority], l)
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()

	d.opts.metrics.RecordListeners(context.Background(), d.name, 1)
	observability.LogListenerAttached(d.opts.logger, d.name, l.id, priority.String())
	return l
}

// detach removes l from both views, or fails with ErrNotRegistered.
func (d *dispatcher) detach(l *Listener) error {
	if l == nil {
		return &DetachError{ListenerID: "<nil>", Event: d.name, Err: ErrNotRegistered}
	}

	d.mu.Lock()
	i := slices.Index(d.listeners, l)
	if i < 0 {
		d.mu.Unlock()
		return &DetachError{ListenerID: l.id, Event: d.name, Err: ErrNotRegistered}
	}
	bucket := d.buckets[l.priority]
	j := slices.Index(bucket, l)
	if j < 0 {
		d.mu.Unlock()
		return &DetachError{ListenerID: l.id, Event: d.name, Err: ErrNotRegistered}
	}
	d.listeners = slices.Delete(d.listeners, i, i+1)
	d.buckets[l.priority] = slices.Delete(bucket, j, j+1)
	l.detached.Store(true)
	d.mu.Unlock()

	d.opts.metrics.RecordListeners(context.Background(), d.name, -1)
	observability.LogListenerDetached(d.opts.logger, d.name, l.id)
	return nil
}

// detachAll clears both views. Calling it on an empty dispatcher is a no-op.
func (d *dispatcher) detachAll() {
	d.mu.Lock()
	removed := d.listeners
	d.listeners = nil
	d.buckets = [priorityCount][]*Listener{}
	for _, l := range removed {
		l.detached.Store(true)
	}
	d.mu.Unlock()

	if len(removed) == 0 {
		return
	}
	d.opts.metrics.RecordListeners(context.Background(), d.name, -int64(len(removed)))
	for _, l := range removed {
		observability.LogListenerDetached(d.opts.logger, d.name, l.id)
	}
}

// snapshot returns the invocation order: tiers ascending, newest first
// within a tier.
func (d *dispatcher) snapshot() []*Listener {
	d.mu.Lock()
	defer d.mu.Unlock()

	order := make([]*Listener, 0, len(d.listeners))
	for p := range priorityCount {
		bucket := d.buckets[p]
		for i := len(bucket) - 1; i >= 0; i-- {
			order = append(order, bucket[i])
		}
	}
	return order
}

// all returns the flat listing in registration order.
func (d *dispatcher) all() []*Listener {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.listeners)
}

// len returns the number of attached listeners.
func (d *dispatcher) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// dispatch snapshots and invokes the listeners, one raise at a time.
func (d *dispatcher) dispatch(ctx context.Context, payload any) error {
	d.raiseMu.Lock()
	defer d.raiseMu.Unlock()
	return invoke(ctx, d.opts, d.name, d.snapshot(), payload)
}

// dispatchOrder invokes a snapshot taken earlier, one raise at a time.
func (d *dispatcher) dispatchOrder(ctx context.Context, order []*Listener, payload any) error {
	d.raiseMu.Lock()
	defer d.raiseMu.Unlock()
	return invoke(ctx, d.opts, d.name, order, payload)
}

// invoke runs a snapshot with logging, metrics and a span around it.
// It stops at the first failing listener.
func invoke(ctx context.Context, o *options, name string, order []*Listener, payload any) (err error) {
	ctx, span := o.spans.StartRaiseSpan(ctx, name, len(order))
	start := time.Now()
	invoked := 0

	finished := false
	defer func() {
		if !finished {
			// Unwinding through a listener panic.
			elapsed := time.Since(start)
			o.metrics.RecordRaise(ctx, name, invoked, elapsed, errListenerPanicked)
			o.spans.EndSpanWithError(span, errListenerPanicked)
			observability.LogRaiseError(o.logger, name, errListenerPanicked, float64(elapsed.Microseconds())/1000)
		}
	}()

	for _, l := range order {
		if l.Detached() {
			continue
		}
		invoked++
		if lerr := l.invoke(payload, o.recoverPanics); lerr != nil {
			err = &ListenerError{ListenerID: l.id, Priority: l.priority, Event: name, Err: lerr}
			break
		}
	}

	finished = true
	elapsed := time.Since(start)
	elapsedMs := float64(elapsed.Microseconds()) / 1000
	o.metrics.RecordRaise(ctx, name, invoked, elapsed, err)
	o.spans.EndSpanWithError(span, err)
	if err != nil {
		observability.LogRaiseError(o.logger, name, err, elapsedMs)
	} else {
		observability.LogRaise(o.logger, name, invoked, elapsedMs)
	}
	return err
}
