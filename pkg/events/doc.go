// Package events provides a typed, synchronous, in-process event bus.
//
// # Overview
//
// Producers raise typed payloads; listeners run on the raising goroutine in
// a deterministic order. Nothing is queued, persisted or delivered across
// processes.
//
//   - Event[T] is a publishable event carrying payloads of type T
//   - Signal is an event without a payload
//   - Access[T] and SignalAccess are subscribe-only views
//   - Listener is the detachable handle returned by every registration
//   - Bus routes payloads by type and capability (polymorphic dispatch)
//
// # Ordering
//
// Listeners run by Priority tier, Lowest first and Monitor last. Within a
// tier the most recently added listener runs first:
//
//	e := events.NewEvent[OrderPlaced]()
//	e.AddListener(l1, events.WithPriority(events.Low))
//	e.AddListener(l2)                                       // Normal
//	e.AddListener(l3)                                       // Normal
//	e.AddListener(l4, events.WithPriority(events.Critical))
//	e.Raise(order) // l1, l3, l2, l4
//
// # Failures
//
// Raise returns the first listener error wrapped in *ListenerError, and the
// remaining listeners are skipped. Publishing is therefore only as safe as
// the listeners attached to the event. A listener panic unwinds through the
// raiser unless the event was created WithPanicRecovery, in which case it
// is returned as a *PanicError.
//
// Detaching a listener that is not attached fails with ErrNotRegistered;
// detaching twice is a bug that should surface, not a no-op.
//
// # Polymorphic Dispatch
//
// A Bus keeps one listener registry per key type. Raising a payload reaches
// every key it satisfies, so a listener registered for an interface receives
// every payload implementing it:
//
//	bus := events.NewBus()
//	events.Register(bus, func(e Auditable) error { return audit(e) })
//
//	placed := events.NewEvent[OrderPlaced](events.WithBus(bus))
//	placed.Raise(order) // local listeners, then the Auditable listener
//
// Registering for Payload (any) receives every typed raise. Bulk
// registration via RegisterBulk takes pre-resolved Binding tuples, such as
// those produced by package discover, and makes them visible atomically.
//
// # Concurrency
//
// All operations are safe for concurrent use. Raises of the same event (or
// the same bus key) run one at a time; raises of different events run in
// parallel. The listener list is not locked while a listener runs: a raise
// snapshots the invocation order, then calls each listener still attached
// at call time. Listeners may detach themselves, add listeners, or raise
// other events from inside a callback. Listeners added during a raise do
// not receive the payload in flight. Raising an event from one of its own
// listeners, directly or through another event, is unsupported and
// deadlocks.
package events
