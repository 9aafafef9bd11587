package benchmarks

import (
	"context"
	"testing"

	"github.com/lunarlife/undefined-events/pkg/events"
)

// Tick is a small payload for dispatch benchmarks.
type Tick struct {
	Seq int
}

// Sequenced is a capability implemented by Tick.
type Sequenced interface {
	Sequence() int
}

func (t Tick) Sequence() int { return t.Seq }

func noop(Tick) error { return nil }

// buildEvent attaches n listeners spread across every tier.
func buildEvent(n int, opts ...events.Option) *events.Event[Tick] {
	e := events.NewEvent[Tick](opts...)
	for i := range n {
		e.AddListener(noop, events.WithPriority(events.Priority(i%8)))
	}
	return e
}

// BenchmarkRaise_NoListeners measures the fixed cost of a raise.
func BenchmarkRaise_NoListeners(b *testing.B) {
	e := buildEvent(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Raise(Tick{Seq: i})
	}
}

// BenchmarkRaise_10 raises to 10 listeners.
func BenchmarkRaise_10(b *testing.B) {
	e := buildEvent(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Raise(Tick{Seq: i})
	}
}

// BenchmarkRaise_100 raises to 100 listeners.
func BenchmarkRaise_100(b *testing.B) {
	e := buildEvent(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Raise(Tick{Seq: i})
	}
}

// BenchmarkRaise_Parallel measures contention on one event.
func BenchmarkRaise_Parallel(b *testing.B) {
	e := buildEvent(10)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = e.Raise(Tick{Seq: i})
			i++
		}
	})
}

// BenchmarkAddDetach measures listener churn.
func BenchmarkAddDetach(b *testing.B) {
	e := buildEvent(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l := e.AddListener(noop)
		_ = l.Detach()
	}
}

// BenchmarkRaise_WithBus measures forwarding to concrete, capability and
// catch-all keys.
func BenchmarkRaise_WithBus(b *testing.B) {
	bus := events.NewBus()
	events.Register(bus, noop)
	events.Register(bus, func(Sequenced) error { return nil })
	events.Register(bus, func(events.Payload) error { return nil })
	for range 20 {
		// Keys the payload does not satisfy.
		events.Register(bus, func(string) error { return nil })
	}

	e := buildEvent(10, events.WithBus(bus))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Raise(Tick{Seq: i})
	}
}

// BenchmarkBusDispatch_ManyKeys measures key matching over unrelated keys.
func BenchmarkBusDispatch_ManyKeys(b *testing.B) {
	bus := events.NewBus()
	events.Register(bus, noop)
	events.Register(bus, func(int) error { return nil })
	events.Register(bus, func(string) error { return nil })
	events.Register(bus, func(error) error { return nil })
	events.Register(bus, func(Sequenced) error { return nil })

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Dispatch(ctx, Tick{Seq: i})
	}
}
