package events_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunarlife/undefined-events/pkg/events"
)

// auditable is a capability shared by several payload types.
type auditable interface {
	AuditKey() string
}

func (o orderPlaced) AuditKey() string { return "order:" + o.ID }

type userDeleted struct {
	Name string
}

func (u *userDeleted) AuditKey() string { return "user:" + u.Name }

func TestBus_PolymorphicDispatch(t *testing.T) {
	t.Run("interface key receives implementing payloads", func(t *testing.T) {
		bus := events.NewBus()

		var keys []string
		events.Register(bus, func(a auditable) error {
			keys = append(keys, a.AuditKey())
			return nil
		})

		placed := events.NewEvent[orderPlaced](events.WithBus(bus))
		deleted := events.NewEvent[*userDeleted](events.WithBus(bus))

		require.NoError(t, placed.Raise(orderPlaced{ID: "o-1"}))
		require.NoError(t, deleted.Raise(&userDeleted{Name: "ann"}))

		assert.Equal(t, []string{"order:o-1", "user:ann"}, keys)
	})

	t.Run("concrete key only receives its own type", func(t *testing.T) {
		bus := events.NewBus()

		orders := 0
		events.Register(bus, func(orderPlaced) error {
			orders++
			return nil
		})

		require.NoError(t, bus.Dispatch(context.Background(), orderPlaced{}))
		require.NoError(t, bus.Dispatch(context.Background(), &userDeleted{}))
		require.NoError(t, bus.Dispatch(context.Background(), 42))

		assert.Equal(t, 1, orders)
	})

	t.Run("payload key receives everything", func(t *testing.T) {
		bus := events.NewBus()

		var got []events.Payload
		events.Register(bus, func(p events.Payload) error {
			got = append(got, p)
			return nil
		})

		require.NoError(t, bus.Dispatch(context.Background(), orderPlaced{ID: "x"}))
		require.NoError(t, bus.Dispatch(context.Background(), "text"))

		assert.Equal(t, []events.Payload{orderPlaced{ID: "x"}, "text"}, got)
	})

	t.Run("payload reaches every matching key", func(t *testing.T) {
		rec := &recorder{}
		bus := events.NewBus()

		events.Register(bus, func(events.Payload) error {
			rec.add("payload")
			return nil
		})
		events.Register(bus, func(orderPlaced) error {
			rec.add("concrete")
			return nil
		})
		events.Register(bus, func(auditable) error {
			rec.add("auditable")
			return nil
		})
		events.Register(bus, func(*userDeleted) error {
			rec.add("unrelated")
			return nil
		})

		require.NoError(t, bus.Dispatch(context.Background(), orderPlaced{}))
		assert.ElementsMatch(t, []string{"payload", "concrete", "auditable"}, rec.get())
	})

	t.Run("local listeners run before bus listeners", func(t *testing.T) {
		rec := &recorder{}
		bus := events.NewBus()
		events.Register(bus, func(orderPlaced) error {
			rec.add("bus")
			return nil
		}, events.WithPriority(events.Lowest))

		e := events.NewEvent[orderPlaced](events.WithBus(bus))
		e.AddListener(rec.handler("local"), events.WithPriority(events.Monitor))

		require.NoError(t, e.Raise(orderPlaced{}))
		assert.Equal(t, []string{"local", "bus"}, rec.get())
	})

	t.Run("nil payload is ignored", func(t *testing.T) {
		bus := events.NewBus()
		called := false
		events.Register(bus, func(events.Payload) error {
			called = true
			return nil
		})

		require.NoError(t, bus.Dispatch(context.Background(), nil))
		assert.False(t, called)
	})
}

func TestBus_OrderingWithinKey(t *testing.T) {
	rec := &recorder{}
	bus := events.NewBus()

	reg := func(label string, p events.Priority) {
		events.Register(bus, func(orderPlaced) error {
			rec.add(label)
			return nil
		}, events.WithPriority(p))
	}
	reg("L1", events.Low)
	reg("L2", events.Normal)
	reg("L3", events.Normal)
	reg("L4", events.Critical)

	require.NoError(t, bus.Dispatch(context.Background(), orderPlaced{}))
	assert.Equal(t, []string{"L1", "L3", "L2", "L4"}, rec.get())
}

func TestBus_Errors(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("local failure skips the bus", func(t *testing.T) {
		bus := events.NewBus()
		reached := false
		events.Register(bus, func(orderPlaced) error {
			reached = true
			return nil
		})

		e := events.NewEvent[orderPlaced](events.WithBus(bus))
		e.AddListener(func(orderPlaced) error { return errBoom })

		require.ErrorIs(t, e.Raise(orderPlaced{}), errBoom)
		assert.False(t, reached)
	})

	t.Run("bus failure is returned to the raiser", func(t *testing.T) {
		bus := events.NewBus()
		events.Register(bus, func(auditable) error { return errBoom })

		e := events.NewEvent[orderPlaced](events.WithBus(bus))
		err := e.Raise(orderPlaced{})
		require.ErrorIs(t, err, errBoom)

		var lerr *events.ListenerError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, "events_test.auditable", lerr.Event)
	})

	t.Run("invalid priority panics", func(t *testing.T) {
		bus := events.NewBus()
		assert.Panics(t, func() {
			events.Register(bus, func(orderPlaced) error { return nil }, events.WithPriority(events.Priority(200)))
		})
	})

	t.Run("panic recovery applies to bus listeners", func(t *testing.T) {
		bus := events.NewBus(events.WithPanicRecovery())
		events.Register(bus, func(orderPlaced) error { panic("bus boom") })

		var perr *events.PanicError
		require.ErrorAs(t, bus.Dispatch(context.Background(), orderPlaced{}), &perr)
		assert.Equal(t, "bus boom", perr.Value)
	})
}

func TestBus_Detach(t *testing.T) {
	t.Run("via bus and via handle", func(t *testing.T) {
		bus := events.NewBus()
		a := events.Register(bus, func(orderPlaced) error { return nil })
		b := events.Register(bus, func(orderPlaced) error { return nil })

		require.NoError(t, bus.Detach(a))
		require.NoError(t, b.Detach())

		assert.ErrorIs(t, bus.Detach(a), events.ErrNotRegistered)
		assert.ErrorIs(t, b.Detach(), events.ErrNotRegistered)
		assert.Empty(t, bus.Listeners(reflect.TypeFor[orderPlaced]()))
	})

	t.Run("self detach with handle", func(t *testing.T) {
		bus := events.NewBus()
		calls := 0
		events.RegisterWithHandle(bus, func(_ orderPlaced, l *events.Listener) error {
			calls++
			return bus.Detach(l)
		})

		require.NoError(t, bus.Dispatch(context.Background(), orderPlaced{}))
		require.NoError(t, bus.Dispatch(context.Background(), orderPlaced{}))
		assert.Equal(t, 1, calls)
	})

	t.Run("foreign handles are rejected", func(t *testing.T) {
		bus := events.NewBus()
		other := events.NewBus()
		e := events.NewEvent[orderPlaced]()

		fromOther := events.Register(other, func(orderPlaced) error { return nil })
		fromEvent := e.AddListener(func(orderPlaced) error { return nil })

		assert.ErrorIs(t, bus.Detach(fromOther), events.ErrNotRegistered)
		assert.ErrorIs(t, bus.Detach(fromEvent), events.ErrNotRegistered)
		assert.ErrorIs(t, bus.Detach(nil), events.ErrNotRegistered)
		assert.False(t, fromOther.Detached())
		assert.False(t, fromEvent.Detached())
	})
}

func TestBus_RegisterBulk(t *testing.T) {
	t.Run("registers every binding", func(t *testing.T) {
		rec := &recorder{}
		bus := events.NewBus()

		listeners, err := bus.RegisterBindings(
			events.Bind(func(orderPlaced) error {
				rec.add("order")
				return nil
			}, events.High),
			events.Bind(func(auditable) error {
				rec.add("audit")
				return nil
			}, events.Monitor),
		)
		require.NoError(t, err)
		require.Len(t, listeners, 2)
		assert.Equal(t, events.High, listeners[0].Priority())
		assert.Equal(t, events.Monitor, listeners[1].Priority())

		require.NoError(t, bus.Dispatch(context.Background(), orderPlaced{}))
		assert.ElementsMatch(t, []string{"order", "audit"}, rec.get())

		assert.Equal(t, []reflect.Type{
			reflect.TypeFor[orderPlaced](),
			reflect.TypeFor[auditable](),
		}, bus.Keys())
	})

	t.Run("invalid binding registers nothing", func(t *testing.T) {
		bus := events.NewBus()

		_, err := bus.RegisterBindings(
			events.Bind(func(orderPlaced) error { return nil }, events.Normal),
			events.Bind(func(auditable) error { return nil }, events.Priority(9)),
		)
		require.ErrorIs(t, err, events.ErrInvalidBinding)
		assert.ErrorIs(t, err, events.ErrInvalidPriority)
		assert.Empty(t, bus.Keys())

		_, err = bus.RegisterBindings(events.Binding{Type: reflect.TypeFor[int]()})
		assert.ErrorIs(t, err, events.ErrInvalidBinding)
		assert.Empty(t, bus.Keys())
	})

	t.Run("source error is returned", func(t *testing.T) {
		bus := events.NewBus()
		errScan := errors.New("scan failed")

		_, err := bus.RegisterBulk(failingSource{err: errScan})
		assert.ErrorIs(t, err, errScan)
	})
}

type failingSource struct{ err error }

func (f failingSource) EventHandlers() ([]events.Binding, error) { return nil, f.err }

func TestBus_Reset(t *testing.T) {
	bus := events.NewBus()
	called := false
	l := events.Register(bus, func(orderPlaced) error {
		called = true
		return nil
	})

	bus.Reset()

	require.NoError(t, bus.Dispatch(context.Background(), orderPlaced{}))
	assert.False(t, called)
	assert.Empty(t, bus.Keys())
	assert.True(t, l.Detached())
	assert.ErrorIs(t, bus.Detach(l), events.ErrNotRegistered)

	// Usable after reset.
	events.Register(bus, func(orderPlaced) error {
		called = true
		return nil
	})
	require.NoError(t, bus.Dispatch(context.Background(), orderPlaced{}))
	assert.True(t, called)
}
