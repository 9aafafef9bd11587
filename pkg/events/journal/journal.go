package journal

import (
	"encoding/json"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/lunarlife/undefined-events/pkg/events"
	"github.com/lunarlife/undefined-events/pkg/events/observability"
)

// Option configures Attach.
type Option func(*recorder)

// WithLogger logs payloads that could not be encoded.
func WithLogger(logger *slog.Logger) Option {
	return func(r *recorder) {
		r.logger = logger
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *recorder) {
		r.now = now
	}
}

type recorder struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// Attach registers a Monitor-tier listener on bus that appends every typed
// raise to store. Detach the returned listener to stop recording.
//
// A payload that cannot be encoded as JSON is recorded without a payload.
// A store error is returned to the raiser like any listener failure.
func Attach(bus *events.Bus, store Store, opts ...Option) *events.Listener {
	r := &recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return events.Register(bus, r.record, events.WithPriority(events.Monitor))
}

func (r *recorder) record(payload events.Payload) error {
	eventType := reflect.TypeOf(payload).String()

	data, err := json.Marshal(payload)
	if err != nil {
		observability.LogJournalError(r.logger, eventType, "encode", err)
		data = nil
	}

	return r.store.Append(Record{
		ID:        uuid.NewString(),
		EventType: eventType,
		Payload:   data,
		RaisedAt:  r.now(),
	})
}
