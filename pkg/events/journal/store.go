// Package journal records typed raises that reach a bus, for inspection
// and debugging. It observes; it never replays.
//
// The journal sits outside the delivery contract of package events:
// delivery stays synchronous and in memory whether or not a journal is
// attached, and nothing reads the journal back into a bus.
package journal

import (
	"errors"
	"time"
)

// Record is one observed raise.
type Record struct {
	ID        string
	EventType string
	// Payload is the JSON encoding of the payload, or nil if it could not
	// be encoded.
	Payload  []byte
	RaisedAt time.Time
}

// Store persists records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores a record.
	Append(r Record) error

	// List returns records oldest first. An empty eventType matches every
	// type; limit <= 0 means no limit.
	List(eventType string, limit int) ([]Record, error)

	// Count returns the number of stored records.
	Count() (int, error)

	// Close releases any resources. Closing twice is safe.
	Close() error
}

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("journal store closed")
