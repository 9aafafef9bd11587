package events

import (
	"fmt"
	"strings"
)

// Priority stratifies listeners. Lower tiers run first; Monitor runs last.
type Priority uint8

const (
	// Lowest runs before every other tier.
	Lowest Priority = iota
	// Low runs after Lowest.
	Low
	// Normal is the default tier.
	Normal
	// Medium runs after Normal.
	Medium
	// High runs after Medium.
	High
	// Important runs after High.
	Important
	// Critical runs after Important.
	Critical
	// Monitor runs last. Use it for listeners that observe the final outcome.
	Monitor
)

// priorityCount is the number of tiers.
const priorityCount = int(Monitor) + 1

var priorityNames = [priorityCount]string{
	"lowest", "low", "normal", "medium", "high", "important", "critical", "monitor",
}

// Priorities returns every tier in dispatch order.
func Priorities() []Priority {
	out := make([]Priority, priorityCount)
	for i := range out {
		out[i] = Priority(i)
	}
	return out
}

// Valid reports whether p is one of the eight defined tiers.
func (p Priority) Valid() bool {
	return int(p) < priorityCount
}

// String returns the lower-case tier name.
func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("priority(%d)", uint8(p))
	}
	return priorityNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriority, uint8(p))
	}
	return []byte(priorityNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePriority parses a tier name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range priorityNames {
		if n == name {
			return Priority(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}
