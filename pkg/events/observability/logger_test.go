package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogger returns a debug-level JSON logger and its output buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// lines decodes each JSON log line.
func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogHelpers(t *testing.T) {
	logger, buf := captureLogger()

	LogListenerAttached(logger, "orders.placed", "l-1", "high")
	LogListenerDetached(logger, "orders.placed", "l-1")
	LogRaise(logger, "orders.placed", 2, 0.5)
	LogRaiseError(logger, "orders.placed", errors.New("boom"), 1.25)
	LogBusReset(logger, 4)
	LogJournalError(logger, "orders.placed", "encode", errors.New("unsupported type"))

	entries := lines(t, buf)
	require.Len(t, entries, 6)

	assert.Equal(t, "listener attached", entries[0]["msg"])
	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, "l-1", entries[0]["listener_id"])
	assert.Equal(t, "high", entries[0]["priority"])

	assert.Equal(t, "listener detached", entries[1]["msg"])

	assert.Equal(t, "event raised", entries[2]["msg"])
	assert.Equal(t, float64(2), entries[2]["listeners_invoked"])
	assert.Equal(t, 0.5, entries[2]["duration_ms"])

	assert.Equal(t, "event raise failed", entries[3]["msg"])
	assert.Equal(t, "ERROR", entries[3]["level"])
	assert.Equal(t, "boom", entries[3]["error"])

	assert.Equal(t, "event bus reset", entries[4]["msg"])
	assert.Equal(t, float64(4), entries[4]["keys_removed"])

	assert.Equal(t, "journal write degraded", entries[5]["msg"])
	assert.Equal(t, "WARN", entries[5]["level"])
	assert.Equal(t, "encode", entries[5]["operation"])
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogListenerAttached(nil, "e", "l", "normal")
		LogListenerDetached(nil, "e", "l")
		LogRaise(nil, "e", 0, 0)
		LogRaiseError(nil, "e", errors.New("x"), 0)
		LogBusReset(nil, 0)
		LogJournalError(nil, "e", "op", errors.New("x"))
	})
}
