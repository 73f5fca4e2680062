package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, level int) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prevLevel := GetLogLevel()
	SetOutput(buf)
	SetLogLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLogLevel(prevLevel)
		SetTagFilter("")
	})
	return buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := captureOutput(t, LogLevelWarn)
	log := New("client")

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warnf("visible %s", "warning")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "visible warning", entries[0]["message"])
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "client", entries[0]["tag"])
}

func TestLoggerWithField(t *testing.T) {
	buf := captureOutput(t, LogLevelDebug)
	New("query").With("indicator_id", 7).Debugf("sending")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 7, entries[0]["indicator_id"])
}

func TestSuccessIgnoresLevel(t *testing.T) {
	buf := captureOutput(t, LogLevelError)
	New("cli").Success("done")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "success", entries[0]["status"])
}

func TestPrintError(t *testing.T) {
	buf := captureOutput(t, LogLevelError)
	log := New("cli")
	log.PrintError("export failed", errors.New("disk full"))
	log.PrintError("ignored", nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "export failed", entries[0]["message"])
	assert.Equal(t, "disk full", entries[0]["error"])
}

func TestTagFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		tag    string
		want   bool
	}{
		{"no filter", "", "client", true},
		{"included", "client", "client", true},
		{"child included", "client", "client:http", true},
		{"not included", "client", "sinks", false},
		{"excluded", "-sinks", "sinks:postgres", false},
		{"exclusion only allows others", "-sinks", "client", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetTagFilter(tt.filter)
			defer SetTagFilter("")
			assert.Equal(t, tt.want, shouldLogTag(tt.tag))
		})
	}
}

func TestFilteredTagReturnsNoOp(t *testing.T) {
	buf := captureOutput(t, LogLevelDebug)
	SetTagFilter("-mockapi")

	New("mockapi").Error("should not appear")
	assert.Empty(t, buf.String())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"debug", LogLevelDebug},
		{"INFO", LogLevelInfo},
		{"warning", LogLevelWarn},
		{"1", LogLevelError},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}
