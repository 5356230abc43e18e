// ABOUTME: Tests for leveled logging, level parsing, and component scopes
// ABOUTME: Captures output through SetOutput and checks prefixes and filtering

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := CurrentLevel()
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel(prev)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	_ = capture(t)
	SetLevel(LevelInfo)

	assert.False(t, IsVerbose(), "info level should not be verbose")

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
	assert.Equal(t, LevelInfo, CurrentLevel())
}

func TestDebugLevel(t *testing.T) {
	buf := capture(t)

	SetVerbose(false)
	Debug("test debug message")
	assert.Zero(t, buf.Len(), "debug output when not verbose")

	SetVerbose(true)
	Debug("test debug message")
	assert.Contains(t, buf.String(), "[DEBUG]")
	assert.Contains(t, buf.String(), "test debug message")
}

func TestLevels(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelInfo)

	Info("info line")
	Warn("warn line")
	Error("error line")

	out := buf.String()
	assert.Contains(t, out, "[INFO] info line")
	assert.Contains(t, out, "[WARN] warn line")
	assert.Contains(t, out, "[ERROR] error line")
}

func TestSetLevel_FiltersBelow(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelWarn)

	Info("hidden")
	Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestScope(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	ws := Scope("ws")
	ws.Warn("connection lost (code %d)", 1006)
	ws.Debug("frame %d bytes", 42)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[WARN] [ws] connection lost (code 1006)")
	assert.Contains(t, lines[1], "[DEBUG] [ws] frame 42 bytes")
}
