// ABOUTME: Leveled logging over the standard log package with per-component scopes
// ABOUTME: Level is configurable at runtime; scopes prefix lines like [ws] or [router]

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level orders log severities; messages below the current level are dropped.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level. Unknown names map to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var level atomic.Int32

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// CurrentLevel returns the minimum level that is written.
func CurrentLevel() Level {
	return Level(level.Load())
}

// SetVerbose enables or disables DEBUG output.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	if CurrentLevel() == LevelDebug {
		SetLevel(LevelInfo)
	}
}

// IsVerbose reports whether DEBUG output is enabled.
func IsVerbose() bool {
	return CurrentLevel() == LevelDebug
}

// SetOutput sets the destination for all log output. nil restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
}

func logf(l Level, scope, format string, args ...interface{}) {
	if l < CurrentLevel() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if scope != "" {
		log.Printf("[%s] [%s] %s", l, scope, msg)
		return
	}
	log.Printf("[%s] %s", l, msg)
}

// Debug logs at DEBUG level.
func Debug(format string, args ...interface{}) { logf(LevelDebug, "", format, args...) }

// Info logs at INFO level.
func Info(format string, args ...interface{}) { logf(LevelInfo, "", format, args...) }

// Warn logs at WARN level.
func Warn(format string, args ...interface{}) { logf(LevelWarn, "", format, args...) }

// Error logs at ERROR level.
func Error(format string, args ...interface{}) { logf(LevelError, "", format, args...) }

// Scoped logs with a fixed component prefix.
type Scoped struct {
	name string
}

// Scope returns a logger whose lines carry [name].
func Scope(name string) Scoped {
	return Scoped{name: name}
}

func (s Scoped) Debug(format string, args ...interface{}) { logf(LevelDebug, s.name, format, args...) }
func (s Scoped) Info(format string, args ...interface{})  { logf(LevelInfo, s.name, format, args...) }
func (s Scoped) Warn(format string, args ...interface{})  { logf(LevelWarn, s.name, format, args...) }
func (s Scoped) Error(format string, args ...interface{}) { logf(LevelError, s.name, format, args...) }
