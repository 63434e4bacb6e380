// Package logger provides the levelled console logger used by the CLI for
// startup information, per-file scan failures and the timing summary.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level is a log verbosity threshold.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// ParseLevel maps trace|debug|info|warn|error (any case) to a Level. Unknown
// or empty input yields LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
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

// ConsoleLogger writes "[HH:MM:SS] [LEVEL] message" lines. It is safe for
// concurrent use; a nil writer discards everything.
type ConsoleLogger struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	colors bool
	now    func() time.Time
}

// New returns a logger writing to w at the given level. Colour is used only
// when w is os.Stdout or os.Stderr and colour has not been disabled.
func New(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		w:      w,
		level:  ParseLevel(level),
		colors: isTerminal(w),
		now:    time.Now,
	}
}

// Discard returns a logger that drops every message.
func Discard() *ConsoleLogger { return New(nil, "error") }

func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		return !color.NoColor
	}
	return false
}

// SetColor forces colour output on or off.
func (l *ConsoleLogger) SetColor(on bool) {
	l.mu.Lock()
	l.colors = on
	l.mu.Unlock()
}

// Enabled reports whether messages at lvl would be written.
func (l *ConsoleLogger) Enabled(lvl Level) bool {
	return l != nil && l.w != nil && lvl >= l.level
}

func (l *ConsoleLogger) Tracef(format string, args ...any) { l.logf(LevelTrace, format, args...) }
func (l *ConsoleLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *ConsoleLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *ConsoleLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *ConsoleLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *ConsoleLogger) logf(lvl Level, format string, args ...any) {
	if !l.Enabled(lvl) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.now().Format("15:04:05")
	name := levelNames[lvl]
	if l.colors {
		name = levelColor(lvl).Sprint(name)
	}
	fmt.Fprintf(l.w, "[%s] [%s] %s\n", ts, name, strings.TrimRight(msg, "\n"))
}

func levelColor(lvl Level) *color.Color {
	switch lvl {
	case LevelTrace:
		return color.New(color.FgHiBlack)
	case LevelDebug:
		return color.New(color.FgCyan)
	case LevelInfo:
		return color.New(color.FgBlue)
	case LevelWarn:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
