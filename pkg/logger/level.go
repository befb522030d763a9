package logger

import (
	"fmt"
	"strings"
)

// Level is a minimum severity.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
	// LevelSilent drops every message.
	LevelSilent
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts the names printed by Level.String, plus "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "debug":
		return LevelInfo, nil
	case "warning", "warn", "":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "silent", "none":
		return LevelSilent, nil
	}
	return LevelWarning, fmt.Errorf("unknown log level %q", s)
}

// LevelLogger forwards messages at or above Min to Next.
type LevelLogger struct {
	Min  Level
	Next Logger
}

func NewLevelLogger(min Level, next Logger) *LevelLogger {
	return &LevelLogger{Min: min, Next: next}
}

func (l *LevelLogger) Info(format string, args ...interface{}) {
	if l.Min <= LevelInfo {
		l.Next.Info(format, args...)
	}
}

func (l *LevelLogger) Warning(format string, args ...interface{}) {
	if l.Min <= LevelWarning {
		l.Next.Warning(format, args...)
	}
}

func (l *LevelLogger) Error(format string, args ...interface{}) {
	if l.Min <= LevelError {
		l.Next.Error(format, args...)
	}
}

func (l *LevelLogger) Close() error {
	return l.Next.Close()
}

var _ Logger = (*LevelLogger)(nil)
