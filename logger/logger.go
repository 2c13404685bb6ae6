// Package logger is a small leveled wrapper over the standard log package.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Level is a log severity
type Level int

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
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel converts a level name such as "debug" or "WARN"
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger writes leveled lines prefixed with a component name
type Logger struct {
	out   *log.Logger
	level Level
}

// New creates a logger writing to w
func New(w io.Writer, component string, level Level) *Logger {
	prefix := ""
	if component != "" {
		prefix = component + " "
	}
	return &Logger{
		out:   log.New(w, prefix, log.LstdFlags|log.Lmsgprefix),
		level: level,
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(io.Discard, "", LevelError+1)
}

// Level returns the minimum level that is written
func (l *Logger) Level() Level {
	return l.level
}

// Enabled reports whether lines at level would be written
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.out.Printf("["+level.String()+"] "+format, v...)
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.logf(LevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.logf(LevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.logf(LevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.logf(LevelError, format, v...) }
