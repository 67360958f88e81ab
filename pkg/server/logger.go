package server

import (
	"fmt"
	"log"
	"strings"
)

// Logger is the interface for structured logging.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// F creates a new Field with the given key and value.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// NopLogger is a logger that discards all log entries.
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Warn(msg string, fields ...Field)  {}

// StdLogger writes "LEVEL msg key=value ..." lines through a *log.Logger.
type StdLogger struct {
	logger *log.Logger
	debug  bool
}

// NewStdLogger wraps l, or the standard logger when l is nil. Debug entries
// are dropped unless debug is true.
func NewStdLogger(l *log.Logger, debug bool) *StdLogger {
	if l == nil {
		l = log.Default()
	}
	return &StdLogger{logger: l, debug: debug}
}

func (l *StdLogger) Info(msg string, fields ...Field)  { l.write("INFO", msg, fields) }
func (l *StdLogger) Error(msg string, fields ...Field) { l.write("ERROR", msg, fields) }
func (l *StdLogger) Warn(msg string, fields ...Field)  { l.write("WARN", msg, fields) }

func (l *StdLogger) Debug(msg string, fields ...Field) {
	if !l.debug {
		return
	}
	l.write("DEBUG", msg, fields)
}

func (l *StdLogger) write(level, msg string, fields []Field) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	l.logger.Print(b.String())
}
