// Package logging emits leveled diagnostic records to a pluggable sink.
//
// A record carries a tag (usually the task or subsystem name) and free text.
// Sinks decide how records leave the device: a terminal, a serial debug
// transport, or an in-memory recorder for tests.
package logging

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Level is the severity of a record.
type Level uint8

// Supported levels.
const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
}

// ParseLevel parses a level name as used in the board table.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug", "DEBUG":
		return Debug, nil
	case "", "info", "INFO":
		return Info, nil
	case "warn", "WARN", "warning":
		return Warn, nil
	case "error", "ERROR":
		return Error, nil
	default:
		return Info, fmt.Errorf("logging: unknown level %q", s)
	}
}

// Record is one diagnostic record.
type Record struct {
	Time  time.Time
	Level Level
	Tag   string
	Text  string
}

func (r Record) String() string {
	if r.Tag == "" {
		return r.Level.String() + " " + r.Text
	}
	return r.Level.String() + " " + r.Tag + ": " + r.Text
}

// Sink receives records. Emit must not block for long; it is called from
// task code running on the executor.
type Sink interface {
	Emit(Record)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Record)

// Emit calls f(r).
func (f SinkFunc) Emit(r Record) { f(r) }

// Discard drops every record.
var Discard Sink = SinkFunc(func(Record) {})

// Logger stamps and forwards records to a sink.
type Logger struct {
	sink  Sink
	clock clockwork.Clock
	tag   string
}

// New returns a logger writing to sink. A nil clock uses real time.
func New(sink Sink, clock clockwork.Clock) *Logger {
	if sink == nil {
		sink = Discard
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Logger{sink: sink, clock: clock}
}

// With returns a logger that tags its records with tag.
func (l *Logger) With(tag string) *Logger {
	if l == nil {
		return nil
	}
	c := *l
	c.tag = tag
	return &c
}

// Tag returns the logger tag.
func (l *Logger) Tag() string { return l.tag }

// Log emits text at level.
func (l *Logger) Log(level Level, text string) {
	if l == nil {
		return
	}
	l.sink.Emit(Record{
		Time:  l.clock.Now(),
		Level: level,
		Tag:   l.tag,
		Text:  text,
	})
}

func (l *Logger) Debugf(format string, args ...any) { l.Log(Debug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.Log(Info, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.Log(Warn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.Log(Error, fmt.Sprintf(format, args...)) }
