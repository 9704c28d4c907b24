package logging

import (
	"io"
	"log"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

var levelColor = map[Level]func(string) string{
	Debug: ansi.ColorFunc("black+h"),
	Info:  ansi.ColorFunc("green"),
	Warn:  ansi.ColorFunc("yellow"),
	Error: ansi.ColorFunc("red+b"),
}

type writerSink struct {
	mu    sync.Mutex
	out   *log.Logger
	color bool
}

// NewWriterSink formats records as text lines on w. Levels are colored when
// w is a terminal.
func NewWriterSink(w io.Writer) Sink {
	return &writerSink{
		out:   log.New(w, "", log.Ltime|log.Lmicroseconds),
		color: isTerminal(w),
	}
}

// Stdout is a writer sink on the process standard output.
func Stdout() Sink {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return &writerSink{
			out:   log.New(colorable.NewColorableStdout(), "", log.Ltime|log.Lmicroseconds),
			color: true,
		}
	}
	return NewWriterSink(os.Stdout)
}

func (s *writerSink) Emit(r Record) {
	level := r.Level.String()
	if s.color {
		if fn, ok := levelColor[r.Level]; ok {
			level = fn(level)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Tag == "" {
		s.out.Printf("%-5s %s", level, r.Text)
	} else {
		s.out.Printf("%-5s %s: %s", level, r.Tag, r.Text)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// Filter drops records below min.
func Filter(min Level, sink Sink) Sink {
	return SinkFunc(func(r Record) {
		if r.Level >= min {
			sink.Emit(r)
		}
	})
}

// Multi copies every record to all sinks.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(r Record) {
		for _, s := range sinks {
			s.Emit(r)
		}
	})
}
