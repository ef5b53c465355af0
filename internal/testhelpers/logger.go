// Package testhelpers wires test output into the structured logging used by the application.
package testhelpers

import (
	"io"
	"log/slog"

	"github.com/myrjola/setplan/internal/logging"
)

// NewLogger creates a debug level logger with the given log sink such as testhelpers.Writer.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}

// Recorder is an io.Writer that keeps every log line for later assertions and forwards it to another sink.
type Recorder struct {
	sink  io.Writer
	lines *lines
}

// NewRecorder creates a Recorder forwarding to sink.
func NewRecorder(sink io.Writer) *Recorder {
	return &Recorder{sink: sink, lines: &lines{}} //nolint:exhaustruct // zero lines.
}

// Write records p and forwards it.
func (r *Recorder) Write(p []byte) (int, error) {
	r.lines.add(string(p))
	return r.sink.Write(p)
}

// Contains reports whether any recorded line contains substr.
func (r *Recorder) Contains(substr string) bool {
	return r.lines.contains(substr)
}
