package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
)

// ConsoleOutput writes formatted entries to a writer, stderr by default.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput returns a ConsoleOutput writing to stderr.
func NewConsoleOutput() *ConsoleOutput { return &ConsoleOutput{w: os.Stderr} }

// NewWriterOutput returns a ConsoleOutput writing to w. Useful in tests.
func NewWriterOutput(w io.Writer) *ConsoleOutput { return &ConsoleOutput{w: w} }

// Write implements Output.
func (o *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}

// Close implements Output. Console outputs do not own their writer.
func (o *ConsoleOutput) Close() error { return nil }

// RedirectStdLog routes standard library log output (used by Pebble and
// other dependencies) through the provided logger at info level.
func RedirectStdLog(logger Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdLogBridge{logger})
}

type stdLogBridge struct{ logger Logger }

func (b stdLogBridge) Write(p []byte) (int, error) {
	b.logger.Info(strings.TrimSuffix(string(p), "\n"), Component("stdlog"))
	return len(p), nil
}
