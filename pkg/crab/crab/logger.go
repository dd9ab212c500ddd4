package crab

import (
	goerrors "errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sambeau/crabscript/pkg/crab/evaluator"
)

// Logger is an alias for evaluator.Logger for convenience
type Logger = evaluator.Logger

// StdoutLogger returns a logger that writes to stdout (default for CLI/REPL)
func StdoutLogger() Logger {
	return evaluator.DefaultLogger
}

// writerLogger writes script output to w and failures of unjoined threads
// to errW. Writes from spawned threads are serialized.
type writerLogger struct {
	mu   sync.Mutex
	w    io.Writer
	errW io.Writer
}

func (l *writerLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.w, formatLogValues(values...))
}

func (l *writerLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, formatLogValues(values...))
}

func (l *writerLogger) LogThreadFailure(id string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.errW, formatThreadFailure(id, err))
}

// WriterLogger returns a logger that writes everything to w.
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w, errW: w}
}

// SplitLogger returns a logger that writes script output to out and the
// failures of raw_spawn threads to errOut.
func SplitLogger(out, errOut io.Writer) Logger {
	return &writerLogger{w: out, errW: errOut}
}

// NullLogger returns a logger that discards all output
func NullLogger() Logger {
	return WriterLogger(io.Discard)
}

// BufferedLogger captures script output for later retrieval. Output of
// print accumulates until the next println ends the line.
type BufferedLogger struct {
	mu       sync.Mutex
	lines    []string
	pending  strings.Builder
	failures []string
}

// NewBufferedLogger creates a new buffered logger
func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (l *BufferedLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending.WriteString(formatLogValues(values...))
}

func (l *BufferedLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, l.pending.String()+formatLogValues(values...))
	l.pending.Reset()
}

func (l *BufferedLogger) LogThreadFailure(id string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = append(l.failures, formatThreadFailure(id, err))
}

// String returns all captured output as a single string
func (l *BufferedLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sb strings.Builder
	for _, line := range l.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(l.pending.String())
	return sb.String()
}

// Lines returns all completed lines.
func (l *BufferedLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Failures returns one entry per raw_spawn thread that failed.
func (l *BufferedLogger) Failures() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.failures...)
}

// Reset clears all captured output
func (l *BufferedLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.failures = nil
	l.pending.Reset()
}

func formatLogValues(values ...any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

// formatThreadFailure renders "[thread 1a2b3c4d] line 3: message". Runtime
// errors keep their position; anything else is printed as is.
func formatThreadFailure(id string, err error) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	msg := err.Error()
	var rerr *evaluator.RuntimeError
	if goerrors.As(err, &rerr) {
		msg = rerr.Err.String()
	}
	return fmt.Sprintf("[thread %s] %s", short, msg)
}

var _ evaluator.ThreadLogger = (*writerLogger)(nil)
var _ evaluator.ThreadLogger = (*BufferedLogger)(nil)
