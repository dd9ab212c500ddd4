package evaluator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	crerrors "github.com/sambeau/crabscript/pkg/crab/errors"
)

// Logger interface for print()/println() output
type Logger interface {
	Log(values ...interface{})
	LogLine(values ...interface{})
}

// defaultStdoutLogger is the default logger that writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...interface{}) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
}

func (l *defaultStdoutLogger) LogLine(values ...interface{}) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
	fmt.Println()
}

// ThreadLogger is a Logger that also takes the failures of raw_spawn
// threads, which nothing joins. Other loggers get them as a plain line.
type ThreadLogger interface {
	Logger
	LogThreadFailure(id string, err error)
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// Runtime holds what natives need beyond their arguments. One runtime is
// shared by every scope and thread of a program run.
type Runtime struct {
	Registry *Registry
	Logger   Logger
	Security *SecurityPolicy
	Argv     []string
	Filename string
	// MaxReadSize caps the bytes cat will read. Zero means no limit.
	MaxReadSize int64

	stdinMu sync.Mutex
	stdin   *bufio.Reader
}

// NewRuntime creates a runtime over registry that prints to DefaultLogger
// and reads from os.Stdin.
func NewRuntime(registry *Registry) *Runtime {
	return &Runtime{
		Registry: registry,
		Logger:   DefaultLogger,
		stdin:    bufio.NewReader(os.Stdin),
	}
}

// SetStdin replaces the reader read() and readln() consume.
func (rt *Runtime) SetStdin(r io.Reader) {
	rt.stdinMu.Lock()
	defer rt.stdinMu.Unlock()
	rt.stdin = bufio.NewReader(r)
}

// NewRootScope creates the top-level scope of a program.
func (rt *Runtime) NewRootScope() *Scope {
	return &Scope{rt: rt}
}

// RuntimeError is a fatal evaluation error. It is raised with panic and
// unwinds the whole program.
type RuntimeError struct {
	Err *crerrors.CrabError
}

func (e *RuntimeError) Error() string {
	if e.Err.Line > 0 {
		return fmt.Sprintf("runtime error: line %d: %s", e.Err.Line, e.Err.Message)
	}
	return "runtime error: " + e.Err.Message
}

// Unwrap returns the structured error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// throw raises a catalog error as a fatal runtime error.
func throw(line int, code string, data map[string]any) {
	panic(&RuntimeError{Err: crerrors.NewWithLine(code, line, data)})
}

// fail raises a fatal error from inside a native, where no line is known.
func fail(code string, data map[string]any) {
	throw(0, code, data)
}

// describe renders a value for an error message.
func describe(v Value) string {
	if v == nil {
		return "none"
	}
	switch v := v.(type) {
	case *String, *Character:
		return inspectNested(v)
	case *Array:
		return "array " + v.Inspect()
	}
	return v.Inspect()
}

func typeName(v Value) string {
	if v == nil {
		return "none"
	}
	switch v.Type() {
	case NONE_VAL:
		return "none"
	case INTEGER_VAL:
		return "int"
	case FLOAT_VAL:
		return "float"
	case BOOL_VAL:
		return "bool"
	case CHARACTER_VAL:
		return "char"
	case STRING_VAL:
		return "string"
	case ARRAY_VAL:
		return "array"
	case FUNCTION_VAL:
		return "function"
	case ITERATOR_VAL:
		return "iterator"
	case THREAD_VAL:
		return "thread"
	}
	return string(v.Type())
}
