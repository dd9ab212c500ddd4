// Package crab provides a public API for embedding the CrabScript interpreter.
package crab

import (
	"errors"
	"io"

	"github.com/sambeau/crabscript/pkg/crab/ast"
	"github.com/sambeau/crabscript/pkg/crab/evaluator"
	"github.com/sambeau/crabscript/pkg/crab/lexer"
	"github.com/sambeau/crabscript/pkg/crab/parser"
)

// Version is the interpreter version reported by the CLI and REPL.
const Version = "0.3.0"

type options struct {
	logger      Logger
	registry    *evaluator.Registry
	security    *evaluator.SecurityPolicy
	argv        []string
	stdin       io.Reader
	filename    string
	maxReadSize int64
}

// Option configures a run.
type Option func(*options)

// WithLogger sends print and println output to l.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry replaces the standard library with r.
func WithRegistry(r *evaluator.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithSecurity applies a filesystem policy to the filesystem natives.
func WithSecurity(p *evaluator.SecurityPolicy) Option {
	return func(o *options) { o.security = p }
}

// WithArgs sets what argv() returns.
func WithArgs(argv []string) Option {
	return func(o *options) { o.argv = argv }
}

// WithStdin sets what read() and readln() consume.
func WithStdin(r io.Reader) Option {
	return func(o *options) { o.stdin = r }
}

// WithFilename names the source in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxReadSize caps the size of files cat will read. Zero means no limit.
func WithMaxReadSize(n int64) Option {
	return func(o *options) { o.maxReadSize = n }
}

func buildOptions(opts []Option) *options {
	o := &options{logger: StdoutLogger(), filename: "<input>"}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = evaluator.StdRegistry()
	}
	return o
}

func (o *options) runtime() *evaluator.Runtime {
	rt := evaluator.NewRuntime(o.registry)
	rt.Logger = o.logger
	rt.Security = o.security
	rt.Argv = o.argv
	rt.Filename = o.filename
	rt.MaxReadSize = o.maxReadSize
	if o.stdin != nil {
		rt.SetStdin(o.stdin)
	}
	return rt
}

func parse(source string, o *options) (*ast.Block, error) {
	p := parser.New(lexer.NewWithFilename(source, o.filename), o.registry)
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return program, nil
}

// Run lexes, parses and evaluates source. A parse error is returned as a
// *parser.ParseError. Runtime errors are fatal: Run lets the
// *evaluator.RuntimeError panic propagate.
func Run(source string, opts ...Option) error {
	o := buildOptions(opts)
	program, err := parse(source, o)
	if err != nil {
		return err
	}
	rt := o.runtime()
	evaluator.ExecuteBlock(program, rt.NewRootScope())
	return nil
}

// Exec is Run for callers that must survive runtime errors. It returns the
// value of the last top-level statement, and converts a fatal error into a
// returned *evaluator.RuntimeError. Other panics are not recovered.
func Exec(source string, opts ...Option) (result evaluator.Value, err error) {
	o := buildOptions(opts)
	program, err := parse(source, o)
	if err != nil {
		return nil, err
	}
	rt := o.runtime()

	defer recoverRuntimeError(&err, o.filename)
	return evaluator.EvalProgram(program, rt.NewRootScope()), nil
}

// Check parses source without running it.
func Check(source string, opts ...Option) error {
	_, err := parse(source, buildOptions(opts))
	return err
}

func recoverRuntimeError(err *error, filename string) {
	r := recover()
	if r == nil {
		return
	}
	rerr, ok := r.(*evaluator.RuntimeError)
	if !ok {
		panic(r)
	}
	if filename != "" && filename != "<input>" && rerr.Err.File == "" {
		rerr = &evaluator.RuntimeError{Err: rerr.Err.WithFile(filename)}
	}
	*err = rerr
}

// IsRuntimeError reports whether err is a fatal evaluation error.
func IsRuntimeError(err error) bool {
	var rerr *evaluator.RuntimeError
	return errors.As(err, &rerr)
}

// IsParseError reports whether err is a parse error.
func IsParseError(err error) bool {
	var perr *parser.ParseError
	return errors.As(err, &perr)
}
