package crab

import (
	"github.com/sambeau/crabscript/pkg/crab/evaluator"
	"github.com/sambeau/crabscript/pkg/crab/lexer"
	"github.com/sambeau/crabscript/pkg/crab/parser"
)

// Session evaluates a sequence of inputs against one top-level scope, the
// way a REPL does. Errors end the current input only.
type Session struct {
	opts    *options
	parser  *parser.Session
	runtime *evaluator.Runtime
	scope   *evaluator.Scope
}

// NewSession creates a session with an empty top-level scope.
func NewSession(opts ...Option) *Session {
	o := buildOptions(opts)
	rt := o.runtime()
	return &Session{
		opts:    o,
		parser:  parser.NewSession(o.registry),
		runtime: rt,
		scope:   rt.NewRootScope(),
	}
}

// Eval parses and runs one input, returning the value of its last statement.
func (s *Session) Eval(input string) (result evaluator.Value, err error) {
	program, err := s.parser.Parse(lexer.NewWithFilename(input, s.opts.filename))
	if err != nil {
		return nil, err
	}
	defer recoverRuntimeError(&err, s.opts.filename)
	return evaluator.EvalProgram(program, s.scope), nil
}

// Registry returns the natives available to the session.
func (s *Session) Registry() *evaluator.Registry {
	return s.opts.registry
}

// Names returns the top-level names declared so far.
func (s *Session) Names() []string {
	return s.parser.Names()
}
