package parser

import (
	"fmt"

	"github.com/sambeau/crabscript/pkg/crab/errors"
)

// ErrorKind classifies a parse error.
type ErrorKind int

const (
	ExpectedNotFound ErrorKind = iota
	Unexpected
	UnexpectedEndOfInput
	UndefinedVariable
)

func (k ErrorKind) String() string {
	switch k {
	case ExpectedNotFound:
		return "ExpectedNotFound"
	case Unexpected:
		return "Unexpected"
	case UnexpectedEndOfInput:
		return "UnexpectedEndOfInput"
	case UndefinedVariable:
		return "UndefinedVariable"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError is a recoverable error reported by the parser.
type ParseError struct {
	Kind     ErrorKind
	Line     int
	Expected string // ExpectedNotFound, and optionally Unexpected
	Found    string // Unexpected
	Name     string // UndefinedVariable
	crab     *errors.CrabError
}

// Error renders the error as ERROR [l. <line>]: <message>.
func (e *ParseError) Error() string {
	return fmt.Sprintf("ERROR [l. %d]: %s", e.Line, e.crab.Message)
}

// Message returns the message without the line prefix.
func (e *ParseError) Message() string {
	return e.crab.Message
}

// Structured returns the error as a CrabError carrying code, hints and line.
func (e *ParseError) Structured() *errors.CrabError {
	return e.crab
}

func expectedNotFound(line int, what string) *ParseError {
	return &ParseError{
		Kind:     ExpectedNotFound,
		Line:     line,
		Expected: what,
		crab:     errors.NewWithLine("PARSE-0001", line, map[string]any{"Expected": what}),
	}
}

func unexpected(line int, found, expected string) *ParseError {
	return &ParseError{
		Kind:     Unexpected,
		Line:     line,
		Found:    found,
		Expected: expected,
		crab: errors.NewWithLine("PARSE-0002", line, map[string]any{
			"Found":    found,
			"Expected": expected,
		}),
	}
}

func invalidAssignment(line int, target string) *ParseError {
	return &ParseError{
		Kind:     Unexpected,
		Line:     line,
		Found:    target,
		Expected: "identifier or index expression",
		crab:     errors.NewWithLine("PARSE-0005", line, map[string]any{"Target": target}),
	}
}

func unexpectedEnd(line int) *ParseError {
	return &ParseError{
		Kind: UnexpectedEndOfInput,
		Line: line,
		crab: errors.NewWithLine("PARSE-0003", line, nil),
	}
}

func undefinedVariable(line int, name string, known []string) *ParseError {
	return &ParseError{
		Kind: UndefinedVariable,
		Line: line,
		Name: name,
		crab: errors.NewUndefinedVariable(name, line, known),
	}
}
