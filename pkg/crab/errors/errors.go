// Package errors provides structured error types for CrabScript.
//
// CrabError is the single error shape shared by the parser and the evaluator.
// Messages come from a catalog of templates keyed by error code so callers
// can match on codes rather than message text.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and display.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"     // Syntax and slot resolution errors
	ClassType      ErrorClass = "type"      // Wrong kind of value
	ClassArity     ErrorClass = "arity"     // Wrong argument count
	ClassUndefined ErrorClass = "undefined" // Unknown names
	ClassIO        ErrorClass = "io"        // Filesystem and stdin
	ClassSecurity  ErrorClass = "security"  // Access denied by policy
	ClassIndex     ErrorClass = "index"     // Out of bounds
	ClassOperator  ErrorClass = "operator"  // Invalid arithmetic
	ClassState     ErrorClass = "state"     // Invalid binding state
	ClassUser      ErrorClass = "user"      // panic() and assert()
	ClassInternal  ErrorClass = "internal"  // Parser/runtime slot mismatch
)

// CrabError represents any error from parsing or evaluation.
type CrabError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based, 0 if unknown
	Column  int            `json:"column"` // 1-based, 0 if unknown
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *CrabError) Error() string {
	return e.String()
}

// String returns a single-line rendering with the location prefix and any hints.
func (e *CrabError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d: ", e.Line))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for terminal display.
func (e *CrabError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse:
		sb.WriteString("Parser error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf("\n  at: line %d", e.Line))
		}
		sb.WriteString("\n  ")
	} else if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d\n  ", e.Line))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *CrabError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithFile returns a copy of the error with the file path set.
func (e *CrabError) WithFile(file string) *CrabError {
	copy := *e
	copy.File = file
	return &copy
}

// WithPosition returns a copy of the error with line and column set.
func (e *CrabError) WithPosition(line, column int) *CrabError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsParseError returns true if this is a parser error.
func (e *CrabError) IsParseError() bool {
	return e.Class == ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // Message template with {{.placeholders}}
	Hints    []string // Hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected {{.Found}}{{if .Expected}}, expected {{.Expected}}{{end}}",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "unexpected end of input",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "undefined variable {{.Name}}",
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "cannot assign to {{.Target}}",
		Hints:    []string{"only identifiers and index expressions like a[i] can be assigned"},
	},

	// Type errors
	"TYPE-0001": {
		Class:    ClassType,
		Template: "cannot call {{.Value}}",
	},
	"TYPE-0002": {
		Class:    ClassType,
		Template: "cannot index into {{.Value}}",
	},
	"TYPE-0003": {
		Class:    ClassType,
		Template: "index must be an integer, got {{.Got}}",
	},
	"TYPE-0004": {
		Class:    ClassType,
		Template: "cannot convert {{.Value}} to iterator",
	},
	"TYPE-0005": {
		Class:    ClassType,
		Template: "{{.Function}}: expected {{.Expected}}, got {{.Got}}",
	},
	"TYPE-0006": {
		Class:    ClassType,
		Template: "cannot compare {{.Left}} with {{.Right}}",
	},
	"TYPE-0007": {
		Class:    ClassType,
		Template: "condition must be a bool, got {{.Got}}",
	},
	"TYPE-0008": {
		Class:    ClassType,
		Template: "{{.Function}}: {{.Value}} has no truth value",
	},
	"TYPE-0009": {
		Class:    ClassType,
		Template: "cannot convert {{.Value}} to {{.Target}}",
	},
	"TYPE-0010": {
		Class:    ClassType,
		Template: "{{.Function}} is not supported by this iterator",
	},

	// Arity errors
	"ARITY-0001": {
		Class:    ClassArity,
		Template: "{{.Function}} expects {{.Expected}} argument(s), got {{.Got}}",
	},

	// Index errors
	"INDEX-0001": {
		Class:    ClassIndex,
		Template: "index {{.Index}} out of bounds for length {{.Length}}",
	},
	"INDEX-0002": {
		Class:    ClassIndex,
		Template: "slice bounds [{{.Low}}:{{.High}}] out of range for length {{.Length}}",
	},

	// Operator errors
	"OP-0001": {
		Class:    ClassOperator,
		Template: "{{.Function}}: integer division by zero",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "{{.Function}}: integer overflow",
	},

	// Binding state errors
	"UNDEFINED-0001": {
		Class:    ClassUndefined,
		Template: "undefined variable {{.Name}}",
		Hints:    []string{"the declaration of {{.Name}} did not run before this point"},
	},
	"STATE-0001": {
		Class:    ClassState,
		Template: "redefinition of {{.Name}}",
	},
	"STATE-0002": {
		Class:    ClassState,
		Template: "redefinition of constant {{.Name}}",
		Hints:    []string{"declare it with let instead of const if it must change"},
	},
	"STATE-0003": {
		Class:    ClassState,
		Template: "cannot assign to index of a temporary value",
		Hints:    []string{"store the value in a variable first, then assign to its index"},
	},
	"STATE-0004": {
		Class:    ClassState,
		Template: "args used outside of a function",
	},
	"STATE-0005": {
		Class:    ClassState,
		Template: "thread {{.ID}} was spawned raw and cannot be joined",
	},

	// IO errors
	"IO-0001": {
		Class:    ClassIO,
		Template: "{{.Function}}: {{.Error}}",
	},
	"IO-0002": {
		Class:    ClassIO,
		Template: "{{.Function}}: {{.Path}} is larger than the read limit of {{.Limit}}",
	},

	// Security errors
	"SEC-0001": {
		Class:    ClassSecurity,
		Template: "{{.Function}}: {{.Error}}",
	},

	// User raised
	"USER-0001": {
		Class:    ClassUser,
		Template: "panic: {{.Message}}",
	},
	"USER-0002": {
		Class:    ClassUser,
		Template: "assertion failed{{if .Message}}: {{.Message}}{{end}}",
	},

	// Internal
	"INTERNAL-0001": {
		Class:    ClassInternal,
		Template: "slot {{.Slot}} is not allocated in scope at depth {{.Depth}}",
	},
	"INTERNAL-0002": {
		Class:    ClassInternal,
		Template: "depth {{.Depth}} is not reachable from scope at depth {{.From}}",
	},
	"INTERNAL-0003": {
		Class:    ClassInternal,
		Template: "cannot evaluate {{.Node}}",
	},
}

// New creates a CrabError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *CrabError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &CrabError{
			Class:   ClassType,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		if rendered := renderTemplate(hintTmpl, data); rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &CrabError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithLine creates a CrabError with a line number.
func NewWithLine(code string, line int, data map[string]any) *CrabError {
	err := New(code, data)
	err.Line = line
	return err
}

// NewSimple creates an error without using the catalog.
func NewSimple(class ErrorClass, message string) *CrabError {
	return &CrabError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		data = map[string]any{}
	}

	tmpl, err := template.New("").Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// threshold is the largest edit distance still worth suggesting for input.
func threshold(input string) int {
	switch {
	case len(input) >= 7:
		return 3
	case len(input) >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch returns the candidate closest to input, or "" when nothing
// is near enough to be a plausible typo.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	var bestMatch string
	bestDistance := -1
	for _, candidate := range sorted {
		dist := levenshteinDistance(input, candidate)
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > threshold(input) {
		return ""
	}
	return bestMatch
}

// NewUndefinedVariable creates an undefined variable error, adding a
// "did you mean" hint when one of the known names is close.
func NewUndefinedVariable(name string, line int, known []string) *CrabError {
	err := NewWithLine("PARSE-0004", line, map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, known); suggestion != "" {
		err.Hints = append(err.Hints, "did you mean `"+suggestion+"`?")
	}
	return err
}

// Keywords are the reserved words of CrabScript, used for typo suggestions.
var Keywords = []string{
	"if", "else", "elif", "while", "let", "const", "fn", "ret", "for", "in",
	"true", "false", "none", "args",
}
