package parser

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sambeau/crabscript/pkg/crab/ast"
	"github.com/sambeau/crabscript/pkg/crab/lexer"
)

type fakeNatives map[string]bool

func (f fakeNatives) Has(name string) bool { return f[name] }

func (f fakeNatives) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var testNatives = fakeNatives{"print": true, "println": true, "add": true, "range": true}

func parseOK(t *testing.T, input string) *ast.Block {
	t.Helper()
	p := New(lexer.New(input), testNatives)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse error for %q: %s", input, errs[0])
	}
	return program
}

type slotRef struct {
	Name  string
	Slot  int
	Depth int
}

func ref(id *ast.Identifier) slotRef {
	return slotRef{id.Name, id.Slot, id.Depth}
}

func TestSlotAllocation(t *testing.T) {
	program := parseOK(t, `let a = 1
let b = 2
fn f {
    let c = a
    ret c
}
`)

	if len(program.Statements) != 3 {
		t.Fatalf("Expected 3 statements, got %d", len(program.Statements))
	}

	a := program.Statements[0].(*ast.Declaration)
	b := program.Statements[1].(*ast.Declaration)
	f := program.Statements[2].(*ast.FunctionLiteral)
	c := f.Body.Statements[0].(*ast.Declaration)
	ret := f.Body.Statements[1].(*ast.ReturnStatement)

	got := []slotRef{
		ref(a.Name),
		ref(b.Name),
		ref(f.Name),
		ref(c.Name),
		ref(c.Value.(*ast.Identifier)),
		ref(ret.Value.(*ast.Identifier)),
	}
	want := []slotRef{
		{"a", 0, 0},
		{"b", 1, 0},
		{"f", 2, 0},
		{"c", 0, 1},
		{"a", 0, 0},
		{"c", 0, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slot mismatch (-want +got):\n%s", diff)
	}

	if !f.Name.Const {
		t.Error("named functions should be constant")
	}
	if f.Body.Purpose != ast.PurposeFunction {
		t.Errorf("Expected Function purpose, got %s", f.Body.Purpose)
	}
}

func TestMutualRecursion(t *testing.T) {
	program := parseOK(t, `fn even { ret odd(args[0]) }
fn odd { ret even(args[0]) }`)

	even := program.Statements[0].(*ast.FunctionLiteral)
	call := even.Body.Statements[0].(*ast.ReturnStatement).Value.(*ast.CallExpression)
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok {
		t.Fatalf("Expected Identifier callee, got %T", call.Callee)
	}
	if diff := cmp.Diff(slotRef{"odd", 1, 0}, ref(callee)); diff != "" {
		t.Errorf("forward reference mismatch (-want +got):\n%s", diff)
	}

	if _, ok := call.Arguments[0].(*ast.IndexExpression).Left.(*ast.ArgsExpression); !ok {
		t.Errorf("Expected args to parse as ArgsExpression")
	}
}

func TestRecursiveFunctionSeesItself(t *testing.T) {
	program := parseOK(t, `fn pow {
    if args[1] {
        ret pow(args[0], 0)
    }
    ret 1
}`)
	fn := program.Statements[0].(*ast.FunctionLiteral)
	ifExpr := fn.Body.Statements[0].(*ast.IfExpression)
	ret := ifExpr.Branches[0].Body.Statements[0].(*ast.ReturnStatement)
	callee := ret.Value.(*ast.CallExpression).Callee.(*ast.Identifier)
	if diff := cmp.Diff(slotRef{"pow", 0, 0}, ref(callee)); diff != "" {
		t.Errorf("recursive reference mismatch (-want +got):\n%s", diff)
	}
}

func TestLetInitializerSeesOuterBinding(t *testing.T) {
	program := parseOK(t, "let x = 1\n{ let x = x }")

	block := program.Statements[1].(*ast.Block)
	decl := block.Statements[0].(*ast.Declaration)

	if diff := cmp.Diff(slotRef{"x", 0, 1}, ref(decl.Name)); diff != "" {
		t.Errorf("declared name mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(slotRef{"x", 0, 0}, ref(decl.Value.(*ast.Identifier))); diff != "" {
		t.Errorf("initializer mismatch (-want +got):\n%s", diff)
	}
}

func TestForVariable(t *testing.T) {
	program := parseOK(t, "for i in range(0, 3) { let j = i }\nfor _ in range(0, 1) { }")

	loop := program.Statements[0].(*ast.ForExpression)
	decl := loop.Body.Statements[0].(*ast.Declaration)

	got := []slotRef{ref(loop.Variable), ref(decl.Name), ref(decl.Value.(*ast.Identifier))}
	want := []slotRef{{"i", 0, 1}, {"j", 1, 1}, {"i", 0, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("for variable mismatch (-want +got):\n%s", diff)
	}

	blank := program.Statements[1].(*ast.ForExpression)
	if blank.Variable != nil {
		t.Errorf("Expected nil variable for _, got %v", blank.Variable)
	}
}

func TestNativeFallbackAndShadowing(t *testing.T) {
	program := parseOK(t, "print(1)\nlet print = 2\nprint")

	call := program.Statements[0].(*ast.CallExpression)
	if _, ok := call.Callee.(*ast.NativeRef); !ok {
		t.Errorf("Expected NativeRef before the binding, got %T", call.Callee)
	}
	if _, ok := program.Statements[2].(*ast.Identifier); !ok {
		t.Errorf("Expected Identifier after the binding, got %T", program.Statements[2])
	}
}

func TestChainedPostfix(t *testing.T) {
	program := parseOK(t, "let a = 1\na[0][1] = add(1)(2)")

	assign, ok := program.Statements[1].(*ast.AssignExpression)
	if !ok {
		t.Fatalf("Expected AssignExpression, got %T", program.Statements[1])
	}
	if got := len(assign.Target.(*ast.IndexExpression).Indexes); got != 2 {
		t.Errorf("Expected 2 indexes, got %d", got)
	}
	outer := assign.Value.(*ast.CallExpression)
	if _, ok := outer.Callee.(*ast.CallExpression); !ok {
		t.Errorf("Expected nested call, got %T", outer.Callee)
	}
	if got := assign.String(); got != "a[0][1] = add(1)(2)" {
		t.Errorf("Expected %q, got %q", "a[0][1] = add(1)(2)", got)
	}
}

func TestIfChain(t *testing.T) {
	program := parseOK(t, `if true {
    1
} else if false {
    2
}
elif true {
    3
} else {
    4
}`)

	expr := program.Statements[0].(*ast.IfExpression)
	if len(expr.Branches) != 3 {
		t.Errorf("Expected 3 branches, got %d", len(expr.Branches))
	}
	if expr.Alternative == nil {
		t.Fatal("Expected an else block")
	}
	if expr.Alternative.Purpose != ast.PurposeConditional {
		t.Errorf("Expected Conditional purpose, got %s", expr.Alternative.Purpose)
	}
}

func TestReturnWithoutValue(t *testing.T) {
	program := parseOK(t, "fn f { ret }\nfn g { ret; 1 }")

	for i, stmt := range program.Statements {
		ret := stmt.(*ast.FunctionLiteral).Body.Statements[0].(*ast.ReturnStatement)
		if ret.Value != nil {
			t.Errorf("statement %d: Expected bare ret, got %s", i, ret.Value)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     ErrorKind
		line     int
		expected string
	}{
		{"missing name", "let = 1", ExpectedNotFound, 1, "ERROR [l. 1]: expected identifier"},
		{"missing assign", "let x 1", ExpectedNotFound, 1, "ERROR [l. 1]: expected ="},
		{"undefined", "\nfoo(1)", UndefinedVariable, 2, "ERROR [l. 2]: undefined variable foo"},
		{"used before let", "x\nlet x = 1", UndefinedVariable, 1, "ERROR [l. 1]: undefined variable x"},
		{"unclosed block", "fn f {\n ret 1\n", UnexpectedEndOfInput, 3, "ERROR [l. 3]: unexpected end of input"},
		{"stray brace", "}", Unexpected, 1, "ERROR [l. 1]: unexpected }"},
		{"missing comma", "print(1 2)", Unexpected, 1, "ERROR [l. 1]: unexpected 2, expected , or )"},
		{"assign to literal", "1 = 2", Unexpected, 1, "ERROR [l. 1]: cannot assign to 1"},
		{"declare args", "let args = 1", Unexpected, 1, "ERROR [l. 1]: unexpected args, expected identifier"},
		{"bad else", "if true { 1 } else 2", Unexpected, 1, "ERROR [l. 1]: unexpected 2, expected if or {"},
		{"illegal", "let x = +", Unexpected, 1, "ERROR [l. 1]: unexpected +"},
		{"unterminated", "let x = \"abc", Unexpected, 1, "ERROR [l. 1]: unexpected unterminated string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(lexer.New(tt.input), testNatives)
			p.ParseProgram()

			errs := p.Errors()
			if len(errs) != 1 {
				t.Fatalf("Expected 1 error, got %d", len(errs))
			}
			err := errs[0]
			if err.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s", tt.kind, err.Kind)
			}
			if err.Line != tt.line {
				t.Errorf("Expected line %d, got %d", tt.line, err.Line)
			}
			if err.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

func TestUndefinedVariableHint(t *testing.T) {
	p := New(lexer.New("prinln(1)"), testNatives)
	p.ParseProgram()

	errs := p.StructuredErrors()
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(errs))
	}
	if errs[0].Code != "PARSE-0004" {
		t.Errorf("Expected code PARSE-0004, got %s", errs[0].Code)
	}
	want := []string{"did you mean `println`?"}
	if diff := cmp.Diff(want, errs[0].Hints); diff != "" {
		t.Errorf("hints mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionKeepsTopLevelNames(t *testing.T) {
	s := NewSession(testNatives)

	if _, err := s.Parse(lexer.New("let a = 1")); err != nil {
		t.Fatalf("first input: %v", err)
	}
	program, err := s.Parse(lexer.New("let b = a"))
	if err != nil {
		t.Fatalf("second input: %v", err)
	}

	decl := program.Statements[0].(*ast.Declaration)
	if diff := cmp.Diff(slotRef{"b", 1, 0}, ref(decl.Name)); diff != "" {
		t.Errorf("b mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(slotRef{"a", 0, 0}, ref(decl.Value.(*ast.Identifier))); diff != "" {
		t.Errorf("a mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Parse(lexer.New("missing")); err == nil {
		t.Error("Expected an error for an undefined name")
	}
	if diff := cmp.Diff([]string{"a", "b"}, s.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
