package evaluator

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sambeau/crabscript/pkg/crab/lexer"
	"github.com/sambeau/crabscript/pkg/crab/parser"
)

type captureLogger struct {
	mu  sync.Mutex
	out strings.Builder
}

func (l *captureLogger) Log(values ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range values {
		l.out.WriteString(v.(string))
	}
}

func (l *captureLogger) LogLine(values ...interface{}) {
	l.Log(values...)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.WriteString("\n")
}

// run evaluates input and returns its printed output and last value. A
// runtime error is returned instead of propagated.
func run(t *testing.T, input string) (out string, result Value, rerr *RuntimeError) {
	t.Helper()
	registry := StdRegistry()
	p := parser.New(lexer.New(input), registry)
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %s", err)
	}

	logger := &captureLogger{}
	rt := NewRuntime(registry)
	rt.Logger = logger

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*RuntimeError)
			if !ok {
				panic(r)
			}
			out, rerr = logger.out.String(), e
		}
	}()
	result = EvalProgram(program, rt.NewRootScope())
	return logger.out.String(), result, nil
}

func runOK(t *testing.T, input string) (string, Value) {
	t.Helper()
	out, result, rerr := run(t, input)
	if rerr != nil {
		t.Fatalf("unexpected runtime error for %q: %s", input, rerr)
	}
	return out, result
}

func TestEvalResults(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1", "1"},
		{"-3", "-3"},
		{"add(9223372036854775806, 1)", "9223372036854775807"},
		{"sub(-9223372036854775807, 1)", "-9223372036854775808"},
		{"mul(-4611686018427387904, 2)", "-9223372036854775808"},
		{"2.5", "2.5"},
		{`"hi"`, "hi"},
		{"'c'", "c"},
		{"true", "true"},
		{"none", "none"},
		{"add(10, 20.25)", "30.25"},
		{"add(10, 20, 30)", "60"},
		{"div(10, 2, 2.0)", "2.5"},
		{"div(7, 2)", "3"},
		{"mod(7, 3)", "1"},
		{"sub(100, 20, 30)", "50"},
		{"mul(10, 0.2)", "2"},
		{"let x = if true { 1 } else { 2 }\nx", "1"},
		{"let x = if false { 1 } elif true { 3 } else { 2 }\nx", "3"},
		{"if false { 1 }", "none"},
		{"{ let a = 4\n a }", "4"},
		{"let a = array(1, 2, array(3, 4))\na[2][1]", "4"},
		{`let s = "héllo"` + "\ns[1]", "é"},
		{"array(1, \"a\", 'b', array())", `[1, "a", 'b', []]`},
		{"fn f { ret args }\nf(1, 2)", "[1, 2]"},
		{"fn f { 1 }\nf()", "none"},
		{"let f = fn { ret mul(args[0], 2) }\nf(4)", "8"},
		{"apply(mul, 2)(4)", "8"},
		{"apply(sub, array(1))(10)", "9"},
		{"chain(add, apply(mul, 4), apply(add, 2), array(5, 5))", "42"},
		{"chained(add, apply(mul, 3))(1, 2)", "9"},
		{"call(add, array(1, 2, 3))", "6"},
		{"do(3, fn { ret 7 })", "[7, 7, 7]"},
		{"repeated(3, add, array(1, 1))", "2"},
		{"string(1, \"-\", 2.5, 'x', none)", "1-2.5xnone"},
		{"int(\" 42 \")", "42"},
		{"int(3.9)", "3"},
		{"float(2)", "2"},
		{"bool(\"\")", "false"},
		{"to_arr(\"ab\")", "['a', 'b']"},
		{"to_arr(range(0, 3))", "[0, 1, 2]"},
		{"to_arr(5)", "[5]"},
		{"slice(array(1, 2, 3, 4), 1, 3)", "[2, 3]"},
		{"slice(array(1, 2, 3), 1)", "[2, 3]"},
		{"push(array(1), 2, 3)", "[1, 2, 3]"},
		{"len(array(1, 2))", "2"},
		{"len(\"héllo\")", "5"},
		{"upper(\"straße\")", "STRASSE"},
		{"lower('Q')", "q"},
		{"eq(10, 10.0, 10)", "true"},
		{"neq(10, \"10\")", "true"},
		{"gt(\"B\", \"A\")", "true"},
		{"ge(10, 10, 9, 9)", "true"},
		{"lt(false, true)", "true"},
		{"and(true, 1, \"x\")", "true"},
		{"or(0, \"\", false)", "false"},
		{"not(false, 0)", "true"},
		{"not(false, 1)", "false"},
		{"xor(true, false, false)", "true"},
		{"xor(true, true)", "false"},
		{"eq(add, add)", "true"},
		{"eq(add, sub)", "false"},
		{"let f = fn { }\neq(f, f)", "false"},
		{"let r = range(0, 2)\neq(r, r)", "true"},
		{"eq(array(1, array(2)), array(1.0, array(2)))", "true"},
		{"collect(map(range(0, 3), mul, 10))", "[0, 10, 20]"},
		{"collect(reverse(array(1, 2, 3)))", "[3, 2, 1]"},
		{"argv()", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, result := runOK(t, tt.input)
			if result.Inspect() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result.Inspect())
			}
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input string
		code  string
		line  int
	}{
		{"add(1, \"a\")", "TYPE-0005", 1},
		{"div(1, 0)", "OP-0001", 1},
		{"mod(1, 0)", "OP-0001", 1},
		{"add(9223372036854775807, 1)", "OP-0002", 1},
		{"sub(-9223372036854775807, 2)", "OP-0002", 1},
		{"mul(4611686018427387904, 2)", "OP-0002", 1},
		{"div(sub(-9223372036854775807, 1), -1)", "OP-0002", 1},
		{"\nlet a = 1\na()", "TYPE-0001", 3},
		{"let a = 1\na[0]", "TYPE-0002", 2},
		{"let a = array(1)\na[1]", "INDEX-0001", 2},
		{"let a = array(1)\na[true]", "TYPE-0003", 2},
		{"if 1 { }", "TYPE-0007", 1},
		{"while none { }", "TYPE-0007", 1},
		{"for x in 5 { }", "TYPE-0004", 1},
		{"lt(1, \"a\")", "TYPE-0006", 1},
		{"and(array())", "TYPE-0008", 1},
		{"const X = 1\nX = 2", "STATE-0002", 2},
		{"fn f { }\nf = 1", "STATE-0002", 2},
		{"let x = 1\nlet x = 2", "STATE-0001", 2},
		{"array(1)[0] = 2", "STATE-0003", 1},
		{"args", "STATE-0004", 1},
		{"len()", "ARITY-0001", 1},
		{"slice(array(1), 0, 5)", "INDEX-0002", 1},
		{"panic(\"boom\")", "USER-0001", 1},
		{"assert(eq(1, 2), \"one is not two\")", "USER-0002", 1},
		{"int(\"abc\")", "TYPE-0009", 1},
		{"join(raw_spawn(noop))", "STATE-0005", 1},
		{"fn f { ret add(1, \"x\") }\n\nf()", "TYPE-0005", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, rerr := run(t, tt.input)
			if rerr == nil {
				t.Fatalf("Expected runtime error %s", tt.code)
			}
			if rerr.Err.Code != tt.code {
				t.Errorf("Expected code %s, got %s (%s)", tt.code, rerr.Err.Code, rerr.Err.Message)
			}
			if rerr.Err.Line != tt.line {
				t.Errorf("Expected line %d, got %d", tt.line, rerr.Err.Line)
			}
		})
	}
}

func TestRuntimeErrorMessage(t *testing.T) {
	_, _, rerr := run(t, "let x = 1\n\nadd(x, \"a\")")
	if rerr == nil {
		t.Fatal("Expected a runtime error")
	}
	expected := "runtime error: line 3: add: expected int or float, got string"
	if rerr.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, rerr.Error())
	}
}

func TestPrintOutput(t *testing.T) {
	out, _ := runOK(t, `print("a", 1, 'c')
println()
println("x", 2.0, array("s"))
print(none)`)

	expected := "a1c\n\nx\n2\n[\"s\"]\nnone"
	if out != expected {
		t.Errorf("Expected %q, got %q", expected, out)
	}
}

func TestReadFromStdin(t *testing.T) {
	registry := StdRegistry()
	p := parser.New(lexer.New(`println(read(), read())
print(readln())
print(readln())
println(readln())`), registry)
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatal(err)
	}

	logger := &captureLogger{}
	rt := NewRuntime(registry)
	rt.Logger = logger
	rt.SetStdin(strings.NewReader("  hello   world\nsecond line\n"))
	EvalProgram(program, rt.NewRootScope())

	// read consumes the whitespace that ends a word.
	expected := "hello\nworld\nsecond line\nnonenone\n"
	if got := logger.out.String(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestArrayValueSemantics(t *testing.T) {
	out, _ := runOK(t, `let a = array(1, 2)
let b = a
b[0] = 9
println(a, b)
fn set { let x = args[0]
    x[1] = 7
    ret x }
let c = set(a)
println(a, c)`)

	expected := "[1, 2]\n[9, 2]\n[1, 2]\n[1, 7]\n"
	if out != expected {
		t.Errorf("Expected %q, got %q", expected, out)
	}
}

func TestNestedIndexAssignment(t *testing.T) {
	_, result := runOK(t, "let m = array(array(1, 2), array(3, 4))\nm[1][0] = 5\nm")
	if result.Inspect() != "[[1, 2], [5, 4]]" {
		t.Errorf("Expected %q, got %q", "[[1, 2], [5, 4]]", result.Inspect())
	}
}

func TestArgumentOrder(t *testing.T) {
	out, _ := runOK(t, `fn p { print(args[0])
    ret args[0] }
add(p(1), p(2), p(3))`)

	if out != "123" {
		t.Errorf("Expected %q, got %q", "123", out)
	}
}

func TestLoops(t *testing.T) {
	out, _ := runOK(t, `let i = 0
while lt(i, 3) {
    let sq = mul(i, i)
    print(sq)
    i = add(i, 1)
}
for x in array("a", "b") { print(x) }
for _ in range(0, 2) { print(".") }`)

	if out != "014ab.." {
		t.Errorf("Expected %q, got %q", "014ab..", out)
	}
}

func TestLoopBodyScopeIsReused(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "for",
			input: `let fns = array()
for i in range(0, 3) {
    fns = push(fns, fn { ret i })
}
let out = array()
for f in fns {
    out = push(out, f())
}
out`,
			expected: "[2, 2, 2]",
		},
		{
			name: "while",
			input: `let fns = array()
let n = 0
while lt(n, 3) {
    let k = mul(n, 10)
    fns = push(fns, fn { ret k })
    n = add(n, 1)
}
array(call(fns[0]), call(fns[1]), call(fns[2]))`,
			expected: "[20, 20, 20]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result := runOK(t, tt.input)
			if result.Inspect() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result.Inspect())
			}
		})
	}
}

func TestLoopClosuresCaptureOneScope(t *testing.T) {
	inputs := map[string]string{
		"for": `let fns = array()
for i in range(0, 3) {
    fns = push(fns, fn { ret i })
}
fns`,
		"while": `let fns = array()
let n = 0
while lt(n, 3) {
    fns = push(fns, fn { ret n })
    n = add(n, 1)
}
fns`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, result := runOK(t, input)
			fns, ok := result.(*Array)
			if !ok || len(fns.Elements) != 3 {
				t.Fatalf("Expected three closures, got %s", result.Inspect())
			}

			var body *Scope
			for i, e := range fns.Elements {
				fn, ok := e.(*Function).Callable.(*ScriptFunction)
				if !ok {
					t.Fatalf("element %d is not a script function", i)
				}
				if body == nil {
					body = fn.Captured
				} else if fn.Captured != body {
					t.Errorf("closure %d captured a different body scope", i)
				}
			}
		})
	}
}

func TestReturnFromLoop(t *testing.T) {
	_, result := runOK(t, `fn find {
    for x in args[0] {
        if eq(x, args[1]) { ret true }
    }
    ret false
}
array(find(array(1, 2, 3), 2), find(array(1), 5))`)

	if result.Inspect() != "[true, false]" {
		t.Errorf("Expected %q, got %q", "[true, false]", result.Inspect())
	}
}

func TestClosureCounter(t *testing.T) {
	out, _ := runOK(t, `fn counter {
    let count = 0
    ret fn {
        count = add(count, args[0])
        ret count
    }
}
let c = counter()
println(c(2))
println(c(3))
println(c(5))`)

	if out != "2\n5\n10\n" {
		t.Errorf("Expected %q, got %q", "2\n5\n10\n", out)
	}
}

func TestPow(t *testing.T) {
	out, _ := runOK(t, `fn pow {
    if eq(args[1], 0) {
        ret 1
    }
    ret mul(args[0], pow(args[0], sub(args[1], 1)))
}
println(pow(2, 10))`)

	if out != "1024\n" {
		t.Errorf("Expected %q, got %q", "1024\n", out)
	}
}

func TestMutualRecursion(t *testing.T) {
	_, result := runOK(t, `fn even {
    if eq(args[0], 0) { ret true }
    ret odd(sub(args[0], 1))
}
fn odd {
    if eq(args[0], 0) { ret false }
    ret even(sub(args[0], 1))
}
array(even(10), odd(7), even(3))`)

	if result.Inspect() != "[true, true, false]" {
		t.Errorf("Expected %q, got %q", "[true, true, false]", result.Inspect())
	}
}

func TestIteratorCallAdvancesBinding(t *testing.T) {
	_, result := runOK(t, `let it = iter(array(1, 2, 3))
it()
let copy = it
array(it(), copy(), it(), it())`)

	// copy acquired its own cursor at position 1.
	expected := "[2, 2, 3, none]"
	if result.Inspect() != expected {
		t.Errorf("Expected %q, got %q", expected, result.Inspect())
	}
}

func TestRangeHandlesShareCursor(t *testing.T) {
	_, result := runOK(t, `let r = range(0, 5)
let r2 = r
array(r(), r2(), r(), r2())`)

	if result.Inspect() != "[0, 1, 2, 3]" {
		t.Errorf("Expected %q, got %q", "[0, 1, 2, 3]", result.Inspect())
	}
}

func TestForeach(t *testing.T) {
	out, _ := runOK(t, `foreach(range(1, 4), fn { print(mul(args[0], args[1])) }, 2)
foreach(fn { print(args[0]) }, array("x", "y"))`)

	if out != "246xy" {
		t.Errorf("Expected %q, got %q", "246xy", out)
	}
}

func TestThreads(t *testing.T) {
	_, result := runOK(t, `fn work {
    sleep(args[1])
    ret mul(args[0], 2)
}
let a = spawn(work, 1, 20)
let b = spawn(work, 2, 0)
array(join(a), join(b, a))`)

	if result.Inspect() != "[2, [4, 2]]" {
		t.Errorf("Expected %q, got %q", "[2, [4, 2]]", result.Inspect())
	}
}

// Run with -race: the writer mutates a shared array in place while the
// main thread copies and indexes it.
func TestThreadSharedArrayAccess(t *testing.T) {
	_, result := runOK(t, `let a = array(0, 0)
fn writer {
    let i = 0
    while lt(i, 2000) {
        a[0] = i
        i = add(i, 1)
    }
}
let w = spawn(writer)
let n = 0
while lt(n, 2000) {
    let c = a
    let e = a[0]
    len(a)
    n = add(n, 1)
}
join(w)
a`)

	if result.Inspect() != "[1999, 0]" {
		t.Errorf("Expected %q, got %q", "[1999, 0]", result.Inspect())
	}
}

func TestThreadFailurePropagatesToJoin(t *testing.T) {
	_, _, rerr := run(t, `let t = spawn(fn { panic("in thread") })
join(t)`)
	if rerr == nil {
		t.Fatal("Expected the thread's error to be raised by join")
	}
	if rerr.Err.Message != "panic: in thread" {
		t.Errorf("Expected %q, got %q", "panic: in thread", rerr.Err.Message)
	}
}

func TestJoinRaisesFailuresInArgumentOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "earlier handle fails last",
			input: `fn slow {
    sleep(30)
    panic("slow")
}
let a = spawn(slow)
let b = spawn(fn { panic("fast") })
join(a, b)`,
			expected: "panic: slow",
		},
		{
			name: "only a later handle fails",
			input: `let a = spawn(fn { ret 1 })
let b = spawn(fn { panic("second") })
join(a, b)`,
			expected: "panic: second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, rerr := run(t, tt.input)
			if rerr == nil {
				t.Fatal("Expected join to raise")
			}
			if rerr.Err.Message != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, rerr.Err.Message)
			}
		})
	}
}

func TestRegistryNames(t *testing.T) {
	r := StdRegistry()

	want := []string{"range", "raw_spawn", "read", "readln", "repeated", "reverse", "rewind", "rm"}
	if diff := cmp.Diff(want, r.Complete("r")); diff != "" {
		t.Errorf("Complete mismatch (-want +got):\n%s", diff)
	}
	if got := r.Complete("zz"); len(got) != 0 {
		t.Errorf("Expected no completions, got %v", got)
	}

	names := r.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
	for _, name := range []string{"print", "println", "chain", "spawn", "join", "upper", "to_arr"} {
		if !r.Has(name) {
			t.Errorf("Expected %s to be registered", name)
		}
	}
}

func TestCustomNative(t *testing.T) {
	r := NewRegistry()
	r.Register("answer", func(_ *Runtime, _ []Value) Value { return &Integer{Value: 42} })

	p := parser.New(lexer.New("answer()"), r)
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatal(err)
	}
	result := EvalProgram(program, NewRuntime(r).NewRootScope())
	if result.Inspect() != "42" {
		t.Errorf("Expected %q, got %q", "42", result.Inspect())
	}
}
