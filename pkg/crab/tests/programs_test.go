package tests

import (
	"strings"
	"testing"

	"github.com/sambeau/crabscript/pkg/crab/crab"
	"github.com/sambeau/crabscript/pkg/crab/evaluator"
)

// runProgram runs input and returns what it printed.
func runProgram(t *testing.T, input string) (string, error) {
	t.Helper()
	logger := crab.NewBufferedLogger()
	_, err := crab.Exec(input, crab.WithLogger(logger))
	return logger.String(), err
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "recursive pow",
			input: `
fn pow {
    if eq(args[1], 0) { ret 1 }
    ret mul(args[0], pow(args[0], sub(args[1], 1)))
}
println(pow(2, 10))`,
			expected: "1024\n",
		},
		{
			name: "closure counter",
			input: `
fn make_counter {
    let total = 0
    ret fn {
        total = add(total, args[0])
        ret total
    }
}
let counter = make_counter()
println(counter(2), counter(3), counter(5))`,
			expected: "2\n5\n10\n",
		},
		{
			name: "counters are independent",
			input: `
fn make_counter {
    let n = 0
    ret fn { n = add(n, 1)
        ret n }
}
let a = make_counter()
let b = make_counter()
a()
a()
println(a(), b())`,
			expected: "3\n1\n",
		},
		{
			name: "fizzbuzz",
			input: `
for i in range(1, 16) {
    if eq(mod(i, 15), 0) { print("FizzBuzz") }
    elif eq(mod(i, 3), 0) { print("Fizz") }
    elif eq(mod(i, 5), 0) { print("Buzz") }
    else { print(i) }
    print(" ")
}`,
			expected: "1 2 Fizz 4 Buzz Fizz 7 8 Fizz Buzz 11 Fizz 13 14 FizzBuzz ",
		},
		{
			name: "argument evaluation order",
			input: `
fn show { print(args[0])
    ret args[0] }
println(sub(show(10), show(3), show(2)))`,
			expected: "10325\n",
		},
		{
			name: "if as a value",
			input: `
let n = 7
let kind = if eq(mod(n, 2), 0) { "even" } else { "odd" }
println(kind)`,
			expected: "odd\n",
		},
		{
			name: "block scoping",
			input: `
let x = "outer"
{
    let x = "inner"
    println(x)
}
println(x)`,
			expected: "inner\nouter\n",
		},
		{
			name: "natives can be shadowed",
			input: `
fn len { ret "mine" }
println(len(array(1, 2)))`,
			expected: "mine\n",
		},
		{
			name: "arrays are values",
			input: `
fn bump {
    let a = args[0]
    a[0] = add(a[0], 1)
    ret a
}
let xs = array(1, 2)
let ys = bump(xs)
println(xs, ys)`,
			expected: "[1, 2]\n[2, 2]\n",
		},
		{
			name: "map over a range",
			input: `
let squares = map(range(1, 5), fn { ret mul(args[0], args[0]) })
println(collect(squares))`,
			expected: "[1, 4, 9, 16]\n",
		},
		{
			name: "assigned range shares its cursor",
			input: `
let r = range(0, 4)
let s = r
println(r(), s(), r(), s(), r())`,
			expected: "0\n1\n2\n3\nnone\n",
		},
		{
			name: "assigned array iterator has its own cursor",
			input: `
let it = iter(array("a", "b"))
let other = it
println(it(), other(), it(), it())`,
			expected: "a\na\nb\nnone\n",
		},
		{
			name: "reverse and rewind",
			input: `
let r = range(0, 3)
r()
println(collect(reverse(r)), collect(rewind(r)), collect(r))`,
			expected: "[2, 1, 0]\n[0, 1, 2]\n[1, 2]\n",
		},
		{
			name: "functional helpers",
			input: `
let double = apply(mul, 2)
let inc_then_double = chained(apply(add, 1), double)
println(double(21), inc_then_double(4), chain(double, double, array(3)))`,
			expected: "42\n10\n12\n",
		},
		{
			name: "threads",
			input: `
fn square { ret mul(args[0], args[0]) }
let handles = collect(map(range(1, 4), fn { ret spawn(square, args[0]) }))
println(call(join, handles))`,
			expected: "[1, 4, 9]\n",
		},
		{
			name: "strings",
			input: `
let name = "crab"
println(upper(name), len(name), name[0], to_arr(lower("AB")))`,
			expected: "CRAB\n4\nc\n['a', 'b']\n",
		},
		{
			name: "while with return",
			input: `
fn first_square_over {
    let i = 0
    while true {
        if gt(mul(i, i), args[0]) { ret i }
        i = add(i, 1)
    }
}
println(first_square_over(50))`,
			expected: "8\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runProgram(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, out)
			}
		})
	}
}

func TestProgramErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		code    string
		message string
	}{
		{
			name: "constant reassignment",
			input: `const limit = 10
limit = 11`,
			code:    "STATE-0002",
			message: "redefinition of constant limit",
		},
		{
			name: "function bindings are constant",
			input: `fn go { }
go = 1`,
			code: "STATE-0002",
		},
		{
			name: "constant assigned before its declaration",
			input: `fn f { X = 5 }
const X = 1
f()
println(X)`,
			code:    "STATE-0002",
			message: "redefinition of constant X",
		},
		{
			name: "function assigned before its declaration",
			input: `fn f { g = 1 }
fn g { }
f()`,
			code: "STATE-0002",
		},
		{
			name:  "non-bool condition",
			input: `if 1 { println("no") }`,
			code:  "TYPE-0007",
		},
		{
			name:  "calling a number",
			input: `let n = 1` + "\n" + `n(2)`,
			code:  "TYPE-0001",
		},
		{
			name:  "failed assertion",
			input: `assert(eq(add(2, 2), 5))`,
			code:  "USER-0002",
		},
		{
			name: "error inside a thread",
			input: `let t = spawn(fn { ret div(1, 0) })
join(t)`,
			code: "OP-0001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runProgram(t, tt.input)
			if err == nil {
				t.Fatal("Expected an error")
			}
			rerr, ok := err.(*evaluator.RuntimeError)
			if !ok {
				t.Fatalf("Expected a runtime error, got %T: %v", err, err)
			}
			if rerr.Err.Code != tt.code {
				t.Errorf("Expected code %s, got %s (%s)", tt.code, rerr.Err.Code, rerr.Err.Message)
			}
			if tt.message != "" && rerr.Err.Message != tt.message {
				t.Errorf("Expected %q, got %q", tt.message, rerr.Err.Message)
			}
		})
	}
}

func TestScopingErrorIsAParseError(t *testing.T) {
	_, err := runProgram(t, `
fn f { let hidden = 1 }
println(hidden)`)
	if !crab.IsParseError(err) {
		t.Fatalf("Expected a parse error, got %v", err)
	}
	if !strings.Contains(err.Error(), "hidden") {
		t.Errorf("Expected the error to name the variable, got %q", err.Error())
	}
}

func TestOutputBeforeErrorIsKept(t *testing.T) {
	out, err := runProgram(t, `println("one")
panic("stop here")
println("two")`)
	if err == nil {
		t.Fatal("Expected an error")
	}
	if out != "one\n" {
		t.Errorf("Expected %q, got %q", "one\n", out)
	}
}
