package evaluator

import "fmt"

// StdRegistry builds a registry holding the whole standard library.
func StdRegistry() *Registry {
	r := NewRegistry()
	registerArithmetic(r)
	registerBoolean(r)
	registerComparison(r)
	registerArray(r)
	registerConversion(r)
	registerStrings(r)
	registerIteration(r)
	registerFunctional(r)
	registerIO(r)
	registerFilesystem(r)
	registerEnvironment(r)
	registerThreads(r)
	registerDiagnostics(r)
	return r
}

// arity fails unless len(args) is within [min, max]. A negative max means
// no upper bound.
func arity(name string, args []Value, min, max int) {
	n := len(args)
	if n >= min && (max < 0 || n <= max) {
		return
	}
	var expected string
	switch {
	case max < 0:
		expected = fmt.Sprintf("at least %d", min)
	case min == max:
		expected = fmt.Sprintf("%d", min)
	default:
		expected = fmt.Sprintf("%d to %d", min, max)
	}
	fail("ARITY-0001", map[string]any{"Function": name, "Expected": expected, "Got": n})
}

func typeMismatch(name, expected string, got Value) {
	fail("TYPE-0005", map[string]any{"Function": name, "Expected": expected, "Got": typeName(got)})
}

func expectInt(name string, v Value) int64 {
	i, ok := v.(*Integer)
	if !ok {
		typeMismatch(name, "int", v)
	}
	return i.Value
}

func expectString(name string, v Value) string {
	s, ok := v.(*String)
	if !ok {
		typeMismatch(name, "string", v)
	}
	return s.Value
}

func expectArray(name string, v Value) *Array {
	a, ok := v.(*Array)
	if !ok {
		typeMismatch(name, "array", v)
	}
	return a
}

func expectCallable(name string, v Value) Callable {
	f, ok := v.(*Function)
	if !ok {
		typeMismatch(name, "function", v)
	}
	return f.Callable
}

func expectIterator(name string, v Value) *Iterator {
	it, ok := v.(*Iterator)
	if !ok {
		typeMismatch(name, "iterator", v)
	}
	return it
}

// spread turns a single array argument into its elements; any other
// argument list is returned unchanged.
func spread(args []Value) []Value {
	if len(args) == 1 {
		if arr, ok := args[0].(*Array); ok {
			return arr.Elements
		}
	}
	return args
}

// display concatenates the display forms of values.
func display(values []Value) string {
	var out []byte
	for _, v := range values {
		out = append(out, v.Inspect()...)
	}
	return string(out)
}
