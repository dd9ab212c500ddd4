package evaluator

import (
	"strconv"
	"strings"
	"sync"
)

// ValueType names the kind of a runtime value.
type ValueType string

const (
	NONE_VAL      = "NONE"
	INTEGER_VAL   = "INTEGER"
	FLOAT_VAL     = "FLOAT"
	BOOL_VAL      = "BOOL"
	CHARACTER_VAL = "CHARACTER"
	STRING_VAL    = "STRING"
	ARRAY_VAL     = "ARRAY"
	FUNCTION_VAL  = "FUNCTION"
	ITERATOR_VAL  = "ITERATOR"
	THREAD_VAL    = "THREAD"
)

// Value is any CrabScript runtime value.
type Value interface {
	Type() ValueType
	// Inspect returns the display form used by print and string.
	Inspect() string
	// Clone returns the value a binding read yields. Arrays are deep-copied
	// and iterators acquire a cursor; everything else is shared.
	Clone() Value
}

// None is the absence of a value.
type None struct{}

func (n *None) Type() ValueType { return NONE_VAL }
func (n *None) Inspect() string { return "none" }
func (n *None) Clone() Value    { return n }

// Integer represents 64-bit signed integers
type Integer struct {
	Value int64
}

func (i *Integer) Type() ValueType { return INTEGER_VAL }
func (i *Integer) Inspect() string { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Clone() Value    { return i }

// Float represents 64-bit floating point numbers
type Float struct {
	Value float64
}

func (f *Float) Type() ValueType { return FLOAT_VAL }
func (f *Float) Inspect() string { return strconv.FormatFloat(f.Value, 'f', -1, 64) }
func (f *Float) Clone() Value    { return f }

// Bool represents true and false. Use the TRUE and FALSE singletons.
type Bool struct {
	Value bool
}

func (b *Bool) Type() ValueType { return BOOL_VAL }
func (b *Bool) Inspect() string { return strconv.FormatBool(b.Value) }
func (b *Bool) Clone() Value    { return b }

// Character is a single Unicode code point.
type Character struct {
	Value rune
}

func (c *Character) Type() ValueType { return CHARACTER_VAL }
func (c *Character) Inspect() string { return string(c.Value) }
func (c *Character) Clone() Value    { return c }

// String represents immutable strings
type String struct {
	Value string
}

func (s *String) Type() ValueType { return STRING_VAL }
func (s *String) Inspect() string { return s.Value }
func (s *String) Clone() Value    { return s }

// Array is an ordered, mutable sequence of values with value semantics.
type Array struct {
	Elements []Value
}

func (a *Array) Type() ValueType { return ARRAY_VAL }
func (a *Array) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, e := range a.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(inspectNested(e))
	}
	out.WriteString("]")
	return out.String()
}

func (a *Array) Clone() Value {
	elements := make([]Value, len(a.Elements))
	for i, e := range a.Elements {
		elements[i] = e.Clone()
	}
	return &Array{Elements: elements}
}

// inspectNested renders an array element. Strings and characters are quoted
// so that ["a, b"] and ["a", "b"] stay distinguishable.
func inspectNested(v Value) string {
	switch v := v.(type) {
	case *String:
		return strconv.Quote(v.Value)
	case *Character:
		return strconv.QuoteRune(v.Value)
	case nil:
		return "none"
	}
	return v.Inspect()
}

// Function wraps anything callable.
type Function struct {
	Callable Callable
}

func (f *Function) Type() ValueType { return FUNCTION_VAL }
func (f *Function) Inspect() string { return "Function(" + f.Callable.Name() + ")" }
func (f *Function) Clone() Value    { return f }

// Iterator is a handle on an Iter. Reading a binding that holds an iterator
// acquires a new handle according to the iter's kind; handle-kind iters
// yield the same *Iterator back.
type Iterator struct {
	mu   sync.Mutex
	iter Iter
}

// NewIterator wraps it in a handle.
func NewIterator(it Iter) *Iterator {
	return &Iterator{iter: it}
}

func (i *Iterator) Type() ValueType { return ITERATOR_VAL }
func (i *Iterator) Inspect() string { return "Iter" }
func (i *Iterator) Clone() Value {
	var acquired Iter
	i.with(func(it Iter) { acquired = it.Acquire() })
	if acquired == i.iter {
		return i
	}
	return NewIterator(acquired)
}

// Next advances the cursor. It reports false once the iter is exhausted.
func (i *Iterator) Next() (Value, bool) {
	var (
		v  Value
		ok bool
	)
	i.with(func(it Iter) { v, ok = it.Next() })
	return v, ok
}

// with runs fn with exclusive access to the underlying iter.
func (i *Iterator) with(fn func(it Iter)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	fn(i.iter)
}

var (
	NONE  = &None{}
	TRUE  = &Bool{Value: true}
	FALSE = &Bool{Value: false}
)

func nativeBool(b bool) *Bool {
	if b {
		return TRUE
	}
	return FALSE
}

func isNone(v Value) bool {
	_, ok := v.(*None)
	return ok || v == nil
}
