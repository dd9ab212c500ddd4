package evaluator

import "strings"

func registerComparison(r *Registry) {
	r.Register("eq", func(_ *Runtime, args []Value) Value {
		return nativeBool(chained(args, valuesEqual))
	})
	r.Register("neq", func(_ *Runtime, args []Value) Value {
		return nativeBool(!chained(args, valuesEqual))
	})
	r.Register("lt", ordering("lt", func(c int) bool { return c < 0 }))
	r.Register("le", ordering("le", func(c int) bool { return c <= 0 }))
	r.Register("gt", ordering("gt", func(c int) bool { return c > 0 }))
	r.Register("ge", ordering("ge", func(c int) bool { return c >= 0 }))
}

// chained reports whether pred holds for every adjacent pair of args.
func chained(args []Value, pred func(a, b Value) bool) bool {
	for i := 1; i < len(args); i++ {
		if !pred(args[i-1], args[i]) {
			return false
		}
	}
	return true
}

func ordering(name string, accept func(int) bool) NativeFunc {
	return func(_ *Runtime, args []Value) Value {
		return nativeBool(chained(args, func(a, b Value) bool {
			return accept(compareValues(a, b))
		}))
	}
}

// valuesEqual never fails. Numbers compare across int and float, arrays
// element-wise, natives by registry entry and iterators and threads by
// handle. Other functions are never equal.
func valuesEqual(a, b Value) bool {
	switch a := a.(type) {
	case *Integer, *Float:
		switch b.(type) {
		case *Integer, *Float:
			if ai, ok := a.(*Integer); ok {
				if bi, ok := b.(*Integer); ok {
					return ai.Value == bi.Value
				}
			}
			return toFloat(a) == toFloat(b)
		}
		return false
	case *String:
		bs, ok := b.(*String)
		return ok && a.Value == bs.Value
	case *Character:
		bc, ok := b.(*Character)
		return ok && a.Value == bc.Value
	case *Bool:
		bb, ok := b.(*Bool)
		return ok && a.Value == bb.Value
	case *None:
		_, ok := b.(*None)
		return ok
	case *Array:
		ba, ok := b.(*Array)
		if !ok || len(a.Elements) != len(ba.Elements) {
			return false
		}
		for i := range a.Elements {
			if !valuesEqual(a.Elements[i], ba.Elements[i]) {
				return false
			}
		}
		return true
	case *Function:
		bf, ok := b.(*Function)
		return ok && sameNative(a.Callable, bf.Callable)
	case *Iterator:
		bi, ok := b.(*Iterator)
		return ok && a == bi
	case *Thread:
		bt, ok := b.(*Thread)
		return ok && a == bt
	}
	return false
}

// compareValues orders numbers, strings, characters and bools. Any other
// pair is a fatal error.
func compareValues(a, b Value) int {
	switch a := a.(type) {
	case *Integer, *Float:
		switch b.(type) {
		case *Integer, *Float:
			ai, aInt := a.(*Integer)
			bi, bInt := b.(*Integer)
			if aInt && bInt {
				return cmpOrdered(ai.Value, bi.Value)
			}
			return cmpOrdered(toFloat(a), toFloat(b))
		}
	case *String:
		if bs, ok := b.(*String); ok {
			return strings.Compare(a.Value, bs.Value)
		}
	case *Character:
		if bc, ok := b.(*Character); ok {
			return cmpOrdered(a.Value, bc.Value)
		}
	case *Bool:
		if bb, ok := b.(*Bool); ok {
			return cmpOrdered(boolRank(a.Value), boolRank(bb.Value))
		}
	}
	fail("TYPE-0006", map[string]any{"Left": typeName(a), "Right": typeName(b)})
	return 0
}

func cmpOrdered[T int64 | float64 | rune | int](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
