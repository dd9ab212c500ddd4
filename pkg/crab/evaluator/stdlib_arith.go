package evaluator

import "math"

type intOp func(name string, a, b int64) int64
type floatOp func(a, b float64) float64

func registerArithmetic(r *Registry) {
	r.Register("add", arithmetic("add",
		func(name string, a, b int64) int64 {
			c := a + b
			if (c > a) != (b > 0) {
				overflow(name)
			}
			return c
		},
		func(a, b float64) float64 { return a + b }))
	r.Register("sub", arithmetic("sub",
		func(name string, a, b int64) int64 {
			c := a - b
			if (c < a) != (b > 0) {
				overflow(name)
			}
			return c
		},
		func(a, b float64) float64 { return a - b }))
	r.Register("mul", arithmetic("mul",
		func(name string, a, b int64) int64 {
			if a == 0 || b == 0 {
				return 0
			}
			c := a * b
			if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
				overflow(name)
			}
			return c
		},
		func(a, b float64) float64 { return a * b }))
	r.Register("div", arithmetic("div",
		func(name string, a, b int64) int64 {
			if b == 0 {
				fail("OP-0001", map[string]any{"Function": name})
			}
			if a == math.MinInt64 && b == -1 {
				overflow(name)
			}
			return a / b
		},
		func(a, b float64) float64 { return a / b }))
	r.Register("mod", arithmetic("mod",
		func(name string, a, b int64) int64 {
			if b == 0 {
				fail("OP-0001", map[string]any{"Function": name})
			}
			return a % b
		},
		math.Mod))
}

func overflow(name string) {
	fail("OP-0002", map[string]any{"Function": name})
}

// arithmetic builds a variadic left fold. Integers stay integers until a
// float joins in, after which the result is a float.
func arithmetic(name string, iop intOp, fop floatOp) NativeFunc {
	return func(_ *Runtime, args []Value) Value {
		arity(name, args, 1, -1)
		result := numeric(name, args[0])
		for _, arg := range args[1:] {
			result = applyArithmetic(name, result, numeric(name, arg), iop, fop)
		}
		return result
	}
}

func numeric(name string, v Value) Value {
	switch v.(type) {
	case *Integer, *Float:
		return v
	}
	typeMismatch(name, "int or float", v)
	return nil
}

func applyArithmetic(name string, a, b Value, iop intOp, fop floatOp) Value {
	ai, aInt := a.(*Integer)
	bi, bInt := b.(*Integer)
	if aInt && bInt {
		return &Integer{Value: iop(name, ai.Value, bi.Value)}
	}
	return &Float{Value: fop(toFloat(a), toFloat(b))}
}

func toFloat(v Value) float64 {
	switch v := v.(type) {
	case *Integer:
		return float64(v.Value)
	case *Float:
		return v.Value
	}
	return 0
}
