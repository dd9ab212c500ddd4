package evaluator

import (
	"math"
	"strconv"
	"strings"
)

func registerConversion(r *Registry) {
	r.Register("string", func(_ *Runtime, args []Value) Value {
		return &String{Value: display(args)}
	})

	r.Register("int", func(_ *Runtime, args []Value) Value {
		arity("int", args, 1, 1)
		switch v := args[0].(type) {
		case *Integer:
			return v
		case *Float:
			if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
				break
			}
			return &Integer{Value: int64(v.Value)}
		case *Character:
			return &Integer{Value: int64(v.Value)}
		case *Bool:
			return &Integer{Value: int64(boolRank(v.Value))}
		case *String:
			if i, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64); err == nil {
				return &Integer{Value: i}
			}
		}
		fail("TYPE-0009", map[string]any{"Value": describe(args[0]), "Target": "int"})
		return nil
	})

	r.Register("float", func(_ *Runtime, args []Value) Value {
		arity("float", args, 1, 1)
		switch v := args[0].(type) {
		case *Float:
			return v
		case *Integer:
			return &Float{Value: float64(v.Value)}
		case *String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64); err == nil {
				return &Float{Value: f}
			}
		}
		fail("TYPE-0009", map[string]any{"Value": describe(args[0]), "Target": "float"})
		return nil
	})

	r.Register("bool", func(_ *Runtime, args []Value) Value {
		arity("bool", args, 1, 1)
		return nativeBool(truthy("bool", args[0]))
	})

	r.Register("to_arr", func(_ *Runtime, args []Value) Value {
		arity("to_arr", args, 1, 1)
		return &Array{Elements: toArray(args[0])}
	})
}

// toArray collects iterators, splits strings into characters and wraps
// scalars. Arrays come back as they are; the argument is already a copy.
func toArray(v Value) []Value {
	switch v := v.(type) {
	case *Array:
		return v.Elements
	case *Iterator:
		return collect(v)
	case *String:
		var out []Value
		for _, r := range v.Value {
			out = append(out, &Character{Value: r})
		}
		return out
	}
	return []Value{v}
}
