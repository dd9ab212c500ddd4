package evaluator

import "unicode/utf8"

func registerArray(r *Registry) {
	r.Register("array", func(_ *Runtime, args []Value) Value {
		return &Array{Elements: append([]Value(nil), args...)}
	})

	r.Register("len", func(_ *Runtime, args []Value) Value {
		arity("len", args, 1, 1)
		switch v := args[0].(type) {
		case *Array:
			return &Integer{Value: int64(len(v.Elements))}
		case *String:
			return &Integer{Value: int64(utf8.RuneCountInString(v.Value))}
		}
		typeMismatch("len", "array or string", args[0])
		return nil
	})

	r.Register("slice", func(_ *Runtime, args []Value) Value {
		arity("slice", args, 2, 3)
		arr := expectArray("slice", args[0])
		low := expectInt("slice", args[1])
		high := int64(len(arr.Elements))
		if len(args) == 3 {
			high = expectInt("slice", args[2])
		}
		if low < 0 || high > int64(len(arr.Elements)) || low > high {
			fail("INDEX-0002", map[string]any{"Low": low, "High": high, "Length": len(arr.Elements)})
		}
		return &Array{Elements: append([]Value(nil), arr.Elements[low:high]...)}
	})

	// push returns the extended array; its argument is already a copy.
	r.Register("push", func(_ *Runtime, args []Value) Value {
		arity("push", args, 1, -1)
		arr := expectArray("push", args[0])
		return &Array{Elements: append(arr.Elements, args[1:]...)}
	})
}
