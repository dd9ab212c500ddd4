package evaluator

func registerBoolean(r *Registry) {
	r.Register("and", func(_ *Runtime, args []Value) Value {
		for _, a := range args {
			if !truthy("and", a) {
				return FALSE
			}
		}
		return TRUE
	})
	r.Register("or", func(_ *Runtime, args []Value) Value {
		for _, a := range args {
			if truthy("or", a) {
				return TRUE
			}
		}
		return FALSE
	})
	// not is true when every argument is falsy.
	r.Register("not", func(_ *Runtime, args []Value) Value {
		for _, a := range args {
			if truthy("not", a) {
				return FALSE
			}
		}
		return TRUE
	})
	// xor is true when exactly one argument is truthy.
	r.Register("xor", func(_ *Runtime, args []Value) Value {
		count := 0
		for _, a := range args {
			if truthy("xor", a) {
				count++
			}
		}
		return nativeBool(count == 1)
	})
}

// truthy is the truth value of bools, numbers and strings. Other kinds have
// none.
func truthy(name string, v Value) bool {
	switch v := v.(type) {
	case *Bool:
		return v.Value
	case *Integer:
		return v.Value != 0
	case *Float:
		return v.Value != 0
	case *String:
		return v.Value != ""
	}
	fail("TYPE-0008", map[string]any{"Function": name, "Value": describe(v)})
	return false
}
