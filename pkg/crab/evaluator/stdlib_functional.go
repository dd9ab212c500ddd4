package evaluator

func registerFunctional(r *Registry) {
	r.Register("noop", func(_ *Runtime, _ []Value) Value {
		return NONE
	})

	// apply binds trailing arguments: apply(mul, 2)(4) is mul(4, 2).
	r.Register("apply", func(_ *Runtime, args []Value) Value {
		arity("apply", args, 1, -1)
		fn := expectCallable("apply", args[0])
		stored := append([]Value(nil), spread(args[1:])...)
		return &Function{Callable: &PartiallyApplied{Inner: fn, Stored: stored}}
	})

	r.Register("call", func(rt *Runtime, args []Value) Value {
		arity("call", args, 1, 2)
		fn := expectCallable("call", args[0])
		if len(args) == 1 {
			return fn.Call(rt, nil)
		}
		return fn.Call(rt, expectArray("call", args[1]).Elements)
	})

	// chain(f1, ..., fn, init) calls f1(init...) and feeds each result on.
	r.Register("chain", func(rt *Runtime, args []Value) Value {
		arity("chain", args, 2, -1)
		init := expectArray("chain", args[len(args)-1])
		links := make([]Callable, len(args)-1)
		for i, a := range args[:len(args)-1] {
			links[i] = expectCallable("chain", a)
		}
		return (&Chain{Links: links}).Call(rt, init.Elements)
	})

	r.Register("chained", func(_ *Runtime, args []Value) Value {
		arity("chained", args, 1, -1)
		links := make([]Callable, len(args))
		for i, a := range args {
			links[i] = expectCallable("chained", a)
		}
		return &Function{Callable: &Chain{Links: links}}
	})

	r.Register("do", func(rt *Runtime, args []Value) Value {
		n, fn, callArgs := repetition("do", args)
		results := make([]Value, 0, max(n, 0))
		for i := int64(0); i < n; i++ {
			results = append(results, fn.Call(rt, cloneAll(callArgs)))
		}
		return &Array{Elements: results}
	})

	r.Register("repeated", func(rt *Runtime, args []Value) Value {
		n, fn, callArgs := repetition("repeated", args)
		var last Value = NONE
		for i := int64(0); i < n; i++ {
			last = fn.Call(rt, cloneAll(callArgs))
		}
		return last
	})
}

// repetition unpacks (n, fn[, args]) for do and repeated.
func repetition(name string, args []Value) (int64, Callable, []Value) {
	arity(name, args, 2, 3)
	n := expectInt(name, args[0])
	fn := expectCallable(name, args[1])
	var callArgs []Value
	if len(args) == 3 {
		callArgs = expectArray(name, args[2]).Elements
	}
	return n, fn, callArgs
}

func cloneAll(values []Value) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = v.Clone()
	}
	return out
}
