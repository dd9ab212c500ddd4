package evaluator

func registerIteration(r *Registry) {
	r.Register("range", func(_ *Runtime, args []Value) Value {
		arity("range", args, 1, 2)
		if len(args) == 1 {
			return NewIterator(NewRangeIter(0, expectInt("range", args[0])))
		}
		return NewIterator(NewRangeIter(expectInt("range", args[0]), expectInt("range", args[1])))
	})

	r.Register("iter", func(_ *Runtime, args []Value) Value {
		arity("iter", args, 1, 1)
		return iterArg("iter", args[0])
	})

	r.Register("map", func(rt *Runtime, args []Value) Value {
		arity("map", args, 2, -1)
		inner := iterArg("map", args[0])
		action := expectCallable("map", args[1])
		return NewIterator(NewMapIter(rt, inner, action, spread(args[2:])))
	})

	r.Register("reverse", func(_ *Runtime, args []Value) Value {
		arity("reverse", args, 1, 1)
		return derive("reverse", iterArg("reverse", args[0]), Iter.Reversed)
	})

	r.Register("rewind", func(_ *Runtime, args []Value) Value {
		arity("rewind", args, 1, 1)
		return derive("rewind", iterArg("rewind", args[0]), Iter.Rewound)
	})

	r.Register("collect", func(_ *Runtime, args []Value) Value {
		arity("collect", args, 1, 1)
		return &Array{Elements: collect(iterArg("collect", args[0]))}
	})

	// foreach takes the iterator and the function in either order.
	r.Register("foreach", func(rt *Runtime, args []Value) Value {
		arity("foreach", args, 2, -1)
		first, second := args[0], args[1]
		if _, ok := first.(*Function); ok {
			first, second = second, first
		}
		it := iterArg("foreach", first)
		action := expectCallable("foreach", second)
		extra := spread(args[2:])
		for {
			v, ok := it.Next()
			if !ok {
				return NONE
			}
			call := make([]Value, 0, len(extra)+1)
			call = append(call, v)
			for _, e := range extra {
				call = append(call, e.Clone())
			}
			action.Call(rt, call)
		}
	})
}

func iterArg(name string, v Value) *Iterator {
	it, ok := toIter(v)
	if !ok {
		fail("TYPE-0004", map[string]any{"Value": describe(v)})
	}
	return it
}

// derive builds a new handle from a copy of the iter behind it.
func derive(name string, it *Iterator, op func(Iter) (Iter, bool)) Value {
	var (
		derived Iter
		ok      bool
	)
	it.with(func(inner Iter) { derived, ok = op(inner) })
	if !ok {
		fail("TYPE-0010", map[string]any{"Function": name})
	}
	return NewIterator(derived)
}
