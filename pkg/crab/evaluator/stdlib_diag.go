package evaluator

func registerDiagnostics(r *Registry) {
	r.Register("panic", func(_ *Runtime, args []Value) Value {
		fail("USER-0001", map[string]any{"Message": display(args)})
		return nil
	})

	r.Register("assert", func(_ *Runtime, args []Value) Value {
		arity("assert", args, 1, 2)
		if truthy("assert", args[0]) {
			return NONE
		}
		var msg string
		if len(args) == 2 {
			msg = args[1].Inspect()
		}
		fail("USER-0002", map[string]any{"Message": msg})
		return nil
	})
}
