package evaluator

func registerEnvironment(r *Registry) {
	// argv returns the script arguments, or the i-th one. Out of range is
	// none.
	r.Register("argv", func(rt *Runtime, args []Value) Value {
		arity("argv", args, 0, 1)
		if len(args) == 0 {
			out := make([]Value, len(rt.Argv))
			for i, a := range rt.Argv {
				out[i] = &String{Value: a}
			}
			return &Array{Elements: out}
		}
		i := expectInt("argv", args[0])
		if i < 0 || i >= int64(len(rt.Argv)) {
			return NONE
		}
		return &String{Value: rt.Argv[i]}
	})
}
