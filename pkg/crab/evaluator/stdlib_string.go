package evaluator

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func registerStrings(r *Registry) {
	r.Register("upper", func(_ *Runtime, args []Value) Value {
		arity("upper", args, 1, 1)
		// Casers are stateful, so each call gets its own.
		return mapCase("upper", args[0], cases.Upper(language.Und))
	})
	r.Register("lower", func(_ *Runtime, args []Value) Value {
		arity("lower", args, 1, 1)
		return mapCase("lower", args[0], cases.Lower(language.Und))
	})
}

// mapCase applies c to a string, or to a character when the mapping keeps
// it a single code point.
func mapCase(name string, v Value, c cases.Caser) Value {
	switch v := v.(type) {
	case *String:
		return &String{Value: c.String(v.Value)}
	case *Character:
		mapped := []rune(c.String(string(v.Value)))
		if len(mapped) == 1 {
			return &Character{Value: mapped[0]}
		}
		return &String{Value: string(mapped)}
	}
	typeMismatch(name, "string or char", v)
	return nil
}
