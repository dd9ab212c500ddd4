package evaluator

import (
	"io"
	"strings"
	"unicode"
)

func registerIO(r *Registry) {
	r.Register("print", func(rt *Runtime, args []Value) Value {
		rt.Logger.Log(display(args))
		return NONE
	})

	// println prints each argument on its own line.
	r.Register("println", func(rt *Runtime, args []Value) Value {
		if len(args) == 0 {
			rt.Logger.LogLine()
			return NONE
		}
		for _, a := range args {
			rt.Logger.LogLine(a.Inspect())
		}
		return NONE
	})

	r.Register("read", func(rt *Runtime, args []Value) Value {
		arity("read", args, 0, 0)
		word, ok := rt.readWord()
		if !ok {
			return NONE
		}
		return &String{Value: word}
	})

	r.Register("readln", func(rt *Runtime, args []Value) Value {
		arity("readln", args, 0, 0)
		line, ok := rt.readLine()
		if !ok {
			return NONE
		}
		return &String{Value: line}
	})
}

// readWord reads one whitespace-delimited word from stdin.
func (rt *Runtime) readWord() (string, bool) {
	rt.stdinMu.Lock()
	defer rt.stdinMu.Unlock()

	var word strings.Builder
	for {
		r, _, err := rt.stdin.ReadRune()
		if err != nil {
			return word.String(), word.Len() > 0
		}
		if unicode.IsSpace(r) {
			if word.Len() > 0 {
				return word.String(), true
			}
			continue
		}
		word.WriteRune(r)
	}
}

// readLine reads one line from stdin including its newline.
func (rt *Runtime) readLine() (string, bool) {
	rt.stdinMu.Lock()
	defer rt.stdinMu.Unlock()

	line, err := rt.stdin.ReadString('\n')
	if err == io.EOF && line == "" {
		return "", false
	}
	if err != nil && err != io.EOF {
		fail("IO-0001", map[string]any{"Function": "readln", "Error": err.Error()})
	}
	return line, true
}
