package evaluator

import (
	"strings"

	"github.com/sambeau/crabscript/pkg/crab/ast"
)

// Callable is anything a Function value can invoke.
type Callable interface {
	Call(rt *Runtime, args []Value) Value
	Name() string
}

// NativeFunc is the signature of every registered native.
type NativeFunc func(rt *Runtime, args []Value) Value

// Native is a function from the registry.
type Native struct {
	name     string
	Fn       NativeFunc
	registry *Registry
}

func (n *Native) Name() string { return n.name }

func (n *Native) Call(rt *Runtime, args []Value) Value {
	return n.Fn(rt, args)
}

// ScriptFunction is a fn defined in CrabScript. Each call runs the body in a
// new child of the scope the fn was defined in.
type ScriptFunction struct {
	name     string
	Body     *ast.Block
	Captured *Scope
}

func (f *ScriptFunction) Name() string {
	if f.name == "" {
		return "fn"
	}
	return f.name
}

func (f *ScriptFunction) Call(rt *Runtime, args []Value) Value {
	scope := f.Captured.NewChild()
	scope.DefineArguments(args)
	return ExecuteBlock(f.Body, scope).Value
}

// PartiallyApplied binds trailing arguments to an inner callable. Calling it
// passes the call-site arguments first and the stored ones after them.
type PartiallyApplied struct {
	Inner  Callable
	Stored []Value
}

func (p *PartiallyApplied) Name() string {
	stored := make([]string, len(p.Stored))
	for i, v := range p.Stored {
		stored[i] = inspectNested(v)
	}
	return p.Inner.Name() + "(..., " + strings.Join(stored, ", ") + ")"
}

func (p *PartiallyApplied) Call(rt *Runtime, args []Value) Value {
	full := make([]Value, 0, len(args)+len(p.Stored))
	full = append(full, args...)
	for _, v := range p.Stored {
		full = append(full, v.Clone())
	}
	return p.Inner.Call(rt, full)
}

// Chain feeds the result of each callable to the next. The first one gets
// the call-site arguments.
type Chain struct {
	Links []Callable
}

func (c *Chain) Name() string {
	names := make([]string, len(c.Links))
	for i, l := range c.Links {
		names[i] = l.Name()
	}
	return "chained(" + strings.Join(names, ", ") + ")"
}

func (c *Chain) Call(rt *Runtime, args []Value) Value {
	var result Value = NONE
	for i, link := range c.Links {
		if i == 0 {
			result = link.Call(rt, args)
			continue
		}
		result = link.Call(rt, []Value{result})
	}
	return result
}

// callValue invokes fn. Calling an iterator advances it and yields none at
// exhaustion. Anything else is not callable.
func callValue(rt *Runtime, fn Value, args []Value, line int) Value {
	switch fn := fn.(type) {
	case *Function:
		return fn.Callable.Call(rt, args)
	case *Iterator:
		if v, ok := fn.Next(); ok {
			return v
		}
		return NONE
	}
	throw(line, "TYPE-0001", map[string]any{"Value": describe(fn)})
	return nil
}
