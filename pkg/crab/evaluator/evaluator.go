package evaluator

import (
	"github.com/sambeau/crabscript/pkg/crab/ast"
)

// ResultKind says how a node finished.
type ResultKind int

const (
	// ResultValue is an ordinary value.
	ResultValue ResultKind = iota
	// ResultReturn is a ret unwinding to the enclosing function.
	ResultReturn
	// ResultYielded is the last value of a block used as an expression.
	ResultYielded
)

// Result is what executing a node produces.
type Result struct {
	Kind  ResultKind
	Value Value
}

func valueResult(v Value) Result   { return Result{Kind: ResultValue, Value: v} }
func returnResult(v Value) Result  { return Result{Kind: ResultReturn, Value: v} }
func yieldedResult(v Value) Result { return Result{Kind: ResultYielded, Value: v} }

// Eval executes node in scope and returns its value, panicking with a
// *RuntimeError on fatal errors.
func Eval(node ast.Node, scope *Scope) Value {
	return Execute(node, scope).Value
}

// Execute evaluates node in scope.
func Execute(node ast.Node, scope *Scope) Result {
	switch node := node.(type) {

	// Literals
	case *ast.IntegerLiteral:
		return valueResult(&Integer{Value: node.Value})
	case *ast.FloatLiteral:
		return valueResult(&Float{Value: node.Value})
	case *ast.StringLiteral:
		return valueResult(&String{Value: node.Value})
	case *ast.CharLiteral:
		return valueResult(&Character{Value: node.Value})
	case *ast.BooleanLiteral:
		return valueResult(nativeBool(node.Value))
	case *ast.NoneLiteral:
		return valueResult(NONE)

	// References
	case *ast.Identifier:
		return valueResult(lookup(node, scope, Value.Clone))
	case *ast.NativeRef:
		return valueResult(nativeValue(node, scope))
	case *ast.ArgsExpression:
		return valueResult(evalArgs(node, scope))

	// Expressions
	case *ast.CallExpression:
		return valueResult(evalCallExpression(node, scope))
	case *ast.IndexExpression:
		return valueResult(evalIndexExpression(node, scope))
	case *ast.AssignExpression:
		return valueResult(evalAssignExpression(node, scope))
	case *ast.Declaration:
		return valueResult(evalDeclaration(node, scope))
	case *ast.FunctionLiteral:
		return valueResult(evalFunctionLiteral(node, scope))

	// Control flow
	case *ast.Block:
		return ExecuteBlock(node, scope.NewChild())
	case *ast.IfExpression:
		return evalIfExpression(node, scope)
	case *ast.WhileExpression:
		return evalWhileExpression(node, scope)
	case *ast.ForExpression:
		return evalForExpression(node, scope)
	case *ast.ReturnStatement:
		if node.Value == nil {
			return returnResult(NONE)
		}
		return returnResult(Eval(node.Value, scope))
	}

	throw(node.Line(), "INTERNAL-0003", map[string]any{"Node": node.String()})
	return valueResult(NONE)
}

// ExecuteBlock runs the statements of block directly in scope. A ret is
// absorbed by function bodies and propagated by every other block.
func ExecuteBlock(block *ast.Block, scope *Scope) Result {
	var last Value = NONE
	for _, stmt := range block.Statements {
		res := Execute(stmt, scope)
		if res.Kind == ResultReturn {
			if block.Purpose == ast.PurposeFunction {
				return valueResult(res.Value)
			}
			return res
		}
		last = res.Value
	}

	switch block.Purpose {
	case ast.PurposeConditional, ast.PurposeBlock:
		return yieldedResult(last)
	}
	return valueResult(NONE)
}

// lookup reads the binding an identifier was resolved to through fn, which
// runs under the owning scope's read lock.
func lookup(node *ast.Identifier, scope *Scope, fn func(Value) Value) Value {
	v, ok := scope.View(node.Slot, node.Depth, fn)
	if !ok {
		throw(node.Line(), "UNDEFINED-0001", map[string]any{"Name": node.Name})
	}
	return v
}

func nativeValue(node *ast.NativeRef, scope *Scope) Value {
	native, ok := scope.rt.Registry.Lookup(node.Name)
	if !ok {
		throw(node.Line(), "UNDEFINED-0001", map[string]any{"Name": node.Name})
	}
	return &Function{Callable: native}
}

func evalArgs(node *ast.ArgsExpression, scope *Scope) Value {
	defer annotate(node.Line())
	return &Array{Elements: scope.Arguments()}
}

func evalDeclaration(node *ast.Declaration, scope *Scope) Value {
	v := Eval(node.Value, scope)
	defineAt(node.Name, scope, v, node.Line())
	return NONE
}

func defineAt(name *ast.Identifier, scope *Scope, v Value, line int) {
	defer annotate(line)
	scope.Define(name.Slot, name.Name, v)
}

func evalFunctionLiteral(node *ast.FunctionLiteral, scope *Scope) Value {
	fn := &ScriptFunction{Body: node.Body, Captured: scope}
	if node.Name == nil {
		return &Function{Callable: fn}
	}
	fn.name = node.Name.Name
	defineAt(node.Name, scope, &Function{Callable: fn}, node.Line())
	return NONE
}

// annotate attaches line to a runtime error raised without one.
func annotate(line int) {
	r := recover()
	if r == nil {
		return
	}
	if rerr, ok := r.(*RuntimeError); ok && rerr.Err.Line == 0 && line > 0 {
		panic(&RuntimeError{Err: rerr.Err.WithPosition(line, 0)})
	}
	panic(r)
}

// EvalProgram runs a top-level block in scope and returns the value of its
// last statement, or the value of a top-level ret.
func EvalProgram(program *ast.Block, scope *Scope) Value {
	var last Value = NONE
	for _, stmt := range program.Statements {
		res := Execute(stmt, scope)
		last = res.Value
		if res.Kind == ResultReturn {
			break
		}
	}
	return last
}
