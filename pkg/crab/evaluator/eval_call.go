package evaluator

import "github.com/sambeau/crabscript/pkg/crab/ast"

// evalCallExpression calls the callee with its arguments evaluated left to
// right. A callee that is a plain identifier is used as stored, so calling a
// bound iterator advances that iterator rather than a copy.
func evalCallExpression(node *ast.CallExpression, scope *Scope) Value {
	var callee Value
	switch c := node.Callee.(type) {
	case *ast.Identifier:
		callee = lookup(c, scope, asStored)
	case *ast.NativeRef:
		callee = nativeValue(c, scope)
	default:
		callee = Eval(c, scope)
	}

	args := make([]Value, len(node.Arguments))
	for i, arg := range node.Arguments {
		args[i] = Eval(arg, scope)
	}

	defer annotate(node.Line())
	return callValue(scope.rt, callee, args, node.Line())
}

func asStored(v Value) Value { return v }
