package evaluator

import "github.com/sambeau/crabscript/pkg/crab/ast"

// evalCondition evaluates a branch or loop condition, which must be a bool.
func evalCondition(node ast.Node, scope *Scope) bool {
	v := Eval(node, scope)
	b, ok := v.(*Bool)
	if !ok {
		throw(node.Line(), "TYPE-0007", map[string]any{"Got": typeName(v)})
	}
	return b.Value
}

// evalIfExpression runs the first branch whose condition is true. The
// branch's last value is the value of the whole expression.
func evalIfExpression(node *ast.IfExpression, scope *Scope) Result {
	for _, branch := range node.Branches {
		if evalCondition(branch.Condition, scope) {
			return ExecuteBlock(branch.Body, scope.NewChild())
		}
	}
	if node.Alternative != nil {
		return ExecuteBlock(node.Alternative, scope.NewChild())
	}
	return valueResult(NONE)
}

// evalWhileExpression runs the body while the condition holds. The body
// scope is reused across iterations and cleared before each one.
func evalWhileExpression(node *ast.WhileExpression, scope *Scope) Result {
	body := scope.NewChild()
	for evalCondition(node.Condition, scope) {
		body.Clear()
		if res := ExecuteBlock(node.Body, body); res.Kind == ResultReturn {
			return res
		}
	}
	return valueResult(NONE)
}

// evalForExpression runs the body once per element. The loop variable is
// slot 0 of the body scope.
func evalForExpression(node *ast.ForExpression, scope *Scope) Result {
	iterable := Eval(node.Iterable, scope)
	it, ok := toIter(iterable)
	if !ok {
		throw(node.Iterable.Line(), "TYPE-0004", map[string]any{"Value": describe(iterable)})
	}

	body := scope.NewChild()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		body.Clear()
		if node.Variable != nil {
			body.Define(node.Variable.Slot, node.Variable.Name, v)
		}
		if res := ExecuteBlock(node.Body, body); res.Kind == ResultReturn {
			return res
		}
	}
	return valueResult(NONE)
}
