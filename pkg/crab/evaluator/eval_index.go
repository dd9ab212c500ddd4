package evaluator

import (
	"unicode/utf8"

	"github.com/sambeau/crabscript/pkg/crab/ast"
)

func evalIndexExpression(node *ast.IndexExpression, scope *Scope) Value {
	// Index straight into a bound value and copy only the element read.
	if ident, ok := node.Left.(*ast.Identifier); ok {
		indexes := make([]int64, len(node.Indexes))
		for i, idx := range node.Indexes {
			indexes[i] = evalIndex(idx, scope)
		}
		return lookup(ident, scope, func(left Value) Value {
			for _, i := range indexes {
				left = indexValue(left, i, node.Line())
			}
			return left.Clone()
		})
	}

	left := Eval(node.Left, scope)
	for _, idx := range node.Indexes {
		i := evalIndex(idx, scope)
		left = indexValue(left, i, node.Line())
	}
	return left.Clone()
}

func evalIndex(node ast.Node, scope *Scope) int64 {
	v := Eval(node, scope)
	i, ok := v.(*Integer)
	if !ok {
		throw(node.Line(), "TYPE-0003", map[string]any{"Got": typeName(v)})
	}
	return i.Value
}

func indexValue(left Value, i int64, line int) Value {
	switch left := left.(type) {
	case *Array:
		if i < 0 || i >= int64(len(left.Elements)) {
			throw(line, "INDEX-0001", map[string]any{"Index": i, "Length": len(left.Elements)})
		}
		return left.Elements[i]
	case *String:
		length := int64(utf8.RuneCountInString(left.Value))
		if i < 0 || i >= length {
			throw(line, "INDEX-0001", map[string]any{"Index": i, "Length": length})
		}
		return &Character{Value: []rune(left.Value)[i]}
	}
	throw(line, "TYPE-0002", map[string]any{"Value": describe(left)})
	return nil
}

// evalAssignExpression stores into a binding, or into an element of an array
// held by a binding. Index targets are updated in place.
func evalAssignExpression(node *ast.AssignExpression, scope *Scope) Value {
	switch target := node.Target.(type) {
	case *ast.Identifier:
		if target.Const {
			throw(node.Line(), "STATE-0002", map[string]any{"Name": target.Name})
		}
		v := Eval(node.Value, scope)
		if !scope.Set(target.Slot, target.Depth, v) {
			throw(node.Line(), "UNDEFINED-0001", map[string]any{"Name": target.Name})
		}

	case *ast.IndexExpression:
		root, ok := target.Left.(*ast.Identifier)
		if !ok {
			throw(node.Line(), "STATE-0003", nil)
		}
		if root.Const {
			throw(node.Line(), "STATE-0002", map[string]any{"Name": root.Name})
		}

		indexes := make([]int64, len(target.Indexes))
		for i, idx := range target.Indexes {
			indexes[i] = evalIndex(idx, scope)
		}
		v := Eval(node.Value, scope)

		updated := scope.Update(root.Slot, root.Depth, func(cur Value) Value {
			return assignIndex(cur, indexes, v, node.Line())
		})
		if !updated {
			throw(node.Line(), "UNDEFINED-0001", map[string]any{"Name": root.Name})
		}

	default:
		throw(node.Line(), "STATE-0003", nil)
	}

	return NONE
}

func assignIndex(cur Value, indexes []int64, v Value, line int) Value {
	arr, ok := cur.(*Array)
	if !ok {
		throw(line, "TYPE-0002", map[string]any{"Value": describe(cur)})
	}
	i := indexes[0]
	if i < 0 || i >= int64(len(arr.Elements)) {
		throw(line, "INDEX-0001", map[string]any{"Index": i, "Length": len(arr.Elements)})
	}
	if len(indexes) == 1 {
		arr.Elements[i] = v
	} else {
		arr.Elements[i] = assignIndex(arr.Elements[i], indexes[1:], v, line)
	}
	return arr
}
