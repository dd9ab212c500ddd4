package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sambeau/crabscript/pkg/crab/lexer"
)

// Node represents any node in the AST. CrabScript makes no distinction
// between statements and expressions: every node evaluates to a value.
type Node interface {
	TokenLiteral() string
	String() string
	Line() int
}

// Purpose tags a block with the construct that owns it. It decides whether
// a ret inside the block is absorbed or propagated.
type Purpose int

const (
	PurposeTopLevel Purpose = iota
	PurposeFunction
	PurposeConditional
	PurposeWhile
	PurposeFor
	PurposeBlock
)

func (p Purpose) String() string {
	switch p {
	case PurposeTopLevel:
		return "TopLevel"
	case PurposeFunction:
		return "Function"
	case PurposeConditional:
		return "Conditional"
	case PurposeWhile:
		return "While"
	case PurposeFor:
		return "For"
	case PurposeBlock:
		return "Block"
	}
	return fmt.Sprintf("Purpose(%d)", int(p))
}

// Block is a sequence of nodes evaluated in its own scope.
type Block struct {
	Token      lexer.Token // the { token, or the first token of a program
	Purpose    Purpose
	Statements []Node
}

func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) Line() int            { return b.Token.Line }
func (b *Block) String() string {
	var out bytes.Buffer
	if b.Purpose != PurposeTopLevel {
		out.WriteString("{ ")
	}
	for i, s := range b.Statements {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(s.String())
	}
	if b.Purpose != PurposeTopLevel {
		out.WriteString(" }")
	}
	return out.String()
}

// Identifier is a reference to a binding resolved to a slot in the scope
// chain. Depth counts ancestors of the declaring scope, so the root scope is 0.
type Identifier struct {
	Token lexer.Token
	Name  string
	Slot  int
	Depth int
	Const bool
}

func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Line() int            { return i.Token.Line }
func (i *Identifier) String() string       { return i.Name }

// NativeRef names a function from the native registry.
type NativeRef struct {
	Token lexer.Token
	Name  string
}

func (n *NativeRef) TokenLiteral() string { return n.Token.Literal }
func (n *NativeRef) Line() int            { return n.Token.Line }
func (n *NativeRef) String() string       { return n.Name }

// ArgsExpression is the args vector of the enclosing function call.
type ArgsExpression struct {
	Token lexer.Token
}

func (a *ArgsExpression) TokenLiteral() string { return a.Token.Literal }
func (a *ArgsExpression) Line() int            { return a.Token.Line }
func (a *ArgsExpression) String() string       { return "args" }

// IntegerLiteral represents integer literals
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Line() int            { return il.Token.Line }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// FloatLiteral represents floating-point literals
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) Line() int            { return fl.Token.Line }
func (fl *FloatLiteral) String() string       { return fl.Token.Literal }

// StringLiteral represents string literals
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Line() int            { return sl.Token.Line }
func (sl *StringLiteral) String() string       { return fmt.Sprintf("%q", sl.Value) }

// CharLiteral represents single-quoted character literals
type CharLiteral struct {
	Token lexer.Token
	Value rune
}

func (cl *CharLiteral) TokenLiteral() string { return cl.Token.Literal }
func (cl *CharLiteral) Line() int            { return cl.Token.Line }
func (cl *CharLiteral) String() string       { return fmt.Sprintf("%q", cl.Value) }

// BooleanLiteral represents true and false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Line() int            { return bl.Token.Line }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// NoneLiteral represents none
type NoneLiteral struct {
	Token lexer.Token
}

func (nl *NoneLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NoneLiteral) Line() int            { return nl.Token.Line }
func (nl *NoneLiteral) String() string       { return "none" }

// CallExpression represents f(a, b). Callee may itself be a call, as in f()().
type CallExpression struct {
	Token     lexer.Token // the ( token
	Callee    Node
	Arguments []Node
}

func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Line() int            { return ce.Token.Line }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

// IndexExpression represents a chained index such as a[i][j].
type IndexExpression struct {
	Token   lexer.Token // the first [ token
	Left    Node
	Indexes []Node
}

func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Line() int            { return ie.Token.Line }
func (ie *IndexExpression) String() string {
	var out bytes.Buffer
	out.WriteString(ie.Left.String())
	for _, idx := range ie.Indexes {
		out.WriteString("[")
		out.WriteString(idx.String())
		out.WriteString("]")
	}
	return out.String()
}

// AssignExpression represents x = v and a[i] = v.
type AssignExpression struct {
	Token  lexer.Token // the = token
	Target Node        // *Identifier or *IndexExpression
	Value  Node
}

func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) Line() int            { return ae.Token.Line }
func (ae *AssignExpression) String() string {
	return ae.Target.String() + " = " + ae.Value.String()
}

// Declaration represents let and const.
type Declaration struct {
	Token lexer.Token // the let or const token
	Name  *Identifier
	Value Node
}

func (d *Declaration) TokenLiteral() string { return d.Token.Literal }
func (d *Declaration) Line() int            { return d.Token.Line }
func (d *Declaration) String() string {
	return d.Token.Literal + " " + d.Name.String() + " = " + d.Value.String()
}

// Branch is one condition and body of an if chain.
type Branch struct {
	Condition Node
	Body      *Block
}

// IfExpression is an ordered if / else if / elif chain with an optional else.
type IfExpression struct {
	Token       lexer.Token
	Branches    []*Branch
	Alternative *Block
}

func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) Line() int            { return ie.Token.Line }
func (ie *IfExpression) String() string {
	var out bytes.Buffer
	for i, b := range ie.Branches {
		if i > 0 {
			out.WriteString(" else ")
		}
		out.WriteString("if ")
		out.WriteString(b.Condition.String())
		out.WriteString(" ")
		out.WriteString(b.Body.String())
	}
	if ie.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(ie.Alternative.String())
	}
	return out.String()
}

// WhileExpression represents while cond { ... }
type WhileExpression struct {
	Token     lexer.Token
	Condition Node
	Body      *Block
}

func (we *WhileExpression) TokenLiteral() string { return we.Token.Literal }
func (we *WhileExpression) Line() int            { return we.Token.Line }
func (we *WhileExpression) String() string {
	return "while " + we.Condition.String() + " " + we.Body.String()
}

// ForExpression represents for x in iterable { ... }. Variable is nil for _.
type ForExpression struct {
	Token    lexer.Token
	Variable *Identifier
	Iterable Node
	Body     *Block
}

func (fe *ForExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *ForExpression) Line() int            { return fe.Token.Line }
func (fe *ForExpression) String() string {
	name := "_"
	if fe.Variable != nil {
		name = fe.Variable.Name
	}
	return "for " + name + " in " + fe.Iterable.String() + " " + fe.Body.String()
}

// FunctionLiteral represents fn name { ... } and anonymous fn { ... }.
// Name is nil for anonymous functions.
type FunctionLiteral struct {
	Token lexer.Token
	Name  *Identifier
	Body  *Block
}

func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) Line() int            { return fl.Token.Line }
func (fl *FunctionLiteral) String() string {
	if fl.Name != nil {
		return "fn " + fl.Name.Name + " " + fl.Body.String()
	}
	return "fn " + fl.Body.String()
}

// ReturnStatement represents ret and ret expr.
type ReturnStatement struct {
	Token lexer.Token
	Value Node // nil when ret has no expression
}

func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Line() int            { return rs.Token.Line }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "ret"
	}
	return "ret " + rs.Value.String()
}
