package parser

import (
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/sambeau/crabscript/pkg/crab/ast"
	crerrors "github.com/sambeau/crabscript/pkg/crab/errors"
	"github.com/sambeau/crabscript/pkg/crab/lexer"
)

// Natives is the set of built-in names identifiers may fall back to when no
// binding is in scope.
type Natives interface {
	Has(name string) bool
	Names() []string
}

// Parser turns a token stream into a slot-resolved AST in two passes. The
// first pass allocates a slot for every declared name per { } scope; the
// second builds nodes and resolves every identifier to (slot, depth).
type Parser struct {
	filename string
	tokens   []lexer.Token
	pos      int

	curToken  lexer.Token
	peekToken lexer.Token

	natives  Natives
	preorder []*scopeNode
	nextNode int
	scope    *scopeNode

	errors []*ParseError
}

// New creates a parser over the whole input of l.
func New(l *lexer.Lexer, natives Natives) *Parser {
	return newParser(l, natives, newScopeNode(nil))
}

func newParser(l *lexer.Lexer, natives Natives, root *scopeNode) *Parser {
	p := &Parser{
		filename: l.Filename(),
		tokens:   l.Tokens(),
		natives:  natives,
		pos:      -1,
	}
	p.preorder = allocateSlots(p.tokens, root)
	p.nextToken()
	return p
}

// Errors returns the parse errors. Parsing stops at the first error, so
// there is at most one.
func (p *Parser) Errors() []*ParseError {
	return p.errors
}

// StructuredErrors returns parser errors as CrabError values.
func (p *Parser) StructuredErrors() []*crerrors.CrabError {
	result := make([]*crerrors.CrabError, len(p.errors))
	for i, err := range p.errors {
		result[i] = err.Structured()
		if p.filename != "" && p.filename != "<input>" {
			result[i] = result[i].WithFile(p.filename)
		}
	}
	return result
}

// Err returns the first parse error, or nil.
func (p *Parser) Err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return p.errors[0]
}

// addError records err. Only the first error is kept; later ones are
// cascading noise.
func (p *Parser) addError(err *ParseError) {
	if len(p.errors) > 0 {
		return
	}
	p.errors = append(p.errors, err)
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

func (p *Parser) token(i int) lexer.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	p.pos++
	p.curToken = p.token(p.pos)
	p.peekToken = p.token(p.pos + 1)
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(lexer.NEWLINE) {
		p.nextToken()
	}
}

// peekPastNewlines returns the index of the first token after the current
// one that is not a newline.
func (p *Parser) peekPastNewlines() int {
	i := p.pos + 1
	for p.token(i).Type == lexer.NEWLINE {
		i++
	}
	return i
}

func (p *Parser) advanceTo(i int) {
	p.pos = i - 1
	p.nextToken()
}

// expectPeek advances onto the next token if it has type t, allowing
// newlines in between when skip is set.
func (p *Parser) expectPeek(t lexer.TokenType, what string, skip bool) bool {
	i := p.pos + 1
	if skip {
		i = p.peekPastNewlines()
	}
	tok := p.token(i)
	if tok.Type == t {
		p.advanceTo(i)
		return true
	}
	if tok.Type == lexer.EOF {
		p.addError(unexpectedEnd(tok.Line))
	} else {
		p.addError(expectedNotFound(tok.Line, what))
	}
	return false
}

// ParseProgram parses the input as a top-level block.
func (p *Parser) ParseProgram() *ast.Block {
	block := &ast.Block{Token: p.curToken, Purpose: ast.PurposeTopLevel}
	p.openScope(false)
	p.parseStatements(block)
	return block
}

func (p *Parser) openScope(function bool) *scopeNode {
	node := p.preorder[p.nextNode]
	p.nextNode++
	node.function = function
	p.scope = node
	return node
}

func (p *Parser) closeScope() {
	p.scope = p.scope.parent
}

// parseStatements fills block until its closing brace, or EOF at top level.
// On return curToken is the closing brace.
func (p *Parser) parseStatements(block *ast.Block) {
	for {
		for p.curTokenIs(lexer.NEWLINE) || p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
		}

		switch p.curToken.Type {
		case lexer.EOF:
			if block.Purpose != ast.PurposeTopLevel {
				p.addError(unexpectedEnd(p.curToken.Line))
			}
			return
		case lexer.RBRACE:
			if block.Purpose == ast.PurposeTopLevel {
				p.addError(unexpected(p.curToken.Line, "}", ""))
			}
			return
		}

		stmt := p.parseExpression()
		if p.failed() {
			return
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}
}

// parseExpression parses one node starting at curToken and leaves curToken on
// its last token.
func (p *Parser) parseExpression() ast.Node {
	var left ast.Node

	switch p.curToken.Type {
	case lexer.INT:
		left = p.parseIntegerLiteral()
	case lexer.FLOAT:
		left = p.parseFloatLiteral()
	case lexer.STRING:
		left = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	case lexer.CHAR:
		r, _ := utf8.DecodeRuneInString(p.curToken.Literal)
		left = &ast.CharLiteral{Token: p.curToken, Value: r}
	case lexer.TRUE, lexer.FALSE:
		left = &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
	case lexer.NONE:
		left = &ast.NoneLiteral{Token: p.curToken}
	case lexer.IDENT:
		left = p.parseIdentifier()
	case lexer.FN:
		left = p.parseFunctionLiteral()
	case lexer.IF:
		left = p.parseIfExpression()
	case lexer.LBRACE:
		left = p.parseBlock(ast.PurposeBlock, false, nil)
	case lexer.LET, lexer.CONST:
		return p.parseDeclaration()
	case lexer.WHILE:
		return p.parseWhileExpression()
	case lexer.FOR:
		return p.parseForExpression()
	case lexer.RET:
		return p.parseReturnStatement()
	case lexer.EOF:
		p.addError(unexpectedEnd(p.curToken.Line))
		return nil
	default:
		p.addError(unexpected(p.curToken.Line, p.curToken.Literal, ""))
		return nil
	}

	if p.failed() {
		return nil
	}
	return p.parsePostfix(left)
}

// parsePostfix applies calls, index chains and a trailing assignment to left.
func (p *Parser) parsePostfix(left ast.Node) ast.Node {
	for {
		switch {
		case p.peekTokenIs(lexer.LPAREN):
			p.nextToken()
			left = p.parseCallExpression(left)
		case p.peekTokenIs(lexer.LBRACKET):
			left = p.parseIndexExpression(left)
		default:
			if p.peekTokenIs(lexer.ASSIGN) {
				return p.parseAssignment(left)
			}
			return left
		}
		if p.failed() {
			return nil
		}
	}
}

func (p *Parser) parseIntegerLiteral() ast.Node {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError(unexpected(p.curToken.Line, p.curToken.Literal, "a 64-bit integer"))
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Node {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(unexpected(p.curToken.Line, p.curToken.Literal, "a float"))
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseIdentifier() ast.Node {
	name := p.curToken.Literal
	if name == "args" {
		return &ast.ArgsExpression{Token: p.curToken}
	}
	if ident := p.resolve(name); ident != nil {
		return ident
	}
	if p.natives != nil && p.natives.Has(name) {
		return &ast.NativeRef{Token: p.curToken, Name: name}
	}
	p.addError(undefinedVariable(p.curToken.Line, name, p.knownNames()))
	return nil
}

// resolve finds the binding name refers to. Inside a function body, names of
// enclosing scopes resolve even when declared further down, because the body
// only runs once it is called.
func (p *Parser) resolve(name string) *ast.Identifier {
	crossed := false
	for n := p.scope; n != nil; n = n.parent {
		slot, allocated := n.slots[name]
		if n.declared[name] || (crossed && allocated) {
			return &ast.Identifier{
				Token: p.curToken,
				Name:  name,
				Slot:  slot,
				Depth: n.depth,
				Const: n.consts[name] || (!n.declared[name] && n.pending[name]),
			}
		}
		if n.function {
			crossed = true
		}
	}
	return nil
}

// declare marks name as visible in the current scope from here on.
func (p *Parser) declare(tok lexer.Token, isConst bool) *ast.Identifier {
	name := tok.Literal
	slot := p.scope.allocate(name)
	p.scope.declared[name] = true
	delete(p.scope.pending, name)
	if isConst {
		p.scope.consts[name] = true
	} else {
		delete(p.scope.consts, name)
	}
	return &ast.Identifier{
		Token: tok,
		Name:  name,
		Slot:  slot,
		Depth: p.scope.depth,
		Const: isConst,
	}
}

// knownNames lists everything an undefined name might have been meant as.
func (p *Parser) knownNames() []string {
	var names []string
	for n := p.scope; n != nil; n = n.parent {
		for name := range n.declared {
			names = append(names, name)
		}
	}
	if p.natives != nil {
		names = append(names, p.natives.Names()...)
	}
	names = append(names, crerrors.Keywords...)
	sort.Strings(names)
	return names
}

func (p *Parser) parseCallExpression(callee ast.Node) ast.Node {
	call := &ast.CallExpression{Token: p.curToken, Callee: callee}

	p.nextToken()
	p.skipNewlines()
	if p.curTokenIs(lexer.RPAREN) {
		return call
	}

	for {
		arg := p.parseExpression()
		if p.failed() {
			return nil
		}
		call.Arguments = append(call.Arguments, arg)

		p.nextToken()
		p.skipNewlines()
		switch p.curToken.Type {
		case lexer.COMMA:
			p.nextToken()
			p.skipNewlines()
		case lexer.RPAREN:
			return call
		case lexer.EOF:
			p.addError(unexpectedEnd(p.curToken.Line))
			return nil
		default:
			p.addError(unexpected(p.curToken.Line, p.curToken.Literal, ", or )"))
			return nil
		}
	}
}

func (p *Parser) parseIndexExpression(left ast.Node) ast.Node {
	index := &ast.IndexExpression{Token: p.peekToken, Left: left}

	for p.peekTokenIs(lexer.LBRACKET) {
		p.nextToken()
		p.nextToken()
		p.skipNewlines()

		idx := p.parseExpression()
		if p.failed() {
			return nil
		}
		index.Indexes = append(index.Indexes, idx)

		if !p.expectPeek(lexer.RBRACKET, "]", true) {
			return nil
		}
	}

	return index
}

func (p *Parser) parseAssignment(target ast.Node) ast.Node {
	switch target.(type) {
	case *ast.Identifier, *ast.IndexExpression:
	default:
		p.addError(invalidAssignment(p.peekToken.Line, target.String()))
		return nil
	}

	p.nextToken()
	assign := &ast.AssignExpression{Token: p.curToken, Target: target}

	p.nextToken()
	p.skipNewlines()
	assign.Value = p.parseExpression()
	if p.failed() {
		return nil
	}
	return assign
}

func (p *Parser) parseDeclaration() ast.Node {
	decl := &ast.Declaration{Token: p.curToken}
	isConst := p.curTokenIs(lexer.CONST)

	if !p.expectPeek(lexer.IDENT, "identifier", false) {
		return nil
	}
	nameTok := p.curToken
	if nameTok.Literal == "args" {
		p.addError(unexpected(nameTok.Line, "args", "identifier"))
		return nil
	}

	if !p.expectPeek(lexer.ASSIGN, "=", false) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()

	decl.Value = p.parseExpression()
	if p.failed() {
		return nil
	}

	// The name becomes visible only after its initializer.
	decl.Name = p.declare(nameTok, isConst)
	return decl
}

func (p *Parser) parseFunctionLiteral() ast.Node {
	fn := &ast.FunctionLiteral{Token: p.curToken}

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		if p.curToken.Literal == "args" {
			p.addError(unexpected(p.curToken.Line, "args", "identifier"))
			return nil
		}
		// Declared before the body so the function can call itself.
		fn.Name = p.declare(p.curToken, true)
	}

	if !p.expectPeek(lexer.LBRACE, "{", true) {
		return nil
	}
	fn.Body = p.parseBlock(ast.PurposeFunction, true, nil)
	if p.failed() {
		return nil
	}
	return fn
}

// parseBlock parses { ... } starting at curToken, opening the next scope
// node. setup runs once the scope is open, before the first statement.
func (p *Parser) parseBlock(purpose ast.Purpose, function bool, setup func()) *ast.Block {
	block := &ast.Block{Token: p.curToken, Purpose: purpose}

	p.openScope(function)
	if setup != nil {
		setup()
	}
	p.nextToken()
	p.parseStatements(block)
	if p.failed() {
		return nil
	}
	p.closeScope()

	return block
}

func (p *Parser) parseIfExpression() ast.Node {
	expr := &ast.IfExpression{Token: p.curToken}

	for {
		p.nextToken()
		p.skipNewlines()

		cond := p.parseExpression()
		if p.failed() {
			return nil
		}
		if !p.expectPeek(lexer.LBRACE, "{", true) {
			return nil
		}
		body := p.parseBlock(ast.PurposeConditional, false, nil)
		if p.failed() {
			return nil
		}
		expr.Branches = append(expr.Branches, &ast.Branch{Condition: cond, Body: body})

		next := p.peekPastNewlines()
		switch p.token(next).Type {
		case lexer.ELIF:
			p.advanceTo(next)
			continue
		case lexer.ELSE:
			p.advanceTo(next)
		default:
			return expr
		}

		// curToken is else
		if p.peekTokenIs(lexer.IF) {
			p.nextToken()
			continue
		}
		after := p.peekPastNewlines()
		if p.token(after).Type != lexer.LBRACE {
			tok := p.token(after)
			if tok.Type == lexer.EOF {
				p.addError(unexpectedEnd(tok.Line))
			} else {
				p.addError(unexpected(tok.Line, tok.Literal, "if or {"))
			}
			return nil
		}
		p.advanceTo(after)
		expr.Alternative = p.parseBlock(ast.PurposeConditional, false, nil)
		if p.failed() {
			return nil
		}
		return expr
	}
}

func (p *Parser) parseWhileExpression() ast.Node {
	expr := &ast.WhileExpression{Token: p.curToken}

	p.nextToken()
	p.skipNewlines()
	expr.Condition = p.parseExpression()
	if p.failed() {
		return nil
	}

	if !p.expectPeek(lexer.LBRACE, "{", true) {
		return nil
	}
	expr.Body = p.parseBlock(ast.PurposeWhile, false, nil)
	if p.failed() {
		return nil
	}
	return expr
}

func (p *Parser) parseForExpression() ast.Node {
	expr := &ast.ForExpression{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT, "identifier", false) {
		return nil
	}
	varTok := p.curToken
	if varTok.Literal == "args" {
		p.addError(unexpected(varTok.Line, "args", "identifier"))
		return nil
	}

	if !p.expectPeek(lexer.IN, "in", false) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()

	expr.Iterable = p.parseExpression()
	if p.failed() {
		return nil
	}

	if !p.expectPeek(lexer.LBRACE, "{", true) {
		return nil
	}
	expr.Body = p.parseBlock(ast.PurposeFor, false, func() {
		if varTok.Literal != "_" {
			expr.Variable = p.declare(varTok, false)
		}
	})
	if p.failed() {
		return nil
	}
	return expr
}

func (p *Parser) parseReturnStatement() ast.Node {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	switch p.peekToken.Type {
	case lexer.NEWLINE, lexer.SEMICOLON, lexer.RBRACE, lexer.EOF:
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression()
	if p.failed() {
		return nil
	}
	return stmt
}

// Session parses a sequence of inputs that share one top-level scope, as a
// REPL does. Names declared by earlier inputs stay visible to later ones and
// keep their slots.
type Session struct {
	root    *scopeNode
	natives Natives
}

// NewSession creates a session with an empty top-level scope.
func NewSession(natives Natives) *Session {
	return &Session{root: newScopeNode(nil), natives: natives}
}

// Parse parses one input against the session's top-level scope.
func (s *Session) Parse(l *lexer.Lexer) (*ast.Block, error) {
	p := newParser(l, s.natives, s.root)
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return program, nil
}

// Names returns the names declared at top level so far, in slot order.
func (s *Session) Names() []string {
	var names []string
	for _, name := range s.root.order {
		if name != "" && s.root.declared[name] {
			names = append(names, name)
		}
	}
	return names
}

// Parse parses a complete program.
func Parse(input string, natives Natives) (*ast.Block, error) {
	p := New(lexer.New(input), natives)
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return program, nil
}
