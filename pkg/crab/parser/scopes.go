package parser

import "github.com/sambeau/crabscript/pkg/crab/lexer"

// scopeNode is one { } scope in the slot allocation tree.
type scopeNode struct {
	parent   *scopeNode
	depth    int
	slots    map[string]int
	order    []string
	declared map[string]bool // names whose declaration has been parsed
	consts   map[string]bool
	pending  map[string]bool // const and fn names allocated but not declared yet
	function bool // body of a fn
}

func newScopeNode(parent *scopeNode) *scopeNode {
	n := &scopeNode{
		parent:   parent,
		slots:    make(map[string]int),
		declared: make(map[string]bool),
		consts:   make(map[string]bool),
		pending:  make(map[string]bool),
	}
	if parent != nil {
		n.depth = parent.depth + 1
	}
	return n
}

// allocate gives name the next free slot. A name already present keeps its
// first slot, so a second declaration in the same scope collides at runtime.
func (n *scopeNode) allocate(name string) int {
	if id, ok := n.slots[name]; ok {
		return id
	}
	id := len(n.order)
	n.slots[name] = id
	n.order = append(n.order, name)
	return id
}

// allocateAt pins name to a fixed slot. Used for the for loop variable.
func (n *scopeNode) allocateAt(name string, id int) {
	n.slots[name] = id
	for len(n.order) <= id {
		n.order = append(n.order, "")
	}
	n.order[id] = name
}

type pendingFor struct {
	name   string
	node   *scopeNode
	parens int
}

// allocateSlots is the first pass. It walks the token stream, opens a scope
// node for every {, and hands out slot ids to every name introduced by let,
// const, fn and for. Nodes are returned in pre-order, which is the order the
// second pass opens blocks in.
func allocateSlots(tokens []lexer.Token, root *scopeNode) []*scopeNode {
	preorder := []*scopeNode{root}
	current := root
	parens := 0
	var fors []pendingFor

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Type {
		case lexer.LET, lexer.CONST, lexer.FN:
			if i+1 < len(tokens) && tokens[i+1].Type == lexer.IDENT {
				current.allocate(tokens[i+1].Literal)
				if tok.Type != lexer.LET {
					current.pending[tokens[i+1].Literal] = true
				}
				i++
			}
		case lexer.FOR:
			if i+1 < len(tokens) && tokens[i+1].Type == lexer.IDENT {
				fors = append(fors, pendingFor{name: tokens[i+1].Literal, node: current, parens: parens})
				i++
			}
		case lexer.LPAREN, lexer.LBRACKET:
			parens++
		case lexer.RPAREN, lexer.RBRACKET:
			parens--
		case lexer.LBRACE:
			child := newScopeNode(current)
			if n := len(fors); n > 0 && fors[n-1].node == current && fors[n-1].parens == parens {
				if name := fors[n-1].name; name != "_" {
					child.allocateAt(name, 0)
				}
				fors = fors[:n-1]
			}
			preorder = append(preorder, child)
			current = child
		case lexer.RBRACE:
			if current.parent != nil {
				current = current.parent
			}
		}
	}

	return preorder
}
