package grammar

import (
	"github.com/dhamidi/parsekit/scanner"
)

// Node is a node of the concrete syntax tree built by a grammar.
// Terminal nodes come from lexical productions and literal tokens and have
// no children; the other nodes are named after the production that matched.
type Node struct {
	Kind     string       // Production name, or the quoted literal for anonymous tokens
	Terminal bool         // True for tokens
	Children []*Node      // Child nodes (nil for terminals)
	Span     scanner.Span // Source span covering this node
}

// IsTerminal returns true if this is a leaf node (token).
func (n *Node) IsTerminal() bool {
	return n.Terminal
}

// Text returns the source text covered by the node.
func (n *Node) Text() string {
	return n.Span.String()
}

// Walk calls fn for n and every node below it, depth first. Returning false
// skips the children of a node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// NewTerminal creates a terminal node covering span.
func NewTerminal(kind string, span scanner.Span) *Node {
	return &Node{
		Kind:     kind,
		Terminal: true,
		Span:     span,
	}
}

// NewNonTerminal creates a non-terminal node with the given children.
func NewNonTerminal(kind string, span scanner.Span, children ...*Node) *Node {
	if children == nil {
		children = make([]*Node, 0)
	}
	return &Node{
		Kind:     kind,
		Children: children,
		Span:     span,
	}
}
