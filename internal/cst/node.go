// Package cst implements a fault-tolerant CST builder: a lossless
// concrete syntax tree over the token stream, with bounded local
// recovery for malformed regions instead of halting.
package cst

import (
	"strings"

	"ftex/internal/source"
	"ftex/internal/token"
)

// Kind is a CST node variant.
type Kind uint8

const (
	Invalid Kind = iota
	// Root is the document's top-level node.
	Root
	// Leaf wraps exactly one token — the common case for Text,
	// Whitespace, Newline, and any command-name/delimiter token that a
	// more specific node variant doesn't already own.
	Leaf
	// Command is a control sequence with no special structural meaning
	// of its own (not \begin, \end, or an include command). Its argument
	// groups, if any, are parsed as ordinary sibling Group nodes rather
	// than folded into Command — see DESIGN.md.
	Command
	// Group is a brace `{ ... }` or bracket `[ ... ]` delimited region.
	Group
	// Environment is \begin{name} ... \end{name}.
	Environment
	// Math is `$ ... $`, `$$ ... $$`, or `\[ ... \]`.
	Math
	// Comment is a `% ... \n` leaf (the newline itself is a separate
	// sibling Leaf, consistent with the lexer's total tokenization).
	Comment
	// Include is \input{P}, \include{P}, \subfile{P}, or
	// \includegraphics{P}.
	Include
	// ErrorNode wraps a token the builder could not place structurally
	// (e.g. a stray closing delimiter) without halting construction.
	ErrorNode
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case Leaf:
		return "Leaf"
	case Command:
		return "Command"
	case Group:
		return "Group"
	case Environment:
		return "Environment"
	case Math:
		return "Math"
	case Comment:
		return "Comment"
	case Include:
		return "Include"
	case ErrorNode:
		return "ErrorNode"
	default:
		return "Invalid"
	}
}

// Data carries every variant's kind-specific payload — one struct backing
// every Kind rather than an interface hierarchy, the same tagged-variant
// shape used by internal/logevent.Data.
type Data struct {
	// Command, Environment, Include: the name without its leading '\'
	// (Environment: the \begin argument text).
	Name string
	// Include: the raw argument text between the braces, unresolved.
	RawArg string
	// Group: true if delimited by [ ] rather than { }.
	Bracket bool
	// Environment: \end{name} named a different environment than \begin.
	Mismatched bool
	// Group, Environment, Math: extends to end-of-document with no
	// matching close.
	Unclosed bool
	// ErrorNode: the diagnostic code ID reported for this node.
	ErrorCode string
}

// Node is one CST node. Leaf nodes carry Tok and no Children; every other
// Kind carries Children and a nil Tok.
type Node struct {
	Kind     Kind
	Span     source.Span
	Tok      *token.Token
	Children []*Node
	Data     Data
}

func leaf(t token.Token) *Node {
	tok := t
	return &Node{Kind: Leaf, Span: t.Span, Tok: &tok}
}

func coverAll(start source.Span, nodes []*Node) source.Span {
	sp := start
	for _, n := range nodes {
		sp = sp.Cover(n.Span)
	}
	return sp
}

// Text concatenates every leaf token's text under n, in document order.
// Text(root) == document content is the CST losslessness invariant.
func Text(n *Node) string {
	var b strings.Builder
	collectText(n, &b)
	return b.String()
}

func collectText(n *Node, b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Kind == Leaf {
		if n.Tok != nil {
			b.WriteString(n.Tok.Text)
		}
		return
	}
	for _, c := range n.Children {
		collectText(c, b)
	}
}

// Walk visits n and every descendant in pre-order, depth-first. fn
// returning false skips n's children (but siblings and ancestors'
// remaining children are still visited).
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
