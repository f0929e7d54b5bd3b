package cst

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"ftex/internal/diag"
	"ftex/internal/lexer"
	"ftex/internal/source"
	"ftex/internal/token"
)

// Options configures a Build call.
type Options struct {
	Reporter diag.Reporter
	// MaxErrors caps the number of recovery diagnostics reported; 0 means
	// unbounded.
	MaxErrors uint
	// MaxDepth bounds Group/Environment/Math nesting depth the builder will
	// recurse into, to keep pathological or adversarial input from
	// overflowing the goroutine stack. 0 uses the default.
	MaxDepth int
}

const defaultMaxDepth = 512

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}
	return o
}

// includeCommands names the commands whose sole brace argument is a file
// reference deferred to internal/index for path resolution.
var includeCommands = map[string]bool{
	"input":           true,
	"include":         true,
	"subfile":         true,
	"includegraphics": true,
}

// Build parses file's full token stream into a lossless CST. It never
// halts on malformed input: unmatched or mismatched
// delimiters are reported through opts.Reporter and wrapped locally,
// construction continues over the rest of the document.
func Build(file *source.File, opts Options) *Node {
	opts = opts.withDefaults()
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter})
	b := &builder{lx: lx, opts: opts}
	children := b.parseSequence()
	return &Node{
		Kind:     Root,
		Span:     source.Span{File: file.ID, Start: 0, End: fileLen(file)},
		Children: children,
	}
}

func fileLen(file *source.File) uint32 {
	n, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		panic(fmt.Errorf("cst: file length overflow: %w", err))
	}
	return n
}

type builder struct {
	lx       *lexer.Lexer
	opts     Options
	errCount uint
	depth    int
}

// parseSequence consumes tokens until EOF. It never treats a lone closing
// delimiter as a terminator — any reaching this level is stray and gets
// wrapped as an ErrorNode by parseOne.
func (b *builder) parseSequence() []*Node {
	var nodes []*Node
	for {
		if b.lx.Peek().Kind == token.EOF {
			return nodes
		}
		nodes = append(nodes, b.parseOne())
	}
}

// parseOne consumes exactly one token and returns the node it roots,
// recursing into the matching close for delimiters and recognized
// commands.
func (b *builder) parseOne() *Node {
	tok := b.lx.Next()
	switch tok.Kind {
	case token.LBrace, token.LBracket:
		return b.parseGroup(tok)
	case token.MathShift:
		return b.parseMathShift(tok)
	case token.CommandName:
		return b.parseCommand(tok)
	case token.Comment:
		return &Node{Kind: Comment, Span: tok.Span, Children: []*Node{leaf(tok)}}
	case token.RBrace, token.RBracket:
		return b.errorLeaf(tok, diag.ParseUnexpectedToken, "unmatched closing delimiter")
	default:
		return leaf(tok)
	}
}

// parseGroup parses a `{ ... }` or `[ ... ]` region. open has already been
// consumed. A closing delimiter of the wrong bracket type is left
// unconsumed for an enclosing context (or parseOne, at the top level) to
// deal with; this group is reported unclosed rather than swallowing a
// token that belongs to its caller.
func (b *builder) parseGroup(open token.Token) *Node {
	wantClose := token.RBrace
	if open.Kind == token.LBracket {
		wantClose = token.RBracket
	}
	children := []*Node{leaf(open)}
	data := Data{Bracket: open.Kind == token.LBracket}

	if b.depth >= b.opts.MaxDepth {
		b.report(diag.ParseRecovery, open.Span, "maximum nesting depth exceeded")
		data.Unclosed = true
		return &Node{Kind: Group, Span: coverAll(open.Span, children), Children: children, Data: data}
	}
	b.depth++
	defer func() { b.depth-- }()

	for {
		t := b.lx.Peek()
		switch {
		case t.Kind == token.EOF:
			b.report(diag.ParseUnmatchedGroup, open.Span, "unclosed group")
			data.Unclosed = true
			return &Node{Kind: Group, Span: coverAll(open.Span, children), Children: children, Data: data}
		case t.Kind == wantClose:
			b.lx.Next()
			children = append(children, leaf(t))
			return &Node{Kind: Group, Span: open.Span.Cover(t.Span), Children: children, Data: data}
		case t.Kind == token.RBrace || t.Kind == token.RBracket:
			b.report(diag.ParseUnmatchedGroup, open.Span, "group closed by mismatched delimiter")
			data.Unclosed = true
			return &Node{Kind: Group, Span: coverAll(open.Span, children), Children: children, Data: data}
		default:
			children = append(children, b.parseOne())
		}
	}
}

// parseBraceArgument parses a single mandatory `{ ... }` argument
// immediately following the current position, if present, and returns the
// Group node alongside its trimmed inner text. Returns (nil, "") if the
// next token isn't an opening brace.
func (b *builder) parseBraceArgument() (*Node, string) {
	t := b.lx.Peek()
	if t.Kind != token.LBrace {
		return nil, ""
	}
	b.lx.Next()
	grp := b.parseGroup(t)
	return grp, innerText(grp)
}

func innerText(g *Node) string {
	if g == nil || len(g.Children) == 0 {
		return ""
	}
	start, end := 1, len(g.Children)
	if !g.Data.Unclosed {
		end--
	}
	if start >= end {
		return ""
	}
	var sb strings.Builder
	for _, c := range g.Children[start:end] {
		sb.WriteString(Text(c))
	}
	return strings.TrimSpace(sb.String())
}

// parseEnvironment parses \begin{name} ... \end{name}. beginTok has
// already been consumed. The closing \end is recognized by the literal
// command name alone; a differing argument still closes the environment
// but is flagged Mismatched rather than left open, embedding the mismatch
// and continuing rather than aborting the environment.
func (b *builder) parseEnvironment(beginTok token.Token) *Node {
	children := []*Node{leaf(beginTok)}
	nameNode, name := b.parseBraceArgument()
	if nameNode != nil {
		children = append(children, nameNode)
	} else {
		b.report(diag.ParseUnexpectedToken, beginTok.Span, "\\begin expects a {name} argument")
	}

	if b.depth >= b.opts.MaxDepth {
		b.report(diag.ParseRecovery, beginTok.Span, "maximum nesting depth exceeded")
		return &Node{Kind: Environment, Span: coverAll(beginTok.Span, children), Children: children, Data: Data{Name: name, Unclosed: true}}
	}
	b.depth++
	defer func() { b.depth-- }()

	for {
		t := b.lx.Peek()
		if t.Kind == token.EOF {
			b.report(diag.ParseUnmatchedEnv, beginTok.Span, fmt.Sprintf("unclosed \\begin{%s}", name))
			return &Node{Kind: Environment, Span: coverAll(beginTok.Span, children), Children: children, Data: Data{Name: name, Unclosed: true}}
		}
		if t.Kind == token.CommandName && t.Text == "\\end" {
			b.lx.Next()
			endChildren := []*Node{leaf(t)}
			endNameNode, endName := b.parseBraceArgument()
			if endNameNode != nil {
				endChildren = append(endChildren, endNameNode)
			}
			children = append(children, endChildren...)
			mismatched := endName != name
			if mismatched {
				b.report(diag.ParseUnmatchedEnv, t.Span, fmt.Sprintf("\\end{%s} does not match \\begin{%s}", endName, name))
			}
			return &Node{Kind: Environment, Span: coverAll(beginTok.Span, children), Children: children, Data: Data{Name: name, Mismatched: mismatched}}
		}
		children = append(children, b.parseOne())
	}
}

// parseMathShift parses `$ ... $` or `$$ ... $$`; the close is whichever
// MathShift token carries the same literal text as open.
func (b *builder) parseMathShift(open token.Token) *Node {
	return b.parseMathUntil(open, func(t token.Token) bool {
		return t.Kind == token.MathShift && t.Text == open.Text
	})
}

// parseMathBracket parses `\[ ... \]`.
func (b *builder) parseMathBracket(open token.Token) *Node {
	return b.parseMathUntil(open, func(t token.Token) bool {
		return t.Kind == token.CommandName && t.Text == "\\]"
	})
}

func (b *builder) parseMathUntil(open token.Token, isClose func(token.Token) bool) *Node {
	children := []*Node{leaf(open)}

	if b.depth >= b.opts.MaxDepth {
		b.report(diag.ParseRecovery, open.Span, "maximum nesting depth exceeded")
		return &Node{Kind: Math, Span: coverAll(open.Span, children), Children: children, Data: Data{Unclosed: true}}
	}
	b.depth++
	defer func() { b.depth-- }()

	for {
		t := b.lx.Peek()
		if t.Kind == token.EOF {
			b.report(diag.ParseUnmatchedMath, open.Span, "unclosed math shift")
			return &Node{Kind: Math, Span: coverAll(open.Span, children), Children: children, Data: Data{Unclosed: true}}
		}
		if isClose(t) {
			b.lx.Next()
			children = append(children, leaf(t))
			return &Node{Kind: Math, Span: open.Span.Cover(t.Span), Children: children}
		}
		children = append(children, b.parseOne())
	}
}

// parseInclude parses \input{P}, \include{P}, \subfile{P}, or
// \includegraphics{P}. Resolution of P against the workspace is
// internal/index's job; the CST only records the raw argument text.
func (b *builder) parseInclude(cmdTok token.Token, name string) *Node {
	children := []*Node{leaf(cmdTok)}
	argNode, rawArg := b.parseBraceArgument()
	if argNode != nil {
		children = append(children, argNode)
	} else {
		b.report(diag.ParseUnexpectedToken, cmdTok.Span, fmt.Sprintf("\\%s expects a {...} argument", name))
	}
	return &Node{Kind: Include, Span: coverAll(cmdTok.Span, children), Children: children, Data: Data{Name: name, RawArg: rawArg}}
}

func (b *builder) parseCommand(tok token.Token) *Node {
	name := strings.TrimPrefix(tok.Text, "\\")
	switch {
	case tok.Text == "\\begin":
		return b.parseEnvironment(tok)
	case tok.Text == "\\[":
		return b.parseMathBracket(tok)
	case includeCommands[name]:
		return b.parseInclude(tok, name)
	default:
		return &Node{Kind: Command, Span: tok.Span, Children: []*Node{leaf(tok)}, Data: Data{Name: name}}
	}
}

func (b *builder) errorLeaf(tok token.Token, code diag.Code, msg string) *Node {
	b.report(code, tok.Span, msg)
	return &Node{Kind: ErrorNode, Span: tok.Span, Children: []*Node{leaf(tok)}, Data: Data{ErrorCode: code.ID()}}
}

func (b *builder) report(code diag.Code, sp source.Span, msg string) {
	if b.opts.Reporter == nil {
		return
	}
	if b.opts.MaxErrors > 0 && b.errCount >= b.opts.MaxErrors {
		return
	}
	b.errCount++
	b.opts.Reporter.Report(code, diag.SevError, sp, msg, nil, nil)
}
