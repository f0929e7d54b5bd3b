package lexer

import (
	"testing"

	"ftex/internal/source"
	"ftex/internal/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.tex", []byte(src), source.FileVirtual)
	file := fs.Get(id)

	lx := New(file, Options{})
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, src string, want []token.Kind) {
	t.Helper()
	toks := lexAll(t, src)
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("lexAll(%q) produced %d tokens %v, want %d %v", src, len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lexAll(%q) token %d = %s, want %s (full: %v)", src, i, got[i], want[i], got)
		}
	}
}

func TestLexer_CommandWord(t *testing.T) {
	assertKinds(t, `\section`, []token.Kind{token.CommandName, token.EOF})
}

func TestLexer_CommandSymbol(t *testing.T) {
	assertKinds(t, `\\`, []token.Kind{token.CommandName, token.EOF})
	assertKinds(t, `\%`, []token.Kind{token.CommandName, token.EOF})
}

func TestLexer_TrailingBackslashRecovers(t *testing.T) {
	toks := lexAll(t, `a\`)
	if len(toks) != 3 {
		t.Fatalf("expected Text, ErrorToken, EOF, got %v", kinds(toks))
	}
	if toks[1].Kind != token.ErrorToken {
		t.Fatalf("expected ErrorToken for trailing backslash, got %s", toks[1].Kind)
	}
}

func TestLexer_Delimiters(t *testing.T) {
	assertKinds(t, `{}[]`, []token.Kind{
		token.LBrace, token.RBrace, token.LBracket, token.RBracket, token.EOF,
	})
}

func TestLexer_MathShift(t *testing.T) {
	assertKinds(t, `$x$`, []token.Kind{
		token.MathShift, token.Text, token.MathShift, token.EOF,
	})
	assertKinds(t, `$$x$$`, []token.Kind{
		token.MathShift, token.Text, token.MathShift, token.EOF,
	})
}

func TestLexer_Comment(t *testing.T) {
	toks := lexAll(t, "a % trailing comment\nb")
	want := []token.Kind{
		token.Text, token.Whitespace, token.Comment, token.Newline, token.Text, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want kinds %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %s, want %s (full %v)", i, got[i], want[i], got)
		}
	}
	if toks[2].Text != "% trailing comment" {
		t.Fatalf("unexpected comment text %q", toks[2].Text)
	}
}

func TestLexer_LosslessConcatenation(t *testing.T) {
	src := "\\begin{document}\nHello, $world$! % note\n\\end{document}\n"
	toks := lexAll(t, src)
	var rebuilt []byte
	for _, tok := range toks {
		if tok.Kind == token.EOF {
			continue
		}
		rebuilt = append(rebuilt, tok.Text...)
	}
	if string(rebuilt) != src {
		t.Fatalf("lossless concatenation failed:\n got: %q\nwant: %q", rebuilt, src)
	}
}

func TestLexer_WhitespaceRunsDoNotCrossNewline(t *testing.T) {
	assertKinds(t, "a  \n  b", []token.Kind{
		token.Text, token.Whitespace, token.Newline, token.Whitespace, token.Text, token.EOF,
	})
}

func TestLexer_PeekAndPush(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("test.tex", []byte(`\foo`), source.FileVirtual)
	file := fs.Get(id)
	lx := New(file, Options{})

	peeked := lx.Peek()
	if peeked.Kind != token.CommandName {
		t.Fatalf("Peek() kind = %s, want CommandName", peeked.Kind)
	}
	next := lx.Next()
	if next.Span != peeked.Span {
		t.Fatalf("Next() after Peek() returned a different token")
	}
	eof := lx.Next()
	if eof.Kind != token.EOF {
		t.Fatalf("expected EOF, got %s", eof.Kind)
	}
	lx.Push(eof)
	again := lx.Next()
	if again.Kind != token.EOF {
		t.Fatalf("Push/Next round trip failed, got %s", again.Kind)
	}
}
