package cst

import (
	"testing"

	"ftex/internal/diag"
	"ftex/internal/source"
)

func build(t *testing.T, src string) *Node {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.tex", []byte(src), source.FileVirtual)
	return Build(fs.Get(id), Options{})
}

func buildWithDiags(t *testing.T, src string) (*Node, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.tex", []byte(src), source.FileVirtual)
	bag := diag.NewBag(16)
	root := Build(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return root, bag
}

// assertLossless checks the CST losslessness invariant: concatenating
// every leaf's text reproduces the document byte-exactly.
func assertLossless(t *testing.T, src string, root *Node) {
	t.Helper()
	if got := Text(root); got != src {
		t.Fatalf("Text(root) = %q, want %q", got, src)
	}
}

func TestBuild_Lossless(t *testing.T) {
	cases := []string{
		"",
		"plain text",
		`\section{Intro} some text`,
		"\\begin{itemize}\n\\item a\n\\end{itemize}",
		"$x + y$ and \\[ z \\]",
		"% a comment\ntext after",
		"\\input{chapter1}",
		"unmatched }",
		"unmatched {",
		"\\begin{foo}\nbody",
		"\\begin{foo}\n\\end{bar}",
		"$unterminated math",
		"[bracket] {brace} mismatched ] and }",
	}
	for _, src := range cases {
		root := build(t, src)
		assertLossless(t, src, root)
	}
}

func TestBuild_PlainTextHasNoStructuralNodes(t *testing.T) {
	root := build(t, "hello world")
	if len(root.Children) == 0 {
		t.Fatal("expected at least one child")
	}
	for _, c := range root.Children {
		if c.Kind != Leaf {
			t.Errorf("child kind = %v, want Leaf", c.Kind)
		}
	}
}

func TestBuild_Group(t *testing.T) {
	root := build(t, "{abc}")
	if len(root.Children) != 1 {
		t.Fatalf("got %d top-level children, want 1", len(root.Children))
	}
	g := root.Children[0]
	if g.Kind != Group || g.Data.Bracket {
		t.Fatalf("got %+v, want a brace Group", g)
	}
	if g.Data.Unclosed {
		t.Fatal("group should be closed")
	}
}

func TestBuild_BracketGroup(t *testing.T) {
	root := build(t, "[opt]")
	g := root.Children[0]
	if g.Kind != Group || !g.Data.Bracket {
		t.Fatalf("got %+v, want a bracket Group", g)
	}
}

func TestBuild_UnclosedGroupReportsAndExtendsToEOF(t *testing.T) {
	root, bag := buildWithDiags(t, "{abc")
	if len(bag.Items()) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(bag.Items()))
	}
	if bag.Items()[0].Code != diag.ParseUnmatchedGroup {
		t.Errorf("code = %v, want ParseUnmatchedGroup", bag.Items()[0].Code)
	}
	g := root.Children[0]
	if !g.Data.Unclosed {
		t.Error("expected Unclosed group")
	}
}

func TestBuild_StrayClosingDelimiterBecomesErrorNode(t *testing.T) {
	root, bag := buildWithDiags(t, "abc}")
	if len(bag.Items()) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(bag.Items()))
	}
	var foundError bool
	for _, c := range root.Children {
		if c.Kind == ErrorNode {
			foundError = true
		}
	}
	if !foundError {
		t.Errorf("expected an ErrorNode child, got %+v", root.Children)
	}
}

func TestBuild_Environment(t *testing.T) {
	root := build(t, "\\begin{itemize}\\item a\\end{itemize}")
	if len(root.Children) != 1 {
		t.Fatalf("got %d top-level children, want 1", len(root.Children))
	}
	env := root.Children[0]
	if env.Kind != Environment {
		t.Fatalf("got kind %v, want Environment", env.Kind)
	}
	if env.Data.Name != "itemize" {
		t.Errorf("Name = %q, want itemize", env.Data.Name)
	}
	if env.Data.Mismatched || env.Data.Unclosed {
		t.Errorf("expected clean environment, got %+v", env.Data)
	}
}

func TestBuild_MismatchedEnvironmentReportsButCloses(t *testing.T) {
	root, bag := buildWithDiags(t, "\\begin{foo}x\\end{bar}")
	env := root.Children[0]
	if env.Kind != Environment {
		t.Fatalf("got kind %v, want Environment", env.Kind)
	}
	if !env.Data.Mismatched {
		t.Error("expected Mismatched = true")
	}
	if env.Data.Unclosed {
		t.Error("a mismatched \\end should still close the environment")
	}
	foundMismatch := false
	for _, d := range bag.Items() {
		if d.Code == diag.ParseUnmatchedEnv {
			foundMismatch = true
		}
	}
	if !foundMismatch {
		t.Error("expected a ParseUnmatchedEnv diagnostic")
	}
}

func TestBuild_UnclosedEnvironmentExtendsToEOF(t *testing.T) {
	root, bag := buildWithDiags(t, "\\begin{foo}\nbody with no end")
	env := root.Children[0]
	if !env.Data.Unclosed {
		t.Error("expected Unclosed = true")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.ParseUnmatchedEnv {
			found = true
		}
	}
	if !found {
		t.Error("expected a ParseUnmatchedEnv diagnostic")
	}
}

func TestBuild_MathShiftAndBracket(t *testing.T) {
	root := build(t, `$x+y$ \[ z \]`)
	var mathKinds []Kind
	for _, c := range root.Children {
		if c.Kind == Math {
			mathKinds = append(mathKinds, c.Kind)
		}
	}
	if len(mathKinds) != 2 {
		t.Fatalf("got %d Math nodes, want 2 (children: %+v)", len(mathKinds), root.Children)
	}
}

func TestBuild_DoubleDollarMathShift(t *testing.T) {
	root := build(t, `$$E=mc^2$$`)
	if len(root.Children) != 1 || root.Children[0].Kind != Math {
		t.Fatalf("got %+v, want a single Math node", root.Children)
	}
}

func TestBuild_Include(t *testing.T) {
	for _, name := range []string{"input", "include", "subfile", "includegraphics"} {
		root := build(t, `\`+name+`{path/to/file}`)
		if len(root.Children) != 1 {
			t.Fatalf("%s: got %d children, want 1", name, len(root.Children))
		}
		inc := root.Children[0]
		if inc.Kind != Include {
			t.Fatalf("%s: got kind %v, want Include", name, inc.Kind)
		}
		if inc.Data.Name != name {
			t.Errorf("Name = %q, want %q", inc.Data.Name, name)
		}
		if inc.Data.RawArg != "path/to/file" {
			t.Errorf("RawArg = %q, want path/to/file", inc.Data.RawArg)
		}
	}
}

func TestBuild_PlainCommandDoesNotConsumeFollowingGroup(t *testing.T) {
	root := build(t, `\textbf{bold}`)
	if len(root.Children) != 2 {
		t.Fatalf("got %d children, want 2 (Command, Group as siblings): %+v", len(root.Children), root.Children)
	}
	if root.Children[0].Kind != Command || root.Children[0].Data.Name != "textbf" {
		t.Errorf("child 0 = %+v, want Command(textbf)", root.Children[0])
	}
	if root.Children[1].Kind != Group {
		t.Errorf("child 1 = %+v, want Group", root.Children[1])
	}
}

func TestBuild_Comment(t *testing.T) {
	root := build(t, "% note\ntext")
	if root.Children[0].Kind != Comment {
		t.Fatalf("child 0 kind = %v, want Comment", root.Children[0].Kind)
	}
}

func TestBuild_MaxDepthStopsRecursionWithoutCrashing(t *testing.T) {
	src := ""
	for i := 0; i < 20; i++ {
		src += "{"
	}
	for i := 0; i < 20; i++ {
		src += "}"
	}
	fs := source.NewFileSet()
	id := fs.Add("test.tex", []byte(src), source.FileVirtual)
	bag := diag.NewBag(16)
	root := Build(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}, MaxDepth: 3})
	assertLossless(t, src, root)
	if len(bag.Items()) == 0 {
		t.Error("expected at least one max-depth diagnostic")
	}
}

func TestWalk_VisitsEveryNode(t *testing.T) {
	root := build(t, `\section{Intro} $x$ \input{a}`)
	count := 0
	Walk(root, func(n *Node) bool {
		count++
		return true
	})
	if count < 5 {
		t.Errorf("Walk visited only %d nodes, expected more", count)
	}
}
