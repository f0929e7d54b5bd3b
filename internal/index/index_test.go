package index

import (
	"testing"

	"ftex/internal/source"
)

func TestIndex_FindDefinitionsAndReferences(t *testing.T) {
	idx := New()
	idx.SetFile(source.FileID(1), []Symbol{
		{Kind: LabelDefinition, Name: "fig:one", File: source.FileID(1)},
	})
	idx.SetFile(source.FileID(2), []Symbol{
		{Kind: LabelReference, Name: "fig:one", File: source.FileID(2)},
	})

	defs := idx.FindDefinitions("fig:one")
	if len(defs) != 1 || defs[0].File != source.FileID(1) {
		t.Fatalf("FindDefinitions = %+v, want one def in file 1", defs)
	}
	refs := idx.FindReferences("fig:one")
	if len(refs) != 1 || refs[0].File != source.FileID(2) {
		t.Fatalf("FindReferences = %+v, want one ref in file 2", refs)
	}
}

func TestIndex_WorkspaceSymbolsIsCaseInsensitiveSubstring(t *testing.T) {
	idx := New()
	idx.SetFile(source.FileID(1), []Symbol{
		{Kind: CommandDefinition, Name: "MyMacro", File: source.FileID(1)},
	})
	got := idx.WorkspaceSymbols("mymac")
	if len(got) != 1 {
		t.Fatalf("got %+v, want one match", got)
	}
}

func TestIndex_LinksIn(t *testing.T) {
	idx := New()
	idx.SetFile(source.FileID(1), []Symbol{
		{Kind: InputInclude, Name: "chapter1", File: source.FileID(1)},
		{Kind: LabelDefinition, Name: "sec:one", File: source.FileID(1)},
	})
	links := idx.LinksIn(source.FileID(1))
	if len(links) != 1 || links[0].Name != "chapter1" {
		t.Fatalf("LinksIn = %+v, want one include", links)
	}
}

func TestIndex_SetFileReplacesPreviousEntries(t *testing.T) {
	idx := New()
	idx.SetFile(source.FileID(1), []Symbol{{Kind: LabelDefinition, Name: "old", File: source.FileID(1)}})
	idx.SetFile(source.FileID(1), []Symbol{{Kind: LabelDefinition, Name: "new", File: source.FileID(1)}})

	if defs := idx.FindDefinitions("old"); len(defs) != 0 {
		t.Errorf("got %+v, want stale definition gone after re-SetFile", defs)
	}
	if defs := idx.FindDefinitions("new"); len(defs) != 1 {
		t.Errorf("got %+v, want the new definition", defs)
	}
}

func TestIndex_RemoveFileClearsEntries(t *testing.T) {
	idx := New()
	idx.SetFile(source.FileID(1), []Symbol{{Kind: LabelDefinition, Name: "sec:one", File: source.FileID(1)}})
	idx.RemoveFile(source.FileID(1))
	if defs := idx.FindDefinitions("sec:one"); len(defs) != 0 {
		t.Errorf("got %+v, want no definitions after RemoveFile", defs)
	}
}
