package includegraph

import (
	"fmt"
	"path/filepath"
	"strings"

	"ftex/internal/diag"
	"ftex/internal/index"
	"ftex/internal/source"
)

// Resolver is a last-resort path lookup, e.g. against a build system's own
// notion of project layout, consulted only after every built-in precedence
// step has failed.
type Resolver interface {
	Resolve(fromDir, rawPath string) (resolvedPath string, ok bool)
}

// ResolvePath resolves rawPath (an \input/\include/\subfile/\includegraphics
// argument) to a FileID already registered in fs, following this
// precedence: absolute path, the including file's own directory, the
// workspace roots in order, the configured search list, and finally an
// optional external resolver. A bare path missing its .tex extension is
// also tried with one appended, since LaTeX conventionally omits it.
func ResolvePath(fs *source.FileSet, fromFile source.FileID, rawPath string, roots, searchPath []string, resolver Resolver) (source.FileID, bool) {
	candidates := pathCandidates(rawPath)

	if filepath.IsAbs(rawPath) {
		if id, ok := lookupAny(fs, candidates); ok {
			return id, true
		}
	}

	fromDir := ""
	if fs.Has(fromFile) {
		fromDir = filepath.Dir(fs.Get(fromFile).Path)
		if id, ok := lookupJoined(fs, fromDir, candidates); ok {
			return id, true
		}
	}

	for _, root := range roots {
		if id, ok := lookupJoined(fs, root, candidates); ok {
			return id, true
		}
	}

	for _, dir := range searchPath {
		if id, ok := lookupJoined(fs, dir, candidates); ok {
			return id, true
		}
	}

	if resolver != nil {
		if resolved, ok := resolver.Resolve(fromDir, rawPath); ok {
			if id, ok := fs.GetLatest(resolved); ok {
				return id, true
			}
		}
	}

	return 0, false
}

func pathCandidates(rawPath string) []string {
	if rawPath == "" {
		return nil
	}
	if strings.HasSuffix(rawPath, ".tex") {
		return []string{rawPath}
	}
	return []string{rawPath, rawPath + ".tex"}
}

func lookupAny(fs *source.FileSet, candidates []string) (source.FileID, bool) {
	for _, c := range candidates {
		if id, ok := fs.GetLatest(c); ok {
			return id, true
		}
	}
	return 0, false
}

func lookupJoined(fs *source.FileSet, dir string, candidates []string) (source.FileID, bool) {
	for _, c := range candidates {
		if id, ok := fs.GetLatest(filepath.Join(dir, c)); ok {
			return id, true
		}
	}
	return 0, false
}

// AddFile resolves every include link internal/index recorded for file and
// records a Graph edge for each one that resolves; unresolved links are
// reported through reporter (diag.IncludeResolutionFailed) rather than
// silently dropped. Call this again after reindexing file to keep the
// graph in sync — it clears file's previous outgoing edges first.
func AddFile(g *Graph, fs *source.FileSet, idx *index.Index, file source.FileID, roots, searchPath []string, resolver Resolver, reporter diag.Reporter) {
	g.ClearFrom(file)
	g.AddNode(file)

	for _, link := range idx.LinksIn(file) {
		to, ok := ResolvePath(fs, file, link.Name, roots, searchPath, resolver)
		if !ok {
			if reporter != nil {
				diag.ReportError(reporter, diag.IncludeResolutionFailed, link.Span,
					fmt.Sprintf("could not resolve include path %q", link.Name)).Emit()
			}
			continue
		}
		g.AddEdge(Edge{From: file, To: to, RawPath: link.Name, Span: link.Span})
	}
}
