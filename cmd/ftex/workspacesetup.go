package main

import (
	"fmt"
	"os"
	"path/filepath"

	"ftex/internal/ftxconfig"
	"ftex/internal/workspace"
)

// openWorkspace builds a Workspace rooted at every distinct directory among
// paths, loads cfg from the current directory (or its defaults), and opens every path as
// a document, synchronously indexing each. Used by `ftex index`/`ftex
// graph`, which are one-shot batch commands over an explicit file list
// rather than a live editor session.
func openWorkspace(paths []string) (*workspace.Workspace, error) {
	cfg, err := ftxconfig.LoadOrDefault(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	roots := distinctDirs(paths)
	roots = append(roots, cfg.Include.Roots...)

	ws := workspace.New(workspace.Options{
		Roots:      roots,
		SearchPath: cfg.Include.SearchPath,
		CST:        cfg.CSTOptions(),
	})

	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		ws.OpenDocument(p, content)
	}
	return ws, nil
}

func distinctDirs(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var dirs []string
	for _, p := range paths {
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
