package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ftex/internal/index"
	"ftex/internal/source"
)

var indexCmd = &cobra.Command{
	Use:   "index <files...>",
	Short: "Build the workspace symbol index and print its contents",
	Long: `index opens the given source files into a workspace, extracts their
labels, references, citations, commands, environments, and includes, and
prints the resulting symbol table.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

// symbolJSON is index's JSON record shape; internal/diagfmt only formats
// diag.Diagnostic, so symbols get their own small, local JSON mapping here.
type symbolJSON struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
}

func init() {
	indexCmd.Flags().String("query", "", "only show symbols whose name contains this substring")
	indexCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	query, err := cmd.Flags().GetString("query")
	if err != nil {
		return fmt.Errorf("failed to get query flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	ws, err := openWorkspace(args)
	if err != nil {
		return err
	}

	symbols := ws.Index().WorkspaceSymbols(query)
	fs := ws.FileSet()

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(symbolRecords(symbols, fs)); err != nil {
			return fmt.Errorf("failed to write symbol output: %w", err)
		}
	case "pretty":
		printSymbols(cmd, symbols, fs, resolveColor(colorMode, os.Stdout))
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	return nil
}

func symbolRecords(symbols []index.Symbol, fs *source.FileSet) []symbolJSON {
	records := make([]symbolJSON, 0, len(symbols))
	for _, s := range symbols {
		path := "<unknown>"
		if fs.Has(s.File) {
			path = fs.Get(s.File).Path
		}
		records = append(records, symbolJSON{
			Kind:      s.Kind.String(),
			Name:      s.Name,
			File:      path,
			StartByte: s.Span.Start,
			EndByte:   s.Span.End,
		})
	}
	return records
}

func printSymbols(cmd *cobra.Command, symbols []index.Symbol, fs *source.FileSet, useColor bool) {
	kindColor := color.New(color.FgMagenta)
	pathColor := color.New(color.FgWhite, color.Bold)
	prev := color.NoColor
	defer func() { color.NoColor = prev }()
	color.NoColor = !useColor

	out := cmd.OutOrStdout()
	for _, s := range symbols {
		path := "<unknown>"
		if fs.Has(s.File) {
			path = fs.Get(s.File).Path
		}
		fmt.Fprintf(out, "%s %s %s [%d:%d]\n", //nolint:errcheck
			kindColor.Sprint(s.Kind.String()),
			s.Name,
			pathColor.Sprint(path),
			s.Span.Start,
			s.Span.End,
		)
	}
	fmt.Fprintf(out, "%d symbol(s)\n", len(symbols)) //nolint:errcheck
}
