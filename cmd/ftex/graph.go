package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ftex/internal/includegraph"
	"ftex/internal/source"
)

var graphCmd = &cobra.Command{
	Use:   "graph <files...>",
	Short: "Print the resolved include graph and any cycles",
	Long: `graph opens the given source files into a workspace, resolves every
\input/\include/\subfile/\includegraphics edge, and prints the resulting
include graph, flagging any cycle it detects.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGraph,
}

type edgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
	Raw  string `json:"raw_path"`
}

type graphOutput struct {
	Edges  []edgeJSON `json:"edges"`
	Cycles [][]string `json:"cycles,omitempty"`
}

func init() {
	graphCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runGraph(cmd *cobra.Command, args []string) error {
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

	g := ws.Graph()
	fs := ws.FileSet()
	cycles := includegraph.DetectCycles(g)

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(buildGraphOutput(g, fs, cycles)); err != nil {
			return fmt.Errorf("failed to write graph output: %w", err)
		}
	case "pretty":
		printGraph(cmd, g, fs, cycles, resolveColor(colorMode, os.Stdout))
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	if len(cycles) > 0 {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errParseFailed
	}
	return nil
}

func buildGraphOutput(g *includegraph.Graph, fs *source.FileSet, cycles [][]source.FileID) graphOutput {
	var out graphOutput
	for _, node := range g.Nodes() {
		for _, e := range g.EdgesFrom(node) {
			out.Edges = append(out.Edges, edgeJSON{
				From: pathOf(fs, e.From),
				To:   pathOf(fs, e.To),
				Raw:  e.RawPath,
			})
		}
	}
	for _, cycle := range cycles {
		names := make([]string, len(cycle))
		for i, f := range cycle {
			names[i] = pathOf(fs, f)
		}
		out.Cycles = append(out.Cycles, names)
	}
	return out
}

func printGraph(cmd *cobra.Command, g *includegraph.Graph, fs *source.FileSet, cycles [][]source.FileID, useColor bool) {
	pathColor := color.New(color.FgWhite, color.Bold)
	cycleColor := color.New(color.FgRed, color.Bold)
	prev := color.NoColor
	defer func() { color.NoColor = prev }()
	color.NoColor = !useColor

	out := cmd.OutOrStdout()
	for _, node := range g.Nodes() {
		edges := g.EdgesFrom(node)
		if len(edges) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s\n", pathColor.Sprint(pathOf(fs, node))) //nolint:errcheck
		for _, e := range edges {
			fmt.Fprintf(out, "  -> %s (%q)\n", pathOf(fs, e.To), e.RawPath) //nolint:errcheck
		}
	}

	if len(cycles) == 0 {
		fmt.Fprintln(out, "no cycles") //nolint:errcheck
		return
	}
	for _, cycle := range cycles {
		names := make([]string, len(cycle))
		for i, f := range cycle {
			names[i] = pathOf(fs, f)
		}
		fmt.Fprintf(out, "%s: %s\n", cycleColor.Sprint("cycle"), strings.Join(names, " -> ")) //nolint:errcheck
	}
}

func pathOf(fs *source.FileSet, id source.FileID) string {
	if fs.Has(id) {
		return fs.Get(id).Path
	}
	return fmt.Sprintf("<file#%d>", id)
}
