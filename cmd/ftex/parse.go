package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ftex/internal/diagfmt"
	"ftex/internal/ftxconfig"
	"ftex/internal/logpipeline"
	"ftex/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse <log>",
	Short: "Reconstruct events and diagnostics from a TeX engine log transcript",
	Long:  `parse reads a complete log transcript (or stdin, with "-") and prints the reconstructed events and diagnostics.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("engine", "pdflatex", "engine name recorded in diagnostic provenance")
	parseCmd.Flags().String("format", "json", "output format (json|pretty)")
	parseCmd.Flags().Bool("with-notes", false, "include diagnostic notes in pretty output (JSON output always carries the notes of log diagnostics)")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]

	engine, err := cmd.Flags().GetString("engine")
	if err != nil {
		return fmt.Errorf("failed to get engine flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	content, err := readLogInput(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := ftxconfig.LoadOrDefault(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pl := logpipeline.New(source.FileID(0), engine, cfg.PipelineOptions())
	diags := pl.Append(content)

	switch strings.ToLower(format) {
	case "json":
		output := diagfmt.BuildEventStreamOutput(pl.Events(), diags, diagfmt.JSONOpts{
			IncludeNotes: withNotes,
			Max:          maxDiagnostics,
		})
		if err := diagfmt.WriteEventStream(cmd.OutOrStdout(), output); err != nil {
			return fmt.Errorf("failed to write event stream: %w", err)
		}
	case "pretty":
		diagfmt.Pretty(cmd.OutOrStdout(), bagOf(diags, maxDiagnostics), nil, diagfmt.PrettyOpts{
			Color:     resolveColor(colorMode, os.Stdout),
			Context:   1,
			ShowNotes: withNotes,
		})
	default:
		return fmt.Errorf("unsupported format %q (must be json or pretty)", format)
	}

	if hasErrorSeverity(diags) {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errParseFailed
	}
	return nil
}

// readLogInput reads the full content of path, or stdin when path is "-".
func readLogInput(path string) ([]byte, error) {
	if path == "-" {
		return readAll(os.Stdin)
	}
	return os.ReadFile(path)
}
