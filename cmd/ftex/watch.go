package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"fortio.org/safecast"

	"ftex/internal/ftxconfig"
	"ftex/internal/logpipeline"
	"ftex/internal/source"
	"ftex/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <log>",
	Short: "Tail a growing log transcript and reconstruct events incrementally",
	Long: `watch polls <log> for newly appended bytes and feeds each chunk through
the same incremental reconstruction pipeline as parse, rendering a live
feed until the file stops growing or the command is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

const watchPollInterval = 250 * time.Millisecond

func init() {
	watchCmd.Flags().String("engine", "pdflatex", "engine name recorded in diagnostic provenance")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	engine, err := cmd.Flags().GetString("engine")
	if err != nil {
		return fmt.Errorf("failed to get engine flag: %w", err)
	}

	cfg, err := ftxconfig.LoadOrDefault(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	updates := make(chan ui.FeedUpdate, 64)
	doneCh := make(chan error, 1)

	ctx := cmd.Context()
	go func() {
		doneCh <- tailLog(ctx, path, engine, cfg.PipelineOptions(), updates)
		close(updates)
	}()

	model := ui.NewFeedModel(path, updates)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	tailErr := <-doneCh
	if uiErr != nil {
		return uiErr
	}
	return tailErr
}

// tailLog polls path for growth, feeding every newly observed chunk through
// a logpipeline.Pipeline and posting a ui.FeedUpdate per poll. There is no
// filesystem-watcher dependency in this stack, so growth is observed with
// os.Stat rather than an inotify/kqueue subscription — acceptable here since
// engine logs are written by a single slow-moving compiler process, not a
// high-frequency stream.
func tailLog(ctx context.Context, path, engine string, opts logpipeline.Options, updates chan<- ui.FeedUpdate) error {
	pl := logpipeline.New(source.FileID(0), engine, opts)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	var (
		offset       int64
		eventsSent   int
		lastModTime  time.Time
		stableStreak int
	)

	readNewChunk := func() ([]byte, error) {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() <= offset {
			if info.ModTime() == lastModTime {
				stableStreak++
			}
			lastModTime = info.ModTime()
			return nil, nil
		}
		stableStreak = 0
		lastModTime = info.ModTime()

		buf := make([]byte, info.Size()-offset)
		n, err := f.ReadAt(buf, offset)
		if err != nil && n == 0 {
			return nil, err
		}
		offset += int64(n)
		return buf[:n], nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			chunk, err := readNewChunk()
			update := ui.FeedUpdate{Err: err}
			if err == nil && len(chunk) > 0 {
				diags := pl.Append(chunk)
				events := pl.Events()
				update.NewEvents = events[eventsSent:]
				eventsSent = len(events)
				update.Diagnostics = diags
			}
			bytesTotal, convErr := safecast.Conv[uint32](offset)
			if convErr != nil {
				bytesTotal = ^uint32(0)
			}
			update.BytesTotal = bytesTotal
			updates <- update
			if err != nil {
				return err
			}
			// A quiet file for several consecutive polls past EOF, with no
			// process still appending, is treated as a finished build.
			if stableStreak > 8 {
				return nil
			}
		}
	}
}
