package engineio

import (
	"context"
	"strings"
	"testing"
	"time"

	"ftex/internal/logbuf"
	"ftex/internal/source"
)

func TestRun_CapturesStdout(t *testing.T) {
	buf := logbuf.New(source.FileID(1))
	res, err := Run(context.Background(), buf, Spec{
		Engine: "printf",
		Args:   []string{"hello-engineio"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := string(buf.Slice(res.Span)); !strings.Contains(got, "hello-engineio") {
		t.Errorf("captured output = %q, want it to contain %q", got, "hello-engineio")
	}
	if res.TimedOut || res.Cancelled {
		t.Errorf("Result = %+v, want neither TimedOut nor Cancelled", res)
	}
}

func TestRun_NonZeroExitIsNotATransportError(t *testing.T) {
	buf := logbuf.New(source.FileID(1))
	res, err := Run(context.Background(), buf, Spec{Engine: "false"})
	if err != nil {
		t.Fatalf("Run returned a transport error for a plain nonzero exit: %v", err)
	}
	if res.ExitCode == 0 {
		t.Errorf("ExitCode = 0, want nonzero")
	}
}

func TestRun_TimeoutKillsTheProcess(t *testing.T) {
	buf := logbuf.New(source.FileID(1))
	start := time.Now()
	res, err := Run(context.Background(), buf, Spec{
		Engine:  "sleep",
		Args:    []string{"30"},
		Timeout: 100 * time.Millisecond,
	})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.TimedOut {
		t.Errorf("Result.TimedOut = false, want true")
	}
	if elapsed > 5*time.Second {
		t.Errorf("Run took %v, want it to return promptly after the timeout", elapsed)
	}
}

func TestRun_CancelledContextStopsTheProcess(t *testing.T) {
	buf := logbuf.New(source.FileID(1))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res, err := Run(ctx, buf, Spec{Engine: "sleep", Args: []string{"30"}})
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Cancelled {
		t.Errorf("Result.Cancelled = false, want true")
	}
	if elapsed > 5*time.Second {
		t.Errorf("Run took %v, want it to return promptly after cancellation", elapsed)
	}
}

func TestRun_MissingEngineReturnsAnError(t *testing.T) {
	buf := logbuf.New(source.FileID(1))
	if _, err := Run(context.Background(), buf, Spec{Engine: "this-engine-does-not-exist-ftex"}); err == nil {
		t.Fatal("expected an error for a nonexistent engine binary")
	}
}
