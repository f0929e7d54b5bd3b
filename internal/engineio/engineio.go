// Package engineio runs an external TeX engine as a child process and
// streams its output into an internal/logbuf.Buffer: plain os/exec,
// arguments as a structured slice, captured stderr for error context,
// extended with a bounded timeout, explicit working directory, and
// process-group termination so a runaway or hung engine (and anything it
// forked) can be killed as a unit on cancellation. No third-party
// process-management library is warranted here — os/exec plus
// syscall.SysProcAttr is enough; see DESIGN.md.
package engineio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"

	"ftex/internal/logbuf"
	"ftex/internal/source"
)

// Spec describes one engine invocation. Args is passed to exec.Command as
// a structured slice; it is never shell-interpolated, so engine flags or a
// filename containing shell metacharacters cannot escape into a subshell.
type Spec struct {
	Engine  string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Result reports how the run ended.
type Result struct {
	// Span covers the bytes appended to the buffer during this run.
	Span      source.Span
	ExitCode  int
	TimedOut  bool
	Cancelled bool
}

// Run starts spec.Engine in spec.Dir, in its own process group, streams its
// combined stdout+stderr into buf as it arrives, and waits for it to exit,
// for ctx to be cancelled, or for spec.Timeout to elapse (whichever comes
// first). On timeout or cancellation the engine's entire process group is
// killed, not just the direct child, since TeX engines commonly shell out
// to further helpers (e.g. bibtex, makeindex) that would otherwise be
// orphaned.
func Run(ctx context.Context, buf *logbuf.Buffer, spec Spec) (Result, error) {
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, spec.Engine, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// On ctx expiry, kill the whole group while the child is still alive.
	cmd.Cancel = func() error { killGroup(cmd); return nil }

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return Result{}, fmt.Errorf("engineio: starting %s: %w", spec.Engine, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
		pw.Close()
	}()

	start := buf.Len()
	readErr := make(chan error, 1)
	go func() {
		readErr <- copyInto(buf, pr)
	}()

	runErr := <-done
	<-readErr
	end := buf.Len()

	res := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Span:     source.Span{File: buf.FileID(), Start: start, End: end},
	}
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		res.TimedOut = true
		killGroup(cmd)
	case ctx.Err() == context.Canceled:
		res.Cancelled = true
		killGroup(cmd)
	}
	if runErr != nil && !res.TimedOut && !res.Cancelled {
		if _, ok := runErr.(*exec.ExitError); !ok {
			return res, fmt.Errorf("engineio: running %s: %w", spec.Engine, runErr)
		}
	}
	return res, nil
}

func copyInto(buf *logbuf.Buffer, r io.Reader) error {
	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Append(chunk[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// killGroup terminates the whole process group started for cmd, so helper
// processes the engine spawned (bibtex, makeindex, shell-escape children)
// die along with it rather than being left running.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		return
	}
	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}
