package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"ftex/internal/diag"
)

// errParseFailed signals a non-zero exit without a redundant error message;
// RunE callers set SilenceUsage/SilenceErrors before returning it, so
// cobra's default "Error: ..." banner doesn't duplicate what the
// diagnostics output already printed.
var errParseFailed = errors.New("")

// readAll drains r fully into memory.
func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

// resolveColor turns the --color flag (auto|on|off) into a concrete bool,
// falling back to terminal detection for "auto".
func resolveColor(mode string, f *os.File) bool {
	switch strings.ToLower(mode) {
	case "on", "always", "true":
		return true
	case "off", "never", "false":
		return false
	default:
		return isTerminal(f)
	}
}

// hasErrorSeverity reports whether any diagnostic in diags is SevError,
// backing the 0/1 exit code contract.
func hasErrorSeverity(diags []*diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
}

// bagOf collects a flat diagnostic slice into a *diag.Bag, honoring the
// --max-diagnostics cap (0 or negative means unlimited), for handing to
// diagfmt.Pretty which expects a Bag rather than a slice.
func bagOf(diags []*diag.Diagnostic, max int) *diag.Bag {
	capacity := len(diags) + 1
	if max > 0 {
		capacity = max
	}
	bag := diag.NewBag(capacity)
	for _, d := range diags {
		if !bag.Add(d) {
			break
		}
	}
	bag.Sort()
	return bag
}
