package ftxlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNew_DefaultsToInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "")
	if l.GetLevel() != log.InfoLevel {
		t.Errorf("GetLevel() = %v, want InfoLevel", l.GetLevel())
	}
}

func TestParseLevel_RecognizesEachName(t *testing.T) {
	cases := map[string]log.Level{
		"debug":   log.DebugLevel,
		"DEBUG":   log.DebugLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"info":    log.InfoLevel,
		"bogus":   log.InfoLevel,
	}
	for name, want := range cases {
		if got := parseLevel(name); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNew_WritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info")
	l.Info("hello", "key", "value")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("output = %q, want it to contain %q", buf.String(), "hello")
	}
}

func TestL_LazilyDefaultsWhenInitNotCalled(t *testing.T) {
	global = nil
	l := L()
	if l == nil {
		t.Fatal("L() returned nil")
	}
	if l.GetLevel() != log.InfoLevel {
		t.Errorf("GetLevel() = %v, want InfoLevel", l.GetLevel())
	}
}

func TestInit_InstallsConfiguredLevel(t *testing.T) {
	Init("debug")
	if L().GetLevel() != log.DebugLevel {
		t.Errorf("GetLevel() after Init(\"debug\") = %v, want DebugLevel", L().GetLevel())
	}
	global = nil
}
