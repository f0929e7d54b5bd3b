// Package ftxconfig loads ftex.toml, the project-level configuration file
// for confidence thresholds, decay factors, wrap-join behavior, and
// filesystem watch tuning: a BurntSushi/toml-decoded struct with an
// explicit meta.IsDefined check per required section, and FindConfigFile
// searching upward from a start directory for the nearest ftex.toml.
package ftxconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"ftex/internal/cst"
	"ftex/internal/logevent"
	"ftex/internal/loglex"
	"ftex/internal/logpipeline"
	"ftex/internal/reconstruct"
)

// ConfigFileName is the project configuration file's conventional name.
const ConfigFileName = "ftex.toml"

// ErrPackageSectionMissing indicates [package] is absent from the config.
var ErrPackageSectionMissing = errors.New("missing [package]")

// Config is the fully decoded, defaulted ftex.toml.
type Config struct {
	Package    PackageConfig    `toml:"package"`
	Confidence ConfidenceConfig `toml:"confidence"`
	Reflow     ReflowConfig     `toml:"reflow"`
	Watch      WatchConfig      `toml:"watch"`
	Include    IncludeConfig    `toml:"include"`
}

// PackageConfig holds the project's [package] section.
type PackageConfig struct {
	Name string `toml:"name"`
}

// ConfidenceConfig configures the log reconstruction/event-machine
// confidence model: decay factors, thresholds, and excerpt sizing.
type ConfidenceConfig struct {
	AmbiguityDecay        float64 `toml:"ambiguity_decay"`
	AmbiguityThreshold    float64 `toml:"ambiguity_threshold"`
	NoStackPenalty        float64 `toml:"no_stack_penalty"`
	MissingLineRefPenalty float64 `toml:"missing_line_ref_penalty"`
	MaxExcerptBytes       int     `toml:"max_excerpt_bytes"`
}

// ReflowConfig configures log line-wrap rejoining.
type ReflowConfig struct {
	WrapColumn      int      `toml:"wrap_column"`
	JoinCeiling     int      `toml:"join_ceiling"`
	WarningPrefixes []string `toml:"warning_prefixes"`
}

// WatchConfig configures the filesystem-debounce window used by
// internal/invalidator.
type WatchConfig struct {
	DebounceMillis int `toml:"debounce_millis"`
}

// Debounce returns the configured debounce window as a time.Duration.
func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMillis <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(w.DebounceMillis) * time.Millisecond
}

// IncludeConfig configures internal/includegraph's path-resolution
// precedence: extra workspace roots and a TeX-style search path, tried
// after the including file's own directory.
type IncludeConfig struct {
	Roots      []string `toml:"roots"`
	SearchPath []string `toml:"search_path"`
	MaxDepth   int      `toml:"max_depth"`
}

// Default returns the configuration used absent an ftex.toml, built from
// each package's own DefaultConfig/default constants.
func Default() Config {
	ev := logevent.DefaultConfig()
	rc := reconstruct.DefaultConfig()
	prefixes := make([]string, 0, len(loglex.DefaultWarningPrefixes))
	for _, p := range loglex.DefaultWarningPrefixes {
		prefixes = append(prefixes, p.Name)
	}
	return Config{
		Confidence: ConfidenceConfig{
			AmbiguityDecay:        ev.AmbiguityDecay,
			AmbiguityThreshold:    ev.AmbiguityThreshold,
			NoStackPenalty:        rc.NoStackPenalty,
			MissingLineRefPenalty: rc.MissingLineRefPenalty,
			MaxExcerptBytes:       rc.MaxExcerptBytes,
		},
		Reflow: ReflowConfig{
			WrapColumn:      loglex.DefaultWrapColumn,
			JoinCeiling:     loglex.DefaultJoinCeiling,
			WarningPrefixes: prefixes,
		},
		Watch: WatchConfig{DebounceMillis: 300},
	}
}

// FindConfigFile searches startDir and its ancestors for ftex.toml,
// stopping at the first directory where it's found.
func FindConfigFile(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses path into a Config, starting from Default() so any field the
// file omits keeps its built-in default, then validates [package].name is
// present.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	return cfg, nil
}

// LoadOrDefault loads the nearest ftex.toml FindConfigFile finds from
// startDir upward, otherwise returns Default(). A discovered-but-unparseable file is still an error: silently
// falling back would hide a typo in a committed config.
func LoadOrDefault(startDir string) (Config, error) {
	path, ok, err := FindConfigFile(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// EventConfig projects Confidence into a logevent.Config.
func (c Config) EventConfig() logevent.Config {
	ev := logevent.DefaultConfig()
	ev.AmbiguityDecay = c.Confidence.AmbiguityDecay
	ev.AmbiguityThreshold = c.Confidence.AmbiguityThreshold
	return ev
}

// CSTOptions projects Include.MaxDepth into a cst.Options. Reporter is left
// nil; callers attach their own diag.Reporter per build.
func (c Config) CSTOptions() cst.Options {
	return cst.Options{MaxDepth: c.Include.MaxDepth}
}

// ReconstructConfig projects Confidence into a reconstruct.Config.
func (c Config) ReconstructConfig() reconstruct.Config {
	return reconstruct.Config{
		NoStackPenalty:        c.Confidence.NoStackPenalty,
		MissingLineRefPenalty: c.Confidence.MissingLineRefPenalty,
		MaxExcerptBytes:       c.Confidence.MaxExcerptBytes,
	}
}

// PipelineOptions projects Reflow and the confidence sections into
// logpipeline.Options, resolving configured warning-prefix names against
// loglex.DefaultWarningPrefixes (unknown names are dropped rather than
// rejected, since a typo'd prefix name should degrade to "no custom
// prefixes" rather than fail the whole config load).
func (c Config) PipelineOptions() logpipeline.Options {
	named := make(map[string]loglex.WarningPrefix, len(loglex.DefaultWarningPrefixes))
	for _, p := range loglex.DefaultWarningPrefixes {
		named[p.Name] = p
	}
	var prefixes []loglex.WarningPrefix
	for _, name := range c.Reflow.WarningPrefixes {
		if p, ok := named[name]; ok {
			prefixes = append(prefixes, p)
		}
	}
	if prefixes == nil {
		prefixes = loglex.DefaultWarningPrefixes
	}
	return logpipeline.Options{
		WrapColumn:      c.Reflow.WrapColumn,
		JoinCeiling:     c.Reflow.JoinCeiling,
		WarningPrefixes: prefixes,
		Event:           c.EventConfig(),
		Reconstruct:     c.ReconstructConfig(),
	}
}
