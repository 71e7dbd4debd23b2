// Package config holds runtime configuration: defaults, optional YAML config
// file, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], and then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	Inputs    []string // Input files or directories.
	OutputDir string   // Output directory for pod5 artifact(s).

	// Input discovery.
	Recursive bool // Search input directories recursively.

	// Conversion settings.
	Processes       int  // Worker count. Default: 10, clamped to the file count.
	ReadChunkSize   int  // Reads per emitted batch. Default: 100.
	SignalChunkSize int  // Samples per compressed signal chunk. Default: 102400.
	OneToOne        bool // One output per input instead of a single combined output.
	OutputSplit     bool // Split layout: linked signal and reads artifacts.
	ForceOverwrite  bool // Remove pre-existing destination artifacts.

	// Display and logging.
	StatusIntervalSec int // Seconds between progress lines. Default: 15.
	Verbose           bool
	ColorMode         ColorMode // Default: "auto".
	LogFile           string    // Optional log file path.
}

// DefaultConfig returns a Config with defaults matching the upstream
// converter's behavior.
func DefaultConfig() Config {
	return Config{
		Recursive:         false,
		Processes:         10,
		ReadChunkSize:     100,
		SignalChunkSize:   102400,
		OneToOne:          false,
		OutputSplit:       false,
		ForceOverwrite:    false,
		StatusIntervalSec: 15,
		Verbose:           false,
		ColorMode:         ColorAuto,
	}
}

// Validate checks enum and numeric fields and requires input and output
// paths.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.Processes < 1 {
		return fmt.Errorf("process count must be at least 1, got %d", c.Processes)
	}
	if c.ReadChunkSize < 1 {
		return fmt.Errorf("read chunk size must be at least 1, got %d", c.ReadChunkSize)
	}
	if c.SignalChunkSize < 1 {
		return fmt.Errorf("signal chunk size must be at least 1, got %d", c.SignalChunkSize)
	}
	if c.StatusIntervalSec < 1 {
		return fmt.Errorf("status interval must be at least 1 second, got %d", c.StatusIntervalSec)
	}

	if len(c.Inputs) == 0 || c.OutputDir == "" {
		return errors.New("need at least one input path and an output directory")
	}
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}
