package config

// This file implements CLI flag parsing and help text.
// A --config YAML file (if given) is loaded before the remaining flags are
// applied, so explicit flags always win over file values.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// version is shown in --version and help; override at build time with
// -ldflags "-X .../internal/config.version=...".
var version = "0.1.0-dev"

// ParseFlags parses os.Args into cfg. On --help or --version it prints and exits.
// On error it returns non-nil (e.g. unknown flag, missing positional args).
func ParseFlags(cfg *Config) error {
	return parseFlags(cfg, os.Args[1:])
}

// parseFlags is the testable core of ParseFlags.
func parseFlags(cfg *Config, args []string) error {
	// The config file is applied between defaults and flags, so explicit
	// flags always win. It has to be discovered before Parse runs.
	if path := configFileArg(args); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return err
		}
	}

	fs := flag.NewFlagSet("pod5convert", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var extra extraFlags

	defineConversionFlags(fs, cfg)
	defineOutputFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &extra)
	defineUtilityFlags(fs, &extra)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if extra.showHelp {
		printUsage(fs)
		os.Exit(0)
	}
	if extra.showVersion {
		fmt.Fprintln(os.Stdout, "pod5convert v"+version)
		os.Exit(0)
	}

	applyExtraFlags(cfg, &extra)
	return parsePositionalArgs(fs, cfg)
}

// configFileArg scans raw args for --config (or -config), in both
// "--config path" and "--config=path" forms, stopping at "--".
func configFileArg(args []string) string {
	for i, a := range args {
		if a == "--" {
			return ""
		}
		name, value, hasValue := strings.Cut(a, "=")
		if name != "-config" && name != "--config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// extraFlags holds flags applied after Parse: color overrides and
// print-and-exit switches.
type extraFlags struct {
	forceColor  bool
	noColor     bool
	configFile  string
	showVersion bool
	showHelp    bool
}

// defineConversionFlags registers -p/--processes, -r/--recursive and the chunk sizes.
func defineConversionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Processes, "processes", cfg.Processes, "Number of conversion workers")
	fs.IntVar(&cfg.Processes, "p", cfg.Processes, "Same as --processes")
	fs.BoolVar(&cfg.Recursive, "recursive", cfg.Recursive, "Search for input files recursively")
	fs.BoolVar(&cfg.Recursive, "r", cfg.Recursive, "Same as --recursive")
	fs.IntVar(&cfg.ReadChunkSize, "read-chunk-size", cfg.ReadChunkSize, "Reads per emitted batch")
	fs.IntVar(&cfg.SignalChunkSize, "signal-chunk-size", cfg.SignalChunkSize, "Samples per compressed signal chunk")
}

// defineOutputFlags registers the output grouping, layout and overwrite flags.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.OneToOne, "output-one-to-one", cfg.OneToOne, "Write one output per input file under the output directory")
	fs.BoolVar(&cfg.OutputSplit, "output-split", cfg.OutputSplit, "Write the pod5 split format (linked signal and reads artifacts)")
	fs.BoolVar(&cfg.ForceOverwrite, "force-overwrite", cfg.ForceOverwrite, "Overwrite destination files")
	fs.BoolVar(&cfg.ForceOverwrite, "f", cfg.ForceOverwrite, "Same as --force-overwrite")
}

// defineDisplayFlags registers --color, --no-color, verbose, --status-interval, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, x *extraFlags) {
	fs.BoolVar(&x.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&x.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.IntVar(&cfg.StatusIntervalSec, "status-interval", cfg.StatusIntervalSec, "Seconds between progress lines")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --config, --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, x *extraFlags) {
	fs.StringVar(&x.configFile, "config", "", "Load defaults from a YAML config file")
	fs.BoolVar(&x.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&x.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&x.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&x.showHelp, "h", false, "Same as --help")
}

// applyExtraFlags copies override flag values into cfg.
func applyExtraFlags(cfg *Config, x *extraFlags) {
	if x.noColor {
		cfg.ColorMode = ColorNever
	} else if x.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets Inputs and OutputDir from the positional args:
// one or more inputs followed by the output directory.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if len(args) < 2 {
		return fmt.Errorf("need at least one input path and an output directory")
	}
	cfg.Inputs = args[:len(args)-1]
	cfg.OutputDir = NormalizeDirArg(args[len(args)-1])
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "pod5convert v" + version + " — convert fast5 files to the pod5 format"},
		{"", ""},
		{"  pod5convert [OPTIONS] <input>... <output_dir>", ""},
		{"", ""},
		{"Conversion", ""},
		{"  -p, --processes <n>", "Number of conversion workers (default: 10)"},
		{"  -r, --recursive", "Search for input files recursively"},
		{"  --read-chunk-size <n>", "Reads per emitted batch (default: 100)"},
		{"  --signal-chunk-size <n>", "Samples per compressed signal chunk (default: 102400)"},
		{"", ""},
		{"Output", ""},
		{"  --output-one-to-one", "One output per input file (default: single combined output)"},
		{"  --output-split", "Split layout: linked signal and reads artifacts"},
		{"  -f, --force-overwrite", "Overwrite destination files"},
		{"", ""},
		{"Display", ""},
		{"  --status-interval <sec>", "Seconds between progress lines (default: 15)"},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  --config <path>", "Load defaults from a YAML config file"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
