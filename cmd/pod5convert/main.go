// Command pod5convert converts fast5 files into the pod5 format.
// It parses flags, validates config and paths, and runs the concurrent
// conversion pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sashajenner/pod5-file-format/internal/config"
	"github.com/sashajenner/pod5-file-format/internal/display"
	"github.com/sashajenner/pod5-file-format/internal/logging"
	"github.com/sashajenner/pod5-file-format/internal/pipeline"
)

func main() {
	// 1. Load config from defaults, optional config file and CLI flags;
	// exit on parse or validation error.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "pod5convert: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "pod5convert: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pod5convert: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	// 2. The output argument must be a directory (existing or creatable),
	// never an existing plain file.
	if fi, err := os.Stat(cfg.OutputDir); err == nil && !fi.IsDir() {
		log.Error("Output path points to an existing file: %s", cfg.OutputDir)
		os.Exit(1)
	}

	// 3. Run the pipeline; SIGINT/SIGTERM cancel it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := pipeline.Run(ctx, &cfg, log)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("Converted %d/%d files, %d reads, %s (%s) in %ds",
		stats.FilesEnded, stats.Files, stats.ReadsProcessed,
		display.FormatSampleCount(stats.SampleCount),
		display.FormatBytes(stats.SignalBytes()), int(stats.Elapsed.Seconds()))
}
