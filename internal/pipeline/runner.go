// Package pipeline orchestrates the concurrent fast5 to pod5 conversion:
// input discovery, worker dispatch, credit-based backpressure, output
// routing, progress accounting, and fault containment.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sashajenner/pod5-file-format/internal/config"
	"github.com/sashajenner/pod5-file-format/internal/logging"
)

// receiveTimeout bounds every supervisor wait so progress reporting stays
// interleaved even when no message is ready.
const receiveTimeout = 500 * time.Millisecond

// RunStats aggregates the final counters of a conversion run.
type RunStats struct {
	Files          int
	FilesEnded     int
	ReadsExpected  int
	ReadsProcessed int
	SampleCount    int64
	Elapsed        time.Duration
}

// SignalBytes is the raw size of all converted signal, at two bytes per
// sample.
func (s RunStats) SignalBytes() int64 {
	return s.SampleCount * bytesPerSample
}

// Run converts everything under cfg.Inputs into pod5 artifact(s) under
// cfg.OutputDir. It is the single consumer of all worker messages: workers
// emit converted batches, Run routes them to writers, accounts progress,
// and replenishes backpressure credits. On a fatal error all workers are
// cancelled, every open writer is still closed, and the error is returned.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	var stats RunStats

	files, err := Discover(cfg.Inputs, cfg.Recursive)
	if err != nil {
		return stats, err
	}
	if len(files) == 0 {
		return stats, errors.New("found no fast5 inputs to process")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return stats, fmt.Errorf("create output directory: %w", err)
	}

	workers := cfg.Processes
	if workers > len(files) {
		workers = len(files)
	}

	handler := NewOutputHandler(cfg.OutputDir, cfg.OneToOne, cfg.OutputSplit, cfg.ForceOverwrite)
	// Every writer opened gets exactly one close, on every exit path
	// including panics. CloseAll is idempotent, so the success path can
	// also close explicitly and surface the error.
	defer handler.CloseAll()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	creds := newCredits(workers * creditsPerWorker)
	data := make(chan Message, workers*creditsPerWorker)

	log.Info("Converting %d fast5 files", len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	for _, shard := range partition(files, workers) {
		shard := shard
		w := &worker{
			files:           shard,
			readChunkSize:   cfg.ReadChunkSize,
			signalChunkSize: cfg.SignalChunkSize,
			credits:         creds,
			out:             data,
			log:             log,
		}
		group.Go(func() error {
			w.run(groupCtx)
			return nil
		})
	}

	status := NewStatusMonitor(log, len(files), time.Duration(cfg.StatusIntervalSec)*time.Second)

	// Running: drain the data channel until every dispatched file has ended.
	runErr := supervise(ctx, data, creds, handler, status)
	if runErr != nil {
		// Aborting: tear workers down forcefully; no cooperative drain.
		cancel()
		_ = group.Wait()
		_ = handler.CloseAll()
		return snapshot(status, len(files)), runErr
	}

	// Draining: all files ended, workers have nothing left to send.
	if err := group.Wait(); err != nil {
		return snapshot(status, len(files)), err
	}

	status.Report(true)
	status.VerifyComplete()

	if err := handler.CloseAll(); err != nil {
		return snapshot(status, len(files)), err
	}

	log.Success("Conversion complete: %d samples", status.SampleCount())
	return snapshot(status, len(files)), nil
}

// supervise is the consumer loop. Exactly one credit is released per batch
// handled, after the batch has been fully written.
func supervise(ctx context.Context, data <-chan Message, creds *credits, handler *OutputHandler, status *StatusMonitor) error {
	ticker := time.NewTicker(receiveTimeout)
	defer ticker.Stop()

	for status.Running() {
		status.Report(false)

		select {
		case msg := <-data:
			if err := handle(msg, creds, handler, status); err != nil {
				return err
			}
		case <-ticker.C:
			// Wake to report progress.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func handle(msg Message, creds *credits, handler *OutputHandler, status *StatusMonitor) error {
	switch m := msg.(type) {
	case Batch:
		if len(m.Reads) > 0 {
			w, err := handler.Writer(m.File)
			if err != nil {
				return err
			}
			if err := w.Append(m.Reads); err != nil {
				return err
			}
		}
		status.Apply(m)
		// The batch is fully handled; let its producer move on.
		creds.Release()

	case StartFile:
		status.Apply(m)

	case EndFile:
		if err := handler.InputComplete(m.File); err != nil {
			return err
		}
		status.Apply(m)
	}
	return nil
}

// partition distributes files round-robin over n shards, preserving order
// inside each shard. Every file is assigned to exactly one shard.
func partition(files []string, n int) [][]string {
	shards := make([][]string, n)
	for i, f := range files {
		shards[i%n] = append(shards[i%n], f)
	}
	return shards
}

func snapshot(status *StatusMonitor, fileCount int) RunStats {
	return RunStats{
		Files:          fileCount,
		FilesEnded:     status.FilesEnded(),
		ReadsExpected:  status.ReadsExpected(),
		ReadsProcessed: status.ReadsProcessed(),
		SampleCount:    status.SampleCount(),
		Elapsed:        status.Elapsed(),
	}
}
