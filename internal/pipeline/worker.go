package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/sashajenner/pod5-file-format/internal/convert"
	"github.com/sashajenner/pod5-file-format/internal/fast5"
	"github.com/sashajenner/pod5-file-format/internal/logging"
	"github.com/sashajenner/pod5-file-format/internal/pod5"
)

// worker converts one shard of input files strictly in shard order. Workers
// own nothing past emission: once a batch is sent, the supervisor owns its
// reads. The only shared state a worker touches is the credit and data
// channels.
type worker struct {
	files           []string
	readChunkSize   int
	signalChunkSize int
	credits         *credits
	out             chan<- Message
	log             *logging.Logger
}

// run processes the shard. A failed or panicking file is contained at its
// own boundary: it still gets an EndFile with whatever count succeeded, and
// the worker moves on to the next file.
func (w *worker) run(ctx context.Context) {
	for _, path := range w.files {
		if ctx.Err() != nil {
			return
		}
		emitted := w.convertFile(ctx, path)
		if ctx.Err() != nil {
			// Aborting: the supervisor is gone, in-flight state is lost.
			return
		}
		w.send(ctx, EndFile{File: path, ReadsEmitted: emitted})
	}
}

// convertFile opens one file and emits StartFile plus its batches, returning
// how many reads were emitted. A read that fails to convert is skipped; a
// failure on the file itself (open error, truncated stream, panic) ends the
// file with the partial count.
func (w *worker) convertFile(ctx context.Context, path string) (emitted int) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Panic converting %s: %v", path, r)
		}
	}()

	f, err := fast5.Open(path)
	if err != nil {
		w.log.Error("Error in file %s: %v", path, err)
		return 0
	}
	defer f.Close()

	if !w.send(ctx, StartFile{File: path, ReadCount: f.ReadCount()}) {
		return 0
	}

	// Shared acquisition metadata is built at most once per session for
	// this file pass; the cache dies with the file.
	cache := make(convert.RunInfoCache)

	for {
		raws, err := w.nextChunk(f)
		if err != nil {
			w.log.Error("Error in file %s: %v", path, err)
			return emitted
		}
		if len(raws) == 0 {
			return emitted
		}

		// Let the supervisor throttle us back if we are too far ahead.
		if err := w.credits.Acquire(ctx); err != nil {
			return emitted
		}

		reads := make([]*pod5.CompressedRead, 0, len(raws))
		for _, raw := range raws {
			read, err := convert.Read(raw, cache, w.signalChunkSize)
			if err != nil {
				// One bad read never aborts its file.
				w.log.Debug("Skipping read in %s: %v", path, err)
				continue
			}
			reads = append(reads, read)
		}

		emitted += len(reads)
		if !w.send(ctx, Batch{File: path, Reads: reads}) {
			return emitted
		}
	}
}

// nextChunk reads up to readChunkSize raw reads from the file. An empty
// result means the file is exhausted.
func (w *worker) nextChunk(f *fast5.File) ([]*fast5.RawRead, error) {
	raws := make([]*fast5.RawRead, 0, w.readChunkSize)
	for len(raws) < w.readChunkSize {
		raw, err := f.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return raws, nil
			}
			return raws, err
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// send delivers a message unless the run is being torn down.
func (w *worker) send(ctx context.Context, msg Message) bool {
	select {
	case w.out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}
