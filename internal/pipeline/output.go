package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashajenner/pod5-file-format/internal/fast5"
	"github.com/sashajenner/pod5-file-format/internal/pod5"
)

// OutputExt is the extension of produced artifacts.
const OutputExt = ".pod5"

// combinedFilename is the single target all inputs share outside one-to-one
// mode.
const combinedFilename = "output" + OutputExt

// OutputHandler owns every writer handle of a run. It resolves inputs to
// output targets, opens writers lazily, closes a target's writer as soon as
// its input completes in one-to-one mode, and guarantees every opened writer
// exactly one close via CloseAll.
type OutputHandler struct {
	outputRoot     string
	oneToOne       bool
	split          bool
	forceOverwrite bool

	inputToTarget map[string]string
	writers       map[string]*pod5.Writer
}

// NewOutputHandler returns a handler writing under outputRoot. With oneToOne
// each input maps to <outputRoot>/<stem>.pod5; otherwise every input shares
// a single combined target. With split each target is a linked pair of
// signal and reads artifacts.
func NewOutputHandler(outputRoot string, oneToOne, split, forceOverwrite bool) *OutputHandler {
	return &OutputHandler{
		outputRoot:     outputRoot,
		oneToOne:       oneToOne,
		split:          split,
		forceOverwrite: forceOverwrite,
		inputToTarget:  make(map[string]string),
		writers:        make(map[string]*pod5.Writer),
	}
}

// Resolve maps an input file to its output target. Memoized: the same input
// always resolves to the same target within a run.
//
// One-to-one targets are derived from the input's filename stem only, so
// two inputs from different directories sharing a stem collide on one
// target. That matches upstream behavior; no disambiguation is applied.
func (h *OutputHandler) Resolve(inputPath string) string {
	if target, ok := h.inputToTarget[inputPath]; ok {
		return target
	}

	var target string
	if h.oneToOne {
		base := filepath.Base(inputPath)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if strings.EqualFold(filepath.Ext(base), fast5.Ext) {
			target = filepath.Join(h.outputRoot, stem+OutputExt)
		} else {
			target = filepath.Join(h.outputRoot, base+OutputExt)
		}
	} else {
		target = filepath.Join(h.outputRoot, combinedFilename)
	}
	h.inputToTarget[inputPath] = target
	return target
}

// Writer returns the writer for an input's target, opening it on first use.
// With force-overwrite, pre-existing artifacts at the target path(s) are
// removed before opening; without it, a pre-existing destination makes the
// open fail, which the caller must treat as run-fatal.
func (h *OutputHandler) Writer(inputPath string) (*pod5.Writer, error) {
	target := h.Resolve(inputPath)
	if w, ok := h.writers[target]; ok {
		return w, nil
	}

	var w *pod5.Writer
	var err error
	if h.split {
		signalPath, readsPath := pod5.SplitFilenames(target)
		if h.forceOverwrite {
			if err := removeExisting(signalPath, readsPath); err != nil {
				return nil, err
			}
		}
		w, err = pod5.OpenSplit(signalPath, readsPath)
	} else {
		if h.forceOverwrite {
			if err := removeExisting(target); err != nil {
				return nil, err
			}
		}
		w, err = pod5.OpenSingle(target)
	}
	if err != nil {
		return nil, fmt.Errorf("open output for %s: %w", inputPath, err)
	}

	h.writers[target] = w
	return w, nil
}

// InputComplete tells the handler no more batches will arrive for an input.
// In one-to-one mode the target's writer is closed and evicted immediately;
// in combined mode other inputs still share the writer, so this is a no-op.
func (h *OutputHandler) InputComplete(inputPath string) error {
	if !h.oneToOne {
		return nil
	}

	target, ok := h.inputToTarget[inputPath]
	if !ok {
		return nil
	}
	w, ok := h.writers[target]
	if !ok {
		// Nothing was ever written for this input (e.g. it failed to open).
		return nil
	}
	delete(h.writers, target)
	if err := w.Close(); err != nil {
		return fmt.Errorf("close output for %s: %w", inputPath, err)
	}
	return nil
}

// CloseAll closes every still-open writer. Idempotent; invoked on every
// shutdown path. The first close error is returned after all writers have
// been closed.
func (h *OutputHandler) CloseAll() error {
	var firstErr error
	for target, w := range h.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", target, err)
		}
	}
	h.writers = make(map[string]*pod5.Writer)
	return firstErr
}

// OpenTargets reports how many writers are currently open.
func (h *OutputHandler) OpenTargets() int {
	return len(h.writers)
}

func removeExisting(paths ...string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove existing artifact %s: %w", p, err)
		}
	}
	return nil
}
