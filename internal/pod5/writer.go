package pod5

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// SplitFilenames derives the two linked artifact paths for the split layout
// from a single target path: <stem>_signal<ext> and <stem>_reads<ext>.
func SplitFilenames(path string) (signalPath, readsPath string) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return stem + "_signal" + ext, stem + "_reads" + ext
}

// Writer appends compressed reads to a pod5 target. A target is either one
// combined artifact or a linked signal/reads artifact pair. Writers refuse
// pre-existing destinations; callers that want overwrite semantics must
// remove the old artifacts first.
type Writer struct {
	signal *os.File
	reads  *os.File
	// runInfoSeen dedupes shared run info inside one artifact: the full
	// record is written on first sight, later reads carry only the id.
	runInfoSeen map[string]bool
	enc         *msgpack.Encoder
	signalEnc   *msgpack.Encoder
	closed      bool
}

// OpenSingle opens a combined-layout writer at path. Fails if path exists.
func OpenSingle(path string) (*Writer, error) {
	f, err := createExclusive(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{reads: f, runInfoSeen: make(map[string]bool)}
	w.enc = msgpack.NewEncoder(f)
	return w, nil
}

// OpenSplit opens a split-layout writer over a linked signal/reads pair.
// Either both artifacts open or neither does.
func OpenSplit(signalPath, readsPath string) (*Writer, error) {
	sf, err := createExclusive(signalPath)
	if err != nil {
		return nil, err
	}
	rf, err := createExclusive(readsPath)
	if err != nil {
		sf.Close()
		os.Remove(signalPath)
		return nil, err
	}
	w := &Writer{signal: sf, reads: rf, runInfoSeen: make(map[string]bool)}
	w.enc = msgpack.NewEncoder(rf)
	w.signalEnc = msgpack.NewEncoder(sf)
	return w, nil
}

func createExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open pod5 artifact: %w", err)
	}
	return f, nil
}

// readRecord is the on-disk per-read record. RunInfo is inlined only for the
// first read of each acquisition in this artifact.
type readRecord struct {
	Read          *CompressedRead `msgpack:"read"`
	AcquisitionID string          `msgpack:"acquisition_id"`
	RunInfo       *RunInfo        `msgpack:"run_info,omitempty"`
}

// Append writes a batch of pre-compressed reads to the target. In the split
// layout, chunk bytes go to the signal artifact in read order and the record
// stream keeps only the chunk lengths; linkage is the shared encode order.
func (w *Writer) Append(reads []*CompressedRead) error {
	if w.closed {
		return fmt.Errorf("append to closed pod5 writer")
	}

	for _, r := range reads {
		// Serialize a shallow copy: shared run info lives in the record
		// envelope (written once per acquisition), and in the split
		// layout the chunk bytes live in the signal artifact.
		clone := *r
		clone.RunInfo = nil

		rec := readRecord{Read: &clone}
		if r.RunInfo != nil {
			rec.AcquisitionID = r.RunInfo.AcquisitionID
			if !w.runInfoSeen[rec.AcquisitionID] {
				w.runInfoSeen[rec.AcquisitionID] = true
				rec.RunInfo = r.RunInfo
			}
		}

		if w.signal != nil {
			for _, chunk := range r.SignalChunks {
				if err := w.signalEnc.Encode(chunk); err != nil {
					return fmt.Errorf("append signal chunk for read %s: %w", r.ReadID, err)
				}
			}
			clone.SignalChunks = nil
		}

		if err := w.enc.Encode(&rec); err != nil {
			return fmt.Errorf("append read %s: %w", r.ReadID, err)
		}
	}
	return nil
}

// Close flushes and closes the underlying artifact(s). Idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var firstErr error
	if w.signal != nil {
		if err := w.signal.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close signal artifact: %w", err)
		}
	}
	if w.reads != nil {
		if err := w.reads.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close reads artifact: %w", err)
		}
	}
	return firstErr
}
