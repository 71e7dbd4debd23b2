// Package fast5 is the source-side boundary of the converter: it reads raw
// nanopore reads from fast5 dump files and reports each file's declared read
// count without decoding any read.
//
// Native fast5 is an HDF5 container, which has no pure-Go decoder. The
// bundled adapter therefore consumes pre-extracted dumps: a msgpack header
// carrying the read count followed by a msgpack stream of raw reads.
// WriteDump produces them, for tests and for upstream extraction tooling.
package fast5

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Ext is the input file extension this tool converts.
const Ext = ".fast5"

const dumpVersion = 1

// RawRead is one undecoded read as stored in the source container: the raw
// signal plus the channel, read and session attributes needed to build a
// pod5 record.
type RawRead struct {
	ReadID string `msgpack:"read_id"`

	// Channel attributes.
	ChannelNumber int     `msgpack:"channel_number"`
	Digitisation  float64 `msgpack:"digitisation"`
	Offset        float64 `msgpack:"offset"`
	Range         float64 `msgpack:"range"`
	SamplingRate  int     `msgpack:"sampling_rate"`

	// Read attributes.
	ReadNumber             int     `msgpack:"read_number"`
	StartTime              int64   `msgpack:"start_time"`
	StartMux               int     `msgpack:"start_mux"`
	MedianBefore           float64 `msgpack:"median_before"`
	EndReason              int     `msgpack:"end_reason"`
	PoreType               string  `msgpack:"pore_type"`
	NumMinknowEvents       int64   `msgpack:"num_minknow_events"`
	TrackedScalingShift    float64 `msgpack:"tracked_scaling_shift"`
	TrackedScalingScale    float64 `msgpack:"tracked_scaling_scale"`
	PredictedScalingShift  float64 `msgpack:"predicted_scaling_shift"`
	PredictedScalingScale  float64 `msgpack:"predicted_scaling_scale"`
	NumReadsSinceMuxChange int     `msgpack:"num_reads_since_mux_change"`
	TimeSinceMuxChange     float64 `msgpack:"time_since_mux_change"`

	// Session attributes. RunID identifies the acquisition; TrackingID and
	// ContextTags are shared by every read of the same acquisition.
	RunID       string            `msgpack:"run_id"`
	TrackingID  map[string]string `msgpack:"tracking_id"`
	ContextTags map[string]string `msgpack:"context_tags"`

	Signal []int16 `msgpack:"signal"`
}

type dumpHeader struct {
	Version   int `msgpack:"version"`
	ReadCount int `msgpack:"read_count"`
}

// File is an open fast5 dump. Not safe for concurrent use; each worker owns
// the files of its shard exclusively.
type File struct {
	f   *os.File
	dec *msgpack.Decoder
	hdr dumpHeader
}

// Open opens path and reads its header. The read count comes from the header
// alone; no read is decoded.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fast5 file: %w", err)
	}

	dec := msgpack.NewDecoder(f)
	var hdr dumpHeader
	if err := dec.Decode(&hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("read fast5 header %s: %w", path, err)
	}
	if hdr.Version != dumpVersion {
		f.Close()
		return nil, fmt.Errorf("unsupported fast5 dump version %d in %s", hdr.Version, path)
	}
	return &File{f: f, dec: dec, hdr: hdr}, nil
}

// ReadCount returns the declared number of reads in the file.
func (f *File) ReadCount() int {
	return f.hdr.ReadCount
}

// Next decodes the next raw read. Returns io.EOF once the file is exhausted.
func (f *File) Next() (*RawRead, error) {
	var r RawRead
	if err := f.dec.Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decode raw read: %w", err)
	}
	return &r, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// WriteDump writes reads to path in the dump layout Open consumes. The
// header's read count is the declared cardinality used for progress
// accounting.
func WriteDump(path string, reads []*RawRead) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create fast5 dump: %w", err)
	}

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(dumpHeader{Version: dumpVersion, ReadCount: len(reads)}); err != nil {
		f.Close()
		return fmt.Errorf("write fast5 header: %w", err)
	}
	for _, r := range reads {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return fmt.Errorf("write raw read: %w", err)
		}
	}
	return f.Close()
}
