// Package pod5 holds the output-side data model and writer: converted read
// records, the chunked signal codec, and file handles for single and split
// pod5 artifacts.
package pod5

import (
	"time"

	"github.com/google/uuid"
)

// EndReasonName identifies why a read ended on the sequencer.
type EndReasonName string

const (
	EndReasonUnknown                     EndReasonName = "unknown"
	EndReasonMuxChange                   EndReasonName = "mux_change"
	EndReasonUnblockMuxChange            EndReasonName = "unblock_mux_change"
	EndReasonDataServiceUnblockMuxChange EndReasonName = "data_service_unblock_mux_change"
	EndReasonSignalPositive              EndReasonName = "signal_positive"
	EndReasonSignalNegative              EndReasonName = "signal_negative"
)

// EndReason pairs the end-reason name with whether the end was forced by
// the device rather than observed in the signal.
type EndReason struct {
	Name   EndReasonName `msgpack:"name"`
	Forced bool          `msgpack:"forced"`
}

// Pore describes the physical channel/well a read came from.
type Pore struct {
	Channel  int    `msgpack:"channel"`
	Well     int    `msgpack:"well"`
	PoreType string `msgpack:"pore_type"`
}

// Calibration converts raw ADC values to picoamps: pA = (adc + Offset) * Scale.
type Calibration struct {
	Offset float64 `msgpack:"offset"`
	Scale  float64 `msgpack:"scale"`
}

// CalibrationFromRange derives the calibration scale from an ADC range and
// digitisation count, matching how sequencer metadata expresses it.
func CalibrationFromRange(offset, adcRange, digitisation float64) Calibration {
	return Calibration{
		Offset: offset,
		Scale:  adcRange / digitisation,
	}
}

// ShiftScalePair holds a shift/scale estimate (tracked or predicted scaling).
type ShiftScalePair struct {
	Shift float64 `msgpack:"shift"`
	Scale float64 `msgpack:"scale"`
}

// RunInfo is acquisition-level metadata shared by every read of a session.
// It is built once per acquisition id and referenced by many reads.
type RunInfo struct {
	AcquisitionID        string            `msgpack:"acquisition_id"`
	AcquisitionStartTime time.Time         `msgpack:"acquisition_start_time"`
	ADCMax               int               `msgpack:"adc_max"`
	ADCMin               int               `msgpack:"adc_min"`
	ContextTags          map[string]string `msgpack:"context_tags"`
	ExperimentName       string            `msgpack:"experiment_name"`
	FlowCellID           string            `msgpack:"flow_cell_id"`
	FlowCellProductCode  string            `msgpack:"flow_cell_product_code"`
	ProtocolName         string            `msgpack:"protocol_name"`
	ProtocolRunID        string            `msgpack:"protocol_run_id"`
	ProtocolStartTime    time.Time         `msgpack:"protocol_start_time"`
	SampleID             string            `msgpack:"sample_id"`
	SampleRate           int               `msgpack:"sample_rate"`
	SequencingKit        string            `msgpack:"sequencing_kit"`
	SequencerPosition    string            `msgpack:"sequencer_position"`
	SequencerPositionTyp string            `msgpack:"sequencer_position_type"`
	Software             string            `msgpack:"software"`
	SystemName           string            `msgpack:"system_name"`
	SystemType           string            `msgpack:"system_type"`
	TrackingID           map[string]string `msgpack:"tracking_id"`
}

// CompressedRead is one converted read with its signal already compressed
// into chunks. This is the unit the pipeline hands to a Writer.
type CompressedRead struct {
	ReadID                 uuid.UUID      `msgpack:"read_id"`
	Pore                   Pore           `msgpack:"pore"`
	Calibration            Calibration    `msgpack:"calibration"`
	ReadNumber             int            `msgpack:"read_number"`
	StartSample            int64          `msgpack:"start_sample"`
	MedianBefore           float64        `msgpack:"median_before"`
	NumMinknowEvents       int64          `msgpack:"num_minknow_events"`
	TrackedScaling         ShiftScalePair `msgpack:"tracked_scaling"`
	PredictedScaling       ShiftScalePair `msgpack:"predicted_scaling"`
	NumReadsSinceMuxChange int            `msgpack:"num_reads_since_mux_change"`
	TimeSinceMuxChange     float64        `msgpack:"time_since_mux_change"`
	EndReason              EndReason      `msgpack:"end_reason"`
	RunInfo                *RunInfo       `msgpack:"run_info"`
	SignalChunks           [][]byte       `msgpack:"signal_chunks"`
	SignalChunkLengths     []int          `msgpack:"signal_chunk_lengths"`
}

// SampleCount returns the number of raw signal samples across all chunks.
func (r *CompressedRead) SampleCount() int {
	total := 0
	for _, n := range r.SignalChunkLengths {
		total += n
	}
	return total
}
