// Package convert turns raw fast5 reads into pre-compressed pod5 records.
// Acquisition-level metadata is built at most once per acquisition id via a
// caller-owned cache, since every read of a session shares it.
package convert

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sashajenner/pod5-file-format/internal/fast5"
	"github.com/sashajenner/pod5-file-format/internal/pod5"
)

// RunInfoCache memoizes shared acquisition metadata, keyed by acquisition id.
// Owned by the worker processing a file; never shared across files.
type RunInfoCache map[string]*pod5.RunInfo

// Read converts one raw read. The returned record references the cached
// RunInfo for its acquisition, building it on first sight.
func Read(raw *fast5.RawRead, cache RunInfoCache, signalChunkSize int) (*pod5.CompressedRead, error) {
	acqID := raw.RunID
	if acqID == "" {
		acqID = raw.TrackingID["run_id"]
	}
	if acqID == "" {
		return nil, fmt.Errorf("read %s: no acquisition id", raw.ReadID)
	}

	runInfo, ok := cache[acqID]
	if !ok {
		runInfo = newRunInfo(acqID, raw)
		cache[acqID] = runInfo
	}

	readID, err := uuid.Parse(raw.ReadID)
	if err != nil {
		return nil, fmt.Errorf("read %s: invalid read id: %w", raw.ReadID, err)
	}

	chunks, lengths := pod5.CompressSignal(raw.Signal, signalChunkSize)

	return &pod5.CompressedRead{
		ReadID: readID,
		Pore: pod5.Pore{
			Channel:  raw.ChannelNumber,
			Well:     raw.StartMux,
			PoreType: poreType(raw.PoreType),
		},
		Calibration:            pod5.CalibrationFromRange(raw.Offset, raw.Range, raw.Digitisation),
		ReadNumber:             raw.ReadNumber,
		StartSample:            raw.StartTime,
		MedianBefore:           raw.MedianBefore,
		NumMinknowEvents:       raw.NumMinknowEvents,
		TrackedScaling:         pod5.ShiftScalePair{Shift: raw.TrackedScalingShift, Scale: raw.TrackedScalingScale},
		PredictedScaling:       pod5.ShiftScalePair{Shift: raw.PredictedScalingShift, Scale: raw.PredictedScalingScale},
		NumReadsSinceMuxChange: raw.NumReadsSinceMuxChange,
		TimeSinceMuxChange:     raw.TimeSinceMuxChange,
		EndReason:              endReason(raw.EndReason),
		RunInfo:                runInfo,
		SignalChunks:           chunks,
		SignalChunkLengths:     lengths,
	}, nil
}

func poreType(pt string) string {
	if pt == "" {
		return "not_set"
	}
	return pt
}

// endReason maps the numeric fast5 end_reason attribute onto pod5 reasons.
// Unknown or absent values map to unknown/unforced.
func endReason(code int) pod5.EndReason {
	switch code {
	case 2:
		return pod5.EndReason{Name: pod5.EndReasonMuxChange, Forced: true}
	case 3:
		return pod5.EndReason{Name: pod5.EndReasonUnblockMuxChange, Forced: true}
	case 4:
		return pod5.EndReason{Name: pod5.EndReasonDataServiceUnblockMuxChange, Forced: true}
	case 5:
		return pod5.EndReason{Name: pod5.EndReasonSignalPositive, Forced: false}
	case 6:
		return pod5.EndReason{Name: pod5.EndReasonSignalNegative, Forced: false}
	default:
		return pod5.EndReason{Name: pod5.EndReasonUnknown, Forced: false}
	}
}

// newRunInfo builds acquisition metadata from the first read of a session.
// ADC bounds are guessed from the digitisation: 8192 distinguishes MinION
// hardware from PromethION.
func newRunInfo(acqID string, raw *fast5.RawRead) *pod5.RunInfo {
	adcMin, adcMax := 0, 2047
	deviceGuess := "promethion"
	if raw.Digitisation == 8192 {
		adcMin, adcMax = -4096, 4095
		deviceGuess = "minion"
	}

	tracking := raw.TrackingID
	tags := raw.ContextTags
	if tracking == nil {
		tracking = map[string]string{}
	}
	if tags == nil {
		tags = map[string]string{}
	}

	deviceType := tracking["device_type"]
	if deviceType == "" {
		deviceType = deviceGuess
	}

	return &pod5.RunInfo{
		AcquisitionID:        acqID,
		AcquisitionStartTime: parseTimestamp(tracking["exp_start_time"]),
		ADCMax:               adcMax,
		ADCMin:               adcMin,
		ContextTags:          tags,
		ExperimentName:       "",
		FlowCellID:           tracking["flow_cell_id"],
		FlowCellProductCode:  tracking["flow_cell_product_code"],
		ProtocolName:         tracking["exp_script_name"],
		ProtocolRunID:        tracking["protocol_run_id"],
		ProtocolStartTime:    parseTimestamp(tracking["protocol_start_time"]),
		SampleID:             tracking["sample_id"],
		SampleRate:           raw.SamplingRate,
		SequencingKit:        tags["sequencing_kit"],
		SequencerPosition:    tracking["device_id"],
		SequencerPositionTyp: deviceType,
		Software:             "go-pod5-converter",
		SystemName:           tracking["host_product_serial_number"],
		SystemType:           tracking["host_product_code"],
		TrackingID:           tracking,
	}
}

// parseTimestamp parses an ISO-8601 acquisition timestamp. Missing or
// malformed values fall back to the unix epoch, matching upstream tooling.
func parseTimestamp(s string) time.Time {
	epoch := time.Unix(0, 0).UTC()
	if s == "" {
		return epoch
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return epoch
}
