package pod5

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testRead(t *testing.T, runInfo *RunInfo, samples []int16) *CompressedRead {
	t.Helper()
	chunks, lengths := CompressSignal(samples, 1000)
	return &CompressedRead{
		ReadID:             uuid.New(),
		Pore:               Pore{Channel: 109, Well: 4, PoreType: "not_set"},
		Calibration:        CalibrationFromRange(21.0, 1437.0, 8192.0),
		ReadNumber:         7,
		StartSample:        12345,
		MedianBefore:       183.2,
		EndReason:          EndReason{Name: EndReasonSignalPositive},
		RunInfo:            runInfo,
		SignalChunks:       chunks,
		SignalChunkLengths: lengths,
	}
}

func testRunInfo(acqID string) *RunInfo {
	return &RunInfo{
		AcquisitionID: acqID,
		ADCMax:        4095,
		ADCMin:        -4096,
		SampleRate:    4000,
		TrackingID:    map[string]string{"run_id": acqID},
		ContextTags:   map[string]string{"sequencing_kit": "sqk-lsk109"},
	}
}

func TestOpenSingle_RefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pod5")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	_, err := OpenSingle(path)
	require.Error(t, err)
}

func TestWriter_SingleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pod5")

	w, err := OpenSingle(path)
	require.NoError(t, err)

	ri := testRunInfo("acq-1")
	reads := []*CompressedRead{
		testRead(t, ri, []int16{1, 2, 3}),
		testRead(t, ri, []int16{4, 5, 6, 7}),
	}
	require.NoError(t, w.Append(reads))
	require.NoError(t, w.Close())

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, reads[0].ReadID, got[0].ReadID)
	require.Equal(t, reads[1].ReadID, got[1].ReadID)
	require.Equal(t, 3, got[0].SampleCount())
	require.Equal(t, 4, got[1].SampleCount())

	// Shared run info is written once and re-linked on read.
	require.NotNil(t, got[0].RunInfo)
	require.Same(t, got[0].RunInfo, got[1].RunInfo)
	require.Equal(t, "acq-1", got[0].RunInfo.AcquisitionID)
}

func TestWriter_AppendDoesNotMutateCallerReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pod5")
	signalPath, readsPath := SplitFilenames(path)

	w, err := OpenSplit(signalPath, readsPath)
	require.NoError(t, err)

	r := testRead(t, testRunInfo("acq-1"), []int16{1, 2, 3})
	require.NoError(t, w.Append([]*CompressedRead{r}))
	require.NoError(t, w.Close())

	require.NotNil(t, r.RunInfo)
	require.NotEmpty(t, r.SignalChunks)
}

func TestOpenSplit_AllOrNothing(t *testing.T) {
	dir := t.TempDir()
	signalPath := filepath.Join(dir, "out_signal.pod5")
	readsPath := filepath.Join(dir, "out_reads.pod5")
	require.NoError(t, os.WriteFile(readsPath, []byte("stale"), 0o644))

	_, err := OpenSplit(signalPath, readsPath)
	require.Error(t, err)

	// The signal artifact must not be left behind.
	_, serr := os.Stat(signalPath)
	require.True(t, os.IsNotExist(serr))
}

func TestWriter_SplitWritesBothArtifacts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pod5")
	signalPath, readsPath := SplitFilenames(path)

	w, err := OpenSplit(signalPath, readsPath)
	require.NoError(t, err)
	require.NoError(t, w.Append([]*CompressedRead{testRead(t, testRunInfo("a"), []int16{9, 9, 9})}))
	require.NoError(t, w.Close())

	si, err := os.Stat(signalPath)
	require.NoError(t, err)
	require.NotZero(t, si.Size())

	got, err := ReadAll(readsPath)
	require.NoError(t, err)
	require.Len(t, got, 1)
	// Chunk bytes live in the signal artifact; lengths stay with the read.
	require.Empty(t, got[0].SignalChunks)
	require.Equal(t, 3, got[0].SampleCount())
}

func TestWriter_CloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pod5")
	w, err := OpenSingle(path)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.Error(t, w.Append(nil))
}

func TestSplitFilenames(t *testing.T) {
	s, r := SplitFilenames("/data/run1.pod5")
	require.Equal(t, "/data/run1_signal.pod5", s)
	require.Equal(t, "/data/run1_reads.pod5", r)
}
