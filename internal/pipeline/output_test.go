package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sashajenner/pod5-file-format/internal/pod5"
)

func outputRead() *pod5.CompressedRead {
	chunks, lengths := pod5.CompressSignal([]int16{1, 2, 3}, 1000)
	return &pod5.CompressedRead{
		ReadID:             uuid.New(),
		RunInfo:            &pod5.RunInfo{AcquisitionID: "acq"},
		SignalChunks:       chunks,
		SignalChunkLengths: lengths,
	}
}

func TestResolve_OneToOne(t *testing.T) {
	h := NewOutputHandler("/out", true, false, false)

	require.Equal(t, filepath.Join("/out", "run1.pod5"), h.Resolve("/data/a/run1.fast5"))
	require.Equal(t, filepath.Join("/out", "run2.pod5"), h.Resolve("/data/b/run2.fast5"))

	// Memoized: the same input always maps to the same target.
	require.Equal(t, filepath.Join("/out", "run1.pod5"), h.Resolve("/data/a/run1.fast5"))
}

func TestResolve_Combined(t *testing.T) {
	h := NewOutputHandler("/out", false, false, false)

	target := h.Resolve("/data/a/run1.fast5")
	require.Equal(t, filepath.Join("/out", "output.pod5"), target)
	require.Equal(t, target, h.Resolve("/data/b/run2.fast5"))
	require.Equal(t, target, h.Resolve("/elsewhere/run3.fast5"))
}

func TestWriter_OneToOneCreatesOneTargetPerInput(t *testing.T) {
	dir := t.TempDir()
	h := NewOutputHandler(dir, true, false, false)

	inputs := []string{"/in/a.fast5", "/in/b.fast5", "/in/c.fast5"}
	for _, in := range inputs {
		w, err := h.Writer(in)
		require.NoError(t, err)
		require.NoError(t, w.Append([]*pod5.CompressedRead{outputRead()}))
	}
	require.Equal(t, 3, h.OpenTargets())
	require.NoError(t, h.CloseAll())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestWriter_CombinedSharesOneTarget(t *testing.T) {
	dir := t.TempDir()
	h := NewOutputHandler(dir, false, false, false)

	w1, err := h.Writer("/in/a.fast5")
	require.NoError(t, err)
	w2, err := h.Writer("/in/b.fast5")
	require.NoError(t, err)
	require.Same(t, w1, w2)
	require.Equal(t, 1, h.OpenTargets())
	require.NoError(t, h.CloseAll())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestInputComplete_OneToOneClosesAndEvicts(t *testing.T) {
	dir := t.TempDir()
	h := NewOutputHandler(dir, true, false, false)

	_, err := h.Writer("/in/a.fast5")
	require.NoError(t, err)
	require.Equal(t, 1, h.OpenTargets())

	require.NoError(t, h.InputComplete("/in/a.fast5"))
	require.Equal(t, 0, h.OpenTargets())
}

func TestInputComplete_CombinedIsNoOp(t *testing.T) {
	dir := t.TempDir()
	h := NewOutputHandler(dir, false, false, false)

	_, err := h.Writer("/in/a.fast5")
	require.NoError(t, err)

	require.NoError(t, h.InputComplete("/in/a.fast5"))
	require.Equal(t, 1, h.OpenTargets(), "combined writer must stay open until shutdown")
	require.NoError(t, h.CloseAll())
}

func TestInputComplete_NeverWritten(t *testing.T) {
	h := NewOutputHandler(t.TempDir(), true, false, false)
	// An input that failed to open has no writer; completion is a no-op.
	require.NoError(t, h.InputComplete("/in/never-opened.fast5"))
}

func TestWriter_ExistingDestinationFailsWithoutForce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "output.pod5"), []byte("stale"), 0o644))

	h := NewOutputHandler(dir, false, false, false)
	_, err := h.Writer("/in/a.fast5")
	require.Error(t, err)
}

func TestWriter_ForceOverwriteRemovesExisting(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "output.pod5")
	require.NoError(t, os.WriteFile(target, []byte("stale"), 0o644))

	h := NewOutputHandler(dir, false, false, true)
	w, err := h.Writer("/in/a.fast5")
	require.NoError(t, err)
	require.NoError(t, w.Append([]*pod5.CompressedRead{outputRead()}))
	require.NoError(t, h.CloseAll())

	got, err := pod5.ReadAll(target)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestWriter_SplitOpensLinkedPair(t *testing.T) {
	dir := t.TempDir()
	h := NewOutputHandler(dir, false, true, false)

	w, err := h.Writer("/in/a.fast5")
	require.NoError(t, err)
	require.NoError(t, w.Append([]*pod5.CompressedRead{outputRead()}))
	require.NoError(t, h.CloseAll())

	signalPath, readsPath := pod5.SplitFilenames(filepath.Join(dir, "output.pod5"))
	_, err = os.Stat(signalPath)
	require.NoError(t, err)
	_, err = os.Stat(readsPath)
	require.NoError(t, err)
}

func TestWriter_SplitForceOverwriteRemovesBoth(t *testing.T) {
	dir := t.TempDir()
	signalPath, readsPath := pod5.SplitFilenames(filepath.Join(dir, "output.pod5"))
	require.NoError(t, os.WriteFile(signalPath, []byte("stale"), 0o644))
	require.NoError(t, os.WriteFile(readsPath, []byte("stale"), 0o644))

	h := NewOutputHandler(dir, false, true, true)
	_, err := h.Writer("/in/a.fast5")
	require.NoError(t, err)
	require.NoError(t, h.CloseAll())
}

func TestCloseAll_Idempotent(t *testing.T) {
	h := NewOutputHandler(t.TempDir(), false, false, false)
	_, err := h.Writer("/in/a.fast5")
	require.NoError(t, err)

	require.NoError(t, h.CloseAll())
	require.NoError(t, h.CloseAll())
}
