package pipeline

import (
	"time"

	"github.com/sashajenner/pod5-file-format/internal/display"
	"github.com/sashajenner/pod5-file-format/internal/logging"
)

// bytesPerSample is the raw signal sample width used for throughput figures.
const bytesPerSample = 2

// StatusMonitor aggregates run counters and prints throttled progress lines.
// All counters are mutated only from the supervisor goroutine; every count
// is monotonically non-decreasing.
type StatusMonitor struct {
	log      *logging.Logger
	interval time.Duration

	fileCount      int
	filesStarted   int
	filesEnded     int
	readCount      int // declared read total across started files
	readsProcessed int
	sampleCount    int64

	timeStart      time.Time
	timeLastUpdate time.Time
}

// NewStatusMonitor returns a monitor for a run over fileCount files,
// reporting at most once per interval unless forced.
func NewStatusMonitor(log *logging.Logger, fileCount int, interval time.Duration) *StatusMonitor {
	now := time.Now()
	return &StatusMonitor{
		log:            log,
		interval:       interval,
		fileCount:      fileCount,
		timeStart:      now,
		timeLastUpdate: now,
	}
}

// Running reports whether any file has yet to finish.
func (s *StatusMonitor) Running() bool {
	return s.filesEnded < s.fileCount
}

// Apply updates the counters for one message.
func (s *StatusMonitor) Apply(msg Message) {
	switch m := msg.(type) {
	case StartFile:
		s.filesStarted++
		s.readCount += m.ReadCount
	case Batch:
		s.readsProcessed += len(m.Reads)
		for _, r := range m.Reads {
			s.sampleCount += int64(r.SampleCount())
		}
	case EndFile:
		s.filesEnded++
	}
}

// Report prints a progress line if the update interval has passed, or
// unconditionally when forced.
func (s *StatusMonitor) Report(force bool) {
	now := time.Now()
	if !force && s.timeLastUpdate.Add(s.interval).After(now) {
		return
	}
	s.timeLastUpdate = now

	s.log.Status("%d/%d/%d files\t%d/%d reads, %s, %.1f MB/s",
		s.filesEnded, s.filesStarted, s.fileCount,
		s.readsProcessed, s.readCount,
		display.FormatSampleCount(s.sampleCount),
		s.sampleRate(now))
}

// VerifyComplete checks that every declared read was processed and warns
// about the shortfall otherwise. Returns false on a shortfall. Non-fatal:
// dropped reads fail only their own conversion, never the run.
func (s *StatusMonitor) VerifyComplete() bool {
	if s.readsProcessed == s.readCount {
		return true
	}
	s.log.Warn("Some reads could not be converted due to errors (%d of %d processed)",
		s.readsProcessed, s.readCount)
	return false
}

// Elapsed returns wall time since the run started.
func (s *StatusMonitor) Elapsed() time.Duration {
	return time.Since(s.timeStart)
}

// SampleCount returns the cumulative converted sample count.
func (s *StatusMonitor) SampleCount() int64 {
	return s.sampleCount
}

// ReadsExpected returns the declared read total across started files.
func (s *StatusMonitor) ReadsExpected() int {
	return s.readCount
}

// ReadsProcessed returns the cumulative converted read count.
func (s *StatusMonitor) ReadsProcessed() int {
	return s.readsProcessed
}

// FilesEnded returns how many files have finished.
func (s *StatusMonitor) FilesEnded() int {
	return s.filesEnded
}

// sampleRate is the time-averaged throughput in MB/s, counting raw sample
// bytes.
func (s *StatusMonitor) sampleRate(now time.Time) float64 {
	elapsed := now.Sub(s.timeStart).Seconds()
	if elapsed <= 0 {
		return 0
	}
	mb := float64(s.sampleCount*bytesPerSample) / 1_000_000
	return mb / elapsed
}
