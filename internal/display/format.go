// Package display holds human-readable formatting helpers for log output.
package display

import (
	"fmt"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// sampleUnits are decimal metric prefixes, largest first. A count picks the
// largest unit whose divisor it exceeds.
var sampleUnits = []struct {
	div    int64
	prefix string
}{
	{1_000_000_000_000, "T"},
	{1_000_000_000, "G"},
	{1_000_000, "M"},
	{1_000, "K"},
}

// FormatSampleCount renders a raw sample count with a metric prefix,
// e.g. "1.5 GSamples". Counts of a thousand or less are printed plain.
func FormatSampleCount(count int64) string {
	for _, u := range sampleUnits {
		if count > u.div {
			return fmt.Sprintf("%.1f %sSamples", float64(count)/float64(u.div), u.prefix)
		}
	}
	return fmt.Sprintf("%d Samples", count)
}
