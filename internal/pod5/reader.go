package pod5

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// ReadAll decodes every read record from a combined artifact or from the
// reads artifact of a split pair. Shared run info is re-linked so each read
// points at the single RunInfo written for its acquisition.
func ReadAll(path string) ([]*CompressedRead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pod5 artifact: %w", err)
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	runInfos := make(map[string]*RunInfo)

	var reads []*CompressedRead
	for {
		var rec readRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return reads, nil
			}
			return nil, fmt.Errorf("decode read record: %w", err)
		}
		if rec.RunInfo != nil {
			runInfos[rec.AcquisitionID] = rec.RunInfo
		}
		if rec.Read.RunInfo == nil && rec.AcquisitionID != "" {
			rec.Read.RunInfo = runInfos[rec.AcquisitionID]
		}
		reads = append(reads, rec.Read)
	}
}
