package pod5

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultSignalChunkSize is the number of samples per compressed chunk.
const DefaultSignalChunkSize = 102400

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// CompressSignal splits samples into chunks of at most chunkSize and
// compresses each chunk independently (delta + zigzag varint, then zstd).
// It returns the compressed chunks and the sample count of each chunk.
// Pure: the input slice is not modified.
func CompressSignal(samples []int16, chunkSize int) ([][]byte, []int) {
	if chunkSize <= 0 {
		chunkSize = DefaultSignalChunkSize
	}

	var chunks [][]byte
	var lengths []int
	for start := 0; start < len(samples); start += chunkSize {
		end := start + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		chunk := samples[start:end]
		chunks = append(chunks, compressChunk(chunk))
		lengths = append(lengths, len(chunk))
	}
	return chunks, lengths
}

// DecompressSignal reverses CompressSignal for one chunk. sampleCount must be
// the chunk's recorded length.
func DecompressSignal(compressed []byte, sampleCount int) ([]int16, error) {
	raw, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress signal chunk: %w", err)
	}

	out := make([]int16, 0, sampleCount)
	var prev int16
	for len(raw) > 0 {
		v, n := binary.Uvarint(raw)
		if n <= 0 {
			return nil, fmt.Errorf("decompress signal chunk: truncated varint stream")
		}
		raw = raw[n:]
		delta := unzigzag(v)
		prev += delta
		out = append(out, prev)
	}
	if len(out) != sampleCount {
		return nil, fmt.Errorf("decompress signal chunk: got %d samples, expected %d", len(out), sampleCount)
	}
	return out, nil
}

func compressChunk(chunk []int16) []byte {
	// Delta-encode then zigzag so small oscillations become small varints.
	buf := make([]byte, 0, len(chunk)*2)
	var prev int16
	tmp := make([]byte, binary.MaxVarintLen64)
	for _, s := range chunk {
		delta := s - prev
		prev = s
		n := binary.PutUvarint(tmp, zigzag(delta))
		buf = append(buf, tmp[:n]...)
	}
	return zstdEncoder.EncodeAll(buf, nil)
}

func zigzag(v int16) uint64 {
	return uint64(uint16(v)<<1) ^ uint64(uint16(v>>15))
}

func unzigzag(v uint64) int16 {
	return int16(uint16(v>>1) ^ -uint16(v&1))
}
