package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// Compressor names.
const (
	None = "none"
	LZ4  = "lz4"
)

// NoCompressor stores data unchanged.
type NoCompressor struct{}

func (NoCompressor) Name() string { return None }

// Compress returns a copy of data.
func (NoCompressor) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Decompress returns a copy of data.
func (NoCompressor) Decompress(data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Block modes of the LZ4 encoding.
const (
	modeRaw byte = 0
	modeLZ4 byte = 1
)

// LZ4Compressor encodes data as a mode byte, the uvarint length of the
// original data and the payload. Data that LZ4 cannot shrink is stored raw.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string { return LZ4 }

// Compress compresses data using an LZ4 block.
func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	header := make([]byte, 1+binary.MaxVarintLen64)
	n := 1 + binary.PutUvarint(header[1:], uint64(len(data)))
	if len(data) == 0 {
		header[0] = modeRaw
		return header[:n:n], nil
	}

	out := make([]byte, n+lz4.CompressBlockBound(len(data)))
	size, err := lz4.CompressBlock(data, out[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if size == 0 || size >= len(data) {
		header[0] = modeRaw
		return append(header[:n:n], data...), nil
	}
	header[0] = modeLZ4
	copy(out, header[:n])
	return out[:n+size], nil
}

// Decompress decodes the output of Compress.
func (LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrCorrupt)
	}
	length, n := binary.Uvarint(data[1:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad length prefix", ErrCorrupt)
	}
	payload := data[1+n:]

	switch data[0] {
	case modeRaw:
		if uint64(len(payload)) != length {
			return nil, fmt.Errorf("%w: raw block is %d bytes, want %d", ErrCorrupt, len(payload), length)
		}
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case modeLZ4:
		if length > uint64(len(payload))*255 {
			return nil, fmt.Errorf("%w: length %d too large for block", ErrCorrupt, length)
		}
		out := make([]byte, length)
		size, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(size) != length {
			return nil, fmt.Errorf("%w: decoded %d bytes, want %d", ErrCorrupt, size, length)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unknown block mode %d", ErrCorrupt, data[0])
}
