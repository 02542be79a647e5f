package ordtree

import (
	"bytes"
	"encoding/binary"

	"github.com/pierrec/lz4/v4"
)

// uint32ByteSize is the number of bytes in a uint32.
const uint32ByteSize = 4

// CompressUInt32Slice compresses a slice of uint32-s with LZ4.
func CompressUInt32Slice(data []uint32) []byte {
	buf := new(bytes.Buffer)

	writeErr := binary.Write(buf, binary.LittleEndian, data)
	if writeErr != nil {
		return nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(buf.Len()))

	written, err := lz4.CompressBlock(buf.Bytes(), compressed, nil)
	if err != nil || written == 0 {
		return nil
	}

	return compressed[:written]
}

// DecompressUInt32Slice decompresses a slice of uint32-s previously
// compressed with LZ4. `result` must be preallocated.
func DecompressUInt32Slice(data []byte, result []uint32) error {
	decompressed := make([]byte, len(result)*uint32ByteSize)

	if _, err := lz4.UncompressBlock(data, decompressed); err != nil {
		return err
	}

	return binary.Read(bytes.NewReader(decompressed), binary.LittleEndian, result)
}

// DeltaEncodeUInt32Slice replaces each element with the difference from
// its predecessor, in place. The first element is left unchanged. Sorted
// sequences become small, repetitive values that compress better.
func DeltaEncodeUInt32Slice(data []uint32) {
	for i := len(data) - 1; i > 0; i-- {
		data[i] -= data[i-1]
	}
}

// DeltaDecodeUInt32Slice performs a prefix-sum to restore original values
// from deltas produced by DeltaEncodeUInt32Slice, in place.
func DeltaDecodeUInt32Slice(data []uint32) {
	for i := 1; i < len(data); i++ {
		data[i] += data[i-1]
	}
}
