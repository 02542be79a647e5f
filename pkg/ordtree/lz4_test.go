package ordtree //nolint:testpackage // keeps compression helpers exercised next to the allocator tests

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressUInt32Slice(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1)) //nolint:gosec // deterministic test data
	data := make([]uint32, 10000)

	// Arena columns are mostly small, repetitive values; model that
	// instead of raw noise, which LZ4 refuses to expand-compress.
	for i := range data {
		data[i] = uint32(i/8) + rng.Uint32()%4
	}

	compressed := CompressUInt32Slice(data)
	require.NotEmpty(t, compressed)

	restored := make([]uint32, len(data))
	require.NoError(t, DecompressUInt32Slice(compressed, restored))

	assert.Equal(t, data, restored)
}

func TestCompressEmptySlice(t *testing.T) {
	t.Parallel()

	compressed := CompressUInt32Slice([]uint32{})
	restored := []uint32{}
	_ = DecompressUInt32Slice(compressed, restored)

	assert.Empty(t, restored)
}

func TestDecompressCorruptData(t *testing.T) {
	t.Parallel()

	data := make([]uint32, 4096)
	for i := range data {
		data[i] = uint32(i / 4)
	}

	compressed := CompressUInt32Slice(data)
	require.NotEmpty(t, compressed)

	restored := make([]uint32, len(data))
	err := DecompressUInt32Slice(compressed[:len(compressed)/2], restored)
	require.Error(t, err)
}

func TestDeltaEncodeDecode(t *testing.T) {
	t.Parallel()

	original := []uint32{3, 7, 7, 10, 500, 10000}
	data := slices.Clone(original)

	DeltaEncodeUInt32Slice(data)
	assert.Equal(t, []uint32{3, 4, 0, 3, 490, 9500}, data)

	DeltaDecodeUInt32Slice(data)
	assert.Equal(t, original, data)
}

func TestDeltaEncodeShrinksCompressedSortedData(t *testing.T) {
	t.Parallel()

	// Dense sorted ids are the gaps use case; deltas compress far better.
	sorted := make([]uint32, 50000)
	for i := range sorted {
		sorted[i] = uint32(i * 2)
	}

	plain := CompressUInt32Slice(slices.Clone(sorted))

	encoded := slices.Clone(sorted)
	DeltaEncodeUInt32Slice(encoded)
	delta := CompressUInt32Slice(encoded)

	assert.Less(t, len(delta), len(plain))
}
