package ordtree //nolint:testpackage // tests inspect unexported fields (storage, gaps)

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorIDZeroReserved(t *testing.T) {
	t.Parallel()

	alloc := NewAllocator()

	first := alloc.malloc()
	assert.Equal(t, uint32(1), first, "id 0 is the nil sentinel")

	// Storage holds the sentinel slot plus the allocated node.
	assert.Equal(t, 2, alloc.Size())
}

func TestAllocatorReusesGaps(t *testing.T) {
	t.Parallel()

	alloc := NewAllocator()

	a := alloc.malloc()
	b := alloc.malloc()
	sizeBefore := alloc.Size()

	alloc.free(a)
	assert.Equal(t, sizeBefore-1, alloc.Used())

	c := alloc.malloc()
	assert.Equal(t, a, c, "freed slot is recycled")
	assert.Equal(t, sizeBefore, alloc.Size())
	assert.NotEqual(t, b, c)
}

func TestAllocatorFreePanics(t *testing.T) {
	t.Parallel()

	alloc := NewAllocator()
	id := alloc.malloc()
	alloc.free(id)

	assert.Panics(t, func() { alloc.free(id) }, "double free")
	assert.Panics(t, func() { alloc.free(0) }, "freeing the nil sentinel")
}

func TestAllocatorReset(t *testing.T) {
	t.Parallel()

	alloc := NewAllocator()
	for range 10 {
		alloc.malloc()
	}

	alloc.Reset()
	assert.Equal(t, 0, alloc.Used())

	id := alloc.malloc()
	assert.Equal(t, uint32(1), id, "reset starts the arena over")
}

func TestHibernateBootRoundTrip(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)
	require.NoError(t, tree.Delete(3)) // leave a gap to hibernate too

	alloc := tree.Allocator()
	alloc.Hibernate()
	require.True(t, alloc.Hibernated())

	alloc.Boot()
	require.False(t, alloc.Hibernated())

	assert.Equal(t, []int64{5, 7, 10, 12, 15, 18}, tree.Traverse(InOrder))
	require.NoError(t, tree.Verify())

	// The gap survived the round trip: reinsert fills it in place.
	sizeBefore := alloc.Size()
	require.NoError(t, tree.Insert(3))
	assert.Equal(t, sizeBefore, alloc.Size())
}

func TestHibernateEmptyAllocator(t *testing.T) {
	t.Parallel()

	alloc := NewAllocator()

	alloc.Hibernate()
	require.True(t, alloc.Hibernated())

	alloc.Boot()
	require.False(t, alloc.Hibernated())

	id := alloc.malloc()
	assert.Equal(t, uint32(1), id)
}

func TestHibernateRespectsThreshold(t *testing.T) {
	t.Parallel()

	alloc := NewAllocator()
	alloc.HibernationThreshold = 1024
	alloc.malloc()

	sizeBefore := alloc.Size()

	alloc.Hibernate()
	assert.False(t, alloc.Hibernated(), "small arenas stay uncompressed")
	assert.Equal(t, sizeBefore, alloc.Size())
}

func TestHibernateTwicePanics(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)
	alloc := tree.Allocator()

	alloc.Hibernate()
	assert.Panics(t, func() { alloc.Hibernate() })
}

func TestHibernateNegativeValues(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, -1, -100, 100, 0)
	alloc := tree.Allocator()

	alloc.Hibernate()
	alloc.Boot()

	assert.Equal(t, []int64{-100, -1, 0, 100}, tree.Traverse(InOrder))
}

func TestSplitJoinInt64(t *testing.T) {
	t.Parallel()

	for _, value := range []int64{0, 1, -1, 42, -4096, 1 << 40, -(1 << 40), 9223372036854775807, -9223372036854775808} {
		lo, hi := splitInt64(value)
		assert.Equal(t, value, joinInt64(lo, hi), "value %d", value)
	}
}
