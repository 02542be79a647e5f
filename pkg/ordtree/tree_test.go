package ordtree //nolint:testpackage // tests inspect unexported fields (root, slots, storage)

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// canonicalValues builds the reference shape used across tests:
//
//	     10
//	   /    \
//	  5      15
//	 / \    /  \
//	3   7  12  18
var canonicalValues = []int64{10, 5, 15, 3, 7, 12, 18}

func testNewBST(tb testing.TB, values ...int64) *Tree {
	tb.Helper()

	tree := NewBST(NewAllocator())
	for _, v := range values {
		require.NoError(tb, tree.Insert(v))
	}

	return tree
}

func TestBSTEmpty(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t)

	assert.Equal(t, 0, tree.Len())
	assert.True(t, tree.Empty())
	assert.False(t, tree.Search(10))
	assert.Empty(t, tree.Traverse(InOrder))
	assert.Empty(t, tree.Snapshot())

	_, ok := tree.Min()
	assert.False(t, ok)

	require.ErrorIs(t, tree.Delete(10), ErrNotFound)
	require.NoError(t, tree.Verify())
}

func TestBSTCanonicalTraversals(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)

	assert.Equal(t, []int64{3, 5, 7, 10, 12, 15, 18}, tree.Traverse(InOrder))
	assert.Equal(t, []int64{10, 5, 3, 7, 15, 12, 18}, tree.Traverse(PreOrder))
	assert.Equal(t, []int64{3, 7, 5, 12, 18, 15, 10}, tree.Traverse(PostOrder))
	assert.Equal(t, []int64{10, 5, 15, 3, 7, 12, 18}, tree.Traverse(LevelOrder))
	require.NoError(t, tree.Verify())
}

func TestBSTDuplicateRejected(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)

	require.ErrorIs(t, tree.Insert(7), ErrDuplicate)
	assert.Equal(t, 7, tree.Len())
	assert.Equal(t, []int64{3, 5, 7, 10, 12, 15, 18}, tree.Traverse(InOrder))
}

func TestBSTSearch(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)

	for _, v := range canonicalValues {
		assert.True(t, tree.Search(v), "expected %d present", v)
	}

	assert.False(t, tree.Search(4))
	assert.False(t, tree.Search(100))
}

func TestBSTDeleteLeaf(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)

	require.NoError(t, tree.Delete(3))
	assert.Equal(t, []int64{5, 7, 10, 12, 15, 18}, tree.Traverse(InOrder))
	assert.Equal(t, 6, tree.Len())
	require.NoError(t, tree.Verify())
}

func TestBSTDeleteSingleChild(t *testing.T) {
	t.Parallel()

	// 5 keeps only its left child after 7 goes.
	tree := testNewBST(t, canonicalValues...)

	require.NoError(t, tree.Delete(7))
	require.NoError(t, tree.Delete(5))

	assert.Equal(t, []int64{3, 10, 12, 15, 18}, tree.Traverse(InOrder))
	assert.Equal(t, []int64{10, 3, 15, 12, 18}, tree.Traverse(PreOrder))
	require.NoError(t, tree.Verify())
}

func TestBSTDeleteRootUsesSuccessor(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)

	require.NoError(t, tree.Delete(10))

	// The in-order successor 12 takes the root's place.
	alloc := tree.storage()
	assert.Equal(t, int64(12), alloc[tree.root].value)
	assert.Equal(t, []int64{3, 5, 7, 12, 15, 18}, tree.Traverse(InOrder))
	assert.Equal(t, []int64{12, 5, 3, 7, 15, 18}, tree.Traverse(PreOrder))
	require.NoError(t, tree.Verify())
}

func TestBSTDeleteAll(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)

	for _, v := range canonicalValues {
		require.NoError(t, tree.Delete(v))
		require.NoError(t, tree.Verify())
	}

	assert.True(t, tree.Empty())
	assert.Equal(t, uint32(0), tree.root)
}

func TestBSTClearIsIdempotent(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)

	tree.Clear()
	assert.True(t, tree.Empty())
	assert.Equal(t, 0, tree.Allocator().Used())

	// Clearing an already empty tree succeeds and changes nothing.
	tree.Clear()
	assert.True(t, tree.Empty())

	require.NoError(t, tree.Insert(42))
	assert.Equal(t, []int64{42}, tree.Traverse(InOrder))
}

func TestBSTNodeReuseAfterDelete(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)
	sizeBefore := tree.Allocator().Size()

	require.NoError(t, tree.Delete(3))
	require.NoError(t, tree.Insert(4))

	// The freed slot is recycled, the arena does not grow.
	assert.Equal(t, sizeBefore, tree.Allocator().Size())
	assert.Equal(t, []int64{4, 5, 7, 10, 12, 15, 18}, tree.Traverse(InOrder))
}

func TestBSTMinMax(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)

	minValue, ok := tree.Min()
	require.True(t, ok)
	assert.Equal(t, int64(3), minValue)

	maxValue, ok := tree.Max()
	require.True(t, ok)
	assert.Equal(t, int64(18), maxValue)
}

func TestBSTNegativeValues(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, 0, -5, 5, -10, 10)

	assert.Equal(t, []int64{-10, -5, 0, 5, 10}, tree.Traverse(InOrder))
	assert.True(t, tree.Search(-10))
	require.NoError(t, tree.Delete(-5))
	assert.Equal(t, []int64{-10, 0, 5, 10}, tree.Traverse(InOrder))
	require.NoError(t, tree.Verify())
}

func TestBSTRandomizedAgainstSortedSlice(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic test data
	tree := testNewBST(t)
	reference := map[int64]bool{}

	for range 2000 {
		value := int64(rng.Intn(500) - 250)

		switch rng.Intn(3) {
		case 0:
			err := tree.Insert(value)
			if reference[value] {
				require.ErrorIs(t, err, ErrDuplicate)
			} else {
				require.NoError(t, err)
				reference[value] = true
			}
		case 1:
			err := tree.Delete(value)
			if reference[value] {
				require.NoError(t, err)
				delete(reference, value)
			} else {
				require.ErrorIs(t, err, ErrNotFound)
			}
		case 2:
			assert.Equal(t, reference[value], tree.Search(value))
		}
	}

	expected := make([]int64, 0, len(reference))
	for value := range reference {
		expected = append(expected, value)
	}

	slices.Sort(expected)

	assert.Equal(t, expected, tree.Traverse(InOrder))
	require.NoError(t, tree.Verify())
}

func TestSnapshotLinksMatchShape(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)
	views := tree.Snapshot()

	require.Len(t, views, 7)

	// Level order starts at the root.
	assert.Equal(t, tree.Root(), views[0].ID)
	assert.Equal(t, int64(10), views[0].Value)

	byID := map[uint32]NodeView{}
	for _, view := range views {
		byID[view.ID] = view
	}

	root := views[0]
	assert.Equal(t, int64(5), byID[root.Left].Value)
	assert.Equal(t, int64(15), byID[root.Right].Value)
	assert.Equal(t, int64(12), byID[byID[root.Right].Left].Value)
}

func TestParseOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Order
		wantErr bool
	}{
		{input: "pre", want: PreOrder},
		{input: "in", want: InOrder},
		{input: "post", want: PostOrder},
		{input: "level", want: LevelOrder},
		{input: "sideways", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOrder(tt.input)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseModeAndPolarity(t *testing.T) {
	t.Parallel()

	mode, err := ParseMode("bst")
	require.NoError(t, err)
	assert.Equal(t, ModeBST, mode)

	mode, err = ParseMode("heap")
	require.NoError(t, err)
	assert.Equal(t, ModeHeap, mode)

	_, err = ParseMode("avl")
	require.ErrorIs(t, err, ErrInvalidMode)

	polarity, err := ParsePolarity("min")
	require.NoError(t, err)
	assert.Equal(t, PolarityMin, polarity)

	polarity, err = ParsePolarity("max")
	require.NoError(t, err)
	assert.Equal(t, PolarityMax, polarity)

	_, err = ParsePolarity("mid")
	require.ErrorIs(t, err, ErrInvalidPolarity)
}

func TestVerifyDetectsBrokenOrdering(t *testing.T) {
	t.Parallel()

	tree := testNewBST(t, canonicalValues...)

	// Corrupt a value directly to break the in-order invariant.
	tree.storage()[tree.root].value = 1

	require.ErrorIs(t, tree.Verify(), ErrCorrupt)
}
