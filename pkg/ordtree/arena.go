// Package ordtree provides a mutable ordered binary tree backed by an
// arena allocator. A Tree maintains either binary-search-tree ordering or
// min/max-heap ordering, selected by Mode. Nodes are addressed by uint32
// ids handed out by an Allocator; id 0 is reserved and means "no node".
package ordtree

import (
	"math"
	"slices"
	"sync"

	"github.com/Sumatoshi-tech/arbor/pkg/safeconv"
)

// growCapacityNumerator and growCapacityDenominator define the 3/2 growth factor for storage.
const (
	growCapacityNumerator   = 3
	growCapacityDenominator = 2
)

// maxNodeID is reserved; an allocator can never hand it out.
const maxNodeID = math.MaxUint32

// hibernationColumns is the number of compressed buffers a hibernated
// allocator holds: value low/high halves, left links, right links, gaps.
const hibernationColumns = 5

type node struct {
	value       int64
	left, right uint32
}

// Allocator owns the node storage for one or more trees.
type Allocator struct {
	storage              []node
	gaps                 map[uint32]bool
	hibernatedData       [hibernationColumns][]byte
	HibernationThreshold int
	hibernatedStorageLen int
	hibernatedGapsLen    int
}

// NewAllocator creates an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{
		storage: []node{},
		gaps:    map[uint32]bool{},
	}
}

// Size returns the currently allocated storage length.
func (allocator *Allocator) Size() int {
	return len(allocator.storage)
}

// Used returns the number of live nodes in the allocator.
func (allocator *Allocator) Used() int {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	return len(allocator.storage) - len(allocator.gaps)
}

// Hibernated reports whether the allocator is currently hibernated.
func (allocator *Allocator) Hibernated() bool {
	return allocator.storage == nil
}

// Reset drops every node at once. Outstanding node ids become invalid.
func (allocator *Allocator) Reset() {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	allocator.storage = []node{}
	allocator.gaps = map[uint32]bool{}
}

func (allocator *Allocator) malloc() uint32 {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	if len(allocator.gaps) > 0 {
		var key uint32

		for key = range allocator.gaps {
			break
		}

		delete(allocator.gaps, key)

		return key
	}

	nodeLen := len(allocator.storage)
	if nodeLen == 0 {
		// Zero is reserved.
		allocator.storage = append(allocator.storage, node{})
		nodeLen = 1
	}

	if nodeLen >= maxNodeID {
		panic("ordtree: allocator exhausted the uint32 id space")
	}

	allocator.storage = append(allocator.storage, node{})

	return safeconv.MustIntToUint32(nodeLen)
}

func (allocator *Allocator) free(nodeIdx uint32) {
	if allocator.storage == nil {
		panic("hibernated allocators cannot be used")
	}

	if nodeIdx == 0 {
		panic("node #0 is special and cannot be deallocated")
	}

	if allocator.gaps[nodeIdx] {
		panic("ordtree: double free")
	}

	allocator.storage[nodeIdx] = node{}
	allocator.gaps[nodeIdx] = true
}

// Hibernate compresses the allocated memory. The allocator is unusable
// until Boot is called. Allocators below HibernationThreshold stay as
// they are.
func (allocator *Allocator) Hibernate() {
	if allocator.hibernatedStorageLen > 0 {
		panic("cannot hibernate an already hibernated Allocator")
	}

	if len(allocator.storage) < allocator.HibernationThreshold {
		return
	}

	allocator.hibernatedStorageLen = len(allocator.storage)
	if allocator.hibernatedStorageLen == 0 {
		allocator.storage = nil

		return
	}

	// Columns compress far better than interleaved structs.
	buffers := [hibernationColumns - 1][]uint32{}

	for idx := range buffers {
		buffers[idx] = make([]uint32, len(allocator.storage))
	}

	for idx, nd := range allocator.storage {
		lo, hi := splitInt64(nd.value)
		buffers[0][idx] = lo
		buffers[1][idx] = hi
		buffers[2][idx] = nd.left
		buffers[3][idx] = nd.right
	}

	allocator.storage = nil

	wg := &sync.WaitGroup{}
	wg.Add(len(buffers) + 1)

	for idx, buffer := range buffers {
		go func(bufIdx int, buf []uint32) {
			allocator.hibernatedData[bufIdx] = CompressUInt32Slice(buf)
			buffers[bufIdx] = nil

			wg.Done()
		}(idx, buffer)
	}

	// Gaps are compressed sorted and delta-encoded.
	go func() {
		if len(allocator.gaps) > 0 {
			allocator.hibernatedGapsLen = len(allocator.gaps)

			gapsBuffer := make([]uint32, 0, len(allocator.gaps))
			for key := range allocator.gaps {
				gapsBuffer = append(gapsBuffer, key)
			}

			slices.Sort(gapsBuffer)
			DeltaEncodeUInt32Slice(gapsBuffer)

			allocator.hibernatedData[hibernationColumns-1] = CompressUInt32Slice(gapsBuffer)
		}

		allocator.gaps = nil

		wg.Done()
	}()

	wg.Wait()
}

// Boot performs the opposite of Hibernate - decompresses and restores the
// allocated memory.
func (allocator *Allocator) Boot() {
	if allocator.storage == nil && allocator.hibernatedStorageLen == 0 {
		allocator.storage = []node{}
		allocator.gaps = map[uint32]bool{}

		return
	}

	if allocator.hibernatedStorageLen == 0 {
		// Not hibernated.
		return
	}

	allocator.gaps = map[uint32]bool{}
	buffers := [hibernationColumns - 1][]uint32{}
	errs := [hibernationColumns]error{}

	wg := &sync.WaitGroup{}
	wg.Add(len(buffers) + 1)

	for idx := range buffers {
		go func(bufIdx int) {
			buffers[bufIdx] = make([]uint32, allocator.hibernatedStorageLen)
			errs[bufIdx] = DecompressUInt32Slice(allocator.hibernatedData[bufIdx], buffers[bufIdx])
			allocator.hibernatedData[bufIdx] = nil

			wg.Done()
		}(idx)
	}

	go func() {
		if allocator.hibernatedGapsLen > 0 {
			gapData := allocator.hibernatedData[hibernationColumns-1]
			buffer := make([]uint32, allocator.hibernatedGapsLen)
			errs[hibernationColumns-1] = DecompressUInt32Slice(gapData, buffer)
			DeltaDecodeUInt32Slice(buffer)

			for _, key := range buffer {
				allocator.gaps[key] = true
			}

			allocator.hibernatedData[hibernationColumns-1] = nil
			allocator.hibernatedGapsLen = 0
		}

		wg.Done()
	}()

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			panic("ordtree: corrupted hibernation buffer: " + err.Error())
		}
	}

	capSize := (allocator.hibernatedStorageLen * growCapacityNumerator) / growCapacityDenominator
	allocator.storage = make([]node, allocator.hibernatedStorageLen, capSize)

	for idx := range allocator.storage {
		nd := &allocator.storage[idx]
		nd.value = joinInt64(buffers[0][idx], buffers[1][idx])
		nd.left = buffers[2][idx]
		nd.right = buffers[3][idx]
	}

	allocator.hibernatedStorageLen = 0
}

func splitInt64(v int64) (lo, hi uint32) {
	u := uint64(v)

	return uint32(u & math.MaxUint32), uint32(u >> 32)
}

func joinInt64(lo, hi uint32) int64 {
	return int64(uint64(lo) | uint64(hi)<<32)
}
