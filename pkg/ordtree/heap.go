package ordtree

// Heap-mode operations. The heap is a complete binary tree: slots holds
// node ids in insertion order and position arithmetic derives the
// parent/child relationships, while the arena nodes carry the same
// left/right links the BST uses so both modes share one snapshot and
// render path. Bubble-up and sift-down swap values, never node
// identities, so the links stay stable.

// heapInsert appends the value at the next free complete-tree position
// and bubbles it up. Returns the number of swaps performed; zero when the
// value already satisfies heap order against its parent.
func (tree *Tree) heapInsert(value int64) int {
	nodeIdx := tree.allocator.malloc()
	alloc := tree.storage()
	alloc[nodeIdx].value = value

	pos := len(tree.slots)
	tree.slots = append(tree.slots, nodeIdx)
	tree.count++

	if pos == 0 {
		tree.root = nodeIdx

		return 0
	}

	parentPos := (pos - 1) / 2
	parentIdx := tree.slots[parentPos]

	if pos%2 == 1 {
		alloc[parentIdx].left = nodeIdx
	} else {
		alloc[parentIdx].right = nodeIdx
	}

	return tree.bubbleUp(pos)
}

// bubbleUp restores heap order from the given position toward the root.
func (tree *Tree) bubbleUp(pos int) int {
	alloc := tree.storage()
	swaps := 0

	for pos > 0 {
		parentPos := (pos - 1) / 2
		child, parent := tree.slots[pos], tree.slots[parentPos]

		if !tree.polarity.ShouldPromote(alloc[child].value, alloc[parent].value) {
			break
		}

		alloc[child].value, alloc[parent].value = alloc[parent].value, alloc[child].value
		pos = parentPos
		swaps++
	}

	return swaps
}

// PeekRoot returns the dominant value without mutating the heap.
// The second return value is false for an empty heap.
func (tree *Tree) PeekRoot() (int64, bool) {
	if tree.root == 0 {
		return 0, false
	}

	return tree.storage()[tree.root].value, true
}

// heapExtract removes the root when it matches the requested value: the
// root and last values are swapped, the last node is detached and freed,
// and the new root value sifts down until heap order holds again.
func (tree *Tree) heapExtract(value int64) error {
	root, ok := tree.PeekRoot()
	if !ok || root != value {
		return ErrNotFound
	}

	alloc := tree.storage()
	lastPos := len(tree.slots) - 1
	lastIdx := tree.slots[lastPos]

	alloc[tree.root].value = alloc[lastIdx].value

	if lastPos == 0 {
		tree.root = 0
	} else {
		parentIdx := tree.slots[(lastPos-1)/2]
		if lastPos%2 == 1 {
			alloc[parentIdx].left = 0
		} else {
			alloc[parentIdx].right = 0
		}
	}

	tree.allocator.free(lastIdx)
	tree.slots = tree.slots[:lastPos]
	tree.count--

	if lastPos > 0 {
		tree.siftDown(0)
	}

	return nil
}

// siftDown restores heap order from the given position toward the leaves.
func (tree *Tree) siftDown(pos int) {
	alloc := tree.storage()

	for {
		best := pos

		for _, childPos := range []int{2*pos + 1, 2*pos + 2} {
			if childPos >= len(tree.slots) {
				continue
			}

			childVal := alloc[tree.slots[childPos]].value
			if tree.polarity.ShouldPromote(childVal, alloc[tree.slots[best]].value) {
				best = childPos
			}
		}

		if best == pos {
			return
		}

		curIdx, bestIdx := tree.slots[pos], tree.slots[best]
		alloc[curIdx].value, alloc[bestIdx].value = alloc[bestIdx].value, alloc[curIdx].value
		pos = best
	}
}
