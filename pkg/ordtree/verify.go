package ordtree

import (
	"errors"
	"fmt"
)

// ErrCorrupt is wrapped by every Verify failure.
var ErrCorrupt = errors.New("tree invariant violated")

func doAssert(condition bool) {
	if !condition {
		panic("ordtree internal assertion failed")
	}
}

// Verify walks the whole tree and checks the mode invariant. A non-nil
// error indicates a defect in the tree code itself, not bad input;
// callers are expected to fail loudly on it.
func (tree *Tree) Verify() error {
	if tree.mode == ModeHeap {
		return tree.verifyHeap()
	}

	return tree.verifyBST()
}

func (tree *Tree) verifyBST() error {
	values := tree.Traverse(InOrder)
	if len(values) != tree.count {
		return fmt.Errorf("%w: reachable %d nodes, count says %d", ErrCorrupt, len(values), tree.count)
	}

	for i := 1; i < len(values); i++ {
		if values[i-1] >= values[i] {
			return fmt.Errorf("%w: in-order not strictly ascending at %d (%d >= %d)",
				ErrCorrupt, i, values[i-1], values[i])
		}
	}

	return nil
}

func (tree *Tree) verifyHeap() error {
	if len(tree.slots) != tree.count {
		return fmt.Errorf("%w: %d slots, count says %d", ErrCorrupt, len(tree.slots), tree.count)
	}

	if tree.count > 0 && tree.root != tree.slots[0] {
		return fmt.Errorf("%w: root id %d is not slot 0 (%d)", ErrCorrupt, tree.root, tree.slots[0])
	}

	alloc := tree.storage()

	for pos := 1; pos < len(tree.slots); pos++ {
		child := alloc[tree.slots[pos]].value
		parent := alloc[tree.slots[(pos-1)/2]].value

		if tree.polarity.ShouldPromote(child, parent) {
			return fmt.Errorf("%w: %s-heap order broken at position %d (parent %d, child %d)",
				ErrCorrupt, tree.polarity, pos, parent, child)
		}
	}

	// The derived links must agree with the complete-tree shape.
	for pos, id := range tree.slots {
		left, right := uint32(0), uint32(0)

		if l := 2*pos + 1; l < len(tree.slots) {
			left = tree.slots[l]
		}

		if r := 2*pos + 2; r < len(tree.slots) {
			right = tree.slots[r]
		}

		if alloc[id].left != left || alloc[id].right != right {
			return fmt.Errorf("%w: links at position %d disagree with complete-tree shape", ErrCorrupt, pos)
		}
	}

	return nil
}
