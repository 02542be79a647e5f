package ordtree

import "errors"

// Mutation errors. These are logical rejections, not failures: the tree
// is left exactly as it was.
var (
	ErrDuplicate = errors.New("value already present")
	ErrNotFound  = errors.New("value not found")
)

// Tree is a mutable ordered binary tree. In ModeBST it keeps strict
// search-tree ordering and rejects duplicates. In ModeHeap it keeps a
// complete binary tree ordered by the configured polarity.
//
// A Tree is not safe for concurrent use; each session owns its tree and
// applies one operation to completion at a time.
type Tree struct {
	allocator *Allocator
	root      uint32
	mode      Mode
	polarity  Polarity

	// slots lists node ids in complete-tree insertion order. Heap mode
	// only; the next free position is always len(slots).
	slots []uint32

	count int
}

// NewBST creates an empty binary search tree on the given allocator.
func NewBST(allocator *Allocator) *Tree {
	return &Tree{allocator: allocator, mode: ModeBST}
}

// NewHeap creates an empty heap with the given polarity on the given allocator.
func NewHeap(allocator *Allocator, polarity Polarity) *Tree {
	return &Tree{allocator: allocator, mode: ModeHeap, polarity: polarity}
}

// New creates an empty tree in the given mode. The polarity is ignored in
// ModeBST.
func New(allocator *Allocator, mode Mode, polarity Polarity) *Tree {
	if mode == ModeHeap {
		return NewHeap(allocator, polarity)
	}

	return NewBST(allocator)
}

// Allocator returns the bound nodes allocator.
func (tree *Tree) Allocator() *Allocator {
	return tree.allocator
}

// Mode returns the tree's ordering mode.
func (tree *Tree) Mode() Mode {
	return tree.mode
}

// Polarity returns the heap polarity. Meaningless in ModeBST.
func (tree *Tree) Polarity() Polarity {
	return tree.polarity
}

// Len returns the number of values in the tree.
func (tree *Tree) Len() int {
	return tree.count
}

// Empty reports whether the tree holds no values.
func (tree *Tree) Empty() bool {
	return tree.count == 0
}

func (tree *Tree) storage() []node {
	return tree.allocator.storage
}

// Insert adds a value to the tree. In ModeBST a duplicate returns
// ErrDuplicate and the tree is unmodified. In ModeHeap every value is
// accepted and bubbled up to its position.
func (tree *Tree) Insert(value int64) error {
	if tree.mode == ModeHeap {
		tree.heapInsert(value)

		return nil
	}

	return tree.bstInsert(value)
}

func (tree *Tree) bstInsert(value int64) error {
	if tree.root == 0 {
		nodeIdx := tree.allocator.malloc()
		tree.storage()[nodeIdx].value = value
		tree.root = nodeIdx
		tree.count++

		return nil
	}

	parent := tree.root
	alloc := tree.storage()

	for {
		parentNode := alloc[parent]

		switch {
		case value == parentNode.value:
			return ErrDuplicate
		case value < parentNode.value:
			if parentNode.left == 0 {
				nodeIdx := tree.allocator.malloc()
				alloc = tree.storage()
				alloc[nodeIdx].value = value
				alloc[parent].left = nodeIdx
				tree.count++

				return nil
			}

			parent = parentNode.left
		default:
			if parentNode.right == 0 {
				nodeIdx := tree.allocator.malloc()
				alloc = tree.storage()
				alloc[nodeIdx].value = value
				alloc[parent].right = nodeIdx
				tree.count++

				return nil
			}

			parent = parentNode.right
		}
	}
}

// Search reports whether the value is present. ModeBST descends by
// comparison; ModeHeap scans the complete-tree slots.
func (tree *Tree) Search(value int64) bool {
	alloc := tree.storage()

	if tree.mode == ModeHeap {
		for _, id := range tree.slots {
			if alloc[id].value == value {
				return true
			}
		}

		return false
	}

	cur := tree.root
	for cur != 0 {
		switch {
		case value == alloc[cur].value:
			return true
		case value < alloc[cur].value:
			cur = alloc[cur].left
		default:
			cur = alloc[cur].right
		}
	}

	return false
}

// findWithParent locates the node holding value and its parent.
// Returns (0, 0) when the value is absent; parent is 0 for the root.
func (tree *Tree) findWithParent(value int64) (nodeIdx, parent uint32) {
	alloc := tree.storage()
	nodeIdx = tree.root

	for nodeIdx != 0 {
		cmp := alloc[nodeIdx].value

		switch {
		case value == cmp:
			return nodeIdx, parent
		case value < cmp:
			parent = nodeIdx
			nodeIdx = alloc[nodeIdx].left
		default:
			parent = nodeIdx
			nodeIdx = alloc[nodeIdx].right
		}
	}

	return 0, 0
}

// Delete removes a value. In ModeBST an absent value returns ErrNotFound
// and the tree is unmodified. A node with two children is replaced by its
// in-order successor (the minimum of its right subtree), then the
// successor node is removed from the right subtree, which reduces to the
// zero- or one-child case.
//
// In ModeHeap only the root is extractable: Delete succeeds when value
// equals the current root and returns ErrNotFound otherwise.
func (tree *Tree) Delete(value int64) error {
	if tree.mode == ModeHeap {
		return tree.heapExtract(value)
	}

	nodeIdx, parent := tree.findWithParent(value)
	if nodeIdx == 0 {
		return ErrNotFound
	}

	tree.bstRemove(nodeIdx, parent)
	tree.count--

	return nil
}

// bstRemove detaches the node at nodeIdx from the tree and frees it.
func (tree *Tree) bstRemove(nodeIdx, parent uint32) {
	alloc := tree.storage()

	if alloc[nodeIdx].left != 0 && alloc[nodeIdx].right != 0 {
		// Two children: swap in the in-order successor's value, then
		// remove the successor node instead. The successor has no left
		// child, so its removal is the simple case below.
		succ := alloc[nodeIdx].right
		succParent := nodeIdx

		for alloc[succ].left != 0 {
			succParent = succ
			succ = alloc[succ].left
		}

		alloc[nodeIdx].value = alloc[succ].value
		nodeIdx, parent = succ, succParent
	}

	doAssert(alloc[nodeIdx].left == 0 || alloc[nodeIdx].right == 0)

	child := alloc[nodeIdx].right
	if child == 0 {
		child = alloc[nodeIdx].left
	}

	switch {
	case parent == 0:
		tree.root = child
	case alloc[parent].left == nodeIdx:
		alloc[parent].left = child
	default:
		alloc[parent].right = child
	}

	tree.allocator.free(nodeIdx)
}

// Clear drops every node at once. Clearing an empty tree is a no-op.
func (tree *Tree) Clear() {
	tree.allocator.Reset()
	tree.root = 0
	tree.slots = nil
	tree.count = 0
}

// Min returns the smallest value in a BST. The second return value is
// false for an empty tree.
func (tree *Tree) Min() (int64, bool) {
	if tree.root == 0 {
		return 0, false
	}

	alloc := tree.storage()
	cur := tree.root

	for alloc[cur].left != 0 {
		cur = alloc[cur].left
	}

	return alloc[cur].value, true
}

// Max returns the largest value in a BST. The second return value is
// false for an empty tree.
func (tree *Tree) Max() (int64, bool) {
	if tree.root == 0 {
		return 0, false
	}

	alloc := tree.storage()
	cur := tree.root

	for alloc[cur].right != 0 {
		cur = alloc[cur].right
	}

	return alloc[cur].value, true
}
