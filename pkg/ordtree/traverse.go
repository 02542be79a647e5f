package ordtree

import "errors"

// Order selects a traversal order.
type Order int

// Traversal order constants.
const (
	PreOrder Order = iota
	InOrder
	PostOrder
	LevelOrder
)

// ErrInvalidOrder is returned when parsing an invalid traversal order string.
var ErrInvalidOrder = errors.New("invalid traversal order")

// ParseOrder converts a string to an Order value.
func ParseOrder(s string) (Order, error) {
	switch s {
	case "pre":
		return PreOrder, nil
	case "in":
		return InOrder, nil
	case "post":
		return PostOrder, nil
	case "level":
		return LevelOrder, nil
	default:
		return InOrder, ErrInvalidOrder
	}
}

// String returns the canonical name of the order.
func (o Order) String() string {
	switch o {
	case PreOrder:
		return "pre"
	case PostOrder:
		return "post"
	case LevelOrder:
		return "level"
	case InOrder:
		return "in"
	default:
		return "in"
	}
}

// Traverse returns the tree's values in the given order. An InOrder
// traversal of a BST is strictly ascending.
func (tree *Tree) Traverse(order Order) []int64 {
	if tree.root == 0 {
		return nil
	}

	result := make([]int64, 0, tree.count)
	alloc := tree.storage()

	if order == LevelOrder {
		queue := []uint32{tree.root}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			result = append(result, alloc[cur].value)

			if alloc[cur].left != 0 {
				queue = append(queue, alloc[cur].left)
			}

			if alloc[cur].right != 0 {
				queue = append(queue, alloc[cur].right)
			}
		}

		return result
	}

	var walk func(uint32)

	walk = func(cur uint32) {
		if cur == 0 {
			return
		}

		switch order {
		case PreOrder:
			result = append(result, alloc[cur].value)
			walk(alloc[cur].left)
			walk(alloc[cur].right)
		case PostOrder:
			walk(alloc[cur].left)
			walk(alloc[cur].right)
			result = append(result, alloc[cur].value)
		case InOrder, LevelOrder:
			walk(alloc[cur].left)
			result = append(result, alloc[cur].value)
			walk(alloc[cur].right)
		}
	}

	walk(tree.root)

	return result
}
