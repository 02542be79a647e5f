package ordtree

// NodeView is the read-only projection of one node handed to render
// ports. Left and Right are node ids within the same snapshot; 0 means
// no child.
type NodeView struct {
	ID    uint32
	Value int64
	Left  uint32
	Right uint32
}

// Snapshot returns a read-only copy of the tree in level order, root
// first. Mutating the tree after Snapshot does not affect the result.
func (tree *Tree) Snapshot() []NodeView {
	if tree.root == 0 {
		return nil
	}

	alloc := tree.storage()
	views := make([]NodeView, 0, tree.count)
	queue := []uint32{tree.root}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		views = append(views, NodeView{
			ID:    cur,
			Value: alloc[cur].value,
			Left:  alloc[cur].left,
			Right: alloc[cur].right,
		})

		if alloc[cur].left != 0 {
			queue = append(queue, alloc[cur].left)
		}

		if alloc[cur].right != 0 {
			queue = append(queue, alloc[cur].right)
		}
	}

	return views
}

// Root returns the root node id, 0 for an empty tree.
func (tree *Tree) Root() uint32 {
	return tree.root
}
