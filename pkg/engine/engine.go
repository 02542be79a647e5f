// Package engine applies user operations to an ordered tree and reports
// each result as a single Outcome. The engine has exclusive use of its
// tree for the duration of one operation; callers sequence operations.
package engine

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
)

// Op identifies one of the user-committable operations.
type Op int

// Operation constants.
const (
	OpInsert Op = iota
	OpSearch
	OpDelete
	OpClear
)

// ErrInvalidOp is returned when parsing an invalid operation string.
var ErrInvalidOp = errors.New("invalid operation")

// ParseOp converts a string to an Op value.
func ParseOp(s string) (Op, error) {
	switch s {
	case "insert":
		return OpInsert, nil
	case "search":
		return OpSearch, nil
	case "delete":
		return OpDelete, nil
	case "clear":
		return OpClear, nil
	default:
		return OpInsert, ErrInvalidOp
	}
}

// String returns the canonical name of the operation.
func (op Op) String() string {
	switch op {
	case OpInsert:
		return "insert"
	case OpSearch:
		return "search"
	case OpDelete:
		return "delete"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Engine applies operations to one tree.
type Engine struct {
	tree *ordtree.Tree

	// verify enables the post-operation invariant walk. A failed walk
	// is a defect in the tree code and panics rather than corrupting
	// the structure silently.
	verify bool
}

// New creates an engine bound to the given tree. When verify is true,
// every mutating operation is followed by a full invariant check.
func New(tree *ordtree.Tree, verify bool) *Engine {
	return &Engine{tree: tree, verify: verify}
}

// Tree returns the engine's tree.
func (e *Engine) Tree() *ordtree.Tree {
	return e.tree
}

// Apply runs one operation against the tree and returns its Outcome.
// The value argument is ignored for OpClear.
func (e *Engine) Apply(op Op, value int64) Outcome {
	outcome := e.apply(op, value)

	if e.verify {
		if err := e.tree.Verify(); err != nil {
			panic(fmt.Sprintf("engine: %s left the tree corrupt: %v", op, err))
		}
	}

	return outcome
}

func (e *Engine) apply(op Op, value int64) Outcome {
	switch op {
	case OpInsert:
		err := e.tree.Insert(value)
		if errors.Is(err, ordtree.ErrDuplicate) {
			return Outcome{Kind: OutcomeDuplicateRejected, Value: value}
		}

		return Outcome{Kind: OutcomeInserted, Value: value}
	case OpSearch:
		if e.tree.Search(value) {
			return Outcome{Kind: OutcomeFound, Value: value}
		}

		return Outcome{Kind: OutcomeNotFound, Value: value}
	case OpDelete:
		err := e.tree.Delete(value)
		if errors.Is(err, ordtree.ErrNotFound) {
			return Outcome{Kind: OutcomeNotFound, Value: value}
		}

		return Outcome{Kind: OutcomeDeleted, Value: value}
	case OpClear:
		// Clearing an already empty tree is still a Cleared outcome.
		e.tree.Clear()

		return Outcome{Kind: OutcomeCleared}
	default:
		return Outcome{Kind: OutcomeValidationError, Reason: ErrInvalidOp}
	}
}
