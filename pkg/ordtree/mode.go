package ordtree

import "errors"

// Mode selects the ordering discipline a Tree maintains.
type Mode int

// Tree mode constants.
const (
	ModeBST Mode = iota
	ModeHeap
)

// Polarity selects the direction of heap ordering.
type Polarity int

// Heap polarity constants.
const (
	PolarityMin Polarity = iota
	PolarityMax
)

// Parse errors.
var (
	ErrInvalidMode     = errors.New("invalid tree mode")
	ErrInvalidPolarity = errors.New("invalid heap polarity")
)

// ParseMode converts a string to a Mode value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bst":
		return ModeBST, nil
	case "heap":
		return ModeHeap, nil
	default:
		return ModeBST, ErrInvalidMode
	}
}

// ParsePolarity converts a string to a Polarity value.
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "min":
		return PolarityMin, nil
	case "max":
		return PolarityMax, nil
	default:
		return PolarityMin, ErrInvalidPolarity
	}
}

// String returns the canonical name of the mode.
func (m Mode) String() string {
	if m == ModeHeap {
		return "heap"
	}

	return "bst"
}

// String returns the canonical name of the polarity.
func (p Polarity) String() string {
	if p == PolarityMax {
		return "max"
	}

	return "min"
}

// ShouldPromote reports whether a child value must move above its parent
// to restore heap order under this polarity.
func (p Polarity) ShouldPromote(child, parent int64) bool {
	if p == PolarityMax {
		return child > parent
	}

	return child < parent
}
