package tuple

import (
	"fmt"

	"github.com/tuplefit-ml/tuplefit/internal/tensor"
)

// Apply produces a new tree with f applied to every leaf, preserving
// topology exactly.
func (t *Tree) Apply(f func(v any) any) *Tree {
	if t.isLeaf {
		return Leaf(f(t.leaf))
	}
	children := make([]*Tree, len(t.children))
	for i, c := range t.children {
		children[i] = c.Apply(f)
	}
	return Node(children...)
}

// applyErr is Apply with error propagation; the first failing leaf aborts.
func (t *Tree) applyErr(f func(v any) (any, error)) (*Tree, error) {
	if t.isLeaf {
		v, err := f(t.leaf)
		if err != nil {
			return nil, err
		}
		return Leaf(v), nil
	}
	children := make([]*Tree, len(t.children))
	for i, c := range t.children {
		sub, err := c.applyErr(f)
		if err != nil {
			return nil, err
		}
		children[i] = sub
	}
	return Node(children...), nil
}

// ApplyTop applies f to each top-level element only, without recursing.
// A leaf tree is passed to f as a whole.
func (t *Tree) ApplyTop(f func(sub *Tree) *Tree) *Tree {
	if t.isLeaf {
		return f(t)
	}
	children := make([]*Tree, len(t.children))
	for i, c := range t.children {
		children[i] = f(c)
	}
	return Node(children...)
}

// Reduce folds the top-level elements into one tree of the shared element
// topology, accumulating leaf-wise with f.
//
// All top-level elements must have identical topology (validated through
// ToLevels().AllEqual()); otherwise ErrTopologyMismatch is returned.
//
// When initFn is nil the first element seeds the accumulator and the fold
// covers the remaining elements. When initFn is given, the seed is the
// first element mapped through initFn and the fold covers every element.
func (t *Tree) Reduce(f func(acc, v any) any, initFn func(v any) any) (*Tree, error) {
	if t.isLeaf || len(t.children) == 0 {
		return nil, fmt.Errorf("Reduce: %w", ErrEmpty)
	}
	if !t.ToLevels().AllEqual() {
		return nil, fmt.Errorf("Reduce: %w", ErrTopologyMismatch)
	}

	var acc *Tree
	rest := t.children
	if initFn == nil {
		acc = rest[0]
		rest = rest[1:]
	} else {
		acc = rest[0].Apply(initFn)
	}
	for _, c := range rest {
		acc = reduceRec(acc, c, f)
	}
	return acc, nil
}

func reduceRec(acc, val *Tree, f func(acc, v any) any) *Tree {
	if acc.isLeaf {
		return Leaf(f(acc.leaf, val.leaf))
	}
	children := make([]*Tree, len(acc.children))
	for i := range acc.children {
		children[i] = reduceRec(acc.children[i], val.children[i], f)
	}
	return Node(children...)
}

// ReduceTop folds the top-level elements only, without recursing.
func (t *Tree) ReduceTop(f func(acc, v *Tree) *Tree) (*Tree, error) {
	if t.isLeaf || len(t.children) == 0 {
		return nil, fmt.Errorf("ReduceTop: %w", ErrEmpty)
	}
	acc := t.children[0]
	for _, c := range t.children[1:] {
		acc = f(acc, c)
	}
	return acc, nil
}

// Flatten concatenates one nesting level at a time into the parent until
// the tree is flat. Terminates because each pass strictly reduces the
// maximum nesting depth; a flat tree is returned unchanged.
func (t *Tree) Flatten() *Tree {
	if t.isLeaf {
		return t
	}
	var children []*Tree
	for _, c := range t.children {
		if c.isLeaf {
			children = append(children, c)
		} else {
			children = append(children, c.children...)
		}
	}
	flat := Node(children...)
	if flat.IsFlat() {
		return flat
	}
	return flat.Flatten()
}

// ToLevels returns a parallel tree where every leaf is replaced by its
// nesting depth. A flat tree's leaves are at level 0.
func (t *Tree) ToLevels() *Tree {
	return t.levels(-1)
}

func (t *Tree) levels(level int) *Tree {
	if t.isLeaf {
		return Leaf(level)
	}
	children := make([]*Tree, len(t.children))
	for i, c := range t.children {
		children[i] = c.levels(level + 1)
	}
	return Node(children...)
}

// AllEqual reports whether every top-level element equals the first.
// Leaves and empty nodes are trivially all-equal.
func (t *Tree) AllEqual() bool {
	if t.isLeaf || len(t.children) == 0 {
		return true
	}
	first := t.children[0]
	for _, c := range t.children[1:] {
		if !c.Equal(first) {
			return false
		}
	}
	return true
}

// All reports whether every leaf of a flat tree is the boolean true.
// Returns ErrNotFlat for nested trees.
func (t *Tree) All() (bool, error) {
	vals, err := t.Values()
	if err != nil {
		return false, fmt.Errorf("All: %w", err)
	}
	for _, v := range vals {
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("All: %w: %T is not a bool", ErrUnsupportedLeaf, v)
		}
		if !b {
			return false, nil
		}
	}
	return true, nil
}

// Shapes returns a parallel tree of leaf shapes.
func (t *Tree) Shapes() (*Tree, error) {
	return t.applyErr(func(v any) (any, error) {
		ops, err := opsFor(v)
		if err != nil {
			return nil, fmt.Errorf("shapes: %w", err)
		}
		return ops.shape(v), nil
	})
}

// Lens returns a parallel tree of leading-dimension lengths.
func (t *Tree) Lens() (*Tree, error) {
	return t.applyErr(func(v any) (any, error) {
		ops, err := opsFor(v)
		if err != nil {
			return nil, fmt.Errorf("lens: %w", err)
		}
		return ops.length(v), nil
	})
}

// DTypes returns a parallel tree of element types.
// Matrix leaves always report float64.
func (t *Tree) DTypes() (*Tree, error) {
	return t.applyErr(func(v any) (any, error) {
		ops, err := opsFor(v)
		if err != nil {
			return nil, fmt.Errorf("dtypes: %w", err)
		}
		return ops.dtype(v), nil
	})
}

// AsType converts every leaf to the given element type.
func (t *Tree) AsType(dtype tensor.DataType) (*Tree, error) {
	return t.applyErr(func(v any) (any, error) {
		ops, err := opsFor(v)
		if err != nil {
			return nil, fmt.Errorf("astype: %w", err)
		}
		return ops.asType(v, dtype)
	})
}

// ToTensor converts every leaf to the tensor-like representation.
// Tensor leaves pass through unchanged; matrix leaves are copied into
// float64 tensors.
func (t *Tree) ToTensor() (*Tree, error) {
	return t.applyErr(leafToTensor)
}

// ToMatrix converts every leaf to the array-like representation.
// Only 2-dimensional tensors can be converted.
func (t *Tree) ToMatrix() (*Tree, error) {
	return t.applyErr(leafToMatrix)
}

// Cat concatenates the top-level elements leaf-wise along the leading
// dimension of each leaf, producing a single tree with the shared element
// topology.
//
// Requirements: dim must be 0, all leaves must share one representation,
// trailing shapes must match across elements, and all elements must have
// the same topology.
func (t *Tree) Cat(dim int) (*Tree, error) {
	if dim != 0 {
		return nil, fmt.Errorf("cat along dim %d: %w", dim, ErrUnsupportedDim)
	}

	shapes, err := t.Shapes()
	if err != nil {
		return nil, fmt.Errorf("cat: %w", err)
	}
	tails := shapes.Apply(func(v any) any {
		return v.(tensor.Shape).Tail()
	})
	if !tails.AllEqual() {
		return nil, fmt.Errorf("cat: %w", ErrShapeMismatch)
	}

	if _, err := t.TypeOf(); err != nil {
		return nil, fmt.Errorf("cat: %w", err)
	}

	agg, err := t.AggList()
	if err != nil {
		return nil, fmt.Errorf("cat: %w", err)
	}
	return agg.applyErr(func(v any) (any, error) {
		vals := v.([]any)
		ops, err := opsFor(vals[0])
		if err != nil {
			return nil, err
		}
		return ops.cat(vals)
	})
}

// Split is the structural inverse of Cat: each leaf is chunked into pieces
// of splitSize rows, and the chunks are regrouped by position into a
// sequence of trees with the original per-chunk topology.
//
// Both leaf representations are supported. Only dim=0 is implemented.
func (t *Tree) Split(splitSize, dim int) (*Tree, error) {
	if dim != 0 {
		return nil, fmt.Errorf("split along dim %d: %w", dim, ErrUnsupportedDim)
	}
	if splitSize <= 0 {
		return nil, fmt.Errorf("split size must be positive, got %d", splitSize)
	}

	chunked, err := t.applyErr(func(v any) (any, error) {
		ops, err := opsFor(v)
		if err != nil {
			return nil, fmt.Errorf("split: %w", err)
		}
		return ops.split(v, splitSize)
	})
	if err != nil {
		return nil, err
	}
	if chunked.isLeaf {
		// A lone leaf splits into a sequence of leaves.
		vals := chunked.leaf.([]any)
		parts := make([]*Tree, len(vals))
		for i, v := range vals {
			parts[i] = Leaf(v)
		}
		return Node(parts...), nil
	}
	return chunked.SplitAgg()
}

// Rows gathers the given leading-dimension indices from every leaf,
// preserving topology. Used for shuffled batching.
func (t *Tree) Rows(indices []int) (*Tree, error) {
	return t.applyErr(func(v any) (any, error) {
		ops, err := opsFor(v)
		if err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}
		return ops.rows(v, indices)
	})
}

// AggList regroups a top-level sequence of same-topology trees into one
// tree whose leaves are the per-position value sequences:
//
//	((a1, (a2, a3)), (b1, (b2, b3))) -> ([a1 b1], ([a2 b2], [a3 b3]))
//
// Inverse of SplitAgg.
func (t *Tree) AggList() (*Tree, error) {
	return t.Reduce(
		func(acc, v any) any {
			return append(acc.([]any), v)
		},
		func(v any) any {
			return []any(nil)
		},
	)
}

// SplitAgg is the inverse of AggList: per-position sequences are regrouped
// into a sequence of trees:
//
//	([a1 b1], ([a2 b2], [a3 b3])) -> ((a1, (a2, a3)), (b1, (b2, b3)))
//
// Sequence leaves must hold []any and all sequences must have the same
// length. A leaf tree passes through unchanged.
func (t *Tree) SplitAgg() (*Tree, error) {
	if t.isLeaf {
		return t, nil
	}

	seqs := make([][]any, len(t.children))
	for i, sub := range t.children {
		s, err := sub.SplitAgg()
		if err != nil {
			return nil, err
		}
		if s.isLeaf {
			vals, ok := s.leaf.([]any)
			if !ok {
				return nil, fmt.Errorf("split_agg: %w: %T is not a sequence", ErrUnsupportedLeaf, s.leaf)
			}
			seqs[i] = vals
		} else {
			vals := make([]any, len(s.children))
			for j, c := range s.children {
				vals[j] = c
			}
			seqs[i] = vals
		}
	}

	if len(seqs) == 0 {
		return nil, fmt.Errorf("split_agg: %w", ErrEmpty)
	}
	n := len(seqs[0])
	for _, s := range seqs[1:] {
		if len(s) != n {
			return nil, fmt.Errorf("split_agg: %w: sequence lengths %d vs %d", ErrTopologyMismatch, n, len(s))
		}
	}

	groups := make([]*Tree, n)
	for j := 0; j < n; j++ {
		elems := make([]any, len(seqs))
		for i := range seqs {
			elems[i] = seqs[i][j]
		}
		groups[j] = Tuplefy(elems)
	}
	return Node(groups...), nil
}
