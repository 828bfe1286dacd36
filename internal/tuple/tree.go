// Package tuple implements an immutable nested container for heterogeneous
// trees of arrays and tensors.
//
// A Tree is either a leaf holding an opaque value (typically a
// *tensor.RawTensor or a *mat.Dense) or a node holding an ordered sequence
// of sub-trees. All operations are structural recursions that return new
// trees; a Tree is never mutated after construction.
//
// Example:
//
//	x := tensor.FromFloat64([]float64{1, 2}, tensor.Shape{2})
//	y := tensor.FromFloat64([]float64{3, 4}, tensor.Shape{2})
//	tr := tuple.Tuplefy(x, []any{y, y})
//	shapes, _ := tr.Shapes()
package tuple

import (
	"fmt"
	"reflect"
)

// Tree is an immutable, ordered, arbitrarily nested container whose leaves
// are opaque values.
type Tree struct {
	leaf     any
	children []*Tree
	isLeaf   bool
}

// Leaf wraps a single value as a leaf tree.
func Leaf(v any) *Tree {
	return &Tree{leaf: v, isLeaf: true}
}

// Node builds a tree from an ordered sequence of sub-trees.
func Node(children ...*Tree) *Tree {
	return &Tree{children: children}
}

// Tuplefy recursively converts sequences into trees.
//
// Sequence types are []any, []*Tree and *Tree itself; any other value
// passes through as a leaf. Called with several arguments it builds a node
// over them, so Tuplefy(x, y) is the two-element container (x, y).
//
// Tuplefy is idempotent: Tuplefy(Tuplefy(x)) equals Tuplefy(x).
func Tuplefy(values ...any) *Tree {
	if len(values) == 1 {
		return tuplefyValue(values[0])
	}
	children := make([]*Tree, len(values))
	for i, v := range values {
		children[i] = tuplefyValue(v)
	}
	return Node(children...)
}

func tuplefyValue(v any) *Tree {
	switch x := v.(type) {
	case *Tree:
		return x
	case []any:
		children := make([]*Tree, len(x))
		for i, sub := range x {
			children[i] = tuplefyValue(sub)
		}
		return Node(children...)
	case []*Tree:
		return Node(x...)
	default:
		return Leaf(v)
	}
}

// IsLeaf reports whether the tree is a single leaf.
func (t *Tree) IsLeaf() bool {
	return t.isLeaf
}

// Value returns the leaf value.
// Panics when called on a node (programmer error).
func (t *Tree) Value() any {
	if !t.isLeaf {
		panic("Value() called on a non-leaf tree")
	}
	return t.leaf
}

// Len returns the number of direct children. Leaves have length 0.
func (t *Tree) Len() int {
	return len(t.children)
}

// At returns the i-th direct child.
// Panics when out of range or called on a leaf (programmer error).
func (t *Tree) At(i int) *Tree {
	if t.isLeaf {
		panic("At() called on a leaf tree")
	}
	if i < 0 || i >= len(t.children) {
		panic(fmt.Sprintf("index %d out of range for tree of length %d", i, len(t.children)))
	}
	return t.children[i]
}

// Children returns the direct children. The returned slice is a copy; the
// sub-trees themselves are shared (trees are immutable).
func (t *Tree) Children() []*Tree {
	return append([]*Tree(nil), t.children...)
}

// Values returns the leaf values of a flat tree in order.
func (t *Tree) Values() ([]any, error) {
	if !t.IsFlat() {
		return nil, fmt.Errorf("Values: %w", ErrNotFlat)
	}
	if t.isLeaf {
		return []any{t.leaf}, nil
	}
	vals := make([]any, len(t.children))
	for i, c := range t.children {
		vals[i] = c.leaf
	}
	return vals, nil
}

// IsFlat reports whether none of the direct children are containers.
// A leaf is trivially flat.
func (t *Tree) IsFlat() bool {
	if t.isLeaf {
		return true
	}
	for _, c := range t.children {
		if !c.isLeaf {
			return false
		}
	}
	return true
}

// Equal reports whether two trees have identical topology and equal leaves.
//
// Tensor leaves compare by value (dtype, shape and data), matrix leaves via
// mat.Equal, and any other leaf via reflect.DeepEqual.
func (t *Tree) Equal(other *Tree) bool {
	if other == nil {
		return false
	}
	if t.isLeaf != other.isLeaf {
		return false
	}
	if t.isLeaf {
		return leafEqual(t.leaf, other.leaf)
	}
	if len(t.children) != len(other.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].Equal(other.children[i]) {
			return false
		}
	}
	return true
}

// String renders the nesting structure with leaf type names.
func (t *Tree) String() string {
	if t.isLeaf {
		return fmt.Sprintf("%T", t.leaf)
	}
	s := "("
	for i, c := range t.children {
		if i > 0 {
			s += ", "
		}
		s += c.String()
	}
	return s + ")"
}

// Types returns a parallel tree with every leaf replaced by its
// reflect.Type.
func (t *Tree) Types() *Tree {
	return t.Apply(func(v any) any {
		return reflect.TypeOf(v)
	})
}

// TypeOf returns the single type shared by every leaf in the tree.
//
// All leaves must have the same runtime type; otherwise ErrMixedTypes is
// returned, naming the offending types.
func (t *Tree) TypeOf() (reflect.Type, error) {
	types := t.Types().Flatten()
	vals, err := types.Values()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("TypeOf: %w", ErrEmpty)
	}
	first := vals[0].(reflect.Type)
	for _, v := range vals[1:] {
		if v.(reflect.Type) != first {
			return nil, fmt.Errorf("TypeOf: %w: %v vs %v", ErrMixedTypes, first, v)
		}
	}
	return first, nil
}
