// Copyright 2025 TupleFit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tuple provides the public API for the nested container at the
// heart of the library.
//
// A Tree is an immutable, ordered, arbitrarily nested container whose
// leaves hold tensors (*tensor.RawTensor) or matrices (*mat.Dense from
// gonum). Structural operations (Apply, Reduce, Flatten) work on any leaf
// values; array operations (Shapes, Cat, Split, AsType) require one of the
// two supported leaf representations.
//
// Example:
//
//	x := tensor.FromFloat64([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	tr := tuple.Tuplefy(x, []any{x, x})
//	batches, _ := tr.Split(1, 0)
package tuple

import (
	"github.com/tuplefit-ml/tuplefit/internal/tuple"
)

// Tree is an immutable nested container with opaque leaf values.
type Tree = tuple.Tree

// Sentinel errors shared by the tree operations.
var (
	ErrTopologyMismatch = tuple.ErrTopologyMismatch
	ErrMixedTypes       = tuple.ErrMixedTypes
	ErrUnsupportedLeaf  = tuple.ErrUnsupportedLeaf
	ErrUnsupportedDim   = tuple.ErrUnsupportedDim
	ErrShapeMismatch    = tuple.ErrShapeMismatch
	ErrNotFlat          = tuple.ErrNotFlat
	ErrEmpty            = tuple.ErrEmpty
)

// Leaf wraps a single value as a leaf tree.
func Leaf(v any) *Tree {
	return tuple.Leaf(v)
}

// Node builds a tree from an ordered sequence of sub-trees.
func Node(children ...*Tree) *Tree {
	return tuple.Node(children...)
}

// Tuplefy recursively converts values and sequences into a tree.
// It is idempotent: an existing tree passes through unchanged.
func Tuplefy(values ...any) *Tree {
	return tuple.Tuplefy(values...)
}
