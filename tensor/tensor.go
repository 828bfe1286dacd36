// Copyright 2025 TupleFit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense tensor
// representation used as tuple leaves.
//
// A RawTensor is a contiguous, typed, n-dimensional buffer. Row-oriented
// operations (Cat, Split, Rows) act on the leading dimension, which the
// rest of the library treats as the batch dimension.
//
// Example:
//
//	x := tensor.FromFloat64([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	chunks, _ := x.Split(1)
//	y, _ := tensor.Cat(chunks, 0)
package tensor

import (
	"github.com/tuplefit-ml/tuplefit/internal/tensor"
)

// DType is a constraint for tensor element types.
// Supported types: float32, float64, int32, int64, uint8.
type DType = tensor.DType

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
)

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// RawTensor is a dense n-dimensional buffer with an element type.
type RawTensor = tensor.RawTensor

// Sentinel errors for row-oriented operations.
var (
	ErrEmptyCat       = tensor.ErrEmptyCat
	ErrDTypeMismatch  = tensor.ErrDTypeMismatch
	ErrShapeMismatch  = tensor.ErrShapeMismatch
	ErrUnsupportedDim = tensor.ErrUnsupportedDim
)

// FromSlice creates a tensor from a typed slice.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromFloat64 creates a float64 tensor, panicking on a size mismatch.
func FromFloat64(data []float64, shape Shape) *RawTensor {
	return tensor.FromFloat64(data, shape)
}

// FromFloat32 creates a float32 tensor, panicking on a size mismatch.
func FromFloat32(data []float32, shape Shape) *RawTensor {
	return tensor.FromFloat32(data, shape)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType) *RawTensor {
	return tensor.Zeros(shape, dtype)
}

// Full creates a float64 tensor filled with a constant.
func Full(shape Shape, value float64) *RawTensor {
	return tensor.Full(shape, value)
}

// Cat concatenates tensors along the leading dimension.
func Cat(tensors []*RawTensor, dim int) (*RawTensor, error) {
	return tensor.Cat(tensors, dim)
}
