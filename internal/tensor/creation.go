package tensor

import (
	"fmt"
	"unsafe"
)

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy T
	dtype := inferDataType(dummy)

	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}

	if len(data) > 0 {
		src := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*dtype.Size())
		copy(raw.data, src)
	}
	return raw, nil
}

// FromFloat64 creates a Float64 tensor from a slice.
// Panics on a size mismatch (programmer error).
func FromFloat64(data []float64, shape Shape) *RawTensor {
	raw, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return raw
}

// FromFloat32 creates a Float32 tensor from a slice.
// Panics on a size mismatch (programmer error).
func FromFloat32(data []float32, shape Shape) *RawTensor {
	raw, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return raw
}

// Zeros creates a zero-initialized tensor.
// Panics on invalid shapes (programmer error).
func Zeros(shape Shape, dtype DataType) *RawTensor {
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		panic(err)
	}
	return raw
}

// Full creates a Float64 tensor filled with the given value.
func Full(shape Shape, value float64) *RawTensor {
	raw := Zeros(shape, Float64)
	data := raw.AsFloat64()
	for i := range data {
		data[i] = value
	}
	return raw
}
