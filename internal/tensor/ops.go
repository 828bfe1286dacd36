package tensor

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrEmptyCat       = errors.New("cat: at least one tensor required")
	ErrDTypeMismatch  = errors.New("tensors have different dtypes")
	ErrShapeMismatch  = errors.New("tensors have different trailing shapes")
	ErrUnsupportedDim = errors.New("only dim=0 is supported")
)

// Cat concatenates tensors along the leading dimension.
//
// All tensors must share dtype and trailing shape. Only dim=0 is
// implemented: batched data is always stacked in the batch dimension.
func Cat(tensors []*RawTensor, dim int) (*RawTensor, error) {
	if dim != 0 {
		return nil, fmt.Errorf("cat along dim %d: %w", dim, ErrUnsupportedDim)
	}
	if len(tensors) == 0 {
		return nil, ErrEmptyCat
	}
	if len(tensors) == 1 {
		return tensors[0].Clone(), nil
	}

	first := tensors[0]
	rows := 0
	for _, t := range tensors {
		if t.DType() != first.DType() {
			return nil, fmt.Errorf("cat: %w: %s vs %s", ErrDTypeMismatch, first.DType(), t.DType())
		}
		if !t.Shape().Tail().Equal(first.Shape().Tail()) {
			return nil, fmt.Errorf("cat: %w: %v vs %v", ErrShapeMismatch, first.Shape(), t.Shape())
		}
		rows += t.Len()
	}

	shape := append(Shape{rows}, first.Shape().Tail()...)
	out, err := NewRaw(shape, first.DType())
	if err != nil {
		return nil, err
	}

	offset := 0
	for _, t := range tensors {
		copy(out.data[offset:], t.data)
		offset += len(t.data)
	}
	return out, nil
}

// Split chunks the tensor along the leading dimension into pieces of
// splitSize rows each. The last chunk may be smaller.
func (r *RawTensor) Split(splitSize int) ([]*RawTensor, error) {
	if splitSize <= 0 {
		return nil, fmt.Errorf("split size must be positive, got %d", splitSize)
	}
	if len(r.shape) == 0 {
		return nil, fmt.Errorf("cannot split 0-dimensional tensor")
	}

	rows := r.Len()
	if rows == 0 {
		return nil, nil
	}
	rowBytes := r.ByteSize() / rows

	var chunks []*RawTensor
	for start := 0; start < rows; start += splitSize {
		end := start + splitSize
		if end > rows {
			end = rows
		}
		shape := append(Shape{end - start}, r.shape.Tail()...)
		chunk, err := NewRaw(shape, r.dtype)
		if err != nil {
			return nil, err
		}
		copy(chunk.data, r.data[start*rowBytes:end*rowBytes])
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Rows gathers the given rows of the leading dimension into a new tensor.
// Used by shuffled batching.
func (r *RawTensor) Rows(indices []int) (*RawTensor, error) {
	if len(r.shape) == 0 {
		return nil, fmt.Errorf("cannot index 0-dimensional tensor")
	}
	rows := r.Len()
	if rows == 0 && len(indices) > 0 {
		return nil, fmt.Errorf("row index out of bounds for empty tensor")
	}
	rowBytes := 0
	if rows > 0 {
		rowBytes = r.ByteSize() / rows
	}

	shape := append(Shape{len(indices)}, r.shape.Tail()...)
	out, err := NewRaw(shape, r.dtype)
	if err != nil {
		return nil, err
	}
	for i, idx := range indices {
		if idx < 0 || idx >= rows {
			return nil, fmt.Errorf("row index %d out of bounds for length %d", idx, rows)
		}
		copy(out.data[i*rowBytes:], r.data[idx*rowBytes:(idx+1)*rowBytes])
	}
	return out, nil
}

// Convert returns a copy of the tensor with elements converted to dtype.
// Conversions between numeric types follow Go conversion semantics
// (floats truncate toward zero when converted to integers).
func (r *RawTensor) Convert(dtype DataType) (*RawTensor, error) {
	if dtype == r.dtype {
		return r.Clone(), nil
	}

	out, err := NewRaw(r.shape, dtype)
	if err != nil {
		return nil, err
	}

	n := r.NumElements()
	for i := 0; i < n; i++ {
		setFloat(out, i, getFloat(r, i))
	}
	return out, nil
}

// getFloat reads element i as float64 regardless of dtype.
func getFloat(r *RawTensor, i int) float64 {
	switch r.dtype {
	case Float32:
		return float64(r.AsFloat32()[i])
	case Float64:
		return r.AsFloat64()[i]
	case Int32:
		return float64(r.AsInt32()[i])
	case Int64:
		return float64(r.AsInt64()[i])
	case Uint8:
		return float64(r.AsUint8()[i])
	default:
		panic("unknown data type")
	}
}

// setFloat writes element i from a float64, converting to the tensor dtype.
func setFloat(r *RawTensor, i int, v float64) {
	switch r.dtype {
	case Float32:
		r.AsFloat32()[i] = float32(v)
	case Float64:
		r.AsFloat64()[i] = v
	case Int32:
		r.AsInt32()[i] = int32(v)
	case Int64:
		r.AsInt64()[i] = int64(v)
	case Uint8:
		r.AsUint8()[i] = uint8(v)
	default:
		panic("unknown data type")
	}
}
