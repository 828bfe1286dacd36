package tuple

import (
	"fmt"
	"reflect"

	"gonum.org/v1/gonum/mat"

	"github.com/tuplefit-ml/tuplefit/internal/tensor"
)

// Array operations dispatch over a closed two-variant leaf kind: the
// tensor-like representation (*tensor.RawTensor) and the array-like
// representation (*mat.Dense, gonum). The kind is resolved once per
// operation through leafOps rather than with scattered type switches.

type leafKind int

const (
	kindTensor leafKind = iota
	kindMatrix
	kindOther
)

func kindOf(v any) leafKind {
	switch v.(type) {
	case *tensor.RawTensor:
		return kindTensor
	case *mat.Dense:
		return kindMatrix
	default:
		return kindOther
	}
}

// leafOps is the per-representation operation table.
type leafOps struct {
	shape  func(v any) tensor.Shape
	length func(v any) int
	dtype  func(v any) tensor.DataType
	asType func(v any, dtype tensor.DataType) (any, error)
	cat    func(vals []any) (any, error)
	split  func(v any, size int) ([]any, error)
	rows   func(v any, indices []int) (any, error)
}

var tensorOps = leafOps{
	shape: func(v any) tensor.Shape {
		return v.(*tensor.RawTensor).Shape()
	},
	length: func(v any) int {
		return v.(*tensor.RawTensor).Len()
	},
	dtype: func(v any) tensor.DataType {
		return v.(*tensor.RawTensor).DType()
	},
	asType: func(v any, dtype tensor.DataType) (any, error) {
		return v.(*tensor.RawTensor).Convert(dtype)
	},
	cat: func(vals []any) (any, error) {
		ts := make([]*tensor.RawTensor, len(vals))
		for i, v := range vals {
			ts[i] = v.(*tensor.RawTensor)
		}
		return tensor.Cat(ts, 0)
	},
	split: func(v any, size int) ([]any, error) {
		chunks, err := v.(*tensor.RawTensor).Split(size)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(chunks))
		for i, c := range chunks {
			out[i] = c
		}
		return out, nil
	},
	rows: func(v any, indices []int) (any, error) {
		return v.(*tensor.RawTensor).Rows(indices)
	},
}

var matrixOps = leafOps{
	shape: func(v any) tensor.Shape {
		r, c := v.(*mat.Dense).Dims()
		return tensor.Shape{r, c}
	},
	length: func(v any) int {
		r, _ := v.(*mat.Dense).Dims()
		return r
	},
	dtype: func(v any) tensor.DataType {
		return tensor.Float64 // gonum matrices are always float64
	},
	asType: func(v any, dtype tensor.DataType) (any, error) {
		if dtype != tensor.Float64 {
			return nil, fmt.Errorf("astype %s: matrix leaves only hold float64: %w", dtype, ErrUnsupportedLeaf)
		}
		return mat.DenseCopyOf(v.(*mat.Dense)), nil
	},
	cat: func(vals []any) (any, error) {
		out := vals[0].(*mat.Dense)
		for _, v := range vals[1:] {
			var stacked mat.Dense
			stacked.Stack(out, v.(*mat.Dense))
			out = &stacked
		}
		return mat.DenseCopyOf(out), nil
	},
	split: func(v any, size int) ([]any, error) {
		m := v.(*mat.Dense)
		rows, cols := m.Dims()
		var out []any
		for start := 0; start < rows; start += size {
			end := start + size
			if end > rows {
				end = rows
			}
			chunk := mat.DenseCopyOf(m.Slice(start, end, 0, cols))
			out = append(out, chunk)
		}
		return out, nil
	},
	rows: func(v any, indices []int) (any, error) {
		m := v.(*mat.Dense)
		r, c := m.Dims()
		out := mat.NewDense(len(indices), c, nil)
		for i, idx := range indices {
			if idx < 0 || idx >= r {
				return nil, fmt.Errorf("row index %d out of range [0, %d)", idx, r)
			}
			out.SetRow(i, m.RawRowView(idx))
		}
		return out, nil
	},
}

// opsFor resolves the operation table for a leaf value.
func opsFor(v any) (*leafOps, error) {
	switch kindOf(v) {
	case kindTensor:
		return &tensorOps, nil
	case kindMatrix:
		return &matrixOps, nil
	default:
		return nil, fmt.Errorf("%w: %T (need *tensor.RawTensor or *mat.Dense)", ErrUnsupportedLeaf, v)
	}
}

// leafEqual compares two leaf values.
func leafEqual(a, b any) bool {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case kindTensor:
		return a.(*tensor.RawTensor).Equal(b.(*tensor.RawTensor))
	case kindMatrix:
		return mat.Equal(a.(*mat.Dense), b.(*mat.Dense))
	default:
		return reflect.DeepEqual(a, b)
	}
}

// leafToTensor converts a leaf to the tensor-like representation.
func leafToTensor(v any) (any, error) {
	switch x := v.(type) {
	case *tensor.RawTensor:
		return x, nil
	case *mat.Dense:
		r, c := x.Dims()
		data := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			data = append(data, x.RawRowView(i)...)
		}
		return tensor.FromFloat64(data, tensor.Shape{r, c}), nil
	default:
		return nil, fmt.Errorf("to_tensor: %w: %T", ErrUnsupportedLeaf, v)
	}
}

// leafToMatrix converts a leaf to the array-like representation.
// Only 2-dimensional tensors can become matrices.
func leafToMatrix(v any) (any, error) {
	switch x := v.(type) {
	case *mat.Dense:
		return x, nil
	case *tensor.RawTensor:
		shape := x.Shape()
		if len(shape) != 2 {
			return nil, fmt.Errorf("to_matrix: need a 2-dimensional tensor, got shape %v", shape)
		}
		f64, err := x.Convert(tensor.Float64)
		if err != nil {
			return nil, err
		}
		data := append([]float64(nil), f64.AsFloat64()...)
		return mat.NewDense(shape[0], shape[1], data), nil
	default:
		return nil, fmt.Errorf("to_matrix: %w: %T", ErrUnsupportedLeaf, v)
	}
}
