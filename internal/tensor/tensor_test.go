package tensor

import (
	"testing"
)

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// DType tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
		{Uint8, 1},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dtype DataType
		str   string
	}{
		{Float32, "float32"},
		{Float64, "float64"},
		{Int32, "int32"},
		{Int64, "int64"},
		{Uint8, "uint8"},
	}

	for _, tt := range tests {
		if got := tt.dtype.String(); got != tt.str {
			t.Errorf("%s.String() = %q, want %q", tt.dtype, got, tt.str)
		}
	}
}

// Shape tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{4}, 4},
		{Shape{2, 3}, 6},
		{Shape{2, 3, 4}, 24},
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeComputeStrides(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Fatalf("ComputeStrides() = %v, want %v", strides, want)
		}
	}
}

func TestShapeTail(t *testing.T) {
	assertEqualShape(t, Shape{3, 4}, Shape{2, 3, 4}.Tail(), "3D tail")
	assertEqualShape(t, Shape{}, Shape{5}.Tail(), "1D tail")
}

// RawTensor tests

func TestFromSliceRoundTrip(t *testing.T) {
	raw, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	assertEqualShape(t, Shape{2, 3}, raw.Shape(), "shape")
	if raw.DType() != Float64 {
		t.Errorf("dtype = %v, want Float64", raw.DType())
	}
	data := raw.AsFloat64()
	if data[0] != 1 || data[5] != 6 {
		t.Errorf("data round trip failed: %v", data)
	}
}

func TestFromSliceShapeMismatch(t *testing.T) {
	if _, err := FromSlice([]float64{1, 2, 3}, Shape{2, 2}); err == nil {
		t.Fatal("expected error for mismatched shape")
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := FromFloat64([]float64{1, 2}, Shape{2})
	b := a.Clone()
	b.AsFloat64()[0] = 99
	if a.AsFloat64()[0] != 1 {
		t.Error("Clone shares memory with original")
	}
}

func TestEqual(t *testing.T) {
	a := FromFloat64([]float64{1, 2, 3}, Shape{3})
	b := FromFloat64([]float64{1, 2, 3}, Shape{3})
	c := FromFloat64([]float64{1, 2, 4}, Shape{3})
	d := FromFloat32([]float32{1, 2, 3}, Shape{3})

	if !a.Equal(b) {
		t.Error("identical tensors reported unequal")
	}
	if a.Equal(c) {
		t.Error("different values reported equal")
	}
	if a.Equal(d) {
		t.Error("different dtypes reported equal")
	}
}

func TestCat(t *testing.T) {
	a := FromFloat64([]float64{1, 2, 3, 4}, Shape{2, 2})
	b := FromFloat64([]float64{5, 6}, Shape{1, 2})

	out, err := Cat([]*RawTensor{a, b}, 0)
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	assertEqualShape(t, Shape{3, 2}, out.Shape(), "cat shape")
	data := out.AsFloat64()
	want := []float64{1, 2, 3, 4, 5, 6}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("cat data = %v, want %v", data, want)
		}
	}
}

func TestCatTrailingShapeMismatch(t *testing.T) {
	a := FromFloat64([]float64{1, 2, 3, 4}, Shape{2, 2})
	b := FromFloat64([]float64{5, 6, 7}, Shape{1, 3})

	if _, err := Cat([]*RawTensor{a, b}, 0); err == nil {
		t.Fatal("expected trailing shape mismatch error")
	}
}

func TestCatUnsupportedDim(t *testing.T) {
	a := FromFloat64([]float64{1, 2}, Shape{1, 2})
	if _, err := Cat([]*RawTensor{a, a}, 1); err == nil {
		t.Fatal("expected error for dim != 0")
	}
}

func TestSplitRoundTrip(t *testing.T) {
	a := FromFloat64([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, Shape{5, 2})

	chunks, err := a.Split(2)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	assertEqualShape(t, Shape{2, 2}, chunks[0].Shape(), "first chunk")
	assertEqualShape(t, Shape{1, 2}, chunks[2].Shape(), "last chunk")

	back, err := Cat(chunks, 0)
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	if !back.Equal(a) {
		t.Error("split/cat round trip changed the tensor")
	}
}

func TestRows(t *testing.T) {
	a := FromFloat64([]float64{1, 2, 3, 4, 5, 6}, Shape{3, 2})
	out, err := a.Rows([]int{2, 0})
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	data := out.AsFloat64()
	want := []float64{5, 6, 1, 2}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("Rows data = %v, want %v", data, want)
		}
	}

	if _, err := a.Rows([]int{3}); err == nil {
		t.Fatal("expected out of bounds error")
	}
}

func TestConvert(t *testing.T) {
	a := FromFloat64([]float64{1.7, -2.3, 3.0}, Shape{3})

	i32, err := a.Convert(Int32)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	got := i32.AsInt32()
	want := []int32{1, -2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Convert to int32 = %v, want %v", got, want)
		}
	}

	f32, err := a.Convert(Float32)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if f32.AsFloat32()[0] != 1.7 {
		t.Errorf("Convert to float32 = %v", f32.AsFloat32())
	}

	same, err := a.Convert(Float64)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !same.Equal(a) {
		t.Error("identity conversion changed values")
	}
	same.AsFloat64()[0] = 9
	if a.AsFloat64()[0] == 9 {
		t.Error("identity conversion shares memory")
	}
}

func TestFullAndZeros(t *testing.T) {
	f := Full(Shape{2, 2}, 3.5)
	for _, v := range f.AsFloat64() {
		if v != 3.5 {
			t.Fatalf("Full values = %v", f.AsFloat64())
		}
	}
	z := Zeros(Shape{3}, Int64)
	for _, v := range z.AsInt64() {
		if v != 0 {
			t.Fatalf("Zeros values = %v", z.AsInt64())
		}
	}
}
