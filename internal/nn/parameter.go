package nn

import (
	"github.com/tuplefit-ml/tuplefit/internal/tensor"
)

// Parameter represents a trainable parameter in a network.
//
// Parameters are Float64 tensors with an associated gradient. The gradient
// is allocated by the first Backward pass and cleared with ZeroGrad before
// the next iteration.
type Parameter struct {
	name string
	data *tensor.RawTensor
	grad *tensor.RawTensor
}

// NewParameter creates a new trainable parameter.
//
// The data tensor should be initialized before creating the Parameter.
func NewParameter(name string, data *tensor.RawTensor) *Parameter {
	return &Parameter{
		name: name,
		data: data,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Data returns the parameter tensor.
// Callbacks such as decoupled weight decay mutate it in place.
func (p *Parameter) Data() *tensor.RawTensor {
	return p.data
}

// Grad returns the gradient tensor, or nil before the first backward pass.
func (p *Parameter) Grad() *tensor.RawTensor {
	return p.grad
}

// EnsureGrad returns the gradient tensor, allocating a zeroed one with the
// parameter's shape on first use.
func (p *Parameter) EnsureGrad() *tensor.RawTensor {
	if p.grad == nil {
		p.grad = tensor.Zeros(p.data.Shape(), tensor.Float64)
	}
	return p.grad
}

// ZeroGrad clears the gradient so the next backward pass starts fresh.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
