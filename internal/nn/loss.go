package nn

import (
	"fmt"

	"github.com/tuplefit-ml/tuplefit/internal/tensor"
	"github.com/tuplefit-ml/tuplefit/internal/tuple"
)

// Criterion scores a network output against a target and produces the loss
// gradient with respect to the output, which is fed back to
// Network.Backward.
type Criterion interface {
	Loss(output, target *tuple.Tree) (float64, *tuple.Tree, error)
}

// MSELoss is the mean squared error criterion.
//
// The loss is mean((output - target)^2) over all elements, and the gradient
// with respect to the output is 2*(output - target)/n.
type MSELoss struct{}

// NewMSELoss creates a mean squared error criterion.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Loss computes the loss and its gradient for a single-tensor output.
func (m *MSELoss) Loss(output, target *tuple.Tree) (float64, *tuple.Tree, error) {
	out, err := SingleTensor(output)
	if err != nil {
		return 0, nil, fmt.Errorf("mse: output: %w", err)
	}
	tgt, err := SingleTensor(target)
	if err != nil {
		return 0, nil, fmt.Errorf("mse: target: %w", err)
	}
	if !out.Shape().Equal(tgt.Shape()) {
		return 0, nil, fmt.Errorf("mse: output shape %v does not match target shape %v", out.Shape(), tgt.Shape())
	}
	if out.DType() != tensor.Float64 || tgt.DType() != tensor.Float64 {
		return 0, nil, fmt.Errorf("mse: expected float64 tensors, got %s and %s", out.DType(), tgt.DType())
	}

	o := out.AsFloat64()
	g := tensor.Zeros(out.Shape(), tensor.Float64)
	grad := g.AsFloat64()
	n := float64(len(o))

	var sum float64
	for i, ti := range tgt.AsFloat64() {
		diff := o[i] - ti
		sum += diff * diff
		grad[i] = 2 * diff / n
	}
	return sum / n, tuple.Leaf(g), nil
}
