package nn

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/tuplefit-ml/tuplefit/internal/tensor"
	"github.com/tuplefit-ml/tuplefit/internal/tuple"
)

// Linear implements a fully connected layer: y = x @ W.T + b.
//
//   - x is the input with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights are initialized with Xavier/Glorot uniform, biases with zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter

	lastInput *tensor.RawTensor // Saved by Forward for the backward pass
}

// NewLinear creates a new Linear layer.
func NewLinear(inFeatures, outFeatures int) *Linear {
	weight := tensor.Zeros(tensor.Shape{outFeatures, inFeatures}, tensor.Float64)
	bound := math.Sqrt(6.0 / float64(inFeatures+outFeatures))
	data := weight.AsFloat64()
	for i := range data {
		data[i] = (rand.Float64()*2 - 1) * bound
	}

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", tensor.Zeros(tensor.Shape{outFeatures}, tensor.Float64)),
	}
}

// Forward computes y = x @ W.T + b for a batch.
//
// The input tree must hold a single Float64 tensor with shape
// [batch_size, in_features].
func (l *Linear) Forward(input *tuple.Tree) (*tuple.Tree, error) {
	x, err := SingleTensor(input)
	if err != nil {
		return nil, fmt.Errorf("linear forward: %w", err)
	}
	shape := x.Shape()
	if len(shape) != 2 || shape[1] != l.inFeatures {
		return nil, fmt.Errorf("linear forward: expected input shape [batch, %d], got %v", l.inFeatures, shape)
	}
	if x.DType() != tensor.Float64 {
		return nil, fmt.Errorf("linear forward: expected float64 input, got %s", x.DType())
	}

	batch := shape[0]
	xm := mat.NewDense(batch, l.inFeatures, x.AsFloat64())
	wm := mat.NewDense(l.outFeatures, l.inFeatures, l.weight.Data().AsFloat64())

	out := tensor.Zeros(tensor.Shape{batch, l.outFeatures}, tensor.Float64)
	ym := mat.NewDense(batch, l.outFeatures, out.AsFloat64())
	ym.Mul(xm, wm.T())

	b := l.bias.Data().AsFloat64()
	for i := 0; i < batch; i++ {
		row := ym.RawRowView(i)
		for j := range row {
			row[j] += b[j]
		}
	}

	l.lastInput = x
	return tuple.Leaf(out), nil
}

// Backward accumulates dW = g.T @ x and db = column sums of g, where g is
// the loss gradient with respect to the output of the last Forward call.
func (l *Linear) Backward(gradOutput *tuple.Tree) error {
	if l.lastInput == nil {
		return fmt.Errorf("linear backward: no forward pass recorded")
	}
	g, err := SingleTensor(gradOutput)
	if err != nil {
		return fmt.Errorf("linear backward: %w", err)
	}
	batch := l.lastInput.Len()
	if !g.Shape().Equal(tensor.Shape{batch, l.outFeatures}) {
		return fmt.Errorf("linear backward: expected gradient shape [%d, %d], got %v", batch, l.outFeatures, g.Shape())
	}

	gm := mat.NewDense(batch, l.outFeatures, g.AsFloat64())
	xm := mat.NewDense(batch, l.inFeatures, l.lastInput.AsFloat64())

	var dw mat.Dense
	dw.Mul(gm.T(), xm) // [out, in]

	wGrad := mat.NewDense(l.outFeatures, l.inFeatures, l.weight.EnsureGrad().AsFloat64())
	wGrad.Add(wGrad, &dw)

	bGrad := l.bias.EnsureGrad().AsFloat64()
	for i := 0; i < batch; i++ {
		row := gm.RawRowView(i)
		for j := range row {
			bGrad[j] += row[j]
		}
	}
	return nil
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}
