package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuplefit-ml/tuplefit/internal/nn"
	"github.com/tuplefit-ml/tuplefit/internal/tensor"
)

func paramWithGrad(t *testing.T, data, grad []float64) *nn.Parameter {
	t.Helper()
	p := nn.NewParameter("w", tensor.FromFloat64(data, tensor.Shape{len(data)}))
	copy(p.EnsureGrad().AsFloat64(), grad)
	return p
}

func TestSGDStep(t *testing.T) {
	p := paramWithGrad(t, []float64{1, 2}, []float64{0.5, -1})
	opt := NewSGD([]*nn.Parameter{p}, 0.1, 0)

	require.NoError(t, opt.Step())
	assert.InDeltaSlice(t, []float64{0.95, 2.1}, p.Data().AsFloat64(), 1e-12)
}

func TestSGDMomentum(t *testing.T) {
	p := paramWithGrad(t, []float64{0}, []float64{1})
	opt := NewSGD([]*nn.Parameter{p}, 0.1, 0.9)

	// v=1, w=-0.1
	require.NoError(t, opt.Step())
	assert.InDelta(t, -0.1, p.Data().AsFloat64()[0], 1e-12)

	// v=0.9+1=1.9, w=-0.1-0.19=-0.29
	require.NoError(t, opt.Step())
	assert.InDelta(t, -0.29, p.Data().AsFloat64()[0], 1e-12)
}

func TestSGDSkipsNilGrad(t *testing.T) {
	p := nn.NewParameter("w", tensor.FromFloat64([]float64{3}, tensor.Shape{1}))
	opt := NewSGD([]*nn.Parameter{p}, 0.1, 0)

	require.NoError(t, opt.Step())
	assert.Equal(t, 3.0, p.Data().AsFloat64()[0])
}

func TestZeroGrad(t *testing.T) {
	p := paramWithGrad(t, []float64{1}, []float64{1})
	opt := NewSGD([]*nn.Parameter{p}, 0.1, 0)

	opt.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestSetLR(t *testing.T) {
	opt := NewSGD(nil, 0.1, 0)
	assert.Equal(t, 0.1, opt.LR())
	opt.SetLR(0.01)
	assert.Equal(t, 0.01, opt.LR())
}

func TestAdamFirstStep(t *testing.T) {
	p := paramWithGrad(t, []float64{1}, []float64{2})
	opt := NewAdam([]*nn.Parameter{p}, 0.001)

	// After bias correction the first update is -lr * g/(|g|+eps) ~ -lr.
	require.NoError(t, opt.Step())
	assert.InDelta(t, 1-0.001, p.Data().AsFloat64()[0], 1e-9)
}

func TestAdamMinimizesQuadratic(t *testing.T) {
	// Minimize (w-3)^2 by feeding grad = 2(w-3) each step.
	p := nn.NewParameter("w", tensor.FromFloat64([]float64{0}, tensor.Shape{1}))
	opt := NewAdam([]*nn.Parameter{p}, 0.1)

	for i := 0; i < 500; i++ {
		w := p.Data().AsFloat64()[0]
		p.EnsureGrad().AsFloat64()[0] = 2 * (w - 3)
		require.NoError(t, opt.Step())
		opt.ZeroGrad()
	}
	assert.InDelta(t, 3.0, p.Data().AsFloat64()[0], 1e-3)
}
