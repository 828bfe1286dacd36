package optim

import (
	"fmt"
	"math"

	"github.com/tuplefit-ml/tuplefit/internal/nn"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2014) with
// bias-corrected first and second moment estimates.
type Adam struct {
	params []*nn.Parameter
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64

	step int
	m    [][]float64
	v    [][]float64
}

// NewAdam creates an Adam optimizer with the standard defaults
// beta1=0.9, beta2=0.999, eps=1e-8.
func NewAdam(params []*nn.Parameter, lr float64) *Adam {
	return &Adam{
		params: params,
		lr:     lr,
		beta1:  0.9,
		beta2:  0.999,
		eps:    1e-8,
		m:      make([][]float64, len(params)),
		v:      make([][]float64, len(params)),
	}
}

// Step applies one Adam update.
func (a *Adam) Step() error {
	a.step++
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))

	for i, p := range a.params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		g := grad.AsFloat64()
		w := p.Data().AsFloat64()
		if len(g) != len(w) {
			return fmt.Errorf("adam: parameter %q: gradient size %d does not match data size %d", p.Name(), len(g), len(w))
		}

		if a.m[i] == nil {
			a.m[i] = make([]float64, len(w))
			a.v[i] = make([]float64, len(w))
		}
		m, v := a.m[i], a.v[i]
		for j := range w {
			m[j] = a.beta1*m[j] + (1-a.beta1)*g[j]
			v[j] = a.beta2*v[j] + (1-a.beta2)*g[j]*g[j]
			mHat := m[j] / c1
			vHat := v[j] / c2
			w[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
	return nil
}

// ZeroGrad clears all parameter gradients.
func (a *Adam) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 { return a.lr }

// SetLR changes the learning rate.
func (a *Adam) SetLR(lr float64) { a.lr = lr }

// Parameters returns the parameters this optimizer updates.
func (a *Adam) Parameters() []*nn.Parameter { return a.params }
