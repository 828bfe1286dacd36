package optim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/tuplefit-ml/tuplefit/internal/nn"
)

// SGD implements stochastic gradient descent with optional momentum:
//
//	v = momentum*v + grad
//	w = w - lr*v
//
// With momentum 0 this degenerates to plain gradient descent.
type SGD struct {
	params   []*nn.Parameter
	lr       float64
	momentum float64
	velocity [][]float64
}

// NewSGD creates an SGD optimizer for the given parameters.
func NewSGD(params []*nn.Parameter, lr, momentum float64) *SGD {
	return &SGD{
		params:   params,
		lr:       lr,
		momentum: momentum,
		velocity: make([][]float64, len(params)),
	}
}

// Step applies one SGD update.
func (s *SGD) Step() error {
	for i, p := range s.params {
		grad := p.Grad()
		if grad == nil {
			continue
		}
		g := grad.AsFloat64()
		w := p.Data().AsFloat64()
		if len(g) != len(w) {
			return fmt.Errorf("sgd: parameter %q: gradient size %d does not match data size %d", p.Name(), len(g), len(w))
		}

		if s.momentum == 0 {
			floats.AddScaled(w, -s.lr, g)
			continue
		}
		if s.velocity[i] == nil {
			s.velocity[i] = make([]float64, len(w))
		}
		v := s.velocity[i]
		floats.Scale(s.momentum, v)
		floats.Add(v, g)
		floats.AddScaled(w, -s.lr, v)
	}
	return nil
}

// ZeroGrad clears all parameter gradients.
func (s *SGD) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 { return s.lr }

// SetLR changes the learning rate.
func (s *SGD) SetLR(lr float64) { s.lr = lr }

// Parameters returns the parameters this optimizer updates.
func (s *SGD) Parameters() []*nn.Parameter { return s.params }
