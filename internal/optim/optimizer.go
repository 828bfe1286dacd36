// Package optim implements gradient descent optimizers over nn parameters.
//
// Optimizers hold a reference to the parameter slice and update the
// parameter data in place on each Step from the accumulated gradients.
package optim

import (
	"github.com/tuplefit-ml/tuplefit/internal/nn"
)

// Optimizer updates network parameters from their gradients.
type Optimizer interface {
	// Step applies one update using the current gradients.
	// Parameters without a gradient are skipped.
	Step() error

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64

	// SetLR changes the learning rate for subsequent steps.
	SetLR(lr float64)

	// Parameters returns the parameters this optimizer updates.
	Parameters() []*nn.Parameter
}
