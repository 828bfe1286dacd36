// Copyright 2025 TupleFit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for gradient descent optimizers.
package optim

import (
	"github.com/tuplefit-ml/tuplefit/internal/nn"
	"github.com/tuplefit-ml/tuplefit/internal/optim"
)

// Optimizer updates network parameters from their gradients.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// Adam is the Adam optimizer with bias-corrected moment estimates.
type Adam = optim.Adam

// NewSGD creates an SGD optimizer.
func NewSGD(params []*nn.Parameter, lr, momentum float64) *SGD {
	return optim.NewSGD(params, lr, momentum)
}

// NewAdam creates an Adam optimizer with the standard defaults.
func NewAdam(params []*nn.Parameter, lr float64) *Adam {
	return optim.NewAdam(params, lr)
}
