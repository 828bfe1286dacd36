// Copyright 2025 TupleFit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for trainable networks.
//
// A Network exposes explicit Forward and Backward passes over tuple trees;
// there is no automatic differentiation. Linear and MSELoss cover simple
// regression models, and custom networks implement the Network interface
// directly.
package nn

import (
	"github.com/tuplefit-ml/tuplefit/internal/nn"
	"github.com/tuplefit-ml/tuplefit/internal/tensor"
	"github.com/tuplefit-ml/tuplefit/internal/tuple"
)

// Network is the trainable unit consumed by the fit loop.
type Network = nn.Network

// Parameter is a trainable tensor with an accumulated gradient.
type Parameter = nn.Parameter

// Linear is a fully connected layer.
type Linear = nn.Linear

// Criterion scores an output against a target and produces the loss
// gradient.
type Criterion = nn.Criterion

// MSELoss is the mean squared error criterion.
type MSELoss = nn.MSELoss

// NewParameter creates a trainable parameter from initialized data.
func NewParameter(name string, data *tensor.RawTensor) *Parameter {
	return nn.NewParameter(name, data)
}

// NewLinear creates a fully connected layer with Xavier-initialized
// weights.
func NewLinear(inFeatures, outFeatures int) *Linear {
	return nn.NewLinear(inFeatures, outFeatures)
}

// NewMSELoss creates a mean squared error criterion.
func NewMSELoss() *MSELoss {
	return nn.NewMSELoss()
}

// SingleTensor extracts the single tensor leaf of a flat tree.
func SingleTensor(t *tuple.Tree) (*tensor.RawTensor, error) {
	return nn.SingleTensor(t)
}
