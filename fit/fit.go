// Copyright 2025 TupleFit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fit provides the public API for the training loop.
//
// Example:
//
//	net := nn.NewLinear(1, 1)
//	opt := optim.NewSGD(net.Parameters(), 0.1, 0)
//	model := fit.NewModel(net, nn.NewMSELoss(), opt, nil)
//	log, err := model.Fit(x, y, fit.FitConfig{Epochs: 100, BatchSize: 32})
package fit

import (
	"log/slog"

	"github.com/tuplefit-ml/tuplefit/internal/fit"
	"github.com/tuplefit-ml/tuplefit/internal/nn"
	"github.com/tuplefit-ml/tuplefit/internal/optim"
)

// Model drives the training loop around a network, a criterion and an
// optimizer.
type Model = fit.Model

// FitConfig configures one training run.
type FitConfig = fit.FitConfig

// ErrAborted is returned when a callback stops the run from BeforeStep.
var ErrAborted = fit.ErrAborted

// NewModel creates a model. slogger may be nil to use slog.Default().
func NewModel(net nn.Network, criterion nn.Criterion, optimizer optim.Optimizer, slogger *slog.Logger) *Model {
	return fit.NewModel(net, criterion, optimizer, slogger)
}
