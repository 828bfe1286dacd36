// Copyright 2025 TupleFit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package callbacks provides the public API for the training hook engine.
//
// Callbacks implement the Callback interface, usually by embedding
// CallbackBase and overriding the hooks of interest. They are dispatched
// by a Handler in registration order; the fit loop assembles a
// TrainingHandler whose built-in entries run in the fixed order
// optimizer, train_metrics, val_metrics, user callbacks, log.
package callbacks

import (
	"log/slog"

	"github.com/tuplefit-ml/tuplefit/internal/callbacks"
	"github.com/tuplefit-ml/tuplefit/internal/data"
)

// Callback is the hook contract of the dispatch engine.
type Callback = callbacks.Callback

// CallbackBase is a no-op Callback for embedding.
type CallbackBase = callbacks.CallbackBase

// ModelHandle is the view of the training model given to callbacks.
type ModelHandle = callbacks.ModelHandle

// FitInfo describes the dimensions of a training run.
type FitInfo = callbacks.FitInfo

// Namer lets a callback choose its own registry name.
type Namer = callbacks.Namer

// Handler is an ordered callback registry that is itself a Callback.
type Handler = callbacks.Handler

// TrainingHandler is the handler the fit loop assembles for a run.
type TrainingHandler = callbacks.TrainingHandler

// OptimizerEntry hosts optimizer-attached callbacks such as weight decay.
type OptimizerEntry = callbacks.OptimizerEntry

// DecoupledWeightDecay shrinks parameters towards zero before each step.
type DecoupledWeightDecay = callbacks.DecoupledWeightDecay

// Monitor is a recorded per-epoch score series.
type Monitor = callbacks.Monitor

// MonitorBase records one score per interval of epochs.
type MonitorBase = callbacks.MonitorBase

// MonitorTrainLoss records the mean training loss of each epoch.
type MonitorTrainLoss = callbacks.MonitorTrainLoss

// MonitorFitMetrics scores the model on a held-out loader.
type MonitorFitMetrics = callbacks.MonitorFitMetrics

// TrainingLogger logs epoch scores and exports them as a Frame.
type TrainingLogger = callbacks.TrainingLogger

// EarlyStopping stops training when a monitor stops improving.
type EarlyStopping = callbacks.EarlyStopping

// Frame is a column table of per-epoch scores.
type Frame = callbacks.Frame

// Registry names of the built-in training handler entries.
const (
	NameOptimizer    = callbacks.NameOptimizer
	NameTrainMetrics = callbacks.NameTrainMetrics
	NameValMetrics   = callbacks.NameValMetrics
	NameLog          = callbacks.NameLog
)

// NewHandler builds a handler with derived callback names.
func NewHandler(cbs ...Callback) *Handler {
	return callbacks.NewHandler(cbs...)
}

// NewTrainingHandler assembles a run handler in the fixed entry order.
func NewTrainingHandler(opt, trainMetrics, valMetrics, logger Callback, userCallbacks ...Callback) *TrainingHandler {
	return callbacks.NewTrainingHandler(opt, trainMetrics, valMetrics, logger, userCallbacks...)
}

// NewOptimizerEntry creates the optimizer slot over its callbacks.
func NewOptimizerEntry(cbs ...Callback) *OptimizerEntry {
	return callbacks.NewOptimizerEntry(cbs...)
}

// NewDecoupledWeightDecay creates weight decay with a fixed factor.
func NewDecoupledWeightDecay(weightDecay float64) *DecoupledWeightDecay {
	return callbacks.NewDecoupledWeightDecay(weightDecay)
}

// NewNormalizedWeightDecay creates weight decay rescaled by the run length.
func NewNormalizedWeightDecay(weightDecay float64, epochs int) *DecoupledWeightDecay {
	return callbacks.NewNormalizedWeightDecay(weightDecay, epochs)
}

// NewMonitor creates a monitor around a score function.
func NewMonitor(getScore func() (float64, error), perEpoch int) *MonitorBase {
	return callbacks.NewMonitor(getScore, perEpoch)
}

// NewMonitorTrainLoss creates the training loss monitor.
func NewMonitorTrainLoss() *MonitorTrainLoss {
	return callbacks.NewMonitorTrainLoss()
}

// NewMonitorFitMetrics creates a validation monitor over a loader.
func NewMonitorFitMetrics(loader *data.Loader, perEpoch int) *MonitorFitMetrics {
	return callbacks.NewMonitorFitMetrics(loader, perEpoch)
}

// NewTrainingLogger creates a logger over an slog handler.
func NewTrainingLogger(logger *slog.Logger) *TrainingLogger {
	return callbacks.NewTrainingLogger(logger)
}

// NewEarlyStopping creates early stopping around a monitor.
func NewEarlyStopping(monitor Monitor, patience int, minDelta float64) *EarlyStopping {
	return callbacks.NewEarlyStopping(monitor, patience, minDelta)
}

// NewFrame creates an empty score frame.
func NewFrame() *Frame {
	return callbacks.NewFrame()
}
