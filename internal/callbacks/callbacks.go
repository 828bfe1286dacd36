// Package callbacks implements the hook dispatch engine around the
// training loop.
//
// A Callback receives a handle to the model before training and is invoked
// at four points of the fit loop: once before the first epoch, before every
// optimizer step, after every batch, and after every epoch. Two of the
// hooks can signal the loop: BeforeStep aborts the run with an error,
// OnEpochEnd ends it gracefully.
package callbacks

import (
	"github.com/tuplefit-ml/tuplefit/internal/data"
	"github.com/tuplefit-ml/tuplefit/internal/nn"
	"github.com/tuplefit-ml/tuplefit/internal/optim"
)

// FitInfo describes the run a callback participates in.
type FitInfo struct {
	Epochs          int
	BatchesPerEpoch int
}

// ModelHandle is the view of the training model given to callbacks.
type ModelHandle interface {
	// Optimizer returns the optimizer driving the run.
	Optimizer() optim.Optimizer

	// FitInfo returns the dimensions of the current run.
	FitInfo() FitInfo

	// BatchLoss returns the loss of the most recent batch.
	BatchLoss() float64

	// Parameters returns the trainable parameters of the network.
	Parameters() []*nn.Parameter

	// Score evaluates the model on a loader and returns the mean loss.
	Score(loader *data.Loader) (float64, error)
}

// Callback is the hook contract of the dispatch engine.
//
// Implementations usually embed CallbackBase and override the hooks they
// need.
type Callback interface {
	// GiveModel hands the callback its model handle before training.
	GiveModel(m ModelHandle)

	// OnFitStart runs once before the first epoch.
	OnFitStart() error

	// BeforeStep runs after the backward pass, before the optimizer step.
	// Returning stop aborts the run with an error.
	BeforeStep() (stop bool, err error)

	// OnBatchEnd runs after each optimizer step.
	OnBatchEnd() error

	// OnEpochEnd runs after each epoch. Returning stop ends the run
	// gracefully.
	OnEpochEnd() (stop bool, err error)
}

// Namer is optionally implemented by callbacks that want a registry name
// other than their type name.
type Namer interface {
	CallbackName() string
}

// CallbackBase is a no-op Callback that records the model handle.
// Embed it and override the hooks of interest.
type CallbackBase struct {
	Model ModelHandle
}

// GiveModel records the model handle.
func (c *CallbackBase) GiveModel(m ModelHandle) { c.Model = m }

// OnFitStart does nothing.
func (c *CallbackBase) OnFitStart() error { return nil }

// BeforeStep does nothing.
func (c *CallbackBase) BeforeStep() (bool, error) { return false, nil }

// OnBatchEnd does nothing.
func (c *CallbackBase) OnBatchEnd() error { return nil }

// OnEpochEnd does nothing.
func (c *CallbackBase) OnEpochEnd() (bool, error) { return false, nil }
