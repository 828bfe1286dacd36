// Package fit implements the training loop that ties networks, criteria,
// optimizers, loaders and the callback engine together.
package fit

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/tuplefit-ml/tuplefit/internal/callbacks"
	"github.com/tuplefit-ml/tuplefit/internal/data"
	"github.com/tuplefit-ml/tuplefit/internal/nn"
	"github.com/tuplefit-ml/tuplefit/internal/optim"
	"github.com/tuplefit-ml/tuplefit/internal/tuple"
)

// ErrAborted is returned when a callback requests a stop from BeforeStep.
// Unlike a stop from OnEpochEnd, this is a hard abort, not a graceful end.
var ErrAborted = errors.New("training aborted by callback")

// Registry names the logger watches monitors under.
const (
	trainLossName = "train_loss"
	valLossName   = "val_loss"
)

// FitConfig configures one training run.
type FitConfig struct {
	// Epochs is the number of passes over the data. Zero runs no epochs
	// but still dispatches OnFitStart.
	Epochs int

	// BatchSize is the mini-batch size. Defaults to 256.
	BatchSize int

	// Shuffle draws a fresh row permutation every epoch.
	Shuffle bool

	// Callbacks are user callbacks, dispatched after the built-in
	// monitors and before the logger.
	Callbacks []callbacks.Callback

	// OptimizerCallbacks run in the "optimizer" slot, before everything
	// else. Weight decay goes here.
	OptimizerCallbacks []callbacks.Callback

	// ValData enables validation scoring after each ValPerEpoch epochs.
	ValData *data.Loader

	// ValPerEpoch is the validation interval. Defaults to 1.
	ValPerEpoch int

	// Verbose enables per-epoch log lines.
	Verbose bool
}

func (c FitConfig) withDefaults() FitConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 256
	}
	if c.ValPerEpoch < 1 {
		c.ValPerEpoch = 1
	}
	return c
}

// Model wraps a network, a loss criterion and an optimizer, and drives the
// training loop around them. It is the model handle the callbacks see.
type Model struct {
	net       nn.Network
	criterion nn.Criterion
	optimizer optim.Optimizer
	logger    *slog.Logger

	// Run state, valid while Fit is executing.
	fitInfo   callbacks.FitInfo
	batchLoss float64
	log       *callbacks.TrainingLogger
}

// NewModel creates a model. slogger may be nil to use slog.Default().
func NewModel(net nn.Network, criterion nn.Criterion, optimizer optim.Optimizer, slogger *slog.Logger) *Model {
	if slogger == nil {
		slogger = slog.Default()
	}
	return &Model{
		net:       net,
		criterion: criterion,
		optimizer: optimizer,
		logger:    slogger,
	}
}

// Network returns the wrapped network.
func (m *Model) Network() nn.Network { return m.net }

// Optimizer returns the optimizer driving the run.
func (m *Model) Optimizer() optim.Optimizer { return m.optimizer }

// FitInfo returns the dimensions of the current run.
func (m *Model) FitInfo() callbacks.FitInfo { return m.fitInfo }

// BatchLoss returns the loss of the most recent training batch.
func (m *Model) BatchLoss() float64 { return m.batchLoss }

// Parameters returns the network's trainable parameters.
func (m *Model) Parameters() []*nn.Parameter { return m.net.Parameters() }

// Log returns the training logger of the most recent run, or nil before
// the first Fit.
func (m *Model) Log() *callbacks.TrainingLogger { return m.log }

// Fit trains on an input and target tree.
func (m *Model) Fit(input, target *tuple.Tree, cfg FitConfig) (*callbacks.TrainingLogger, error) {
	cfg = cfg.withDefaults()
	loader, err := data.NewLoader(input, target, cfg.BatchSize, cfg.Shuffle)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	return m.FitLoader(loader, cfg)
}

// FitLoader trains on a prepared loader.
//
// A fresh handler is assembled for every run in the fixed dispatch order
// optimizer, train_metrics, val_metrics, user callbacks, log. The returned
// logger holds the recorded score series.
func (m *Model) FitLoader(loader *data.Loader, cfg FitConfig) (*callbacks.TrainingLogger, error) {
	cfg = cfg.withDefaults()
	m.fitInfo = callbacks.FitInfo{
		Epochs:          cfg.Epochs,
		BatchesPerEpoch: loader.Len(),
	}

	trainLoss := callbacks.NewMonitorTrainLoss()
	var valLoss *callbacks.MonitorFitMetrics
	if cfg.ValData != nil {
		valLoss = callbacks.NewMonitorFitMetrics(cfg.ValData, cfg.ValPerEpoch)
	}

	m.log = callbacks.NewTrainingLogger(m.logger)
	m.log.SetVerbose(cfg.Verbose)
	if err := m.log.Watch(trainLossName, trainLoss); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	if valLoss != nil {
		if err := m.log.Watch(valLossName, valLoss); err != nil {
			return nil, fmt.Errorf("fit: %w", err)
		}
	}

	var valEntry callbacks.Callback
	if valLoss != nil {
		valEntry = valLoss
	}
	handler := callbacks.NewTrainingHandler(
		callbacks.NewOptimizerEntry(cfg.OptimizerCallbacks...),
		trainLoss,
		valEntry,
		m.log,
		cfg.Callbacks...,
	)
	handler.GiveModel(m)

	if err := handler.OnFitStart(); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		batches, err := loader.Batches()
		if err != nil {
			return nil, fmt.Errorf("fit: epoch %d: %w", epoch, err)
		}
		for _, b := range batches {
			if err := m.trainBatch(b, handler); err != nil {
				return nil, fmt.Errorf("fit: epoch %d: %w", epoch, err)
			}
		}

		stop, err := handler.OnEpochEnd()
		if err != nil {
			return nil, fmt.Errorf("fit: epoch %d: %w", epoch, err)
		}
		if stop {
			break
		}
	}
	return m.log, nil
}

func (m *Model) trainBatch(b data.Batch, handler *callbacks.TrainingHandler) error {
	out, err := m.net.Forward(b.Input)
	if err != nil {
		return err
	}
	loss, grad, err := m.criterion.Loss(out, b.Target)
	if err != nil {
		return err
	}
	m.batchLoss = loss

	m.optimizer.ZeroGrad()
	if err := m.net.Backward(grad); err != nil {
		return err
	}

	stop, err := handler.BeforeStep()
	if err != nil {
		return err
	}
	if stop {
		return ErrAborted
	}
	if err := m.optimizer.Step(); err != nil {
		return err
	}
	return handler.OnBatchEnd()
}

// Score evaluates the model on a loader and returns the unweighted mean of
// the per-batch losses. No gradients are touched.
func (m *Model) Score(loader *data.Loader) (float64, error) {
	batches, err := loader.Batches()
	if err != nil {
		return 0, fmt.Errorf("score: %w", err)
	}
	losses := make([]float64, 0, len(batches))
	for _, b := range batches {
		out, err := m.net.Forward(b.Input)
		if err != nil {
			return 0, fmt.Errorf("score: %w", err)
		}
		loss, _, err := m.criterion.Loss(out, b.Target)
		if err != nil {
			return 0, fmt.Errorf("score: %w", err)
		}
		losses = append(losses, loss)
	}
	if len(losses) == 0 {
		return 0, fmt.Errorf("score: loader produced no batches")
	}
	return stat.Mean(losses, nil), nil
}

// ScoreData is Score over raw input and target trees.
func (m *Model) ScoreData(input, target *tuple.Tree, batchSize int) (float64, error) {
	loader, err := data.NewLoader(input, target, batchSize, false)
	if err != nil {
		return 0, fmt.Errorf("score: %w", err)
	}
	return m.Score(loader)
}

// Predict runs the network over the input in batches and concatenates the
// per-batch outputs back into one tree along the leading dimension.
func (m *Model) Predict(input *tuple.Tree, batchSize int) (*tuple.Tree, error) {
	loader, err := data.NewLoader(input, nil, batchSize, false)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	batches, err := loader.Batches()
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	outs := make([]*tuple.Tree, 0, len(batches))
	for _, b := range batches {
		out, err := m.net.Forward(b.Input)
		if err != nil {
			return nil, fmt.Errorf("predict: %w", err)
		}
		outs = append(outs, out)
	}
	if len(outs) == 1 {
		return outs[0], nil
	}
	joined, err := tuple.Node(outs...).Cat(0)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return joined, nil
}
