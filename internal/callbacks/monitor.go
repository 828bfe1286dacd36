package callbacks

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/tuplefit-ml/tuplefit/internal/data"
)

// Monitor is a recorded per-epoch score series.
type Monitor interface {
	// Epochs returns the epochs at which scores were recorded.
	Epochs() []int

	// Values returns the scores, parallel to Epochs.
	Values() []float64
}

// MonitorBase records one score per perEpoch epochs.
//
// The epoch counter starts at -1 and is incremented at the top of
// OnEpochEnd, so the first completed epoch is epoch 0. With perEpoch=2 a
// five-epoch run records at epochs 0, 2 and 4.
type MonitorBase struct {
	CallbackBase
	getScore func() (float64, error)
	perEpoch int

	epoch  int
	epochs []int
	values []float64
}

// NewMonitor creates a monitor around a score function.
// perEpoch values below 1 are treated as 1 (score every epoch).
func NewMonitor(getScore func() (float64, error), perEpoch int) *MonitorBase {
	if perEpoch < 1 {
		perEpoch = 1
	}
	return &MonitorBase{getScore: getScore, perEpoch: perEpoch, epoch: -1}
}

// OnEpochEnd advances the epoch counter and records a score when the epoch
// falls on the perEpoch interval.
func (m *MonitorBase) OnEpochEnd() (bool, error) {
	m.epoch++
	if m.epoch%m.perEpoch != 0 {
		return false, nil
	}
	v, err := m.getScore()
	if err != nil {
		return false, fmt.Errorf("monitor score at epoch %d: %w", m.epoch, err)
	}
	m.AppendScore(v)
	return false, nil
}

// AppendScore records a score for the current epoch.
func (m *MonitorBase) AppendScore(v float64) {
	m.epochs = append(m.epochs, m.epoch)
	m.values = append(m.values, v)
}

// Epoch returns the current epoch counter (-1 before the first epoch ends).
func (m *MonitorBase) Epoch() int { return m.epoch }

// Epochs returns the epochs at which scores were recorded.
func (m *MonitorBase) Epochs() []int { return m.epochs }

// Values returns the recorded scores, parallel to Epochs.
func (m *MonitorBase) Values() []float64 { return m.values }

// Last returns the most recent score.
// ok is false when nothing has been recorded yet.
func (m *MonitorBase) Last() (v float64, epoch int, ok bool) {
	if len(m.values) == 0 {
		return 0, 0, false
	}
	n := len(m.values) - 1
	return m.values[n], m.epochs[n], true
}

// MonitorTrainLoss records the mean training loss of each epoch, averaged
// over the batch losses reported by the model.
type MonitorTrainLoss struct {
	MonitorBase
	batchLosses []float64
}

// NewMonitorTrainLoss creates the training loss monitor.
func NewMonitorTrainLoss() *MonitorTrainLoss {
	m := &MonitorTrainLoss{}
	m.MonitorBase = *NewMonitor(m.epochLoss, 1)
	return m
}

func (m *MonitorTrainLoss) epochLoss() (float64, error) {
	if len(m.batchLosses) == 0 {
		return 0, fmt.Errorf("no batch losses recorded this epoch")
	}
	return stat.Mean(m.batchLosses, nil), nil
}

// OnBatchEnd collects the batch loss.
func (m *MonitorTrainLoss) OnBatchEnd() error {
	m.batchLosses = append(m.batchLosses, m.Model.BatchLoss())
	return nil
}

// OnEpochEnd records the epoch mean and resets the batch buffer.
func (m *MonitorTrainLoss) OnEpochEnd() (bool, error) {
	stop, err := m.MonitorBase.OnEpochEnd()
	m.batchLosses = m.batchLosses[:0]
	return stop, err
}

// MonitorFitMetrics scores the model on a held-out loader every perEpoch
// epochs. Used for validation loss.
//
// A nil loader is allowed: the monitor records NaN for each scored epoch,
// so its series still aligns with the run in an exported frame.
type MonitorFitMetrics struct {
	MonitorBase
	loader *data.Loader
}

// NewMonitorFitMetrics creates a validation monitor over a loader.
func NewMonitorFitMetrics(loader *data.Loader, perEpoch int) *MonitorFitMetrics {
	m := &MonitorFitMetrics{loader: loader}
	m.MonitorBase = *NewMonitor(m.score, perEpoch)
	return m
}

func (m *MonitorFitMetrics) score() (float64, error) {
	if m.loader == nil {
		return math.NaN(), nil
	}
	return m.Model.Score(m.loader)
}
