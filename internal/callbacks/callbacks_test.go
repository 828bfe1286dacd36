package callbacks

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuplefit-ml/tuplefit/internal/data"
	"github.com/tuplefit-ml/tuplefit/internal/nn"
	"github.com/tuplefit-ml/tuplefit/internal/optim"
	"github.com/tuplefit-ml/tuplefit/internal/tensor"
)

// fakeModel implements ModelHandle for tests.
type fakeModel struct {
	opt       optim.Optimizer
	info      FitInfo
	batchLoss float64
	params    []*nn.Parameter
	scoreFn   func() (float64, error)
}

func (f *fakeModel) Optimizer() optim.Optimizer  { return f.opt }
func (f *fakeModel) FitInfo() FitInfo            { return f.info }
func (f *fakeModel) BatchLoss() float64          { return f.batchLoss }
func (f *fakeModel) Parameters() []*nn.Parameter { return f.params }
func (f *fakeModel) Score(*data.Loader) (float64, error) {
	return f.scoreFn()
}

// Recorder appends the hooks it sees to a shared log.
type Recorder struct {
	CallbackBase
	id  string
	log *[]string
}

func (r *Recorder) record(hook string) {
	*r.log = append(*r.log, r.id+"."+hook)
}

func (r *Recorder) OnFitStart() error {
	r.record("fit_start")
	return nil
}

func (r *Recorder) BeforeStep() (bool, error) {
	r.record("before_step")
	return false, nil
}

func (r *Recorder) OnBatchEnd() error {
	r.record("batch_end")
	return nil
}

func (r *Recorder) OnEpochEnd() (bool, error) {
	r.record("epoch_end")
	return false, nil
}

func TestHandlerDerivedNames(t *testing.T) {
	var log []string
	h := NewHandler(&Recorder{id: "a", log: &log}, &Recorder{id: "b", log: &log}, &Recorder{id: "c", log: &log})
	assert.Equal(t, []string{"Recorder", "Recorder_0", "Recorder_1"}, h.Names())
}

type namedCallback struct {
	CallbackBase
	name string
}

func (n *namedCallback) CallbackName() string { return n.name }

func TestHandlerNamerOverride(t *testing.T) {
	h := NewHandler(&namedCallback{name: "lr_sched"}, &namedCallback{name: "lr_sched"})
	assert.Equal(t, []string{"lr_sched", "lr_sched_0"}, h.Names())
}

func TestHandlerExplicitDuplicatePanics(t *testing.T) {
	h := NewHandler()
	h.Add("x", &CallbackBase{})
	assert.PanicsWithValue(t, `callback "x" is already registered`, func() {
		h.Add("x", &CallbackBase{})
	})
}

func TestHandlerDispatchOrder(t *testing.T) {
	var log []string
	h := NewHandler(&Recorder{id: "a", log: &log}, &Recorder{id: "b", log: &log})

	require.NoError(t, h.OnFitStart())
	_, err := h.BeforeStep()
	require.NoError(t, err)
	require.NoError(t, h.OnBatchEnd())
	_, err = h.OnEpochEnd()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a.fit_start", "b.fit_start",
		"a.before_step", "b.before_step",
		"a.batch_end", "b.batch_end",
		"a.epoch_end", "b.epoch_end",
	}, log)
}

type stopper struct {
	CallbackBase
	stopStep  bool
	stopEpoch bool
}

func (s *stopper) BeforeStep() (bool, error) { return s.stopStep, nil }
func (s *stopper) OnEpochEnd() (bool, error) { return s.stopEpoch, nil }
func (s *stopper) CallbackName() string      { return "stopper" }

func TestHandlerStopSignalsCombine(t *testing.T) {
	var log []string
	h := NewHandler(&stopper{stopStep: true}, &Recorder{id: "after", log: &log})

	stop, err := h.BeforeStep()
	require.NoError(t, err)
	assert.True(t, stop)
	// The later callback still ran.
	assert.Equal(t, []string{"after.before_step"}, log)

	stop, err = h.OnEpochEnd()
	require.NoError(t, err)
	assert.False(t, stop)
}

func TestTrainingHandlerOrder(t *testing.T) {
	var log []string
	h := NewTrainingHandler(
		NewOptimizerEntry(),
		NewMonitorTrainLoss(),
		NewMonitor(func() (float64, error) { return 0, nil }, 1),
		NewTrainingLogger(nil),
		&Recorder{id: "user", log: &log},
	)
	assert.Equal(t, []string{"optimizer", "train_metrics", "val_metrics", "Recorder", "log"}, h.Names())

	h.Append(&Recorder{id: "late", log: &log})
	assert.Equal(t, []string{"optimizer", "train_metrics", "val_metrics", "Recorder", "Recorder_0", "log"}, h.Names())
}

func TestTrainingHandlerNoValMetrics(t *testing.T) {
	h := NewTrainingHandler(NewOptimizerEntry(), NewMonitorTrainLoss(), nil, NewTrainingLogger(nil))
	assert.Equal(t, []string{"optimizer", "train_metrics", "log"}, h.Names())
}

func TestDecoupledWeightDecay(t *testing.T) {
	p := nn.NewParameter("w", tensor.FromFloat64([]float64{1, -2}, tensor.Shape{2}))
	m := &fakeModel{params: []*nn.Parameter{p}, info: FitInfo{Epochs: 4, BatchesPerEpoch: 4}}

	wd := NewDecoupledWeightDecay(0.1)
	wd.GiveModel(m)
	require.NoError(t, wd.OnFitStart())
	assert.Equal(t, 0.1, wd.Effective())

	stop, err := wd.BeforeStep()
	require.NoError(t, err)
	assert.False(t, stop)
	assert.InDeltaSlice(t, []float64{0.9, -1.8}, p.Data().AsFloat64(), 1e-12)
}

func TestDecoupledWeightDecayWithoutFitStart(t *testing.T) {
	// The fixed factor applies even when BeforeStep runs outside a full
	// fit run.
	p := nn.NewParameter("w", tensor.FromFloat64([]float64{2}, tensor.Shape{1}))
	wd := NewDecoupledWeightDecay(0.25)
	wd.GiveModel(&fakeModel{params: []*nn.Parameter{p}})

	stop, err := wd.BeforeStep()
	require.NoError(t, err)
	assert.False(t, stop)
	assert.InDelta(t, 1.5, p.Data().AsFloat64()[0], 1e-12)
}

func TestNormalizedWeightDecay(t *testing.T) {
	m := &fakeModel{info: FitInfo{Epochs: 4, BatchesPerEpoch: 4}}

	wd := NewNormalizedWeightDecay(0.8, 0)
	wd.GiveModel(m)
	require.NoError(t, wd.OnFitStart())
	// 0.8 * sqrt(1/16) = 0.2
	assert.InDelta(t, 0.2, wd.Effective(), 1e-12)

	// An explicit epoch count overrides the run length.
	wd = NewNormalizedWeightDecay(0.8, 64)
	wd.GiveModel(m)
	require.NoError(t, wd.OnFitStart())
	// 0.8 * sqrt(1/256) = 0.05
	assert.InDelta(t, 0.05, wd.Effective(), 1e-12)
}

func TestNormalizedWeightDecayZeroSteps(t *testing.T) {
	m := &fakeModel{info: FitInfo{Epochs: 0, BatchesPerEpoch: 4}}
	wd := NewNormalizedWeightDecay(0.8, 0)
	wd.GiveModel(m)
	assert.Error(t, wd.OnFitStart())
}

func TestMonitorPerEpoch(t *testing.T) {
	epoch := -1.0
	mon := NewMonitor(func() (float64, error) {
		return epoch, nil
	}, 2)

	for i := 0; i < 5; i++ {
		epoch++
		stop, err := mon.OnEpochEnd()
		require.NoError(t, err)
		assert.False(t, stop)
	}

	assert.Equal(t, 4, mon.Epoch())
	assert.Equal(t, []int{0, 2, 4}, mon.Epochs())
	assert.Equal(t, []float64{0, 2, 4}, mon.Values())
}

func TestMonitorTrainLoss(t *testing.T) {
	m := &fakeModel{}
	mon := NewMonitorTrainLoss()
	mon.GiveModel(m)

	for _, loss := range []float64{1, 2, 3} {
		m.batchLoss = loss
		require.NoError(t, mon.OnBatchEnd())
	}
	_, err := mon.OnEpochEnd()
	require.NoError(t, err)

	// Next epoch starts from an empty batch buffer.
	m.batchLoss = 10
	require.NoError(t, mon.OnBatchEnd())
	_, err = mon.OnEpochEnd()
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, mon.Epochs())
	assert.Equal(t, []float64{2, 10}, mon.Values())
}

func TestMonitorFitMetrics(t *testing.T) {
	score := 5.0
	m := &fakeModel{scoreFn: func() (float64, error) {
		score -= 1
		return score, nil
	}}
	mon := NewMonitorFitMetrics(nil, 2)
	mon.GiveModel(m)

	for i := 0; i < 4; i++ {
		_, err := mon.OnEpochEnd()
		require.NoError(t, err)
	}

	assert.Equal(t, []int{0, 2}, mon.Epochs())
	assert.Equal(t, []float64{4, 3}, mon.Values())
}

func TestMonitorFitMetricsNilLoader(t *testing.T) {
	// Without validation data the monitor records NaN per scored epoch
	// and never touches the model.
	m := &fakeModel{scoreFn: func() (float64, error) {
		t.Fatal("Score must not be called without a loader")
		return 0, nil
	}}
	mon := NewMonitorFitMetrics(nil, 1)
	mon.GiveModel(m)

	for i := 0; i < 3; i++ {
		stop, err := mon.OnEpochEnd()
		require.NoError(t, err)
		assert.False(t, stop)
	}

	assert.Equal(t, []int{0, 1, 2}, mon.Epochs())
	for i, v := range mon.Values() {
		assert.True(t, math.IsNaN(v), "epoch %d should record NaN", i)
	}
}

func TestFrameAlignsSeries(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.AddSeries("foo", []int{0, 1}, []float64{1, 5}))
	require.NoError(t, f.AddSeries("bar", []int{1, 2}, []float64{2, 4}))

	assert.Equal(t, []int{0, 1, 2}, f.Epochs())
	assert.Equal(t, []string{"foo", "bar"}, f.Columns())

	nan := math.NaN()
	foo, err := f.Column("foo")
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{1, 5, nan}, foo, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("foo column mismatch (-want +got):\n%s", diff)
	}

	bar, err := f.Column("bar")
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{nan, 2, 4}, bar, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("bar column mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameDuplicateSeries(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.AddSeries("foo", []int{0}, []float64{1}))
	assert.Error(t, f.AddSeries("foo", []int{1}, []float64{2}))
}

func TestFrameRender(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.AddSeries("loss", []int{0, 1}, []float64{0.5, 0.25}))
	out := f.String()
	assert.Contains(t, out, "EPOCH")
	assert.Contains(t, out, "LOSS")
	assert.Contains(t, out, "0.25")
}

func TestTrainingLoggerToFrame(t *testing.T) {
	foo := NewMonitor(func() (float64, error) { return 1, nil }, 1)
	bar := NewMonitor(func() (float64, error) { return 2, nil }, 2)

	lg := NewTrainingLogger(nil)
	lg.SetVerbose(false)
	require.NoError(t, lg.Watch("foo", foo))
	require.NoError(t, lg.Watch("bar", bar))
	assert.Error(t, lg.Watch("foo", foo))

	require.NoError(t, lg.OnFitStart())
	for i := 0; i < 3; i++ {
		_, err := foo.OnEpochEnd()
		require.NoError(t, err)
		_, err = bar.OnEpochEnd()
		require.NoError(t, err)
		_, err = lg.OnEpochEnd()
		require.NoError(t, err)
	}

	f, err := lg.ToFrame()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, f.Epochs())

	bars, err := f.Column("bar")
	require.NoError(t, err)
	assert.Equal(t, 2.0, bars[0])
	assert.True(t, math.IsNaN(bars[1]))
	assert.Equal(t, 2.0, bars[2])
}

func TestEarlyStopping(t *testing.T) {
	scores := []float64{5, 4, 4.2, 4.1}
	i := 0
	mon := NewMonitor(func() (float64, error) {
		v := scores[i]
		i++
		return v, nil
	}, 1)

	es := NewEarlyStopping(mon, 2, 0)

	var stopped []bool
	for range scores {
		_, err := mon.OnEpochEnd()
		require.NoError(t, err)
		stop, err := es.OnEpochEnd()
		require.NoError(t, err)
		stopped = append(stopped, stop)
	}

	assert.Equal(t, []bool{false, false, false, true}, stopped)
	assert.Equal(t, 4.0, es.Best())
}

func TestEarlyStoppingIgnoresSilentEpochs(t *testing.T) {
	mon := NewMonitor(func() (float64, error) { return 1, nil }, 2)
	es := NewEarlyStopping(mon, 1, 0)

	for i := 0; i < 4; i++ {
		_, err := mon.OnEpochEnd()
		require.NoError(t, err)
		stop, err := es.OnEpochEnd()
		require.NoError(t, err)
		// Epoch 2 records 1 again: no improvement, patience 1 exhausted.
		// Silent epochs (1 and 3) never trigger a stop.
		assert.Equal(t, i == 2, stop)
	}
}
