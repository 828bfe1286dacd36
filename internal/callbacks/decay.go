package callbacks

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DecoupledWeightDecay shrinks every parameter towards zero before each
// optimizer step, decoupled from the gradient-based update:
//
//	w = w - wd*w
//
// In normalized mode the configured decay is rescaled once at fit start by
// sqrt(1/(epochs * batchesPerEpoch)), so the total amount of decay is
// roughly independent of how long the run is.
type DecoupledWeightDecay struct {
	CallbackBase
	weightDecay float64
	normalized  bool
	epochs      int // overrides FitInfo epochs for normalization when > 0

	effective float64
}

// NewDecoupledWeightDecay creates the callback with a fixed decay factor.
// The factor is usable immediately; OnFitStart is only needed in
// normalized mode.
func NewDecoupledWeightDecay(weightDecay float64) *DecoupledWeightDecay {
	return &DecoupledWeightDecay{weightDecay: weightDecay, effective: weightDecay}
}

// NewNormalizedWeightDecay creates the callback in normalized mode.
// epochs overrides the run length used for normalization; pass 0 to use the
// actual run length.
func NewNormalizedWeightDecay(weightDecay float64, epochs int) *DecoupledWeightDecay {
	return &DecoupledWeightDecay{weightDecay: weightDecay, normalized: true, epochs: epochs}
}

// OnFitStart resolves the effective decay factor for this run.
func (d *DecoupledWeightDecay) OnFitStart() error {
	if !d.normalized {
		d.effective = d.weightDecay
		return nil
	}
	info := d.Model.FitInfo()
	epochs := info.Epochs
	if d.epochs > 0 {
		epochs = d.epochs
	}
	steps := epochs * info.BatchesPerEpoch
	if steps <= 0 {
		return fmt.Errorf("weight decay normalization needs a positive step count, got %d epochs * %d batches", epochs, info.BatchesPerEpoch)
	}
	d.effective = d.weightDecay * math.Sqrt(1/float64(steps))
	return nil
}

// BeforeStep applies the decay to every parameter in place.
func (d *DecoupledWeightDecay) BeforeStep() (bool, error) {
	for _, p := range d.Model.Parameters() {
		w := p.Data().AsFloat64()
		floats.AddScaled(w, -d.effective, w)
	}
	return false, nil
}

// Effective returns the decay factor in use for the current run.
// Meaningful after OnFitStart.
func (d *DecoupledWeightDecay) Effective() float64 {
	return d.effective
}
