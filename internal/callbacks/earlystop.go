package callbacks

import "math"

// EarlyStopping ends the run when a watched monitor stops improving.
//
// A score improves when it drops below the best seen so far by at least
// minDelta. After patience consecutive recorded scores without improvement
// the callback requests a graceful stop from OnEpochEnd.
type EarlyStopping struct {
	CallbackBase
	monitor  Monitor
	patience int
	minDelta float64

	best     float64
	bad      int
	seen     int
	bestSeen bool
}

// NewEarlyStopping creates the callback around a monitor, usually the
// validation loss monitor.
func NewEarlyStopping(monitor Monitor, patience int, minDelta float64) *EarlyStopping {
	return &EarlyStopping{
		monitor:  monitor,
		patience: patience,
		minDelta: minDelta,
		best:     math.Inf(1),
	}
}

// OnEpochEnd checks the monitor for a new score and counts stagnation.
// Epochs where the monitor recorded nothing are ignored.
func (e *EarlyStopping) OnEpochEnd() (bool, error) {
	values := e.monitor.Values()
	if len(values) == e.seen {
		return false, nil
	}
	e.seen = len(values)
	v := values[len(values)-1]

	if v < e.best-e.minDelta || !e.bestSeen {
		e.best = v
		e.bestSeen = true
		e.bad = 0
		return false, nil
	}
	e.bad++
	return e.bad >= e.patience, nil
}

// Best returns the best score observed so far.
func (e *EarlyStopping) Best() float64 { return e.best }
