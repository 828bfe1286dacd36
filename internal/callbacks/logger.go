package callbacks

import (
	"fmt"
	"log/slog"
	"time"
)

// TrainingLogger is the "log" entry of the training handler. It runs last,
// logs the scores the watched monitors recorded for the finished epoch, and
// can export all watched series as one Frame.
type TrainingLogger struct {
	CallbackBase
	logger  *slog.Logger
	verbose bool

	epoch      int
	start      time.Time
	names      []string
	monitors   map[string]Monitor
	lastLogged map[string]int
}

// NewTrainingLogger creates a logger over an slog handler.
// Pass nil to use slog.Default().
func NewTrainingLogger(logger *slog.Logger) *TrainingLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrainingLogger{
		logger:     logger,
		verbose:    true,
		epoch:      -1,
		monitors:   make(map[string]Monitor),
		lastLogged: make(map[string]int),
	}
}

// SetVerbose toggles per-epoch log lines. Score collection is unaffected.
func (l *TrainingLogger) SetVerbose(v bool) { l.verbose = v }

// Watch registers a monitor's series under a column name.
func (l *TrainingLogger) Watch(name string, m Monitor) error {
	if _, exists := l.monitors[name]; exists {
		return fmt.Errorf("monitor %q already watched", name)
	}
	l.names = append(l.names, name)
	l.monitors[name] = m
	l.lastLogged[name] = 0
	return nil
}

// CallbackName registers the logger under "log" in plain handlers.
func (l *TrainingLogger) CallbackName() string { return NameLog }

// OnFitStart resets the epoch counter and wall clock.
func (l *TrainingLogger) OnFitStart() error {
	l.epoch = -1
	l.start = time.Now()
	return nil
}

// OnEpochEnd logs the scores recorded since the previous epoch.
func (l *TrainingLogger) OnEpochEnd() (bool, error) {
	l.epoch++
	if !l.verbose {
		return false, nil
	}

	attrs := []any{slog.Int("epoch", l.epoch), slog.Duration("elapsed", time.Since(l.start).Round(time.Millisecond))}
	for _, name := range l.names {
		m := l.monitors[name]
		values := m.Values()
		if len(values) > l.lastLogged[name] {
			attrs = append(attrs, slog.Float64(name, values[len(values)-1]))
			l.lastLogged[name] = len(values)
		}
	}
	l.logger.Info("epoch done", attrs...)
	return false, nil
}

// ToFrame exports every watched series as one frame indexed by epoch.
func (l *TrainingLogger) ToFrame() (*Frame, error) {
	f := NewFrame()
	for _, name := range l.names {
		m := l.monitors[name]
		if err := f.AddSeries(name, m.Epochs(), m.Values()); err != nil {
			return nil, err
		}
	}
	return f, nil
}
