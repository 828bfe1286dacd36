package callbacks

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Handler is an ordered registry of callbacks that is itself a Callback:
// every hook fans out to the registered callbacks in insertion order.
type Handler struct {
	callbacks *orderedmap.OrderedMap[string, Callback]
}

// NewHandler builds a handler over the given callbacks, deriving a registry
// name for each one.
//
// The name comes from CallbackName when the callback implements Namer,
// otherwise from its type name. Repeated names are made unique with _0, _1
// and so on, so two monitors of the same type register as "Monitor" and
// "Monitor_0".
func NewHandler(cbs ...Callback) *Handler {
	h := &Handler{callbacks: orderedmap.New[string, Callback]()}
	for _, cb := range cbs {
		h.add(uniqueName(h.callbacks, nameFor(cb)), cb)
	}
	return h
}

// nameFor derives the default registry name of a callback.
func nameFor(cb Callback) string {
	if n, ok := cb.(Namer); ok {
		return n.CallbackName()
	}
	name := fmt.Sprintf("%T", cb)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func uniqueName(m *orderedmap.OrderedMap[string, Callback], name string) string {
	if _, taken := m.Get(name); !taken {
		return name
	}
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if _, taken := m.Get(candidate); !taken {
			return candidate
		}
	}
}

// add registers cb under an explicit name.
// Panics on a duplicate name (programmer error).
func (h *Handler) add(name string, cb Callback) {
	if _, exists := h.callbacks.Get(name); exists {
		panic(fmt.Sprintf("callback %q is already registered", name))
	}
	h.callbacks.Set(name, cb)
}

// Add registers cb under an explicit name at the end of the order.
// Panics when the name is already registered.
func (h *Handler) Add(name string, cb Callback) {
	h.add(name, cb)
}

// Append registers cb with a derived name at the end of the order.
func (h *Handler) Append(cb Callback) string {
	name := uniqueName(h.callbacks, nameFor(cb))
	h.add(name, cb)
	return name
}

// Get returns the callback registered under name.
func (h *Handler) Get(name string) (Callback, bool) {
	return h.callbacks.Get(name)
}

// Names returns the registry names in dispatch order.
func (h *Handler) Names() []string {
	names := make([]string, 0, h.callbacks.Len())
	for pair := h.callbacks.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of registered callbacks.
func (h *Handler) Len() int {
	return h.callbacks.Len()
}

// GiveModel hands the model to every callback in order.
func (h *Handler) GiveModel(m ModelHandle) {
	for pair := h.callbacks.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.GiveModel(m)
	}
}

// OnFitStart dispatches to every callback; the first error aborts.
func (h *Handler) OnFitStart() error {
	for pair := h.callbacks.Oldest(); pair != nil; pair = pair.Next() {
		if err := pair.Value.OnFitStart(); err != nil {
			return fmt.Errorf("callback %q: %w", pair.Key, err)
		}
	}
	return nil
}

// BeforeStep dispatches to every callback. Stop requests are combined with
// OR; every callback still runs even after one requests a stop.
func (h *Handler) BeforeStep() (bool, error) {
	stop := false
	for pair := h.callbacks.Oldest(); pair != nil; pair = pair.Next() {
		s, err := pair.Value.BeforeStep()
		if err != nil {
			return false, fmt.Errorf("callback %q: %w", pair.Key, err)
		}
		stop = stop || s
	}
	return stop, nil
}

// OnBatchEnd dispatches to every callback; the first error aborts.
func (h *Handler) OnBatchEnd() error {
	for pair := h.callbacks.Oldest(); pair != nil; pair = pair.Next() {
		if err := pair.Value.OnBatchEnd(); err != nil {
			return fmt.Errorf("callback %q: %w", pair.Key, err)
		}
	}
	return nil
}

// OnEpochEnd dispatches to every callback. Stop requests are combined with
// OR; every callback still runs even after one requests a stop.
func (h *Handler) OnEpochEnd() (bool, error) {
	stop := false
	for pair := h.callbacks.Oldest(); pair != nil; pair = pair.Next() {
		s, err := pair.Value.OnEpochEnd()
		if err != nil {
			return false, fmt.Errorf("callback %q: %w", pair.Key, err)
		}
		stop = stop || s
	}
	return stop, nil
}

// TrainingHandler is the handler the fit loop builds for a run. It fixes
// the dispatch order of the built-in entries:
//
//	optimizer, train_metrics, val_metrics, <user callbacks...>, log
//
// so weight decay runs before metrics and the logger always observes a
// finished epoch.
type TrainingHandler struct {
	Handler
}

// Registry names of the built-in entries.
const (
	NameOptimizer    = "optimizer"
	NameTrainMetrics = "train_metrics"
	NameValMetrics   = "val_metrics"
	NameLog          = "log"
)

// NewTrainingHandler assembles the run handler. valMetrics may be nil when
// the run has no validation data.
func NewTrainingHandler(opt Callback, trainMetrics Callback, valMetrics Callback, logger Callback, userCallbacks ...Callback) *TrainingHandler {
	h := &TrainingHandler{Handler: Handler{callbacks: orderedmap.New[string, Callback]()}}
	h.add(NameOptimizer, opt)
	h.add(NameTrainMetrics, trainMetrics)
	if valMetrics != nil {
		h.add(NameValMetrics, valMetrics)
	}
	for _, cb := range userCallbacks {
		h.Append(cb)
	}
	h.add(NameLog, logger)
	return h
}

// Append registers a user callback just before the logger, keeping the
// logger last in dispatch order.
func (h *TrainingHandler) Append(cb Callback) string {
	name := h.Handler.Append(cb)
	if err := h.callbacks.MoveBefore(name, NameLog); err != nil {
		// NameLog is absent only during construction, where order is
		// already correct.
		return name
	}
	return name
}
