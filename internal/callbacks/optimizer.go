package callbacks

// OptimizerEntry is the "optimizer" slot of the training handler. It hosts
// callbacks attached to the optimizer itself, such as decoupled weight
// decay, so they run before the metric monitors on every hook.
type OptimizerEntry struct {
	Handler
}

// NewOptimizerEntry creates the slot over the optimizer's callbacks.
func NewOptimizerEntry(cbs ...Callback) *OptimizerEntry {
	return &OptimizerEntry{Handler: *NewHandler(cbs...)}
}
