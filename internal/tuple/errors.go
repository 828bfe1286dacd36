package tuple

import "errors"

// Validation errors. All are fatal to the call that raises them; the
// package never retries or recovers internally.
var (
	ErrTopologyMismatch = errors.New("topology differs between elements")
	ErrMixedTypes       = errors.New("leaves do not share a single type")
	ErrUnsupportedLeaf  = errors.New("unsupported leaf type")
	ErrUnsupportedDim   = errors.New("only dim=0 is supported")
	ErrShapeMismatch    = errors.New("trailing shapes differ")
	ErrNotFlat          = errors.New("tree is not flat")
	ErrEmpty            = errors.New("tree has no elements")
)
