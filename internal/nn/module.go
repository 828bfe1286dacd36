// Package nn implements the minimal network abstraction the fit loop
// trains: named parameters, a Network interface with explicit forward and
// backward passes, a Linear layer and loss criteria.
//
// There is no automatic differentiation here. A Network computes its own
// parameter gradients in Backward from the loss gradient handed to it,
// the way small Go ML libraries hand-code backprop.
package nn

import (
	"fmt"

	"github.com/tuplefit-ml/tuplefit/internal/tensor"
	"github.com/tuplefit-ml/tuplefit/internal/tuple"
)

// Network is the trainable unit consumed by the fit loop.
//
// Inputs and outputs are tuple trees so multi-input and multi-output
// networks share one contract; a simple network reads the single tensor
// leaf and returns another.
type Network interface {
	// Forward computes the network output for a batch.
	Forward(input *tuple.Tree) (*tuple.Tree, error)

	// Backward accumulates parameter gradients from the loss gradient
	// with respect to the output of the last Forward call.
	Backward(gradOutput *tuple.Tree) error

	// Parameters returns all trainable parameters of this network.
	Parameters() []*Parameter
}

// SingleTensor extracts the single tensor leaf of a flat tree.
// Networks with one input use it to unwrap their batch.
func SingleTensor(t *tuple.Tree) (*tensor.RawTensor, error) {
	vals, err := t.Flatten().Values()
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("expected a single tensor leaf, got %d leaves", len(vals))
	}
	raw, ok := vals[0].(*tensor.RawTensor)
	if !ok {
		return nil, fmt.Errorf("expected a tensor leaf, got %T", vals[0])
	}
	return raw, nil
}
