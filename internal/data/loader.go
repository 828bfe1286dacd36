// Package data implements batch iteration over tuple trees for training,
// scoring and prediction.
package data

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tuplefit-ml/tuplefit/internal/tuple"
)

// ErrLengthMismatch is returned when leaves disagree on the number of rows.
var ErrLengthMismatch = errors.New("leaves have different leading-dimension lengths")

// Batch is one mini-batch of training data. Target is nil for
// prediction-only loaders.
type Batch struct {
	Input  *tuple.Tree
	Target *tuple.Tree
}

// Loader cuts a dataset held in tuple trees into mini-batches.
//
// With shuffling enabled each call to Batches draws a fresh permutation, so
// every epoch sees the rows in a different order. Without shuffling the
// batches are deterministic slices of the original order.
type Loader struct {
	input     *tuple.Tree
	target    *tuple.Tree
	batchSize int
	shuffle   bool
	rng       *rand.Rand
	numRows   int
}

// NewLoader creates a loader over an input tree and an optional target
// tree. All leaves of both trees must agree on the number of rows.
func NewLoader(input, target *tuple.Tree, batchSize int, shuffle bool) (*Loader, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	n, err := numRows(input)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if target != nil {
		tn, err := numRows(target)
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		if tn != n {
			return nil, fmt.Errorf("input has %d rows, target has %d: %w", n, tn, ErrLengthMismatch)
		}
	}
	return &Loader{
		input:     input,
		target:    target,
		batchSize: batchSize,
		shuffle:   shuffle,
		numRows:   n,
	}, nil
}

// numRows returns the shared leading-dimension length of all leaves.
func numRows(t *tuple.Tree) (int, error) {
	lens, err := t.Lens()
	if err != nil {
		return 0, err
	}
	vals, err := lens.Flatten().Values()
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("tree has no leaves")
	}
	n := vals[0].(int)
	for _, v := range vals[1:] {
		if v.(int) != n {
			return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, n, v.(int))
		}
	}
	return n, nil
}

// Seed fixes the shuffling source for reproducible epochs.
func (l *Loader) Seed(seed int64) {
	l.rng = rand.New(rand.NewSource(seed))
}

// Len returns the number of batches per epoch.
func (l *Loader) Len() int {
	return (l.numRows + l.batchSize - 1) / l.batchSize
}

// NumRows returns the number of rows in the dataset.
func (l *Loader) NumRows() int { return l.numRows }

// BatchSize returns the configured batch size. The final batch of an epoch
// may be smaller.
func (l *Loader) BatchSize() int { return l.batchSize }

// Batches materializes the mini-batches for one epoch.
func (l *Loader) Batches() ([]Batch, error) {
	if !l.shuffle {
		return l.orderedBatches()
	}
	return l.shuffledBatches()
}

func (l *Loader) orderedBatches() ([]Batch, error) {
	inputs, err := splitBatches(l.input, l.batchSize)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	batches := make([]Batch, len(inputs))
	for i, in := range inputs {
		batches[i] = Batch{Input: in}
	}
	if l.target != nil {
		targets, err := splitBatches(l.target, l.batchSize)
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		for i, tg := range targets {
			batches[i].Target = tg
		}
	}
	return batches, nil
}

func (l *Loader) shuffledBatches() ([]Batch, error) {
	var perm []int
	if l.rng != nil {
		perm = l.rng.Perm(l.numRows)
	} else {
		perm = rand.Perm(l.numRows)
	}

	batches := make([]Batch, 0, l.Len())
	for start := 0; start < l.numRows; start += l.batchSize {
		end := start + l.batchSize
		if end > l.numRows {
			end = l.numRows
		}
		idx := perm[start:end]

		in, err := l.input.Rows(idx)
		if err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		b := Batch{Input: in}
		if l.target != nil {
			tg, err := l.target.Rows(idx)
			if err != nil {
				return nil, fmt.Errorf("target: %w", err)
			}
			b.Target = tg
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// splitBatches chunks a tree into per-batch trees in row order.
func splitBatches(t *tuple.Tree, batchSize int) ([]*tuple.Tree, error) {
	seq, err := t.Split(batchSize, 0)
	if err != nil {
		return nil, err
	}
	if seq.IsLeaf() {
		return []*tuple.Tree{seq}, nil
	}
	return seq.Children(), nil
}
