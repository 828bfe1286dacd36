// Copyright 2025 TupleFit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides the public API for mini-batch loaders over tuple
// trees.
package data

import (
	"github.com/tuplefit-ml/tuplefit/internal/data"
	"github.com/tuplefit-ml/tuplefit/internal/tuple"
)

// Loader cuts a dataset held in tuple trees into mini-batches.
type Loader = data.Loader

// Batch is one mini-batch of input and optional target.
type Batch = data.Batch

// ErrLengthMismatch is returned when leaves disagree on row counts.
var ErrLengthMismatch = data.ErrLengthMismatch

// NewLoader creates a loader. target may be nil for prediction.
func NewLoader(input, target *tuple.Tree, batchSize int, shuffle bool) (*Loader, error) {
	return data.NewLoader(input, target, batchSize, shuffle)
}
