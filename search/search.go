// SPDX-License-Identifier: MIT

// Package search defines the structure-search capability consumed by the
// unmixing engine and ships a cheap Fisher-z skeleton search.
//
// The engine uses a GraphSearch in three roles: a pooled search whose parent
// sets drive residual construction, a shallow search run on bootstrap
// sub-samples when screening parent supersets, and a per-cluster search run on
// each partition for reporting. Any algorithm (PC, GES, BOSS, ...) can be
// plugged in through the interface or the Func adapter.
package search

import (
	"errors"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/graph"
)

var (
	// ErrNilDataset indicates a nil dataset was passed to a search.
	ErrNilDataset = errors.New("search: nil dataset")

	// ErrInvalidAlpha indicates a significance level outside (0,1).
	ErrInvalidAlpha = errors.New("search: alpha must be in (0,1)")

	// ErrInvalidDepth indicates a conditioning depth outside {0,1}.
	ErrInvalidDepth = errors.New("search: depth must be 0 or 1")
)

// GraphSearch learns a graph over the columns of a dataset.
type GraphSearch interface {
	Search(ds *dataset.Dataset) (*graph.Graph, error)
}

// Func adapts an ordinary function to GraphSearch.
type Func func(ds *dataset.Dataset) (*graph.Graph, error)

// Search calls f(ds).
func (f Func) Search(ds *dataset.Dataset) (*graph.Graph, error) { return f(ds) }
