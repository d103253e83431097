// SPDX-License-Identifier: MIT
package unmix

import (
	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/graph"
	"github.com/katalvlaran/unmix/search"
)

// countingSearch returns an edgeless graph and counts invocations.
// Only safe when at most one partition is searched.
func countingSearch(calls *int) search.GraphSearch {
	return search.Func(func(ds *dataset.Dataset) (*graph.Graph, error) {
		*calls++
		return graph.New(ds.Names()...), nil
	})
}
