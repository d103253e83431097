// SPDX-License-Identifier: MIT
package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unmix/graph"
)

func TestTopologicalSort(t *testing.T) {
	t.Parallel()

	g := graph.New("A", "B", "C", "D")
	require.NoError(t, g.AddEdge("C", "B"))
	require.NoError(t, g.AddEdge("B", "A"))
	require.NoError(t, g.AddEdge("D", "A"))

	order, err := graph.TopologicalSort(g)
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, e := range g.Edges() {
		assert.Less(t, pos[e.From], pos[e.To], "%s→%s", e.From, e.To)
	}
	assert.True(t, graph.IsAcyclic(g))
}

func TestTopologicalSort_Cycle(t *testing.T) {
	t.Parallel()

	g := graph.New("A", "B", "C")
	require.NoError(t, g.AddEdge("A", "B"))
	require.NoError(t, g.AddEdge("B", "C"))
	require.NoError(t, g.AddEdge("C", "A"))

	_, err := graph.TopologicalSort(g)
	assert.ErrorIs(t, err, graph.ErrCycleDetected)
	assert.False(t, graph.IsAcyclic(g))
}

func TestTopologicalSort_Empty(t *testing.T) {
	t.Parallel()

	order, err := graph.TopologicalSort(graph.New())
	require.NoError(t, err)
	assert.Empty(t, order)
}
