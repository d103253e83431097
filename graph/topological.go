// SPDX-License-Identifier: MIT

package graph

import "errors"

// ErrCycleDetected indicates that the graph is not acyclic.
var ErrCycleDetected = errors.New("graph: cycle detected")

// visitation states
const (
	white = iota // not visited
	gray         // on the recursion stack
	black        // fully explored
)

// TopologicalSort returns an order in which every arc u→v has u before v.
// Roots are started in node insertion order, so the result is deterministic.
//
// Errors: ErrCycleDetected.
//
// Complexity: O(V + E log E).
func TopologicalSort(g *Graph) ([]string, error) {
	nodes := g.Nodes()
	state := make(map[string]int, len(nodes))
	order := make([]string, 0, len(nodes))

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case gray:
			return ErrCycleDetected
		case black:
			return nil
		}
		state[id] = gray
		for _, c := range g.Children(id) {
			if err := visit(c); err != nil {
				return err
			}
		}
		state[id] = black
		order = append(order, id)

		return nil
	}

	for _, v := range nodes {
		if state[v] == white {
			if err := visit(v); err != nil {
				return nil, err
			}
		}
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return order, nil
}

// IsAcyclic reports whether g has no directed cycle.
func IsAcyclic(g *Graph) bool {
	_, err := TopologicalSort(g)

	return err == nil
}
