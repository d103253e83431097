// SPDX-License-Identifier: MIT
// File: methods.go
// Role: Node and arc lifecycle & queries: AddNode/AddEdge/HasEdge,
//       Parents/Children and Nodes/Edges enumeration.
// Determinism:
//   - Every enumeration follows node insertion order.
// Concurrency:
//   - Node catalog under muNode; arcs under muEdge. Lock order is muNode → muEdge.

package graph

import "sort"

// AddNode inserts a node if missing (idempotent).
//
// Complexity: O(1) amortized.
func (g *Graph) AddNode(id string) error {
	if id == "" {
		return ErrEmptyNodeID
	}
	g.muNode.Lock()
	defer g.muNode.Unlock()
	if _, ok := g.pos[id]; ok {
		return nil
	}
	g.pos[id] = len(g.order)
	g.order = append(g.order, id)

	g.muEdge.Lock()
	g.parents[id] = make(map[string]struct{})
	g.children[id] = make(map[string]struct{})
	g.muEdge.Unlock()

	return nil
}

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id string) bool {
	g.muNode.RLock()
	defer g.muNode.RUnlock()
	_, ok := g.pos[id]

	return ok
}

// AddEdge inserts the arc from→to, creating missing endpoints.
//
// Steps:
//  1. Validate IDs and reject self-loops.
//  2. Ensure endpoints via AddNode.
//  3. Under muEdge, reject duplicates and link both directions of the index.
//
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(from, to string) error {
	if from == "" || to == "" {
		return ErrEmptyNodeID
	}
	if from == to {
		return ErrLoopNotAllowed
	}
	if err := g.AddNode(from); err != nil {
		return err
	}
	if err := g.AddNode(to); err != nil {
		return err
	}

	g.muEdge.Lock()
	defer g.muEdge.Unlock()
	if _, dup := g.parents[to][from]; dup {
		return ErrDuplicateEdge
	}
	g.parents[to][from] = struct{}{}
	g.children[from][to] = struct{}{}
	g.nEdges++

	return nil
}

// HasEdge reports whether the arc from→to exists.
// Complexity: O(1).
func (g *Graph) HasEdge(from, to string) bool {
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()
	_, ok := g.parents[to][from]

	return ok
}

// Parents returns the parents of node in insertion order.
// An unknown node has no parents (nil), which lets residual construction treat
// variables missing from a searched graph as roots.
//
// Complexity: O(k log k) for k parents.
func (g *Graph) Parents(node string) []string {
	g.muNode.RLock()
	defer g.muNode.RUnlock()
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	return g.orderedLocked(g.parents[node])
}

// Children returns the children of node in insertion order.
func (g *Graph) Children(node string) []string {
	g.muNode.RLock()
	defer g.muNode.RUnlock()
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	return g.orderedLocked(g.children[node])
}

func (g *Graph) orderedLocked(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return g.pos[out[i]] < g.pos[out[j]] })

	return out
}

// Nodes returns node IDs in insertion order.
func (g *Graph) Nodes() []string {
	g.muNode.RLock()
	defer g.muNode.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)

	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	return len(g.order)
}

// EdgeCount returns the number of arcs.
func (g *Graph) EdgeCount() int {
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	return g.nEdges
}

// Edges returns every arc ordered by (From, To) insertion positions.
//
// Complexity: O(V + E log E).
func (g *Graph) Edges() []Edge {
	g.muNode.RLock()
	defer g.muNode.RUnlock()
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	out := make([]Edge, 0, g.nEdges)
	for _, from := range g.order {
		for _, to := range g.orderedLocked(g.children[from]) {
			out = append(out, Edge{From: from, To: to})
		}
	}

	return out
}
