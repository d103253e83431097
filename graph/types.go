// SPDX-License-Identifier: MIT

// Package graph defines the directed graph consumed by the unmixing engine:
// pooled and per-cluster structure searches return a *Graph, and residual
// construction only asks it for Parents(node).
//
// All APIs use separate sync.RWMutex locks internally (muNode for the node
// catalog, muEdge for arcs), so graphs may be queried and mutated across
// goroutines.
//
// Errors:
//
//	ErrEmptyNodeID    - node ID is the empty string.
//	ErrNodeNotFound   - requested node does not exist.
//	ErrLoopNotAllowed - self-loop A→A.
//	ErrDuplicateEdge  - arc A→B already present.
package graph

import (
	"errors"
	"sync"
)

// Sentinel errors for graph operations.
var (
	// ErrEmptyNodeID indicates that the provided node ID is empty.
	ErrEmptyNodeID = errors.New("graph: node ID is empty")

	// ErrNodeNotFound indicates an operation referenced a non-existent node.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrLoopNotAllowed indicates a self-loop was attempted.
	ErrLoopNotAllowed = errors.New("graph: self-loop not allowed")

	// ErrDuplicateEdge indicates the arc already exists.
	ErrDuplicateEdge = errors.New("graph: duplicate edge")
)

// Edge is a directed arc From→To.
type Edge struct {
	From string
	To   string
}

// Graph is a simple directed graph over string node IDs.
//
// Nodes keep insertion order; Parents, Children, Nodes and Edges enumerate in
// that order so downstream regressions see a stable design-matrix layout.
type Graph struct {
	muNode sync.RWMutex
	muEdge sync.RWMutex

	order []string       // insertion order
	pos   map[string]int // node → position in order

	parents  map[string]map[string]struct{}
	children map[string]map[string]struct{}
	nEdges   int
}

// New creates an empty graph, optionally seeded with nodes in the given order.
// Empty or repeated IDs in nodes are skipped.
func New(nodes ...string) *Graph {
	g := &Graph{
		pos:      make(map[string]int, len(nodes)),
		parents:  make(map[string]map[string]struct{}, len(nodes)),
		children: make(map[string]map[string]struct{}, len(nodes)),
	}
	for _, id := range nodes {
		_ = g.AddNode(id)
	}

	return g
}
