// SPDX-License-Identifier: MIT
// File: compare.go
// Role: Structural comparison of two directed graphs over named nodes:
//       adjacency precision/recall/F1, arrow precision/recall/F1 on the shared
//       skeleton, and structural Hamming distance. BestMatch pairs an
//       estimate with the closest of several reference graphs.
// Determinism:
//   - Pure function of the arc sets; map iteration only feeds counters.

package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNilGraph indicates Compare received a nil graph.
	ErrNilGraph = errors.New("graph: nil graph")

	// ErrNoReference indicates BestMatch received no reference graphs.
	ErrNoReference = errors.New("graph: no reference graphs")
)

// Diff summarizes how an estimated graph differs from a reference graph.
type Diff struct {
	AdjacencyPrecision float64
	AdjacencyRecall    float64
	AdjacencyF1        float64
	ArrowPrecision     float64
	ArrowRecall        float64
	ArrowF1            float64
	// SHD counts skeleton insertions/deletions plus reversals on shared adjacencies.
	SHD int
}

type pair struct{ a, b string }

func unordered(e Edge) pair {
	if e.From < e.To {
		return pair{e.From, e.To}
	}

	return pair{e.To, e.From}
}

func skeleton(g *Graph) map[pair]struct{} {
	out := make(map[pair]struct{})
	for _, e := range g.Edges() {
		out[unordered(e)] = struct{}{}
	}

	return out
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}

	return 2 * p * r / (p + r)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}

	return float64(num) / float64(den)
}

// Compare scores est against truth.
//
// Implementation:
//   - Stage 1: adjacency confusion counts on unordered node pairs.
//   - Stage 2: for pairs adjacent in both, count arrow agreements per direction.
//   - Stage 3: SHD = |skeleton symmetric difference| + reversed shared arcs.
//
// Complexity: O(E log E).
func Compare(truth, est *Graph) (Diff, error) {
	if truth == nil || est == nil {
		return Diff{}, ErrNilGraph
	}
	st, se := skeleton(truth), skeleton(est)

	var tp, fp, fn int
	shared := make([]pair, 0, len(st))
	for p := range st {
		if _, ok := se[p]; ok {
			tp++
			shared = append(shared, p)
		} else {
			fn++
		}
	}
	fp = len(se) - tp

	var d Diff
	d.AdjacencyPrecision = ratio(tp, tp+fp)
	d.AdjacencyRecall = ratio(tp, tp+fn)
	d.AdjacencyF1 = f1(d.AdjacencyPrecision, d.AdjacencyRecall)

	var tpO, fpO, fnO, reversed int
	for _, p := range shared {
		tab, tba := truth.HasEdge(p.a, p.b), truth.HasEdge(p.b, p.a)
		hab, hba := est.HasEdge(p.a, p.b), est.HasEdge(p.b, p.a)
		if tab && hab {
			tpO++
		}
		if tba && hba {
			tpO++
		}
		if tab && !hab {
			fnO++
		}
		if tba && !hba {
			fnO++
		}
		if hab && !tab {
			fpO++
		}
		if hba && !tba {
			fpO++
		}
		if tab != hab || tba != hba {
			reversed++
		}
	}
	d.ArrowPrecision = ratio(tpO, tpO+fpO)
	d.ArrowRecall = ratio(tpO, tpO+fnO)
	d.ArrowF1 = f1(d.ArrowPrecision, d.ArrowRecall)
	d.SHD = fn + fp + reversed

	return d, nil
}

// Match is the reference graph closest to an estimate.
type Match struct {
	// Index is the position of the reference in the slice passed to BestMatch.
	Index int
	Diff  Diff
}

// BestMatch compares est against every reference and keeps the one with the
// highest adjacency F1. Ties go to the lower SHD, then to the lower index.
//
// Complexity: O(R·E log E) for R references.
func BestMatch(truths []*Graph, est *Graph) (Match, error) {
	if len(truths) == 0 {
		return Match{}, ErrNoReference
	}

	best := Match{Index: -1}
	for i, truth := range truths {
		d, err := Compare(truth, est)
		if err != nil {
			return Match{}, fmt.Errorf("reference %d: %w", i, err)
		}
		if best.Index < 0 ||
			d.AdjacencyF1 > best.Diff.AdjacencyF1 ||
			(d.AdjacencyF1 == best.Diff.AdjacencyF1 && d.SHD < best.Diff.SHD) {
			best = Match{Index: i, Diff: d}
		}
	}

	return best, nil
}
