// SPDX-License-Identifier: MIT
// Package: search
//
// Purpose:
//   - Provide a fast skeleton search driven by Fisher-z tests on marginal and,
//     optionally, first-order partial correlations.
//   - Orient every retained adjacency by column order (earlier → later). The
//     search makes no causal orientation claims; callers that need orientation
//     plug in a real structure search.
//
// Determinism:
//   - Pairs are visited in (i<j) column order; conditioning candidates in index order.

package search

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/graph"
	"github.com/katalvlaran/unmix/matrix"
)

// Default Fisher-z parameters.
const (
	DefaultAlpha = 0.01
	DefaultDepth = 1
)

// FisherZ is a correlation-threshold skeleton search.
//
// Alpha is the two-sided significance level; Depth 0 tests marginal
// correlations only, Depth 1 additionally removes i–j when some single
// variable k adjacent to i or j renders them conditionally independent.
type FisherZ struct {
	Alpha float64
	Depth int
}

// NewFisherZ returns a FisherZ with DefaultAlpha and DefaultDepth.
func NewFisherZ() FisherZ {
	return FisherZ{Alpha: DefaultAlpha, Depth: DefaultDepth}
}

var _ GraphSearch = FisherZ{}

// Search runs the test sweep and returns a DAG oriented by column order.
//
// Implementation:
//   - Stage 1: correlation matrix from the ML covariance (zero variance → r=0).
//   - Stage 2: keep pairs whose marginal p-value < Alpha.
//   - Stage 3 (Depth 1): drop pairs separated by one neighbour.
//
// Complexity: O(n*p² + p³).
func (f FisherZ) Search(ds *dataset.Dataset) (*graph.Graph, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	if !(f.Alpha > 0 && f.Alpha < 1) {
		return nil, fmt.Errorf("FisherZ: %w", ErrInvalidAlpha)
	}
	if f.Depth < 0 || f.Depth > 1 {
		return nil, fmt.Errorf("FisherZ: %w", ErrInvalidDepth)
	}

	names := ds.Names()
	g := graph.New(names...)
	p, n := len(names), ds.Rows()
	if p < 2 || n < 4 {
		return g, nil
	}

	r := correlations(ds.Matrix())
	adj := make([][]bool, p)
	for i := range adj {
		adj[i] = make([]bool, p)
	}

	var i, j, k int
	for i = 0; i < p; i++ {
		for j = i + 1; j < p; j++ {
			if pValue(r[i][j], n, 0) < f.Alpha {
				adj[i][j], adj[j][i] = true, true
			}
		}
	}

	if f.Depth == 1 {
		// Decisions read the marginal skeleton so removal order cannot matter.
		marg := make([][]bool, p)
		for i = range adj {
			marg[i] = append([]bool(nil), adj[i]...)
		}
		for i = 0; i < p; i++ {
			for j = i + 1; j < p; j++ {
				if !marg[i][j] {
					continue
				}
				for k = 0; k < p; k++ {
					if k == i || k == j || (!marg[i][k] && !marg[j][k]) {
						continue
					}
					if pValue(partial(r, i, j, k), n, 1) >= f.Alpha {
						adj[i][j], adj[j][i] = false, false
						break
					}
				}
			}
		}
	}

	for i = 0; i < p; i++ {
		for j = i + 1; j < p; j++ {
			if adj[i][j] {
				if err := g.AddEdge(names[i], names[j]); err != nil {
					return nil, err
				}
			}
		}
	}

	return g, nil
}

func correlations(m *matrix.Dense) [][]float64 {
	cov, _ := matrix.Covariance(m)
	p := cov.Cols()
	raw := cov.RawData()
	r := make([][]float64, p)
	var i, j int
	for i = 0; i < p; i++ {
		r[i] = make([]float64, p)
		for j = 0; j < p; j++ {
			den := math.Sqrt(raw[i*p+i] * raw[j*p+j])
			if den > 0 {
				r[i][j] = raw[i*p+j] / den
			}
		}
	}

	return r
}

// partial returns the first-order partial correlation r_ij·k.
func partial(r [][]float64, i, j, k int) float64 {
	den := math.Sqrt((1 - r[i][k]*r[i][k]) * (1 - r[j][k]*r[j][k]))
	if den <= 0 {
		return 0
	}

	return (r[i][j] - r[i][k]*r[j][k]) / den
}

// pValue is the two-sided Fisher-z p-value for a correlation with c conditioning variables.
func pValue(rho float64, n, c int) float64 {
	dof := float64(n - c - 3)
	if dof <= 0 {
		return 1
	}
	rho = math.Max(-0.9999999, math.Min(0.9999999, rho))
	z := 0.5 * math.Log((1+rho)/(1-rho)) * math.Sqrt(dof)

	return 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
}
