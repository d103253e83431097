// SPDX-License-Identifier: MIT

// Package kmeans implements k-means++ seeded Lloyd clustering with
// multi-restart selection by within-cluster sum of squares (SSE). It is the
// initializer of the Gaussian-mixture EM, so its output for a fixed seed is
// part of the reproducibility contract.
//
// Policies:
//   - Nearest-centroid ties go to the lowest cluster index.
//   - A cluster that loses all its points keeps its previous centroid; it is
//     never reseeded.
//   - Restart r runs with seed rng.DeriveSeed(seed, r); the lowest SSE wins and
//     the earliest restart wins ties.
package kmeans

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/unmix/internal/rng"
	"github.com/katalvlaran/unmix/matrix"
)

var (
	// ErrEmptyData indicates a nil matrix or one without rows or columns.
	ErrEmptyData = errors.New("kmeans: empty data")

	// ErrInvalidK indicates K <= 0 or K > n.
	ErrInvalidK = errors.New("kmeans: K must be in [1, n]")

	// ErrInvalidMaxIter indicates maxIter <= 0.
	ErrInvalidMaxIter = errors.New("kmeans: maxIter must be positive")
)

// Result is a hard clustering.
type Result struct {
	// Labels[i] ∈ [0,K) is the cluster of row i.
	Labels []int
	// Centroids is K×d.
	Centroids *matrix.Dense
	// SSE is Σᵢ ‖xᵢ − c_{Labels[i]}‖².
	SSE float64
	// Iterations is the number of Lloyd assignment passes performed.
	Iterations int
	// Seed is the seed of the run that produced this result.
	Seed int64
}

func validate(X *matrix.Dense, K, maxIter int) error {
	if X == nil || X.Rows() == 0 || X.Cols() == 0 {
		return ErrEmptyData
	}
	if err := matrix.ValidateFinite(X); err != nil {
		return err
	}
	if K <= 0 || K > X.Rows() {
		return fmt.Errorf("%w: K=%d n=%d", ErrInvalidK, K, X.Rows())
	}
	if maxIter <= 0 {
		return ErrInvalidMaxIter
	}

	return nil
}

// Cluster runs one k-means++ initialization followed by Lloyd iterations.
//
// Complexity: O(maxIter·n·K·d).
func Cluster(X *matrix.Dense, K, maxIter int, seed int64) (*Result, error) {
	if err := validate(X, K, maxIter); err != nil {
		return nil, fmt.Errorf("Cluster: %w", err)
	}

	return lloyd(X, K, maxIter, seed), nil
}

// ClusterWithRestarts runs Cluster with restarts derived seeds and keeps the
// lowest-SSE result. restarts < 1 is treated as 1.
func ClusterWithRestarts(X *matrix.Dense, K, maxIter int, seed int64, restarts int) (*Result, error) {
	if err := validate(X, K, maxIter); err != nil {
		return nil, fmt.Errorf("ClusterWithRestarts: %w", err)
	}
	if restarts < 1 {
		restarts = 1
	}

	var best *Result
	for r := 0; r < restarts; r++ {
		res := lloyd(X, K, maxIter, rng.DeriveSeed(seed, uint64(r)))
		if best == nil || res.SSE < best.SSE {
			best = res
		}
	}

	return best, nil
}

func sqDist(a, b []float64) float64 {
	var s, d float64
	for j := range a {
		d = a[j] - b[j]
		s += d * d
	}

	return s
}

// seedPlusPlus picks K initial centroids by D² sampling.
func seedPlusPlus(X *matrix.Dense, K int, seed int64) *matrix.Dense {
	n, d := X.Shape()
	r := rng.New(seed)
	C, _ := matrix.NewDense(K, d)

	copy(C.RawRow(0), X.RawRow(r.Intn(n)))
	d2 := make([]float64, n)
	var i, c int
	for i = 0; i < n; i++ {
		d2[i] = sqDist(X.RawRow(i), C.RawRow(0))
	}

	for c = 1; c < K; c++ {
		total := floats.Sum(d2)
		pick := -1
		if total > 0 && !math.IsInf(total, 0) {
			u := r.Float64() * total
			var cum float64
			for i = 0; i < n; i++ {
				cum += d2[i]
				if d2[i] > 0 && cum >= u {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			pick = r.Intn(n)
		}
		copy(C.RawRow(c), X.RawRow(pick))
		for i = 0; i < n; i++ {
			if v := sqDist(X.RawRow(i), C.RawRow(c)); v < d2[i] {
				d2[i] = v
			}
		}
	}

	return C
}

func lloyd(X *matrix.Dense, K, maxIter int, seed int64) *Result {
	n, d := X.Shape()
	C := seedPlusPlus(X, K, seed)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	counts := make([]int, K)
	sums := make([][]float64, K)
	for k := range sums {
		sums[k] = make([]float64, d)
	}

	var it, i, k int
	iterations := 0
	for it = 0; it < maxIter; it++ {
		changed := false
		for i = 0; i < n; i++ {
			x := X.RawRow(i)
			best, bestD := 0, math.Inf(1)
			for k = 0; k < K; k++ {
				if v := sqDist(x, C.RawRow(k)); v < bestD {
					best, bestD = k, v
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		iterations = it + 1
		if !changed {
			break
		}

		for k = 0; k < K; k++ {
			counts[k] = 0
			for j := range sums[k] {
				sums[k][j] = 0
			}
		}
		for i = 0; i < n; i++ {
			counts[labels[i]]++
			floats.Add(sums[labels[i]], X.RawRow(i))
		}
		for k = 0; k < K; k++ {
			if counts[k] == 0 {
				continue
			}
			floats.ScaleTo(C.RawRow(k), 1/float64(counts[k]), sums[k])
		}
	}

	var sse float64
	for i = 0; i < n; i++ {
		sse += sqDist(X.RawRow(i), C.RawRow(labels[i]))
	}

	return &Result{Labels: labels, Centroids: C, SSE: sse, Iterations: iterations, Seed: seed}
}

// SSE returns Σᵢ ‖xᵢ − centroids[labels[i]]‖².
func SSE(X *matrix.Dense, labels []int, centroids *matrix.Dense) (float64, error) {
	if X == nil || centroids == nil {
		return 0, ErrEmptyData
	}
	if len(labels) != X.Rows() || X.Cols() != centroids.Cols() {
		return 0, fmt.Errorf("SSE: %w", matrix.ErrDimensionMismatch)
	}
	var s float64
	for i, l := range labels {
		if l < 0 || l >= centroids.Rows() {
			return 0, fmt.Errorf("SSE: %w", matrix.ErrOutOfRange)
		}
		s += sqDist(X.RawRow(i), centroids.RawRow(l))
	}

	return s, nil
}
