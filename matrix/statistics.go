// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide the statistical kernels used by parent screening and robust scaling:
//     column means, covariance, rank transforms, Pearson/Spearman/Kendall association,
//     median and median absolute deviation.
//   - Delegate moment arithmetic to gonum/stat and gonum/floats where they fit.
//
// Determinism & Performance:
//   - Fixed i→j traversal for all explicit loops.
//   - Zero-variance inputs yield a 0 association, never NaN.

package matrix

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnMeans returns the per-column mean of m. A zero-row matrix yields zeros.
//
// Complexity: O(r*c).
func ColumnMeans(m *Dense) []float64 {
	means := make([]float64, m.c)
	if m.r == 0 {
		return means
	}
	var i int
	for i = 0; i < m.r; i++ {
		floats.Add(means, m.data[i*m.c:(i+1)*m.c])
	}
	floats.Scale(1.0/float64(m.r), means)

	return means
}

// Covariance returns the maximum-likelihood (divide by r) covariance of the
// columns of m together with the column means.
//
// Implementation:
//   - Stage 1: compute means via ColumnMeans.
//   - Stage 2: accumulate the upper triangle of Σ (x-μ)(x-μ)ᵀ, mirror it.
//   - Stage 3: divide by max(r,1).
//
// Complexity: O(r*c²).
func Covariance(m *Dense) (*Dense, []float64) {
	means := ColumnMeans(m)
	c := m.c
	cov := &Dense{r: c, c: c, data: make([]float64, c*c)}
	diff := make([]float64, c)

	var i, a, b int
	for i = 0; i < m.r; i++ {
		floats.SubTo(diff, m.data[i*c:(i+1)*c], means)
		for a = 0; a < c; a++ {
			for b = a; b < c; b++ {
				cov.data[a*c+b] += diff[a] * diff[b]
			}
		}
	}

	denom := float64(m.r)
	if denom < 1 {
		denom = 1
	}
	for a = 0; a < c; a++ {
		for b = a; b < c; b++ {
			v := cov.data[a*c+b] / denom
			cov.data[a*c+b] = v
			cov.data[b*c+a] = v
		}
	}

	return cov, means
}

// Pearson returns the linear correlation of x and y.
// Degenerate inputs (len<2 or zero variance in either) return 0.
//
// Complexity: O(n).
func Pearson(x, y []float64) (float64, error) {
	if err := ValidateVecLen(y, len(x)); err != nil {
		return 0, matrixErrorf(opCorrelation, err)
	}
	if len(x) < 2 {
		return 0, nil
	}
	_, vx := stat.MeanVariance(x, nil)
	_, vy := stat.MeanVariance(y, nil)
	if vx <= 0 || vy <= 0 || math.IsNaN(vx) || math.IsNaN(vy) {
		return 0, nil
	}

	return stat.Correlation(x, y, nil), nil
}

// Ranks returns 1-based average ranks of x (ties share the mean of their ranks).
//
// Complexity: O(n log n).
func Ranks(x []float64) []float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, n)
	var i, j, k int
	for i = 0; i < n; {
		j = i
		for j+1 < n && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2.0 + 1.0
		for k = i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	return ranks
}

// Spearman returns the rank correlation of x and y (Pearson on average ranks).
func Spearman(x, y []float64) (float64, error) {
	if err := ValidateVecLen(y, len(x)); err != nil {
		return 0, matrixErrorf(opCorrelation, err)
	}

	return Pearson(Ranks(x), Ranks(y))
}

// Kendall returns Kendall's tau-a: (concordant − discordant) / (n(n−1)/2).
// Tied pairs count as neither. O(n²), intended for screening only.
func Kendall(x, y []float64) (float64, error) {
	if err := ValidateVecLen(y, len(x)); err != nil {
		return 0, matrixErrorf(opCorrelation, err)
	}
	n := len(x)
	if n < 2 {
		return 0, nil
	}

	var s float64
	var i, j int
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			p := (x[i] - x[j]) * (y[i] - y[j])
			if p > 0 {
				s++
			} else if p < 0 {
				s--
			}
		}
	}

	return s / (float64(n) * float64(n-1) / 2.0), nil
}

// Median returns the sample median of x (mean of the two middle values for even n).
// x is not modified.
func Median(x []float64) (float64, error) {
	n := len(x)
	if n == 0 {
		return 0, matrixErrorf(opMedian, ErrEmpty)
	}
	s := make([]float64, n)
	copy(s, x)
	sort.Float64s(s)
	if n%2 == 1 {
		return s[n/2], nil
	}

	return 0.5 * (s[n/2-1] + s[n/2]), nil
}

// MAD returns the median absolute deviation around the median (unscaled).
func MAD(x []float64) (float64, error) {
	med, err := Median(x)
	if err != nil {
		return 0, err
	}
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - med)
	}

	return Median(dev)
}
