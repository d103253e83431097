// SPDX-License-Identifier: MIT

package gmm

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/unmix/matrix"
)

// MapLabels returns the row-wise argmax of resp; ties go to the lowest index.
func MapLabels(resp *matrix.Dense) []int {
	labels := make([]int, resp.Rows())
	if resp.Cols() == 0 {
		return labels
	}
	for i := range labels {
		labels[i] = floats.MaxIdx(resp.RawRow(i))
	}

	return labels
}

// BIC delegates to m.BIC(n).
func BIC(m *Model, n int) float64 { return m.BIC(n) }

// LogSumExp returns log Σ exp(vᵢ), shifted by the maximum for stability.
// An empty slice, or one holding only −Inf, yields −Inf.
func LogSumExp(v []float64) float64 {
	if len(v) == 0 {
		return math.Inf(-1)
	}
	mx := floats.Max(v)
	if math.IsInf(mx, 0) {
		return mx
	}

	return floats.LogSumExp(v)
}

// NormalizeInPlace scales v to sum to 1. A non-positive or non-finite sum
// replaces v with the uniform distribution.
func NormalizeInPlace(v []float64) {
	if len(v) == 0 {
		return
	}
	s := floats.Sum(v)
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		u := 1 / float64(len(v))
		for i := range v {
			v[i] = u
		}
		return
	}
	floats.Scale(1/s, v)
}
