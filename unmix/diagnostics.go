// SPDX-License-Identifier: MIT

package unmix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/gmm"
	"github.com/katalvlaran/unmix/internal/rng"
	"github.com/katalvlaran/unmix/matrix"
	"github.com/katalvlaran/unmix/regress"
)

// respFloor keeps r·log r finite in EntropyStats.
const respFloor = 1e-15

// BICDelta compares a one-component and a two-component fit.
// Delta = BICK1 − BICK2; a positive Delta favours K=2.
type BICDelta struct {
	BICK1 float64
	BICK2 float64
	Delta float64
}

// BICDeltaK1K2 runs Run with K=1 and K=2 under otherwise identical settings.
func BICDeltaK1K2(ds *dataset.Dataset, cfg Config, reg regress.Regressor, opts ...Option) (BICDelta, error) {
	r1, err := Run(ds, cfg.withK(1), reg, opts...)
	if err != nil {
		return BICDelta{}, fmt.Errorf("BICDeltaK1K2: %w", err)
	}
	r2, err := Run(ds, cfg.withK(2), reg, opts...)
	if err != nil {
		return BICDelta{}, fmt.Errorf("BICDeltaK1K2: %w", err)
	}

	return BICDelta{BICK1: r1.BIC, BICK2: r2.BIC, Delta: r1.BIC - r2.BIC}, nil
}

// Entropy summarizes how crisp a soft assignment is.
type Entropy struct {
	// Mean is the average per-row entropy normalized by log K: 0 is crisp, 1 uniform.
	Mean float64
	// Confident90 and Confident80 are the fractions of rows whose largest
	// responsibility is at least 0.90 and 0.80.
	Confident90 float64
	Confident80 float64
}

// EntropyStats computes Entropy for an n×K responsibility matrix.
// For K=1 every row is crisp and Mean is 0.
func EntropyStats(resp *matrix.Dense) (Entropy, error) {
	if resp == nil || resp.Rows() == 0 || resp.Cols() == 0 {
		return Entropy{}, fmt.Errorf("EntropyStats: %w", ErrEmptyDataset)
	}
	n, K := resp.Shape()
	logK := math.Log(float64(K))

	var out Entropy
	var i, k int
	for i = 0; i < n; i++ {
		row := resp.RawRow(i)
		var h float64
		for k = 0; k < K; k++ {
			r := math.Max(row[k], respFloor)
			h -= r * math.Log(r)
		}
		if K > 1 {
			out.Mean += h / logK
		}
		mx := floats.Max(row)
		if mx >= 0.90 {
			out.Confident90++
		}
		if mx >= 0.80 {
			out.Confident80++
		}
	}
	out.Mean /= float64(n)
	out.Confident90 /= float64(n)
	out.Confident80 /= float64(n)

	return out, nil
}

// Stability is the agreement of labelings across reseeded runs.
type Stability struct {
	MeanARI float64
	SDARI   float64
	Pairs   int
}

// StabilityAcrossRestarts reruns Run repeats times, seeding run r with
// rng.DeriveSeed(seedBase, r), and reports the pairwise adjusted Rand index.
//
// Errors: ErrInvalidConfig when repeats < 2.
func StabilityAcrossRestarts(ds *dataset.Dataset, cfg Config, reg regress.Regressor, repeats int, seedBase int64, opts ...Option) (Stability, error) {
	if repeats < 2 {
		return Stability{}, fmt.Errorf("StabilityAcrossRestarts: %w: repeats=%d", ErrInvalidConfig, repeats)
	}

	labelings := make([][]int, repeats)
	for r := 0; r < repeats; r++ {
		c := cfg
		c.Seed = rng.DeriveSeed(seedBase, uint64(r))
		res, err := Run(ds, c, reg, opts...)
		if err != nil {
			return Stability{}, fmt.Errorf("StabilityAcrossRestarts(run %d): %w", r, err)
		}
		labelings[r] = res.Labels
	}

	aris := make([]float64, 0, repeats*(repeats-1)/2)
	var i, j int
	for i = 0; i < repeats; i++ {
		for j = i + 1; j < repeats; j++ {
			ari, err := AdjustedRandIndex(labelings[i], labelings[j])
			if err != nil {
				return Stability{}, fmt.Errorf("StabilityAcrossRestarts: %w", err)
			}
			aris = append(aris, ari)
		}
	}

	mean := stat.Mean(aris, nil)
	var ss float64
	for _, a := range aris {
		ss += (a - mean) * (a - mean)
	}
	denom := float64(len(aris) - 1)
	if denom < 1 {
		denom = 1
	}

	return Stability{MeanARI: mean, SDARI: math.Sqrt(ss / denom), Pairs: len(aris)}, nil
}

// HeldoutLogLikGain fits K=1 and K=2 mixtures on train and returns the
// difference of their average log-likelihoods on test (K=2 minus K=1).
// A positive gain means the second component generalizes.
func HeldoutLogLikGain(train, test *matrix.Dense, cfg Config) (float64, error) {
	m1, err := gmm.Fit(train, cfg.gmmConfig(1))
	if err != nil {
		return 0, fmt.Errorf("HeldoutLogLikGain(K=1): %w", err)
	}
	m2, err := gmm.Fit(train, cfg.gmmConfig(2))
	if err != nil {
		return 0, fmt.Errorf("HeldoutLogLikGain(K=2): %w", err)
	}
	ll1, err := m1.AverageLogLikelihood(test)
	if err != nil {
		return 0, fmt.Errorf("HeldoutLogLikGain: %w", err)
	}
	ll2, err := m2.AverageLogLikelihood(test)
	if err != nil {
		return 0, fmt.Errorf("HeldoutLogLikGain: %w", err)
	}

	return ll2 - ll1, nil
}

// AdjustedRandIndex measures agreement between two labelings of the same rows,
// corrected for chance: 1 is identical up to relabeling, about 0 is random.
// Labels must be non-negative.
func AdjustedRandIndex(a, b []int) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("AdjustedRandIndex: %w", matrix.ErrDimensionMismatch)
	}
	maxA, maxB := -1, -1
	for i := range a {
		if a[i] < 0 || b[i] < 0 {
			return 0, fmt.Errorf("AdjustedRandIndex: %w: negative label", ErrInvalidConfig)
		}
		if a[i] > maxA {
			maxA = a[i]
		}
		if b[i] > maxB {
			maxB = b[i]
		}
	}
	if len(a) == 0 {
		return 0, nil
	}

	table := make([][]int, maxA+1)
	for i := range table {
		table[i] = make([]int, maxB+1)
	}
	rows := make([]int, maxA+1)
	cols := make([]int, maxB+1)
	for i := range a {
		table[a[i]][b[i]]++
		rows[a[i]]++
		cols[b[i]]++
	}

	var sum, rowSum, colSum float64
	for i := range table {
		for _, c := range table[i] {
			sum += comb2(c)
		}
		rowSum += comb2(rows[i])
	}
	for _, c := range cols {
		colSum += comb2(c)
	}
	total := comb2(len(a))
	if total == 0 {
		return 0, nil
	}
	expected := rowSum * colSum / total
	maximum := 0.5 * (rowSum + colSum)

	return (sum - expected) / (maximum - expected + 1e-12), nil
}

func comb2(m int) float64 {
	if m < 2 {
		return 0
	}

	return float64(m) * float64(m-1) / 2
}
