// SPDX-License-Identifier: MIT
package unmix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unmix/matrix"
	"github.com/katalvlaran/unmix/regress"
	"github.com/katalvlaran/unmix/unmix"
)

func TestAdjustedRandIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []int
		want float64
	}{
		{"identical", []int{0, 0, 1, 1, 2, 2}, []int{0, 0, 1, 1, 2, 2}, 1},
		{"relabeled", []int{0, 0, 1, 1}, []int{1, 1, 0, 0}, 1},
		{"crossed", []int{0, 0, 1, 1}, []int{0, 1, 0, 1}, -0.5},
		{"empty", nil, nil, 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := unmix.AdjustedRandIndex(tc.a, tc.b)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	_, err := unmix.AdjustedRandIndex([]int{0}, []int{0, 1})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = unmix.AdjustedRandIndex([]int{-1}, []int{0})
	assert.ErrorIs(t, err, unmix.ErrInvalidConfig)
}

func TestEntropyStats(t *testing.T) {
	t.Parallel()

	resp, err := matrix.FromRows([][]float64{
		{1, 0},
		{0.5, 0.5},
		{0.85, 0.15},
		{0.05, 0.95},
	})
	require.NoError(t, err)

	e, err := unmix.EntropyStats(resp)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, e.Confident90, 1e-12)
	assert.InDelta(t, 0.75, e.Confident80, 1e-12)
	assert.Greater(t, e.Mean, 0.25)
	assert.Less(t, e.Mean, 0.6)

	one, err := matrix.FromRows([][]float64{{1}, {1}})
	require.NoError(t, err)
	e, err = unmix.EntropyStats(one)
	require.NoError(t, err)
	assert.Equal(t, 0.0, e.Mean)
	assert.Equal(t, 1.0, e.Confident90)

	_, err = unmix.EntropyStats(nil)
	assert.ErrorIs(t, err, unmix.ErrEmptyDataset)
}

func TestBICDeltaK1K2_FavoursTwoRegimes(t *testing.T) {
	t.Parallel()

	ds, _ := blobs(t, 150, 3, 8, allColumns(3), 21)
	d, err := unmix.BICDeltaK1K2(ds, pooledConfig(2), regress.NewLinearQR(), unmix.WithPooledSearch(emptyGraph))
	require.NoError(t, err)
	assert.Greater(t, d.Delta, 0.0)
	assert.InDelta(t, d.BICK1-d.BICK2, d.Delta, 1e-9)
}

func TestStabilityAcrossRestarts(t *testing.T) {
	t.Parallel()

	ds, _ := blobs(t, 100, 3, 10, allColumns(3), 22)
	s, err := unmix.StabilityAcrossRestarts(ds, pooledConfig(2), regress.NewLinearQR(), 3, 99,
		unmix.WithPooledSearch(emptyGraph))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Pairs)
	assert.InDelta(t, 1.0, s.MeanARI, 1e-6)
	assert.InDelta(t, 0.0, s.SDARI, 1e-6)

	_, err = unmix.StabilityAcrossRestarts(ds, pooledConfig(2), regress.NewLinearQR(), 1, 99,
		unmix.WithPooledSearch(emptyGraph))
	assert.ErrorIs(t, err, unmix.ErrInvalidConfig)
}

func TestHeldoutLogLikGain(t *testing.T) {
	t.Parallel()

	train, _ := blobs(t, 150, 3, 8, allColumns(3), 23)
	test, _ := blobs(t, 50, 3, 8, allColumns(3), 24)
	cfg := pooledConfig(2)

	ftrain, err := unmix.ResidualFeatures(train, cfg, regress.NewLinearQR(), unmix.WithPooledSearch(emptyGraph))
	require.NoError(t, err)
	ftest, err := unmix.ResidualFeatures(test, cfg, regress.NewLinearQR(), unmix.WithPooledSearch(emptyGraph))
	require.NoError(t, err)

	gain, err := unmix.HeldoutLogLikGain(ftrain, ftest, cfg)
	require.NoError(t, err)
	assert.Greater(t, gain, 0.0)
}
