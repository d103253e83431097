// SPDX-License-Identifier: MIT
package gmm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/unmix/gmm"
	"github.com/katalvlaran/unmix/matrix"
)

func TestMapLabels_TiesToLowestIndex(t *testing.T) {
	t.Parallel()

	R, err := matrix.FromRows([][]float64{{0.2, 0.8}, {0.5, 0.5}, {0.4, 0.3}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, gmm.MapLabels(R))
}

func TestLogSumExp(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, math.Log(3), gmm.LogSumExp([]float64{0, 0, 0}), tol)
	assert.InDelta(t, 1000+math.Log(2), gmm.LogSumExp([]float64{1000, 1000}), tol)
	assert.True(t, math.IsInf(gmm.LogSumExp(nil), -1))
	assert.True(t, math.IsInf(gmm.LogSumExp([]float64{math.Inf(-1), math.Inf(-1)}), -1))
}

func TestNormalizeInPlace(t *testing.T) {
	t.Parallel()

	v := []float64{1, 3}
	gmm.NormalizeInPlace(v)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, v, tol)

	z := []float64{0, 0, 0, 0}
	gmm.NormalizeInPlace(z)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, z)

	bad := []float64{math.NaN(), 1}
	gmm.NormalizeInPlace(bad)
	assert.Equal(t, []float64{0.5, 0.5}, bad)
}

func TestParseCovarianceType(t *testing.T) {
	t.Parallel()

	ct, err := gmm.ParseCovarianceType("full")
	require.NoError(t, err)
	assert.Equal(t, gmm.Full, ct)
	ct, err = gmm.ParseCovarianceType("Diag")
	require.NoError(t, err)
	assert.Equal(t, gmm.Diagonal, ct)
	_, err = gmm.ParseCovarianceType("spherical")
	require.ErrorIs(t, err, gmm.ErrUnknownCovarianceType)
}
