// SPDX-License-Identifier: MIT
package regress_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/regress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearData(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	r := rand.New(rand.NewSource(3))
	rows := make([][]float64, n)
	for i := range rows {
		a, b := r.NormFloat64(), r.NormFloat64()
		rows[i] = []float64{a, b, 2 + 3*a - b + 0.01*r.NormFloat64()}
	}
	ds, err := dataset.FromRows([]string{"A", "B", "Y"}, rows)
	require.NoError(t, err)

	return ds
}

func TestLinearQR_RecoversCoefficients(t *testing.T) {
	t.Parallel()

	ds := linearData(t, 500)
	reg := regress.NewLinearQR()
	require.NoError(t, reg.Fit(ds, "Y", []string{"A", "B"}))
	assert.False(t, reg.RidgeEngaged())
	assert.InDeltaSlice(t, []float64{2, 3, -1}, reg.Coefficients(), 0.01)

	res, err := regress.Residuals(reg, ds, "Y", []string{"A", "B"})
	require.NoError(t, err)
	var ss float64
	for _, v := range res {
		ss += v * v
	}
	assert.Less(t, math.Sqrt(ss/float64(len(res))), 0.02)
}

func TestLinearQR_ZeroParentsIsMean(t *testing.T) {
	t.Parallel()

	ds, err := dataset.FromRows([]string{"Y"}, [][]float64{{1}, {2}, {6}})
	require.NoError(t, err)
	reg := regress.NewLinearQR()
	require.NoError(t, reg.Fit(ds, "Y", nil))

	res, err := regress.Residuals(reg, ds, "Y", nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-2, -1, 3}, res, 1e-12)
}

func TestLinearQR_CollinearEngagesRidge(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(11))
	rows := make([][]float64, 200)
	for i := range rows {
		x := r.NormFloat64()
		rows[i] = []float64{x, x, 1 + 2*x + 0.1*r.NormFloat64()}
	}
	ds, err := dataset.FromRows([]string{"X", "Xdup", "Y"}, rows)
	require.NoError(t, err)

	reg := regress.NewLinearQR()
	require.NotPanics(t, func() {
		require.NoError(t, reg.Fit(ds, "Y", []string{"X", "Xdup"}))
	})
	assert.True(t, reg.RidgeEngaged())

	beta := reg.Coefficients()
	for _, b := range beta {
		assert.False(t, math.IsNaN(b) || math.IsInf(b, 0))
	}
	// The ridge splits the slope evenly across the duplicated columns.
	assert.InDelta(t, 2.0, beta[1]+beta[2], 0.1)
}

func TestLinearQR_PredictReresolvesParents(t *testing.T) {
	t.Parallel()

	ds := linearData(t, 100)
	reg := regress.NewLinearQR()
	require.NoError(t, reg.Fit(ds, "Y", []string{"A", "B"}))
	want, err := reg.Predict(ds, "Y", []string{"A", "B"})
	require.NoError(t, err)

	// Same variables in a dataset with permuted columns.
	cols := make([][]float64, 3)
	for j, name := range []string{"Y", "B", "A"} {
		cols[j], _ = ds.Column(name)
	}
	rows := make([][]float64, ds.Rows())
	for i := range rows {
		rows[i] = []float64{cols[0][i], cols[1][i], cols[2][i]}
	}
	perm, err := dataset.FromRows([]string{"Y", "B", "A"}, rows)
	require.NoError(t, err)

	got, err := reg.Predict(perm, "Y", []string{"A", "B"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestLinearQR_Errors(t *testing.T) {
	t.Parallel()

	ds := linearData(t, 10)
	reg := regress.NewLinearQR()

	_, err := reg.Predict(ds, "Y", nil)
	require.ErrorIs(t, err, regress.ErrNotFitted)

	require.ErrorIs(t, reg.Fit(ds, "Nope", nil), regress.ErrUnknownVariable)
	require.ErrorIs(t, reg.Fit(ds, "Y", []string{"Nope"}), regress.ErrUnknownVariable)
	require.ErrorIs(t, reg.Fit(nil, "Y", nil), regress.ErrEmptyDataset)

	require.NoError(t, reg.Fit(ds, "Y", []string{"A"}))
	_, err = reg.Predict(ds, "Y", []string{"A", "B"})
	require.ErrorIs(t, err, regress.ErrParentCount)
}
