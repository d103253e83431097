// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for Dense storage and validators.
package matrix_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/unmix/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDense covers valid, zero-row and negative dimensions.
func TestNewDense(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rows, cols int
		wantErr    error
	}{
		{"2x3", 2, 3, nil},
		{"zero rows keep schema", 0, 4, nil},
		{"negative rows", -1, 2, matrix.ErrInvalidDimensions},
		{"negative cols", 2, -1, matrix.ErrInvalidDimensions},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			m, err := matrix.NewDense(tc.rows, tc.cols)
			if tc.wantErr != nil {
				require.Truef(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
				return
			}
			require.NoError(t, err)
			r, c := m.Shape()
			assert.Equal(t, tc.rows, r)
			assert.Equal(t, tc.cols, c)
		})
	}
}

// TestFromRows_Ragged ensures ragged inputs are rejected.
func TestFromRows_Ragged(t *testing.T) {
	t.Parallel()

	_, err := matrix.FromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrRagged)
}

// TestDense_AtSetBounds verifies safe accessors.
func TestDense_AtSetBounds(t *testing.T) {
	t.Parallel()

	m, err := matrix.FromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	v, err := m.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	require.NoError(t, m.Set(0, 1, 9))
	v, _ = m.At(0, 1)
	assert.Equal(t, 9.0, v)

	_, err = m.At(2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
}

// TestDense_ColumnAndInduced checks column extraction and row subsetting order.
func TestDense_ColumnAndInduced(t *testing.T) {
	t.Parallel()

	m, err := matrix.FromRows([][]float64{{1, 10}, {2, 20}, {3, 30}})
	require.NoError(t, err)

	col, err := m.Column(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, col)

	sub, err := m.Induced([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3, 30}, {1, 10}}, sub.ToRows())

	empty, err := m.Induced(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Rows())
	assert.Equal(t, 2, empty.Cols())

	_, err = m.Induced([]int{5})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	require.NoError(t, m.SetColumn(0, []float64{7, 8, 9}))
	col, _ = m.Column(0)
	assert.Equal(t, []float64{7, 8, 9}, col)
	require.ErrorIs(t, m.SetColumn(0, []float64{1}), matrix.ErrDimensionMismatch)
}

// TestDense_CloneIsDeep ensures Clone does not alias the buffer.
func TestDense_CloneIsDeep(t *testing.T) {
	t.Parallel()

	m, _ := matrix.FromRows([][]float64{{1, 2}})
	cp := m.Clone()
	require.NoError(t, cp.Set(0, 0, 42))
	v, _ := m.At(0, 0)
	assert.Equal(t, 1.0, v)
}

// TestValidateFinite flags NaN entries.
func TestValidateFinite(t *testing.T) {
	t.Parallel()

	m, _ := matrix.FromRows([][]float64{{1, math.NaN()}})
	require.ErrorIs(t, matrix.ValidateFinite(m), matrix.ErrNaNInf)
	require.ErrorIs(t, matrix.ValidateFinite(nil), matrix.ErrNilMatrix)
}
