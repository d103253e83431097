// SPDX-License-Identifier: MIT
package dataset_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SchemaValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		names   []string
		rows    [][]float64
		wantErr error
	}{
		{"ok", []string{"X", "Y"}, [][]float64{{1, 2}}, nil},
		{"too few names", []string{"X"}, [][]float64{{1, 2}}, dataset.ErrSchemaMismatch},
		{"empty name", []string{"X", ""}, [][]float64{{1, 2}}, dataset.ErrEmptyName},
		{"duplicate", []string{"X", "X"}, [][]float64{{1, 2}}, dataset.ErrDuplicateName},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := dataset.FromRows(tc.names, tc.rows)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSubsetRows(t *testing.T) {
	t.Parallel()

	ds, err := dataset.FromRows([]string{"A", "B"}, [][]float64{{1, 10}, {2, 20}, {3, 30}})
	require.NoError(t, err)

	sub, err := ds.SubsetRows([]int{2, 0})
	require.NoError(t, err)
	col, err := sub.Column("B")
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 10}, col)

	empty, err := ds.SubsetRows(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Rows())
	assert.Equal(t, []string{"A", "B"}, empty.Names())

	_, err = ds.SubsetRows([]int{3})
	require.ErrorIs(t, err, dataset.ErrRowOutOfRange)

	_, err = ds.Column("C")
	require.ErrorIs(t, err, dataset.ErrUnknownVariable)
}

func TestRawRow(t *testing.T) {
	t.Parallel()

	ds, err := dataset.FromRows([]string{"A", "B"}, [][]float64{{1, 10}, {2, 20}})
	require.NoError(t, err)

	raw := ds.RawRow(1)
	row, err := ds.Row(1)
	require.NoError(t, err)
	assert.Equal(t, row, raw)
	assert.Equal(t, 2, cap(raw), "row slice must not reach into the next row")

	before := ds.Matrix()
	_ = ds.RawRow(0)
	assert.Equal(t, before.RawData(), ds.Matrix().RawData())
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	ds, err := dataset.Empty([]string{"X", "Y", "Z"})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Rows())
	assert.Equal(t, 3, ds.Cols())
	j, ok := ds.Index("Z")
	assert.True(t, ok)
	assert.Equal(t, 2, j)
}

func TestCSVRoundTrip(t *testing.T) {
	t.Parallel()

	in := "X, Y\n1,2.5\n-3,4e2\n"
	ds, err := dataset.ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, ds.Names())
	assert.Equal(t, 2, ds.Rows())

	var buf bytes.Buffer
	require.NoError(t, dataset.WriteCSV(&buf, ds))
	assert.Equal(t, "X,Y\n1,2.5\n-3,400\n", buf.String())
}

func TestReadCSV_Errors(t *testing.T) {
	t.Parallel()

	_, err := dataset.ReadCSV(strings.NewReader(""))
	require.ErrorIs(t, err, dataset.ErrParse)

	_, err = dataset.ReadCSV(strings.NewReader("X,Y\n1,abc\n"))
	require.ErrorIs(t, err, dataset.ErrParse)
	assert.Contains(t, err.Error(), `column "Y"`)

	_, err = dataset.ReadCSV(strings.NewReader("X,Y\n1\n"))
	require.ErrorIs(t, err, dataset.ErrParse)
}
