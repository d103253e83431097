// SPDX-License-Identifier: MIT

// Package dataset provides an immutable n×p table of named real-valued columns.
//
// A Dataset owns a *matrix.Dense and a name index. The unmixing engine never
// mutates a Dataset: row subsets are materialized as new datasets, and a
// zero-row dataset keeps the full variable schema so empty clusters remain
// explicit results.
package dataset

import (
	"github.com/katalvlaran/unmix/matrix"
)

// Dataset is a read-only table of named columns.
type Dataset struct {
	names []string
	index map[string]int
	data  *matrix.Dense
}

// New wraps data with the given column names. The matrix is cloned, so later
// changes to data do not leak into the dataset.
//
// Errors: ErrNilData, ErrSchemaMismatch, ErrEmptyName, ErrDuplicateName.
func New(names []string, data *matrix.Dense) (*Dataset, error) {
	if data == nil {
		return nil, datasetErrorf(opNew, ErrNilData)
	}

	return build(names, data.Clone())
}

// FromRows builds a dataset from row slices.
func FromRows(names []string, rows [][]float64) (*Dataset, error) {
	if len(rows) == 0 {
		return Empty(names)
	}
	m, err := matrix.FromRows(rows)
	if err != nil {
		return nil, datasetErrorf(opNew, err)
	}

	return build(names, m)
}

// Empty returns a zero-row dataset with the given schema.
func Empty(names []string) (*Dataset, error) {
	m, err := matrix.NewDense(0, len(names))
	if err != nil {
		return nil, datasetErrorf(opNew, err)
	}

	return build(names, m)
}

func build(names []string, m *matrix.Dense) (*Dataset, error) {
	if len(names) != m.Cols() {
		return nil, datasetErrorf(opNew, ErrSchemaMismatch)
	}
	idx := make(map[string]int, len(names))
	for j, n := range names {
		if n == "" {
			return nil, datasetErrorf(opNew, ErrEmptyName)
		}
		if _, dup := idx[n]; dup {
			return nil, datasetErrorf(opNew, ErrDuplicateName)
		}
		idx[n] = j
	}
	cp := make([]string, len(names))
	copy(cp, names)

	return &Dataset{names: cp, index: idx, data: m}, nil
}

// Rows returns the number of observations.
func (d *Dataset) Rows() int { return d.data.Rows() }

// Cols returns the number of variables.
func (d *Dataset) Cols() int { return d.data.Cols() }

// Names returns a copy of the variable names in column order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)

	return out
}

// Index returns the column index of name and whether it exists.
func (d *Dataset) Index(name string) (int, bool) {
	j, ok := d.index[name]

	return j, ok
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]float64, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, datasetErrorf(opColumn, ErrUnknownVariable)
	}

	return d.data.Column(j)
}

// ColumnAt returns a copy of column j.
func (d *Dataset) ColumnAt(j int) ([]float64, error) {
	return d.data.Column(j)
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) ([]float64, error) {
	return d.data.Row(i)
}

// RawRow returns the backing slice of row i without copying. Callers must not
// modify it and must keep 0 <= i < Rows().
func (d *Dataset) RawRow(i int) []float64 { return d.data.RawRow(i) }

// Matrix returns a copy of the underlying data.
func (d *Dataset) Matrix() *matrix.Dense { return d.data.Clone() }

// SubsetRows returns a new dataset holding rows idx in the given order.
// An empty idx yields a zero-row dataset with the same schema.
func (d *Dataset) SubsetRows(idx []int) (*Dataset, error) {
	for _, i := range idx {
		if i < 0 || i >= d.Rows() {
			return nil, datasetErrorf(opSubsetRows, ErrRowOutOfRange)
		}
	}
	m, err := d.data.Induced(idx)
	if err != nil {
		return nil, datasetErrorf(opSubsetRows, err)
	}

	return &Dataset{names: d.names, index: d.index, data: m}, nil
}
