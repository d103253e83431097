// SPDX-License-Identifier: MIT

// Package residual turns a dataset and a parent source into the n×p matrix of
// per-variable residual signatures, and rescales it robustly.
//
// Row i of every residual matrix corresponds to row i of the dataset, and
// column j to variable j, so cluster labels map straight back to dataset rows.
package residual

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/matrix"
	"github.com/katalvlaran/unmix/regress"
)

// MADToSigma is Φ⁻¹(0.75); MAD/MADToSigma estimates σ for Gaussian data.
const MADToSigma = 0.6744897501960817

// ScaleFloor is the smallest scale used when dividing a column.
const ScaleFloor = 1e-12

var (
	// ErrEmptyDataset indicates a nil or zero-row dataset.
	ErrEmptyDataset = errors.New("residual: empty dataset")

	// ErrNilArgument indicates a nil parent source or regressor.
	ErrNilArgument = errors.New("residual: nil parent source or regressor")
)

// ParentSource answers parent queries. superset.ParentMap and *graph.Graph satisfy it.
type ParentSource interface {
	Parents(name string) []string
}

// Matrix regresses every variable on its parents and collects the residuals.
//
// Parents that are not columns of ds, and the variable itself, are skipped.
// Each column uses a fresh Fit on reg, so reg must not be shared across goroutines.
//
// Complexity: p regressions of O(n·m²) each for m parents.
func Matrix(ds *dataset.Dataset, src ParentSource, reg regress.Regressor) (*matrix.Dense, error) {
	if ds == nil || ds.Rows() == 0 {
		return nil, fmt.Errorf("Matrix: %w", ErrEmptyDataset)
	}
	if src == nil || reg == nil {
		return nil, fmt.Errorf("Matrix: %w", ErrNilArgument)
	}

	names := ds.Names()
	out, err := matrix.NewDense(ds.Rows(), len(names))
	if err != nil {
		return nil, fmt.Errorf("Matrix: %w", err)
	}
	for j, target := range names {
		parents := filterParents(ds, target, src.Parents(target))
		if err = reg.Fit(ds, target, parents); err != nil {
			return nil, fmt.Errorf("Matrix(%s): %w", target, err)
		}
		res, err := regress.Residuals(reg, ds, target, parents)
		if err != nil {
			return nil, fmt.Errorf("Matrix(%s): %w", target, err)
		}
		if err = out.SetColumn(j, res); err != nil {
			return nil, fmt.Errorf("Matrix(%s): %w", target, err)
		}
	}

	return out, nil
}

func filterParents(ds *dataset.Dataset, target string, parents []string) []string {
	out := make([]string, 0, len(parents))
	seen := make(map[string]struct{}, len(parents))
	for _, p := range parents {
		if p == target {
			continue
		}
		if _, ok := ds.Index(p); !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	return out
}

// ColumnScales returns MAD/MADToSigma per column, floored at ScaleFloor.
// A zero-row matrix yields ScaleFloor for every column.
func ColumnScales(m *matrix.Dense) []float64 {
	scales := make([]float64, m.Cols())
	for j := range scales {
		scales[j] = ScaleFloor
		col, _ := m.Column(j)
		mad, err := matrix.MAD(col)
		if err != nil {
			continue
		}
		if s := mad / MADToSigma; s > ScaleFloor {
			scales[j] = s
		}
	}

	return scales
}

// RobustStandardizeInPlace divides each column of m by its robust scale and
// returns m. Columns are not centred.
func RobustStandardizeInPlace(m *matrix.Dense) *matrix.Dense {
	scales := ColumnScales(m)
	var i, j int
	for i = 0; i < m.Rows(); i++ {
		row := m.RawRow(i)
		for j = range row {
			row[j] /= scales[j]
		}
	}

	return m
}
