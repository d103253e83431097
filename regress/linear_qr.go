// SPDX-License-Identifier: MIT
// Package: regress
//
// Purpose:
//   - Ordinary least squares with an intercept, solved by Householder QR.
//   - Recover from collinear or near-singular designs by switching to ridge
//     normal equations instead of failing.
//
// Implementation (Fit):
//   - Stage 1: resolve column indices; zero parents short-circuit to the mean.
//   - Stage 2: X = [1 | parents], β = argmin‖Xβ − y‖ via matrix.LeastSquaresQR.
//   - Stage 3: cond(XᵀX) = λmax/λmin via matrix.ConditionNumberSym.
//   - Stage 4: on QR failure, non-finite β or cond > CondThreshold, solve
//     (XᵀX + λ·diag(0,1,…,1)) β = Xᵀy with matrix.SolveSPD.
//
// Concurrency:
//   - A LinearQR holds fit state and is not safe for concurrent use.

package regress

import (
	"fmt"
	"math"

	"github.com/katalvlaran/unmix/dataset"
	"github.com/katalvlaran/unmix/matrix"
)

// DefaultCondThreshold is the condition number above which the ridge fallback engages.
const DefaultCondThreshold = 1e10

// LinearQR is the default Regressor.
type LinearQR struct {
	// CondThreshold overrides DefaultCondThreshold when > 0.
	CondThreshold float64
	// Ridge is the fallback penalty; 0 selects 1e-8·max(1, trace(XᵀX)/dim).
	Ridge float64

	beta         []float64
	fitParents   []string
	fitIdx       []int
	fitDS        *dataset.Dataset
	fitted       bool
	ridgeEngaged bool
}

var _ Regressor = (*LinearQR)(nil)

// NewLinearQR returns a LinearQR with default thresholds.
func NewLinearQR() *LinearQR {
	return &LinearQR{CondThreshold: DefaultCondThreshold}
}

// RidgeEngaged reports whether the last Fit used the ridge fallback.
func (l *LinearQR) RidgeEngaged() bool { return l.ridgeEngaged }

// Coefficients returns a copy of [intercept, β₁, …] from the last Fit.
func (l *LinearQR) Coefficients() []float64 {
	return append([]float64(nil), l.beta...)
}

func resolve(ds *dataset.Dataset, names []string) ([]int, error) {
	idx := make([]int, len(names))
	for k, name := range names {
		j, ok := ds.Index(name)
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownVariable)
		}
		idx[k] = j
	}

	return idx, nil
}

// design builds X = [1 | parents] (n × (m+1)).
func design(ds *dataset.Dataset, idx []int) *matrix.Dense {
	n, m := ds.Rows(), len(idx)
	X, _ := matrix.NewDense(n, m+1)
	var i, k int
	for i = 0; i < n; i++ {
		src := ds.RawRow(i)
		dst := X.RawRow(i)
		dst[0] = 1
		for k = 0; k < m; k++ {
			dst[k+1] = src[idx[k]]
		}
	}

	return X
}

// Fit estimates target ~ 1 + parents.
func (l *LinearQR) Fit(ds *dataset.Dataset, target string, parents []string) error {
	l.fitted, l.ridgeEngaged = false, false
	if ds == nil || ds.Rows() == 0 {
		return fmt.Errorf("LinearQR.Fit: %w", ErrEmptyDataset)
	}
	y, err := ds.Column(target)
	if err != nil {
		return fmt.Errorf("LinearQR.Fit: %q: %w", target, ErrUnknownVariable)
	}
	idx, err := resolve(ds, parents)
	if err != nil {
		return fmt.Errorf("LinearQR.Fit: %w", err)
	}

	if len(idx) == 0 {
		var s float64
		for _, v := range y {
			s += v
		}
		l.beta = []float64{s / float64(len(y))}
		l.commit(ds, parents, idx)

		return nil
	}

	X := design(ds, idx)
	beta, qrErr := matrix.LeastSquaresQR(X, y)
	G, err := matrix.Gram(X)
	if err != nil {
		return fmt.Errorf("LinearQR.Fit: %w", err)
	}
	if qrErr == nil {
		cond, cerr := matrix.ConditionNumberSym(G)
		if cerr == nil && cond <= l.threshold() {
			l.beta = beta
			l.commit(ds, parents, idx)

			return nil
		}
	}

	beta, err = l.ridge(X, G, y)
	if err != nil {
		return fmt.Errorf("LinearQR.Fit: %w: %v", ErrSolveFailed, err)
	}
	l.beta = beta
	l.ridgeEngaged = true
	l.commit(ds, parents, idx)

	return nil
}

func (l *LinearQR) threshold() float64 {
	if l.CondThreshold > 0 {
		return l.CondThreshold
	}

	return DefaultCondThreshold
}

// ridge solves (G + λ·D) β = Xᵀy where D leaves the intercept unpenalized.
func (l *LinearQR) ridge(X, G *matrix.Dense, y []float64) ([]float64, error) {
	p := G.Cols()
	g := G.RawData()

	lambda := l.Ridge
	if lambda <= 0 {
		var tr float64
		for j := 0; j < p; j++ {
			tr += g[j*p+j]
		}
		lambda = 1e-8 * math.Max(1, tr/float64(p))
	}
	for j := 1; j < p; j++ {
		g[j*p+j] += lambda
	}

	xty := make([]float64, p)
	var i, j int
	for i = 0; i < X.Rows(); i++ {
		row := X.RawRow(i)
		for j = 0; j < p; j++ {
			xty[j] += row[j] * y[i]
		}
	}

	return matrix.SolveSPD(G, xty)
}

func (l *LinearQR) commit(ds *dataset.Dataset, parents []string, idx []int) {
	l.fitParents = append([]string(nil), parents...)
	l.fitIdx = idx
	l.fitDS = ds
	l.fitted = true
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// Predict evaluates the fitted model on ds. Parent indices are re-resolved
// whenever ds or the parent list differ from those seen by Fit.
func (l *LinearQR) Predict(ds *dataset.Dataset, target string, parents []string) ([]float64, error) {
	if !l.fitted {
		return nil, fmt.Errorf("LinearQR.Predict: %w", ErrNotFitted)
	}
	if ds == nil {
		return nil, fmt.Errorf("LinearQR.Predict: %w", ErrEmptyDataset)
	}
	if len(parents) != len(l.beta)-1 {
		return nil, fmt.Errorf("LinearQR.Predict: %w", ErrParentCount)
	}
	if _, ok := ds.Index(target); !ok {
		return nil, fmt.Errorf("LinearQR.Predict: %q: %w", target, ErrUnknownVariable)
	}

	idx := l.fitIdx
	if ds != l.fitDS || !sameNames(parents, l.fitParents) {
		var err error
		if idx, err = resolve(ds, parents); err != nil {
			return nil, fmt.Errorf("LinearQR.Predict: %w", err)
		}
	}

	n := ds.Rows()
	out := make([]float64, n)
	var i, k int
	for i = 0; i < n; i++ {
		row := ds.RawRow(i)
		s := l.beta[0]
		for k = range idx {
			s += l.beta[k+1] * row[idx[k]]
		}
		out[i] = s
	}

	return out, nil
}
