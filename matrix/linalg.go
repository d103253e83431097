// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Bridge *Dense to gonum/mat for the numerically delicate kernels:
//     Householder QR least squares, symmetric eigenvalues (condition estimates),
//     Cholesky factorization and SPD solves.
//   - Keep every bridge fail-soft: factorization failures surface as sentinels
//     (ErrSingular, ErrNotPositiveDefinite, ErrEigenFailed) so callers can fall back.
//
// Determinism:
//   - gonum kernels are deterministic for a given input; symmetrization reads the
//     upper and lower triangles in fixed order.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// gonumView exposes m as a *mat.Dense sharing the same buffer.
// The caller guarantees r>0 && c>0 (gonum panics on zero-size matrices).
func gonumView(m *Dense) *mat.Dense {
	return mat.NewDense(m.r, m.c, m.data)
}

// symmetrize builds a gonum SymDense from the averaged triangles of a square m.
func symmetrize(m *Dense) *mat.SymDense {
	n := m.r
	sym := mat.NewSymDense(n, nil)
	var i, j int
	for i = 0; i < n; i++ {
		for j = i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(m.data[i*n+j]+m.data[j*n+i]))
		}
	}

	return sym
}

// Gram returns XᵀX (c×c).
//
// Complexity: O(r*c²).
func Gram(X *Dense) (*Dense, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opGram, err)
	}
	c := X.c
	g := &Dense{r: c, c: c, data: make([]float64, c*c)}

	var i, a, b int
	for i = 0; i < X.r; i++ {
		row := X.data[i*c : (i+1)*c]
		for a = 0; a < c; a++ {
			if row[a] == 0 {
				continue
			}
			for b = a; b < c; b++ {
				g.data[a*c+b] += row[a] * row[b]
			}
		}
	}
	for a = 0; a < c; a++ {
		for b = a + 1; b < c; b++ {
			g.data[b*c+a] = g.data[a*c+b]
		}
	}

	return g, nil
}

// LeastSquaresQR solves min ‖Xβ − y‖₂ via Householder QR (gonum mat.QR).
//
// Behavior highlights:
//   - Requires Rows() >= Cols() >= 1 (ErrDimensionMismatch otherwise).
//   - A rank-deficient or badly conditioned design returns ErrSingular wrapped
//     with the gonum condition error; callers are expected to fall back to ridge.
//   - Non-finite coefficients are reported as ErrNaNInf.
//
// Complexity: O(r*c²).
func LeastSquaresQR(X *Dense, y []float64) ([]float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}
	if X.c == 0 || X.r < X.c {
		return nil, matrixErrorf(opLeastSquares, ErrDimensionMismatch)
	}
	if err := ValidateVecLen(y, X.r); err != nil {
		return nil, matrixErrorf(opLeastSquares, err)
	}

	var qr mat.QR
	qr.Factorize(gonumView(X))

	rhs := make([]float64, len(y))
	copy(rhs, y)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(len(rhs), rhs)); err != nil {
		return nil, fmt.Errorf("%s: %w (%v)", opLeastSquares, ErrSingular, err)
	}

	out := make([]float64, X.c)
	for j := range out {
		out[j] = beta.AtVec(j)
		if math.IsNaN(out[j]) || math.IsInf(out[j], 0) {
			return nil, matrixErrorf(opLeastSquares, ErrNaNInf)
		}
	}

	return out, nil
}

// SymEigenvalues returns the eigenvalues of the symmetric part of A in ascending order.
//
// Complexity: O(n³).
func SymEigenvalues(A *Dense) ([]float64, error) {
	if err := ValidateSquare(A); err != nil {
		return nil, matrixErrorf(opEigenSym, err)
	}
	if A.r == 0 {
		return []float64{}, nil
	}

	var es mat.EigenSym
	if ok := es.Factorize(symmetrize(A), false); !ok {
		return nil, matrixErrorf(opEigenSym, ErrEigenFailed)
	}

	return es.Values(nil), nil
}

// ConditionNumberSym estimates cond(A) = λmax/λmin for a symmetric PSD matrix.
// A non-positive smallest eigenvalue yields +Inf.
func ConditionNumberSym(A *Dense) (float64, error) {
	vals, err := SymEigenvalues(A)
	if err != nil {
		return math.Inf(1), err
	}
	if len(vals) == 0 {
		return 1, nil
	}
	lo, hi := vals[0], vals[len(vals)-1]
	if lo <= 0 {
		return math.Inf(1), nil
	}

	return hi / lo, nil
}

// SolveSPD solves A x = b for a symmetric positive (semi)definite A.
//
// Implementation:
//   - Stage 1: Cholesky factorization of the symmetrized A.
//   - Stage 2: on Cholesky failure, fall back to LU (mat.Dense.Solve).
//   - Stage 3: ErrSingular if both paths fail or produce non-finite values.
//
// Complexity: O(n³).
func SolveSPD(A *Dense, b []float64) ([]float64, error) {
	if err := ValidateSquare(A); err != nil {
		return nil, matrixErrorf(opSolveSym, err)
	}
	n := A.r
	if err := ValidateVecLen(b, n); err != nil {
		return nil, matrixErrorf(opSolveSym, err)
	}
	if n == 0 {
		return []float64{}, nil
	}
	rhs := make([]float64, n)
	copy(rhs, b)

	out := make([]float64, n)
	var ch mat.Cholesky
	if ch.Factorize(symmetrize(A)) {
		var x mat.VecDense
		if err := ch.SolveVecTo(&x, mat.NewVecDense(n, rhs)); err == nil {
			for i := range out {
				out[i] = x.AtVec(i)
			}
			if finite(out) {
				return out, nil
			}
		}
	}

	var x mat.Dense
	if err := x.Solve(gonumView(A), mat.NewDense(n, 1, rhs)); err != nil {
		return nil, fmt.Errorf("%s: %w (%v)", opSolveSym, ErrSingular, err)
	}
	for i := range out {
		out[i] = x.At(i, 0)
	}
	if !finite(out) {
		return nil, matrixErrorf(opSolveSym, ErrSingular)
	}

	return out, nil
}

// Cholesky holds the lower factor L of a symmetric positive-definite matrix
// in a flat row-major buffer, for repeated quadratic-form evaluation.
type Cholesky struct {
	n      int
	l      []float64
	logDet float64
}

// NewCholesky factorizes the symmetrized A = L Lᵀ via gonum mat.Cholesky.
//
// Errors: ErrNonSquare, ErrNotPositiveDefinite.
//
// Complexity: O(n³) once; QuadForm is O(n²).
func NewCholesky(A *Dense) (*Cholesky, error) {
	if err := ValidateSquare(A); err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	n := A.r
	if n == 0 {
		return &Cholesky{}, nil
	}

	var ch mat.Cholesky
	if ok := ch.Factorize(symmetrize(A)); !ok {
		return nil, matrixErrorf(opCholesky, ErrNotPositiveDefinite)
	}
	var tri mat.TriDense
	ch.LTo(&tri)

	c := &Cholesky{n: n, l: make([]float64, n*n)}
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j <= i; j++ {
			c.l[i*n+j] = tri.At(i, j)
		}
		d := c.l[i*n+i]
		if d <= 0 || math.IsNaN(d) {
			return nil, matrixErrorf(opCholesky, ErrNotPositiveDefinite)
		}
		c.logDet += math.Log(d)
	}
	c.logDet *= 2

	return c, nil
}

// LogDet returns log|A| = 2·Σ log Lᵢᵢ.
func (c *Cholesky) LogDet() float64 { return c.logDet }

// QuadForm returns zᵀA⁻¹z by forward substitution L y = z, then yᵀy.
// scratch (len ≥ n) is reused to avoid allocations in hot loops; pass nil to allocate.
func (c *Cholesky) QuadForm(z, scratch []float64) float64 {
	n := c.n
	if len(scratch) < n {
		scratch = make([]float64, n)
	}
	y := scratch[:n]

	var q, s float64
	var i, k int
	for i = 0; i < n; i++ {
		s = z[i]
		row := c.l[i*n : i*n+i]
		for k = 0; k < i; k++ {
			s -= row[k] * y[k]
		}
		y[i] = s / c.l[i*n+i]
		q += y[i] * y[i]
	}

	return q
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}
