// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the matrix
// package. Kernels return these sentinels (optionally wrapped with an operation
// tag) and tests match them via errors.Is. No kernel panics on user-triggered
// error conditions.

package matrix

import (
	"errors"
	"fmt"
)

// Every message is prefixed with "matrix: ..." for easy grepping across logs.
var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are negative
	// or inconsistent with the supplied buffer.
	ErrInvalidDimensions = errors.New("matrix: invalid dimensions")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrRagged signals that a [][]float64 input had rows of different lengths.
	ErrRagged = errors.New("matrix: ragged rows")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil *Dense (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil matrix")

	// ErrSingular is returned when a factorization or solve detects a
	// numerically singular system.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrNotPositiveDefinite is returned when a Cholesky factorization fails.
	ErrNotPositiveDefinite = errors.New("matrix: matrix is not positive definite")

	// ErrEigenFailed indicates that the symmetric eigen decomposition did not converge.
	ErrEigenFailed = errors.New("matrix: eigen decomposition failed")

	// ErrEmpty indicates an empty vector where at least one element is required.
	ErrEmpty = errors.New("matrix: empty input")
)

// Operation name constants for unified error wrapping.
const (
	opNewDense     = "NewDense"
	opFromRows     = "FromRows"
	opInduced      = "Induced"
	opColumn       = "Column"
	opGram         = "Gram"
	opLeastSquares = "LeastSquaresQR"
	opEigenSym     = "SymEigenvalues"
	opCholesky     = "Cholesky"
	opSolveSym     = "SolveSPD"
	opCorrelation  = "Correlation"
	opMedian       = "Median"
)

// matrixErrorf wraps err with an operation tag, preserving the sentinel via %w.
// Use only when err != nil.
func matrixErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
