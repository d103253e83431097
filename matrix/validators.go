// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Provide a single, canonical source of truth for common validation checks.
//   - Return plain sentinel errors (no wrapping) so call sites can wrap uniformly.
//
// Determinism & Performance:
//   - All checks are pure, deterministic and allocate nothing.

package matrix

import "math"

// ValidateNotNil ensures the matrix reference is non-nil.
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return ErrNilMatrix
	}

	return nil
}

// ValidateSquare ensures m is non-nil and square.
func ValidateSquare(m *Dense) error {
	if m == nil {
		return ErrNilMatrix
	}
	if m.r != m.c {
		return ErrNonSquare
	}

	return nil
}

// ValidateVecLen ensures len(x) == n.
func ValidateVecLen(x []float64, n int) error {
	if len(x) != n {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateRectangular ensures every row has the same length as the first.
// An empty slice is accepted.
//
// Complexity: O(r).
func ValidateRectangular(rows [][]float64) error {
	if len(rows) == 0 {
		return nil
	}
	c := len(rows[0])
	for _, row := range rows {
		if len(row) != c {
			return ErrRagged
		}
	}

	return nil
}

// ValidateFinite reports ErrNaNInf if any element of m is NaN or ±Inf.
//
// Complexity: O(r*c).
func ValidateFinite(m *Dense) error {
	if m == nil {
		return ErrNilMatrix
	}
	for _, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNaNInf
		}
	}

	return nil
}
