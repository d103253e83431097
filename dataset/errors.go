// SPDX-License-Identifier: MIT

package dataset

import (
	"errors"
	"fmt"
)

// Sentinel errors for dataset construction and lookup.
var (
	// ErrNilData indicates a nil backing matrix.
	ErrNilData = errors.New("dataset: nil data matrix")

	// ErrSchemaMismatch indicates that the number of names differs from the column count.
	ErrSchemaMismatch = errors.New("dataset: names do not match column count")

	// ErrEmptyName indicates an empty variable name.
	ErrEmptyName = errors.New("dataset: empty variable name")

	// ErrDuplicateName indicates two columns share a name.
	ErrDuplicateName = errors.New("dataset: duplicate variable name")

	// ErrUnknownVariable indicates a lookup of a name that is not a column.
	ErrUnknownVariable = errors.New("dataset: unknown variable")

	// ErrRowOutOfRange indicates a row index outside [0, Rows()).
	ErrRowOutOfRange = errors.New("dataset: row index out of range")

	// ErrParse indicates a malformed CSV cell or header.
	ErrParse = errors.New("dataset: parse error")
)

const (
	opNew        = "New"
	opColumn     = "Column"
	opSubsetRows = "SubsetRows"
	opReadCSV    = "ReadCSV"
	opWriteCSV   = "WriteCSV"
)

func datasetErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
