// SPDX-License-Identifier: MIT

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/unmix/matrix"
)

// ReadCSV parses a header row of variable names followed by numeric rows.
// Blank cells and non-numeric values are rejected with ErrParse, reporting the
// 1-based line and the column name.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, datasetErrorf(opReadCSV, fmt.Errorf("%w: missing header", ErrParse))
		}
		return nil, datasetErrorf(opReadCSV, err)
	}
	names := make([]string, len(header))
	for j, h := range header {
		names[j] = strings.TrimSpace(h)
	}

	p := len(names)
	var data []float64
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, datasetErrorf(opReadCSV, fmt.Errorf("%w: line %d: %v", ErrParse, line, err))
		}
		for j, cell := range rec {
			v, perr := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if perr != nil {
				return nil, datasetErrorf(opReadCSV,
					fmt.Errorf("%w: line %d column %q: %q", ErrParse, line, names[j], cell))
			}
			data = append(data, v)
		}
	}

	m, err := matrix.NewDenseFrom(len(data)/max(p, 1), p, data)
	if err != nil {
		return nil, datasetErrorf(opReadCSV, err)
	}

	return build(names, m)
}

// WriteCSV writes the header and all rows using strconv 'g' formatting.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.names); err != nil {
		return datasetErrorf(opWriteCSV, err)
	}
	rec := make([]string, d.Cols())
	var i, j int
	for i = 0; i < d.Rows(); i++ {
		row := d.data.RawRow(i)
		for j = 0; j < len(row); j++ {
			rec[j] = strconv.FormatFloat(row[j], 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return datasetErrorf(opWriteCSV, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return datasetErrorf(opWriteCSV, err)
	}

	return nil
}
