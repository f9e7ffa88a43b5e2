// Package csvfile reads incident CSV exports from disk. It resolves the
// schema through the domain alias lists and applies the shared validity
// filter, keeping the raw rows alongside the parsed records so downstream
// tools can re-emit the input unchanged.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/incident-heatmap-etl/internal/domain"
)

// Table is one loaded incident CSV. Records holds only the rows that passed
// the validity filter; Rows and RowYear keep every data row, with RowYear 0
// marking rows the filter dropped.
type Table struct {
	Header  []string
	Rows    [][]string
	Columns domain.Columns
	Records []domain.Record
	RowYear []int
}

// Loaded returns the number of data rows read, header excluded.
func (t *Table) Loaded() int { return len(t.Rows) }

// Excluded returns the number of rows dropped by the validity filter.
func (t *Table) Excluded() int { return len(t.Rows) - len(t.Records) }

// Source loads incident tables from the local filesystem. It implements
// pipeline.Loader.
type Source struct{}

// Load reads the table at path and reduces it to the pipeline's inputs:
// valid records plus the loaded and excluded row counts.
func (Source) Load(path string) ([]domain.Record, int, int, error) {
	t, err := Load(path)
	if err != nil {
		return nil, 0, 0, err
	}
	return t.Records, t.Loaded(), t.Excluded(), nil
}

// Load reads and parses the CSV at path. It fails on unreadable files,
// malformed CSV and unresolvable columns; individual bad rows are excluded,
// not errors.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses incident CSV data from r. See Load.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are excluded per row, not fatal

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read csv header: file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		// Excel exports prefix the first cell with a UTF-8 BOM.
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	cols, err := domain.ResolveColumns(header)
	if err != nil {
		return nil, err
	}

	t := &Table{Header: header, Columns: cols}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		t.Rows = append(t.Rows, row)

		rec, ok := parseRow(row, cols)
		if !ok {
			t.RowYear = append(t.RowYear, 0)
			continue
		}
		t.Records = append(t.Records, rec)
		t.RowYear = append(t.RowYear, rec.Year())
	}
	return t, nil
}

// parseRow applies the validity filter: resolvable fields, a parseable date
// and in-range coordinates.
func parseRow(row []string, cols domain.Columns) (domain.Record, bool) {
	max := cols.Lat
	if cols.Lon > max {
		max = cols.Lon
	}
	if cols.Date > max {
		max = cols.Date
	}
	if len(row) <= max {
		return domain.Record{}, false
	}

	lat, ok := parseCoord(row[cols.Lat])
	if !ok {
		return domain.Record{}, false
	}
	lon, ok := parseCoord(row[cols.Lon])
	if !ok {
		return domain.Record{}, false
	}
	if !domain.ValidCoords(lat, lon) {
		return domain.Record{}, false
	}
	when, ok := domain.NormalizeDate(row[cols.Date], cols.YearOnly)
	if !ok {
		return domain.Record{}, false
	}
	return domain.Record{Lat: lat, Lon: lon, When: when}, true
}

func parseCoord(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
