package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Table holds one row of features per analysis frame.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// WriteCSV writes a header line followed by one line per row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record[:len(row)]); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteText renders the table with aligned columns for a terminal.
func (t *Table) WriteText(w io.Writer) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader(append([]string{"frame"}, t.Columns...))

	for i, row := range t.Rows {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, strconv.Itoa(i))
		for _, v := range row {
			cells = append(cells, strconv.FormatFloat(v, 'f', 4, 64))
		}
		tw.Append(cells)
	}

	tw.Render()
}

// ReadCSV parses a feature table. A leading unnamed column, as written by a
// pandas DataFrame index, is dropped.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("feature table: empty input")
	}

	skip := 0
	if len(records[0]) > 0 && records[0][0] == "" {
		skip = 1
	}

	t := &Table{Columns: records[0][skip:]}
	for n, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, fmt.Errorf("feature table: row %d has %d fields, want %d", n+1, len(rec), len(records[0]))
		}
		row := make([]float64, 0, len(rec)-skip)
		for _, field := range rec[skip:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("feature table: row %d: %w", n+1, err)
			}
			row = append(row, v)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}
