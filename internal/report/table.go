// Package report prints a finished run's CSV to the console.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

const noData = "No data was written to the output file."

// PrintCSV renders the CSV at path as a table on w. A missing or empty
// file prints a short notice instead.
func PrintCSV(w io.Writer, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		_, err = fmt.Fprintln(w, noData)
		return err
	}
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		_, err = fmt.Fprintln(w, noData)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(toRow(rows[0]))
	for _, r := range rows[1:] {
		t.AppendRow(toRow(r))
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
