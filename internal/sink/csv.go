// Package sink holds the destinations a run writes its records to.
package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/baxromumarov/pharma-pricer/internal/model"
)

// CSV appends records to a comma-separated file. The file is reopened for
// every record so rows already written survive an aborted run.
type CSV struct {
	path string
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (c *CSV) Path() string { return c.path }

// Reset removes the previous run's file.
func (c *CSV) Reset(context.Context) error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("csv reset: %w", err)
	}
	return nil
}

func (c *CSV) Append(_ context.Context, rec model.OutputRecord) error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("csv append: %w", err)
		}
	}
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("csv append: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("csv append: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(model.Header); err != nil {
			return fmt.Errorf("csv header: %w", err)
		}
	}
	if err := w.Write(Row(rec)); err != nil {
		return fmt.Errorf("csv append: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv append: %w", err)
	}
	return f.Close()
}

// Row renders rec in Header order.
func Row(rec model.OutputRecord) []string {
	return []string{
		rec.Site,
		rec.EAN,
		rec.ProductName,
		rec.Brand,
		strconv.FormatInt(rec.SalePrice, 10),
		strconv.FormatInt(rec.ListPrice, 10),
		rec.Availability.String(),
		rec.Date,
	}
}
