package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/pharma-pricer/internal/model"
)

var (
	available = model.OutputRecord{
		Site: "olimpica_co", EAN: "7500435170857", ProductName: "Vick Vaporub, 12 g", Brand: "VICK",
		SalePrice: 7400, ListPrice: 9000, Availability: model.Available, Date: "07/03/2025",
	}
	missing = model.OutputRecord{
		Site: "cafam_co", EAN: "7500435170857", ProductName: model.PlaceholderNotFound, Brand: model.PlaceholderBrand,
		Availability: model.Unavailable, Date: "07/03/2025",
	}
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVAppendWritesHeaderOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "prices.csv")
	s := NewCSV(path)

	require.NoError(t, s.Reset(ctx))
	require.NoError(t, s.Append(ctx, available))
	require.NoError(t, s.Append(ctx, missing))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	require.Equal(t, model.Header, rows[0])
	require.Equal(t, []string{"olimpica_co", "7500435170857", "Vick Vaporub, 12 g", "VICK", "7400", "9000", "Disponible", "07/03/2025"}, rows[1])
	require.Equal(t, []string{"cafam_co", "7500435170857", "No disponible", "N/A", "0", "0", "No Disponible", "07/03/2025"}, rows[2])
}

func TestCSVResetStartsOver(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prices.csv")
	s := NewCSV(path)

	require.NoError(t, s.Append(ctx, available))
	require.NoError(t, s.Reset(ctx))
	_, err := os.Stat(path)
	require.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, s.Append(ctx, missing))
	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	require.Equal(t, "cafam_co", rows[1][0])
}

type failingSink struct{ calls int }

func (f *failingSink) Reset(context.Context) error {
	f.calls++
	return errors.New("read-only")
}

func (f *failingSink) Append(context.Context, model.OutputRecord) error {
	f.calls++
	return errors.New("read-only")
}

func TestMultiStopsAtFirstError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prices.csv")
	bad, after := &failingSink{}, &failingSink{}
	m := Multi{NewCSV(path), bad, after}

	require.Error(t, m.Append(ctx, available))
	require.Equal(t, 1, bad.calls)
	require.Zero(t, after.calls)
	require.Len(t, readCSV(t, path), 2)

	require.Error(t, m.Reset(ctx))
	require.Zero(t, after.calls)
}
