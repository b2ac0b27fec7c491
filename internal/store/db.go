package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/baxromumarov/pharma-pricer/internal/model"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_records (
    id           TEXT PRIMARY KEY,
    run_id       TEXT NOT NULL,
    seq          INTEGER NOT NULL,
    site         TEXT NOT NULL,
    ean          TEXT NOT NULL,
    product_name TEXT NOT NULL,
    brand        TEXT NOT NULL,
    sale_price   BIGINT NOT NULL,
    list_price   BIGINT NOT NULL,
    available    BOOLEAN NOT NULL,
    record_date  TEXT NOT NULL,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_price_records_site ON price_records (site);
CREATE INDEX IF NOT EXISTS idx_price_records_ean ON price_records (ean);
`

// Store keeps the records of the latest run in a price_records table.
type Store struct {
	db     *sql.DB
	driver string

	mu       sync.Mutex
	runID    string
	position int
}

func NewStore(driver, connStr string) (*Store, error) {
	if driver == "" {
		driver = DriverPostgres
	}
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if driver == DriverSQLite {
		// :memory: databases live per connection.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db, driver: driver, runID: uuid.NewString()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RunMigrations(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders for the postgres driver.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Reset drops the previous run and starts a new run id.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM price_records`); err != nil {
		return fmt.Errorf("failed to reset records: %w", err)
	}
	s.mu.Lock()
	s.runID = uuid.NewString()
	s.position = 0
	s.mu.Unlock()
	return nil
}

func (s *Store) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

func (s *Store) Append(ctx context.Context, rec model.OutputRecord) error {
	s.mu.Lock()
	s.position++
	runID, pos := s.runID, s.position
	s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO price_records (id, run_id, seq, site, ean, product_name, brand, sale_price, list_price, available, record_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`), uuid.NewString(), runID, pos, rec.Site, rec.EAN, rec.ProductName, rec.Brand,
		rec.SalePrice, rec.ListPrice, rec.Availability == model.Available, rec.Date)
	if err != nil {
		return fmt.Errorf("failed to save record %s/%s: %w", rec.Site, rec.EAN, err)
	}
	return nil
}

type RecordFilter struct {
	Site string
	EAN  string
}

func (f RecordFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Site != "" {
		conds = append(conds, "site = ?")
		args = append(args, f.Site)
	}
	if f.EAN != "" {
		conds = append(conds, "ean = ?")
		args = append(args, f.EAN)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListRecords returns a page of records in run order plus the filtered
// total.
func (s *Store) ListRecords(ctx context.Context, f RecordFilter, limit, offset int) ([]model.OutputRecord, int, error) {
	limit = clampLimit(limit, 50, 500)
	if offset < 0 {
		offset = 0
	}
	where, args := f.where()

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM price_records`+where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT site, ean, product_name, brand, sale_price, list_price, available, record_date
FROM price_records`+where+`
ORDER BY seq ASC
LIMIT ? OFFSET ?
`), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []model.OutputRecord
	for rows.Next() {
		var (
			rec       model.OutputRecord
			available bool
		)
		if err := rows.Scan(&rec.Site, &rec.EAN, &rec.ProductName, &rec.Brand,
			&rec.SalePrice, &rec.ListPrice, &available, &rec.Date); err != nil {
			return nil, 0, err
		}
		if available {
			rec.Availability = model.Available
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

type SiteSummary struct {
	Site      string `json:"site"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
}

func (s *Store) SiteSummaries(ctx context.Context) ([]SiteSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT site, COUNT(*), SUM(CASE WHEN available THEN 1 ELSE 0 END)
FROM price_records
GROUP BY site
ORDER BY site
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SiteSummary
	for rows.Next() {
		var sum SiteSummary
		if err := rows.Scan(&sum.Site, &sum.Total, &sum.Available); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
