package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
)

// SQLiteStore keeps listings supplied by a listing provider. It stores input
// listings only; scores are always recomputed.
type SQLiteStore struct {
	db *sql.DB
}

// ListFilter narrows a listing query. Zero values disable a filter.
type ListFilter struct {
	City     string
	MinPrice float64
	MaxPrice float64
	MinBeds  int
	Sort     string // "price_asc", "price_desc", default by id
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) EnsureSchema() error {
	const createTable = `
CREATE TABLE IF NOT EXISTS properties (
  id TEXT PRIMARY KEY,
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  zip TEXT NOT NULL DEFAULT '',
  lat REAL,
  lon REAL,
  list_price REAL NOT NULL,
  beds INTEGER,
  baths REAL,
  sqft INTEGER,
  year_built INTEGER,
  hoa_monthly REAL,
  photo_urls_json TEXT NOT NULL DEFAULT '[]',
  listing_url TEXT NOT NULL DEFAULT ''
);
`
	if _, err := s.db.Exec(createTable); err != nil {
		return fmt.Errorf("create properties table: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(city);`); err != nil {
		return fmt.Errorf("create city index: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(list_price);`); err != nil {
		return fmt.Errorf("create price index: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CountProperties() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, err
}

const insertColumns = `(id, address, city, state, zip, lat, lon, list_price, beds, baths, sqft, year_built, hoa_monthly, photo_urls_json, listing_url)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `SELECT id, address, city, state, zip, lat, lon, list_price, beds, baths, sqft, year_built, hoa_monthly, photo_urls_json, listing_url
FROM properties`

// UpsertMany inserts a seed dataset without duplicating by id.
func (s *SQLiteStore) UpsertMany(items []domain.RawProperty) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO properties ` + insertColumns)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range items {
		if p.ID == "" {
			p.ID = newID()
		}
		if _, err := stmt.Exec(insertArgs(p)...); err != nil {
			return fmt.Errorf("insert %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) CreateProperty(p domain.RawProperty) (domain.RawProperty, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	_, err := s.db.Exec(`INSERT INTO properties `+insertColumns, insertArgs(p)...)
	return p, err
}

func (s *SQLiteStore) DeleteProperty(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (s *SQLiteStore) GetProperty(id string) (domain.RawProperty, bool, error) {
	p, err := scanProperty(s.db.QueryRow(selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RawProperty{}, false, nil
	}
	if err != nil {
		return domain.RawProperty{}, false, err
	}
	return p, true, nil
}

// ListProperties returns one page of listings and the total matching f.
// A zero limit selects the default page size; a negative limit returns all rows.
func (s *SQLiteStore) ListProperties(limit, offset int, f ListFilter) ([]domain.RawProperty, int, error) {
	if limit == 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if strings.TrimSpace(f.City) != "" {
		where = append(where, "LOWER(city) LIKE '%' || LOWER(?) || '%'")
		args = append(args, f.City)
	}
	if f.MinPrice > 0 {
		where = append(where, "list_price >= ?")
		args = append(args, f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where = append(where, "list_price <= ?")
		args = append(args, f.MaxPrice)
	}
	if f.MinBeds > 0 {
		where = append(where, "beds >= ?")
		args = append(args, f.MinBeds)
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	orderSQL := "ORDER BY id"
	switch f.Sort {
	case "price_asc":
		orderSQL = "ORDER BY list_price ASC, id"
	case "price_desc":
		orderSQL = "ORDER BY list_price DESC, id"
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM properties "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rowsSQL := selectColumns + "\n" + whereSQL + "\n" + orderSQL + "\nLIMIT ? OFFSET ?"
	rowsArgs := append(append([]any{}, args...), limit, offset)

	rows, err := s.db.Query(rowsSQL, rowsArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.RawProperty
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func newID() string {
	return "p-" + uuid.NewString()
}

func insertArgs(p domain.RawProperty) []any {
	photos, _ := json.Marshal(p.PhotoURLs)
	return []any{
		p.ID, p.Address, p.City, p.State, p.Zip,
		nullFloat(p.Latitude), nullFloat(p.Longitude),
		p.ListPrice,
		nullInt(p.Beds), nullFloat(p.Baths), nullInt(p.Sqft), nullInt(p.YearBuilt),
		nullFloat(p.HOAMonthly),
		string(photos), p.ListingURL,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (domain.RawProperty, error) {
	var (
		p                     domain.RawProperty
		lat, lon, baths, hoa  sql.NullFloat64
		beds, sqft, yearBuilt sql.NullInt64
		photosJSON            string
	)
	if err := row.Scan(
		&p.ID, &p.Address, &p.City, &p.State, &p.Zip,
		&lat, &lon, &p.ListPrice,
		&beds, &baths, &sqft, &yearBuilt, &hoa,
		&photosJSON, &p.ListingURL,
	); err != nil {
		return domain.RawProperty{}, err
	}

	p.Latitude = floatPtr(lat)
	p.Longitude = floatPtr(lon)
	p.Baths = floatPtr(baths)
	p.HOAMonthly = floatPtr(hoa)
	p.Beds = intPtr(beds)
	p.Sqft = intPtr(sqft)
	p.YearBuilt = intPtr(yearBuilt)
	_ = json.Unmarshal([]byte(photosJSON), &p.PhotoURLs)
	return p, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
