package storage

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/rendis/gofind/internal/model"
)

// Store writes exported country snapshots to a sqlite file.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS countries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		official TEXT,
		cca3 TEXT,
		region TEXT,
		subregion TEXT,
		capital TEXT,
		population INTEGER,
		languages TEXT,
		lat REAL,
		lng REAL,
		exported_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(name)
	);
	CREATE INDEX IF NOT EXISTS idx_countries_region ON countries(region);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// JoinLanguages renders a country's languages as a stable, comma separated list.
func JoinLanguages(c model.Country) string {
	names := c.LanguageNames()
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// InsertBatch upserts countries by common name and returns rows written.
func (s *Store) InsertBatch(countries []model.Country) (int, error) {
	return s.write(countries, false)
}

// Replace swaps the table contents for countries in one transaction and
// returns rows written.
func (s *Store) Replace(countries []model.Country) (int, error) {
	return s.write(countries, true)
}

func (s *Store) write(countries []model.Country, truncate bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}

	if truncate {
		if _, err := tx.Exec("DELETE FROM countries"); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("clearing table: %w", err)
		}
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO countries
		(name, official, cca3, region, subregion, capital, population, languages, lat, lng)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range countries {
		var lat, lng sql.NullFloat64
		if la, ln, ok := c.Coordinates(); ok {
			lat = sql.NullFloat64{Float64: la, Valid: true}
			lng = sql.NullFloat64{Float64: ln, Valid: true}
		}
		res, err := stmt.Exec(
			c.Name.Common, c.Name.Official, c.CCA3, c.Region, c.Subregion,
			strings.Join(c.Capital, ", "), c.Population, JoinLanguages(c),
			lat, lng,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting %q: %w", c.Name.Common, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}
	return inserted, nil
}

func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM countries").Scan(&count)
	return count, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
