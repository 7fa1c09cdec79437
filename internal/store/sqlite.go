package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gramsim/gram/internal/sim"
	"github.com/gramsim/gram/internal/sweep"
)

// schemaVersion is the current SQLite schema version.
const schemaVersion = 1

// SQLiteStore persists sweep results in a SQLite database, one row per
// (pair, condition) triple.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if necessary) a result database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := initSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_meta (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_meta: %w", err)
	}

	var version int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_meta LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_meta (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("unsupported schema version %d (want %d)", version, schemaVersion)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sweep_results (
			permanent       INTEGER NOT NULL,
			removed         INTEGER NOT NULL,
			condition       TEXT    NOT NULL,
			threshold_error REAL    NOT NULL,
			PRIMARY KEY (permanent, removed, condition)
		)
	`); err != nil {
		return fmt.Errorf("creating sweep_results: %w", err)
	}
	return nil
}

// Save replaces the stored results with the given set, atomically
// within a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, results sweep.Results) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sweep_results`); err != nil {
		return fmt.Errorf("clearing previous results: %w", err)
	}

	for _, row := range Flatten(results) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sweep_results (permanent, removed, condition, threshold_error)
			VALUES (?, ?, ?, ?)
		`, row.Permanent, row.Removed, row.Condition, row.ThresholdError); err != nil {
			return fmt.Errorf("inserting pair (%d,%d) %q: %w", row.Permanent, row.Removed, row.Condition, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing results: %w", err)
	}
	return nil
}

// Load reads all stored results.
func (s *SQLiteStore) Load(ctx context.Context) (sweep.Results, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT permanent, removed, condition, threshold_error
		FROM sweep_results
	`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	results := make(sweep.Results)
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.Permanent, &row.Removed, &row.Condition, &row.ThresholdError); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		key := sweep.PairKey{Permanent: row.Permanent, Removed: row.Removed}
		if !key.Valid() {
			return nil, fmt.Errorf("stored pair (%d,%d) out of range", row.Permanent, row.Removed)
		}
		set, ok := results[key]
		if !ok {
			set = make(sim.ComparisonSet)
			results[key] = set
		}
		set[row.Condition] = sim.Comparison{ThresholdError: row.ThresholdError}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating result rows: %w", err)
	}
	return results, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
