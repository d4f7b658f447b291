package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000 // milliseconds

// sqliteStore implements Store backed by SQLite.
type sqliteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time interface check.
var _ Store = (*sqliteStore)(nil)

// Open opens (creating if needed) a SQLite database at the given path and
// returns a Store backed by it. The caller is responsible for closing the
// returned *sql.DB when done.
//
// The database is created with WAL mode, a 5 s busy timeout, and a single
// connection (SQLite serialises writes). The schema is migrated automatically.
func Open(path string, logger *slog.Logger) (Store, *sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return &sqliteStore{db: db, logger: logger}, db, nil
}

// Upsert stores or replaces the snapshot for s.Country.
func (s *sqliteStore) Upsert(ctx context.Context, snap CountrySnapshot) error {
	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	var active sql.NullInt64
	if snap.ActiveCases != nil {
		active = sql.NullInt64{Int64: *snap.ActiveCases, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO country_snapshots (country, active_cases, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(country) DO UPDATE SET
			active_cases = excluded.active_cases,
			updated_at   = excluded.updated_at`,
		snap.Country, active, updatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert snapshot for %q: %w", snap.Country, err)
	}

	return nil
}

// Get returns the snapshot for the given country slug.
func (s *sqliteStore) Get(ctx context.Context, country string) (CountrySnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT country, active_cases, updated_at
		FROM country_snapshots
		WHERE country = ?`,
		country,
	)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CountrySnapshot{}, ErrNotFound
	}
	if err != nil {
		return CountrySnapshot{}, fmt.Errorf("sqlite: get snapshot for %q: %w", country, err)
	}
	return snap, nil
}

// All returns every live snapshot ordered by country.
func (s *sqliteStore) All(ctx context.Context) ([]CountrySnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT country, active_cases, updated_at
		FROM country_snapshots
		ORDER BY country`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []CountrySnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate snapshots: %w", err)
	}

	return snaps, nil
}

// DeleteAll removes every snapshot unconditionally.
func (s *sqliteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM country_snapshots"); err != nil {
		return fmt.Errorf("sqlite: delete snapshots: %w", err)
	}
	return nil
}

// Len returns the total number of stored snapshots.
func (s *sqliteStore) Len() int {
	var count int
	if err := s.db.QueryRowContext(context.TODO(), "SELECT COUNT(*) FROM country_snapshots").Scan(&count); err != nil {
		s.logger.Error("sqlite: count snapshots failed", "error", err)
		return 0
	}
	return count
}

// LastUpdated returns the most recent snapshot write time.
func (s *sqliteStore) LastUpdated(ctx context.Context) (time.Time, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM country_snapshots").Scan(&raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: last updated: %w", err)
	}
	if !raw.Valid {
		return time.Time{}, nil
	}

	ts, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse updated_at %q: %w", raw.String, err)
	}
	return ts, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanSnapshot.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (CountrySnapshot, error) {
	var (
		snap   CountrySnapshot
		active sql.NullInt64
		rawTS  string
	)
	if err := row.Scan(&snap.Country, &active, &rawTS); err != nil {
		return CountrySnapshot{}, err
	}

	if active.Valid {
		v := active.Int64
		snap.ActiveCases = &v
	}

	ts, err := time.Parse(time.RFC3339Nano, rawTS)
	if err != nil {
		return CountrySnapshot{}, fmt.Errorf("parse updated_at %q: %w", rawTS, err)
	}
	snap.UpdatedAt = ts

	return snap, nil
}
