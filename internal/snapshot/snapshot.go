// Package snapshot persists the latest known active-case count per country.
// The ingest job writes it, the purge job clears it, and the gateway reads
// it. Backed by SQLite (modernc.org/sqlite, pure Go).
package snapshot

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no snapshot exists for the country.
var ErrNotFound = errors.New("snapshot: not found")

// CountrySnapshot is the latest known active-case count for one country.
// ActiveCases is nil when the data source had no usable record — unknown
// is not the same as zero and must never be coerced to it.
type CountrySnapshot struct {
	Country     string
	ActiveCases *int64
	UpdatedAt   time.Time
}

// Store is the persistence contract. At most one live snapshot exists per
// country: Upsert overwrites, never appends.
type Store interface {
	// Upsert creates or replaces the snapshot for s.Country.
	Upsert(ctx context.Context, s CountrySnapshot) error

	// Get returns the snapshot for the given country slug, or ErrNotFound.
	Get(ctx context.Context, country string) (CountrySnapshot, error)

	// All returns every live snapshot ordered by country.
	All(ctx context.Context) ([]CountrySnapshot, error)

	// DeleteAll removes every snapshot unconditionally.
	DeleteAll(ctx context.Context) error

	// Len returns the number of live snapshots.
	Len() int

	// LastUpdated returns the most recent snapshot write time, or the zero
	// time when the store is empty.
	LastUpdated(ctx context.Context) (time.Time, error)
}
