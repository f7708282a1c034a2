// Package store persists normalized observations in SQLite or
// Postgres. SQLite is the default for local use; Postgres is for
// shared deployments.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ecostats/ecostats/internal/bls/obs"
)

// SavedSeries summarizes one stored series.
type SavedSeries struct {
	SeriesID  string `json:"series_id"`
	Source    string `json:"source"`
	Rows      int    `json:"rows"`
	FirstYear int    `json:"first_year"`
	LastYear  int    `json:"last_year"`
}

// SyncLog records one save batch.
type SyncLog struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Rows     int64     `json:"rows"`
	SyncedAt time.Time `json:"synced_at"`
}

// Store defines the persistence interface for observation data.
type Store interface {
	// SaveObservations upserts a batch keyed on (series_id, year,
	// period) and returns the number of rows written. Rows whose year
	// did not parse upstream have no key and are skipped, not errors.
	SaveObservations(ctx context.Context, source string, rows []obs.Observation) (int64, error)

	// Observations returns all stored rows for a series, ordered by
	// year then period.
	Observations(ctx context.Context, seriesID string) ([]obs.Observation, error)

	// ListSeries summarizes every stored series.
	ListSeries(ctx context.Context) ([]SavedSeries, error)

	// SyncHistory returns the most recent save batches, newest first.
	SyncHistory(ctx context.Context, limit int) ([]SyncLog, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the given driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q (want sqlite or postgres)", driver)
	}
}
