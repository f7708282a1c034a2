package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ecostats/ecostats/internal/bls/obs"
	"github.com/ecostats/ecostats/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS observations (
	series_id      TEXT NOT NULL,
	year           INT NOT NULL,
	period         TEXT NOT NULL,
	source         TEXT NOT NULL DEFAULT '',
	obs_date       DATE,
	value          DOUBLE PRECISION,
	period_name    TEXT NOT NULL DEFAULT '',
	footnote_codes TEXT NOT NULL DEFAULT '',
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (series_id, year, period)
);

CREATE TABLE IF NOT EXISTS sync_log (
	id        TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	rows      BIGINT NOT NULL,
	synced_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_observations_source ON observations(source);
CREATE INDEX IF NOT EXISTS idx_sync_log_synced_at ON sync_log(synced_at);
`

var observationColumns = []string{
	"series_id", "year", "period", "source",
	"obs_date", "value", "period_name", "footnote_codes", "updated_at",
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveObservations(ctx context.Context, source string, rows []obs.Observation) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()

	records := make([][]any, 0, len(rows))
	for _, o := range rows {
		if o.Year == nil {
			continue
		}
		records = append(records, []any{
			o.SeriesID, *o.Year, o.Period, source,
			o.Date, o.Value, o.PeriodName, o.FootnoteCodes, now,
		})
	}

	saved, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "observations",
		Columns:      observationColumns,
		ConflictKeys: []string{"series_id", "year", "period"},
	}, records)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: save observations from %s", source)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sync_log (id, source, rows, synced_at) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), source, saved, now,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert sync log")
	}
	return saved, nil
}

func (s *PostgresStore) Observations(ctx context.Context, seriesID string) ([]obs.Observation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT series_id, year, period, obs_date, value, period_name, footnote_codes
		FROM observations WHERE series_id = $1
		ORDER BY year, period`,
		seriesID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query observations %s", seriesID)
	}
	defer rows.Close()

	var out []obs.Observation
	for rows.Next() {
		var o obs.Observation
		var year int
		err := rows.Scan(&o.SeriesID, &year, &o.Period, &o.Date, &o.Value, &o.PeriodName, &o.FootnoteCodes)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan observation")
		}
		o.Year = &year
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate observations")
}

func (s *PostgresStore) ListSeries(ctx context.Context) ([]SavedSeries, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT series_id, source, COUNT(*), MIN(year), MAX(year)
		FROM observations
		GROUP BY series_id, source
		ORDER BY series_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list series")
	}
	defer rows.Close()

	var out []SavedSeries
	for rows.Next() {
		var ss SavedSeries
		if err := rows.Scan(&ss.SeriesID, &ss.Source, &ss.Rows, &ss.FirstYear, &ss.LastYear); err != nil {
			return nil, eris.Wrap(err, "postgres: scan series summary")
		}
		out = append(out, ss)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate series")
}

func (s *PostgresStore) SyncHistory(ctx context.Context, limit int) ([]SyncLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, source, rows, synced_at FROM sync_log
		ORDER BY synced_at DESC, id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query sync log")
	}
	defer rows.Close()

	var out []SyncLog
	for rows.Next() {
		var sl SyncLog
		if err := rows.Scan(&sl.ID, &sl.Source, &sl.Rows, &sl.SyncedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sync log")
		}
		out = append(out, sl)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate sync log")
}
