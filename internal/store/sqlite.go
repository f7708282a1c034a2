package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ecostats/ecostats/internal/bls/obs"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS observations (
	series_id      TEXT NOT NULL,
	year           INTEGER NOT NULL,
	period         TEXT NOT NULL,
	source         TEXT NOT NULL DEFAULT '',
	obs_date       TEXT,
	value          REAL,
	period_name    TEXT NOT NULL DEFAULT '',
	footnote_codes TEXT NOT NULL DEFAULT '',
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (series_id, year, period)
);

CREATE TABLE IF NOT EXISTS sync_log (
	id        TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	rows      INTEGER NOT NULL,
	synced_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_observations_source ON observations(source);
CREATE INDEX IF NOT EXISTS idx_sync_log_synced_at ON sync_log(synced_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveObservations(ctx context.Context, source string, rows []obs.Observation) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (series_id, year, period, source, obs_date, value, period_name, footnote_codes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (series_id, year, period) DO UPDATE SET
			source = excluded.source,
			obs_date = excluded.obs_date,
			value = excluded.value,
			period_name = excluded.period_name,
			footnote_codes = excluded.footnote_codes,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	var saved int64
	for _, o := range rows {
		if o.Year == nil {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			o.SeriesID, *o.Year, o.Period, source,
			dateString(o.Date), o.Value, o.PeriodName, o.FootnoteCodes, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert observation %s %d %s", o.SeriesID, *o.Year, o.Period)
		}
		saved++
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sync_log (id, source, rows, synced_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), source, saved, now,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert sync log")
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return saved, nil
}

func (s *SQLiteStore) Observations(ctx context.Context, seriesID string) ([]obs.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series_id, year, period, obs_date, value, period_name, footnote_codes
		FROM observations WHERE series_id = ?
		ORDER BY year, period`,
		seriesID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query observations %s", seriesID)
	}
	defer rows.Close()

	var out []obs.Observation
	for rows.Next() {
		var o obs.Observation
		var year int
		var date sql.NullString
		var value sql.NullFloat64
		err := rows.Scan(&o.SeriesID, &year, &o.Period, &date, &value, &o.PeriodName, &o.FootnoteCodes)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan observation")
		}
		o.Year = &year
		if date.Valid {
			if d, err := time.Parse("2006-01-02", date.String); err == nil {
				o.Date = &d
			}
		}
		if value.Valid {
			v := value.Float64
			o.Value = &v
		}
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate observations")
}

func (s *SQLiteStore) ListSeries(ctx context.Context) ([]SavedSeries, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series_id, source, COUNT(*), MIN(year), MAX(year)
		FROM observations
		GROUP BY series_id, source
		ORDER BY series_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list series")
	}
	defer rows.Close()

	var out []SavedSeries
	for rows.Next() {
		var ss SavedSeries
		if err := rows.Scan(&ss.SeriesID, &ss.Source, &ss.Rows, &ss.FirstYear, &ss.LastYear); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan series summary")
		}
		out = append(out, ss)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate series")
}

func (s *SQLiteStore) SyncHistory(ctx context.Context, limit int) ([]SyncLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, rows, synced_at FROM sync_log
		ORDER BY synced_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query sync log")
	}
	defer rows.Close()

	var out []SyncLog
	for rows.Next() {
		var sl SyncLog
		if err := rows.Scan(&sl.ID, &sl.Source, &sl.Rows, &sl.SyncedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sync log")
		}
		out = append(out, sl)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate sync log")
}

// dateString renders a nullable date as the stored TEXT form.
func dateString(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format("2006-01-02")
}
