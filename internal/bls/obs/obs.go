// Package obs normalizes raw BLS observation rows into a uniform,
// sorted collection. Rows come from the JSON API or from bulk flat
// files; both carry series_id / year / period / value as strings with
// real-world mess (footnote flags, missing values, annual averages).
package obs

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ecostats/ecostats/internal/bls/period"
	"github.com/ecostats/ecostats/internal/bls/program"
)

// Raw is one observation row as delivered upstream, all strings.
type Raw struct {
	SeriesID      string
	Year          string
	Period        string
	Value         string
	PeriodName    string
	FootnoteCodes string
}

// Observation is one normalized (series, period, value) triple.
// Year, Date, and Value are nil when the raw field did not parse;
// a nil field is expected data mess, not an error.
type Observation struct {
	SeriesID      string
	Year          *int
	Period        string
	Date          *time.Time
	Value         *float64
	PeriodName    string
	FootnoteCodes string
}

// Normalize converts raw rows into Observations and sorts them by
// (series ID ascending, date ascending). Rows with an unresolvable date
// sort first within their series. Malformed fields degrade to nil
// rather than failing the batch: the output always has one Observation
// per input row.
//
// The reference day comes from the program registry via the series ID's
// two-letter prefix; unregistered prefixes fall back to day 1, since
// bulk files may carry programs outside the curated registry.
func Normalize(rows []Raw) []Observation {
	out := make([]Observation, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeRow(row))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SeriesID != out[j].SeriesID {
			return out[i].SeriesID < out[j].SeriesID
		}
		return lessDate(out[i].Date, out[j].Date)
	})
	return out
}

func normalizeRow(row Raw) Observation {
	o := Observation{
		SeriesID:      row.SeriesID,
		Period:        row.Period,
		PeriodName:    row.PeriodName,
		FootnoteCodes: row.FootnoteCodes,
	}

	if year, err := strconv.Atoi(strings.TrimSpace(row.Year)); err == nil {
		o.Year = &year
	}
	if value, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64); err == nil {
		o.Value = &value
	}

	if o.Year != nil {
		if d, ok := period.Resolve(*o.Year, row.Period, referenceDayFor(row.SeriesID)); ok {
			o.Date = &d
		}
	}
	return o
}

// referenceDayFor resolves the reference day from the series prefix.
// Lookup failures are not surfaced: day 1 is the default policy.
func referenceDayFor(seriesID string) int {
	if len(seriesID) < 2 {
		return 1
	}
	prefix := strings.ToUpper(seriesID[:2])
	if _, err := program.Get(prefix); err != nil {
		return 1
	}
	return period.ReferenceDay(prefix)
}

// lessDate orders dates ascending with nil sorting first.
func lessDate(a, b *time.Time) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return true
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}
