package obs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Basic(t *testing.T) {
	rows := []Raw{
		{SeriesID: "LNS14000000", Year: "2024", Period: "M01", Value: "3.7", PeriodName: "January"},
	}
	got := Normalize(rows)
	require.Len(t, got, 1)

	o := got[0]
	require.NotNil(t, o.Year)
	assert.Equal(t, 2024, *o.Year)
	require.NotNil(t, o.Value)
	assert.InDelta(t, 3.7, *o.Value, 1e-9)
	require.NotNil(t, o.Date)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *o.Date)
	assert.Equal(t, "January", o.PeriodName)
}

func TestNormalize_ReferenceDay12ForCES(t *testing.T) {
	got := Normalize([]Raw{
		{SeriesID: "CES0000000001", Year: "2023", Period: "M06", Value: "156000"},
	})
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Date)
	assert.Equal(t, time.Date(2023, 6, 12, 0, 0, 0, 0, time.UTC), *got[0].Date)
}

func TestNormalize_UnregisteredPrefixFallsBackToDay1(t *testing.T) {
	got := Normalize([]Raw{
		{SeriesID: "XY1234567", Year: "2023", Period: "M02", Value: "1.0"},
	})
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Date)
	assert.Equal(t, time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), *got[0].Date)
}

func TestNormalize_BadFieldsDegradeToNil(t *testing.T) {
	rows := []Raw{
		{SeriesID: "LNS14000000", Year: "2024", Period: "M01", Value: "-"},
		{SeriesID: "LNS14000000", Year: "n/a", Period: "M02", Value: "3.9"},
		{SeriesID: "LNS14000000", Year: "2024", Period: "M13", Value: "3.8"},
	}
	got := Normalize(rows)
	require.Len(t, got, 3, "no row is dropped")

	byPeriod := make(map[string]Observation, len(got))
	for _, o := range got {
		byPeriod[o.Period] = o
	}

	assert.Nil(t, byPeriod["M01"].Value)
	assert.NotNil(t, byPeriod["M01"].Date)

	bad := byPeriod["M02"]
	assert.Nil(t, bad.Year)
	assert.Nil(t, bad.Date)
	assert.NotNil(t, bad.Value)

	annual := byPeriod["M13"]
	assert.NotNil(t, annual.Year)
	assert.Nil(t, annual.Date, "M13 annual average has no date")
	assert.NotNil(t, annual.Value)
}

func TestNormalize_SortsBySeriesThenDate(t *testing.T) {
	rows := []Raw{
		{SeriesID: "CUUR0000SA0", Year: "2023", Period: "M01", Value: "300"},
		{SeriesID: "CUUR0000SA0", Year: "2022", Period: "M01", Value: "290"},
		{SeriesID: "APU0000701111", Year: "2023", Period: "M01", Value: "1.9"},
	}
	got := Normalize(rows)
	require.Len(t, got, 3)

	assert.Equal(t, "APU0000701111", got[0].SeriesID)
	assert.Equal(t, "CUUR0000SA0", got[1].SeriesID)
	assert.Equal(t, 2022, *got[1].Year)
	assert.Equal(t, 2023, *got[2].Year)
}

func TestNormalize_NilDatesSortFirst(t *testing.T) {
	rows := []Raw{
		{SeriesID: "LNS14000000", Year: "2023", Period: "M05", Value: "3.7"},
		{SeriesID: "LNS14000000", Year: "2023", Period: "M13", Value: "3.6"},
		{SeriesID: "LNS14000000", Year: "2022", Period: "M01", Value: "4.0"},
	}
	got := Normalize(rows)
	require.Len(t, got, 3)

	assert.Nil(t, got[0].Date, "undated rows lead their series")
	require.NotNil(t, got[1].Date)
	require.NotNil(t, got[2].Date)
	assert.True(t, got[1].Date.Before(*got[2].Date))
}

func TestNormalize_Empty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]Raw{}))
}
