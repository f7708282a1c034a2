package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecostats/ecostats/internal/bls/obs"
)

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters([]string{"area_code=0000", "item_code=SA0"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"area_code": "0000", "item_code": "SA0"}, filters)

	filters, err = parseFilters(nil)
	require.NoError(t, err)
	assert.Nil(t, filters)

	_, err = parseFilters([]string{"missing-equals"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column=value")
}

func TestWriteObservationsToFile(t *testing.T) {
	year := 2024
	v := 3.7
	d := time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)
	rows := []obs.Observation{
		{SeriesID: "LNS14000000", Year: &year, Period: "M01", Date: &d, Value: &v},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writeObservations(rows, path, "csv"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "series_id,year,period")
	assert.Contains(t, string(data), "LNS14000000,2024,M01,2024-01-12,3.7")
}

func TestWriteObservationsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	err := writeObservations(nil, path, "parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
