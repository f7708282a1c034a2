// Package qcew fetches Quarterly Census of Employment and Wages data
// through the open-data CSV slice API at data.bls.gov/cew/data/api/.
//
// The LABSTAT flat files for the EN program are frequently blocked by
// the CDN in front of download.bls.gov; the CSV slices are the
// supported bulk path. Three slice types exist: industry (all areas
// for one industry code), area (all industries for one FIPS code),
// and size (establishment-size class, first quarter only).
//
// API reference:
// https://www.bls.gov/cew/additional-resources/open-data/csv-data-slices.htm
package qcew

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecostats/ecostats/internal/cache"
	"github.com/ecostats/ecostats/internal/fetcher"
)

const (
	baseURL = "https://data.bls.gov/cew/data/api"

	// Concurrent slice downloads per range query. data.bls.gov
	// tolerates modest parallelism; the fetcher's host limiter caps
	// the actual request rate.
	rangeConcurrency = 4
)

var validSliceTypes = map[string]bool{
	"industry": true,
	"area":     true,
	"size":     true,
}

// Client downloads and caches QCEW CSV data slices.
type Client struct {
	fetch fetcher.Fetcher
	cache *cache.Cache
}

// NewClient creates a QCEW slice client.
func NewClient(f fetcher.Fetcher, c *cache.Cache) *Client {
	return &Client{fetch: f, cache: c}
}

// Slice fetches a single CSV data slice and returns its rows keyed by
// the header columns. A slice that is not yet published (the API
// answers 404) returns no rows and no error; release lag is a normal
// state for recent quarters.
//
// sliceCode examples: "10" (all industries), "US000" (national area),
// "3" (size class 3). Hyphenated NAICS codes use underscores, e.g.
// "31_33" for manufacturing.
func (c *Client) Slice(ctx context.Context, year, qtr int, sliceType, sliceCode string) ([]map[string]string, error) {
	if !validSliceTypes[sliceType] {
		return nil, eris.Errorf("qcew: invalid slice type %q (must be one of: area, industry, size)", sliceType)
	}

	url := fmt.Sprintf("%s/%d/%d/%s/%s.csv", baseURL, year, qtr, sliceType, sliceCode)
	text, ok, err := c.fetchText(ctx, url)
	if err != nil {
		return nil, err
	}
	if !ok {
		zap.L().Debug("qcew slice not published",
			zap.Int("year", year),
			zap.Int("qtr", qtr),
			zap.String("slice", sliceType+"/"+sliceCode),
		)
		return nil, nil
	}
	return parseCSV(text)
}

// Industry fetches slices for one industry code across a year range,
// concatenated in (year, quarter) order. quarters defaults to all four.
func (c *Client) Industry(ctx context.Context, industryCode string, startYear, endYear int, quarters []int) ([]map[string]string, error) {
	return c.fetchRange(ctx, "industry", industryCode, startYear, endYear, quarters)
}

// Area fetches slices for one FIPS area code across a year range,
// concatenated in (year, quarter) order. quarters defaults to all four.
func (c *Client) Area(ctx context.Context, areaCode string, startYear, endYear int, quarters []int) ([]map[string]string, error) {
	return c.fetchRange(ctx, "area", areaCode, startYear, endYear, quarters)
}

// Size fetches slices for one establishment-size class across a year
// range. Size data is published for the first quarter only and
// excludes size code 0 (all sizes).
func (c *Client) Size(ctx context.Context, sizeCode string, startYear, endYear int) ([]map[string]string, error) {
	return c.fetchRange(ctx, "size", sizeCode, startYear, endYear, []int{1})
}

// fetchRange downloads every (year, quarter) slice in the range and
// concatenates the published ones, preserving chronological order.
func (c *Client) fetchRange(ctx context.Context, sliceType, sliceCode string, startYear, endYear int, quarters []int) ([]map[string]string, error) {
	if len(quarters) == 0 {
		quarters = []int{1, 2, 3, 4}
	}

	type slot struct {
		year, qtr int
	}
	var slots []slot
	for year := startYear; year <= endYear; year++ {
		for _, qtr := range quarters {
			slots = append(slots, slot{year, qtr})
		}
	}

	parts := make([][]map[string]string, len(slots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rangeConcurrency)
	for i, s := range slots {
		i, s := i, s
		g.Go(func() error {
			rows, err := c.Slice(gctx, s.year, s.qtr, sliceType, sliceCode)
			if err != nil {
				return err
			}
			parts[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []map[string]string
	for _, rows := range parts {
		out = append(out, rows...)
	}
	return out, nil
}

// fetchText returns the slice CSV text, from cache when fresh. The
// second return is false when the slice is not published (404).
func (c *Client) fetchText(ctx context.Context, url string) (string, bool, error) {
	if data, ok := c.cache.Get(url); ok {
		return string(data), true, nil
	}

	body, err := c.fetch.Download(ctx, url)
	if eris.Is(err, fetcher.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "qcew: download %s", url)
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return "", false, eris.Wrapf(err, "qcew: read %s", url)
	}

	if err := c.cache.Put(url, data); err != nil {
		zap.L().Warn("qcew: cache write failed", zap.String("url", url), zap.Error(err))
	}
	return string(data), true, nil
}

// parseCSV parses a QCEW slice into maps keyed by the header row. The
// files quote every field, so this goes through encoding/csv rather
// than a plain split.
func parseCSV(text string) ([]map[string]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "qcew: parse csv header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "qcew: parse csv row")
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
