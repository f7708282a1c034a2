// Package flatfile downloads and parses BLS LABSTAT flat files.
//
// BLS publishes complete datasets as tab-delimited text at
// https://download.bls.gov/pub/time.series/. Each program prefix has
// its own subdirectory containing xx.series (the master series list),
// xx.data.* (observations), and mapping files like xx.area and
// xx.item. The files have no rate-limited API in front of them, but
// the host blocks aggressive clients, so everything is cached on disk.
package flatfile

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ecostats/ecostats/internal/bls/obs"
	"github.com/ecostats/ecostats/internal/bls/program"
	"github.com/ecostats/ecostats/internal/cache"
	"github.com/ecostats/ecostats/internal/fetcher"
)

const baseURL = "https://download.bls.gov/pub/time.series"

// Client downloads and parses LABSTAT flat files, caching each file on
// disk keyed by URL.
type Client struct {
	fetch fetcher.Fetcher
	cache *cache.Cache
}

// NewClient creates a flat-file client. cache may not be nil; the
// files run to hundreds of megabytes and re-downloading gets clients
// blocked.
func NewClient(f fetcher.Fetcher, c *cache.Cache) *Client {
	return &Client{fetch: f, cache: c}
}

// Mapping downloads and parses a mapping/lookup file. For example,
// Mapping(ctx, "CU", "area") fetches cu.area, the CPI area codes and
// names. Rows are returned as maps keyed by the header row.
func (c *Client) Mapping(ctx context.Context, prefix, mappingName string) ([]map[string]string, error) {
	prog, err := program.Get(prefix)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(prog.Code)
	url := fmt.Sprintf("%s/%s/%s.%s", baseURL, lower, lower, mappingName)
	text, err := c.fetchText(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseTSV(text), nil
}

// SeriesList downloads the master series file for a program and
// returns rows matching all filters (exact match on trimmed column
// values). A nil or empty filter map returns every series.
func (c *Client) SeriesList(ctx context.Context, prefix string, filters map[string]string) ([]map[string]string, error) {
	rows, err := c.Mapping(ctx, prefix, "series")
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return rows, nil
	}

	matched := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, filters) {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

// Data downloads and parses a data file. BLS data files are named like
// ce.data.0.AllCESSeries or cu.data.0.Current; fileSuffix is the part
// after "xx.data." and defaults to "0.Current" when empty.
func (c *Client) Data(ctx context.Context, prefix, fileSuffix string) ([]obs.Raw, error) {
	prog, err := program.Get(prefix)
	if err != nil {
		return nil, err
	}
	if fileSuffix == "" {
		fileSuffix = "0.Current"
	}

	lower := strings.ToLower(prog.Code)
	url := fmt.Sprintf("%s/%s/%s.data.%s", baseURL, lower, lower, fileSuffix)
	text, err := c.fetchText(ctx, url)
	if err != nil {
		return nil, err
	}

	rows := parseTSV(text)
	raws := make([]obs.Raw, 0, len(rows))
	for _, row := range rows {
		raws = append(raws, obs.Raw{
			SeriesID:      row["series_id"],
			Year:          row["year"],
			Period:        row["period"],
			Value:         row["value"],
			FootnoteCodes: row["footnote_codes"],
		})
	}
	return raws, nil
}

// Observations downloads a data file and returns it normalized and
// sorted by (series ID, date).
func (c *Client) Observations(ctx context.Context, prefix, fileSuffix string) ([]obs.Observation, error) {
	raws, err := c.Data(ctx, prefix, fileSuffix)
	if err != nil {
		return nil, err
	}
	return obs.Normalize(raws), nil
}

// Download fetches a raw flat file to a local path, bypassing the
// cache. Fetchers that can render a progress bar do; the full data
// files run to hundreds of megabytes.
func (c *Client) Download(ctx context.Context, prefix, name, destPath string) (int64, error) {
	prog, err := program.Get(prefix)
	if err != nil {
		return 0, err
	}

	lower := strings.ToLower(prog.Code)
	url := fmt.Sprintf("%s/%s/%s.%s", baseURL, lower, lower, name)

	if pf, ok := c.fetch.(interface {
		DownloadToFileWithProgress(ctx context.Context, rawURL string, path string) (int64, error)
	}); ok {
		return pf.DownloadToFileWithProgress(ctx, url, destPath)
	}
	return c.fetch.DownloadToFile(ctx, url, destPath)
}

// fetchText returns the decoded text of a flat file, from cache when
// fresh. LABSTAT files are Latin-1 encoded; mapping files carry
// accented area names that mojibake under a UTF-8 read.
func (c *Client) fetchText(ctx context.Context, url string) (string, error) {
	if data, ok := c.cache.Get(url); ok {
		return string(data), nil
	}

	body, err := c.fetch.Download(ctx, url)
	if err != nil {
		return "", eris.Wrapf(err, "flatfile: download %s", url)
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(transform.NewReader(body, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		return "", eris.Wrapf(err, "flatfile: read %s", url)
	}

	if err := c.cache.Put(url, data); err != nil {
		zap.L().Warn("flatfile: cache write failed", zap.String("url", url), zap.Error(err))
	}
	return string(data), nil
}

// parseTSV parses tab-separated text with a header row into maps keyed
// by header name. Fields carry heavy trailing whitespace in LABSTAT
// files and are trimmed; rows shorter than the header leave the
// missing columns empty, extra fields are dropped.
func parseTSV(text string) []map[string]string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) == 0 {
		return nil
	}

	header := strings.Split(lines[0], "\t")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]map[string]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		row := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(fields) {
				row[name] = strings.TrimSpace(fields[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func matchesAll(row, filters map[string]string) bool {
	for k, v := range filters {
		if strings.TrimSpace(row[k]) != v {
			return false
		}
	}
	return true
}
