// Package bls accesses Bureau of Labor Statistics data.
//
// Four layers of access: the public timeseries JSON API (this file),
// LABSTAT flat files (flatfile), QCEW open-data CSV slices (qcew), and
// the release schedule scraper (schedule). Series ID structure and
// program metadata live in the program, series, period, and obs
// subpackages.
package bls

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ecostats/ecostats/internal/bls/obs"
	"github.com/ecostats/ecostats/internal/fetcher"
)

const (
	baseURLV2 = "https://api.bls.gov/publicAPI/v2/timeseries/data/"
	baseURLV1 = "https://api.bls.gov/publicAPI/v1/timeseries/data/"

	// Per-request series limits published by BLS for the two API tiers.
	maxSeriesV2 = 50
	maxSeriesV1 = 25
)

// Client queries the BLS public timeseries API. With an API key it uses
// v2 (higher limits, catalog support); without one it falls back to v1.
type Client struct {
	fetch     fetcher.Fetcher
	apiKey    string
	baseURL   string
	maxSeries int
}

// NewClient creates a BLS API client. apiKey may be empty; register at
// https://data.bls.gov/registrationEngine/ for v2 access.
func NewClient(f fetcher.Fetcher, apiKey string) *Client {
	c := &Client{
		fetch:     f,
		apiKey:    apiKey,
		baseURL:   baseURLV2,
		maxSeries: maxSeriesV2,
	}
	if apiKey == "" {
		c.baseURL = baseURLV1
		c.maxSeries = maxSeriesV1
	}
	return c
}

// SeriesOptions are the optional parameters of a timeseries query.
// Zero values are omitted from the request.
type SeriesOptions struct {
	StartYear     string
	EndYear       string
	Catalog       bool
	Calculations  bool
	AnnualAverage bool
	Aspects       bool
}

type seriesRequest struct {
	SeriesID        []string `json:"seriesid"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
	StartYear       string   `json:"startyear,omitempty"`
	EndYear         string   `json:"endyear,omitempty"`
	Catalog         bool     `json:"catalog,omitempty"`
	Calculations    bool     `json:"calculations,omitempty"`
	AnnualAverage   bool     `json:"annualaverage,omitempty"`
	Aspects         bool     `json:"aspects,omitempty"`
}

type seriesResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year       string `json:"year"`
				Period     string `json:"period"`
				PeriodName string `json:"periodName"`
				Value      string `json:"value"`
				Footnotes  []struct {
					Code string `json:"code"`
				} `json:"footnotes"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// Series fetches observations for the given series IDs, splitting the
// request into API-sized chunks, and returns them normalized and sorted
// by (series ID, date).
func (c *Client) Series(ctx context.Context, seriesIDs []string, opts SeriesOptions) ([]obs.Observation, error) {
	var rows []obs.Raw
	for start := 0; start < len(seriesIDs); start += c.maxSeries {
		end := min(start+c.maxSeries, len(seriesIDs))
		chunk, err := c.fetchChunk(ctx, seriesIDs[start:end], opts)
		if err != nil {
			return nil, err
		}
		rows = append(rows, chunk...)
	}
	return obs.Normalize(rows), nil
}

func (c *Client) fetchChunk(ctx context.Context, seriesIDs []string, opts SeriesOptions) ([]obs.Raw, error) {
	payload, err := json.Marshal(seriesRequest{
		SeriesID:        seriesIDs,
		RegistrationKey: c.apiKey,
		StartYear:       opts.StartYear,
		EndYear:         opts.EndYear,
		Catalog:         opts.Catalog,
		Calculations:    opts.Calculations,
		AnnualAverage:   opts.AnnualAverage,
		Aspects:         opts.Aspects,
	})
	if err != nil {
		return nil, eris.Wrap(err, "bls: marshal request")
	}

	body, err := c.fetch.Post(ctx, c.baseURL, payload)
	if err != nil {
		return nil, eris.Wrap(err, "bls: timeseries request")
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "bls: read response")
	}

	var resp seriesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, eris.Wrap(err, "bls: parse response")
	}

	if resp.Status != "REQUEST_SUCCEEDED" {
		return nil, eris.Errorf("bls: api request failed (status=%q): %s",
			resp.Status, strings.Join(resp.Message, "; "))
	}

	// BLS reports partial failures (unknown series, truncated ranges)
	// as messages on a succeeded response.
	for _, msg := range resp.Message {
		zap.L().Warn("bls api message", zap.String("message", msg))
	}

	var rows []obs.Raw
	for _, series := range resp.Results.Series {
		for _, d := range series.Data {
			codes := make([]string, 0, len(d.Footnotes))
			for _, fn := range d.Footnotes {
				if fn.Code != "" {
					codes = append(codes, fn.Code)
				}
			}
			rows = append(rows, obs.Raw{
				SeriesID:      series.SeriesID,
				Year:          d.Year,
				Period:        d.Period,
				Value:         d.Value,
				PeriodName:    d.PeriodName,
				FootnoteCodes: strings.Join(codes, ","),
			})
		}
	}
	return rows, nil
}

// UnemploymentRate fetches the U.S. unemployment rate, seasonally
// adjusted (series LNS14000000).
func (c *Client) UnemploymentRate(ctx context.Context, startYear, endYear string) ([]obs.Observation, error) {
	return c.Series(ctx, []string{"LNS14000000"}, SeriesOptions{StartYear: startYear, EndYear: endYear})
}

// CPIAllItems fetches CPI for All Urban Consumers, All Items (series
// CUUR0000SA0).
func (c *Client) CPIAllItems(ctx context.Context, startYear, endYear string) ([]obs.Observation, error) {
	return c.Series(ctx, []string{"CUUR0000SA0"}, SeriesOptions{StartYear: startYear, EndYear: endYear})
}

// TotalNonfarmEmployment fetches total nonfarm employment, seasonally
// adjusted (series CES0000000001).
func (c *Client) TotalNonfarmEmployment(ctx context.Context, startYear, endYear string) ([]obs.Observation, error) {
	return c.Series(ctx, []string{"CES0000000001"}, SeriesOptions{StartYear: startYear, EndYear: endYear})
}

// AverageHourlyEarnings fetches average hourly earnings of all
// employees, seasonally adjusted (series CES0500000003).
func (c *Client) AverageHourlyEarnings(ctx context.Context, startYear, endYear string) ([]obs.Observation, error) {
	return c.Series(ctx, []string{"CES0500000003"}, SeriesOptions{StartYear: startYear, EndYear: endYear})
}
