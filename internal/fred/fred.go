// Package fred wraps the Federal Reserve Economic Data API at
// api.stlouisfed.org. FRED serves over 800,000 time series; an API
// key is required and free.
//
// API docs: https://fred.stlouisfed.org/docs/api/
package fred

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ecostats/ecostats/internal/fetcher"
)

const baseURL = "https://api.stlouisfed.org/fred"

// Client queries the FRED API.
type Client struct {
	fetch  fetcher.Fetcher
	apiKey string
}

// NewClient creates a FRED client. Register for a key at
// https://fred.stlouisfed.org/docs/api/api_key.html.
func NewClient(f fetcher.Fetcher, apiKey string) *Client {
	return &Client{fetch: f, apiKey: apiKey}
}

// SeriesInfo is the metadata record for one FRED series.
type SeriesInfo struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Frequency          string `json:"frequency"`
	FrequencyShort     string `json:"frequency_short"`
	Units              string `json:"units"`
	UnitsShort         string `json:"units_short"`
	SeasonalAdjustment string `json:"seasonal_adjustment"`
	ObservationStart   string `json:"observation_start"`
	ObservationEnd     string `json:"observation_end"`
	LastUpdated        string `json:"last_updated"`
	Popularity         int    `json:"popularity"`
	Notes              string `json:"notes"`
}

// Observation is one dated value. Value is nil when FRED reports the
// observation as missing (the API encodes missing values as ".").
type Observation struct {
	Date  time.Time
	Value *float64
}

// Category is one node of the FRED category tree.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID int    `json:"parent_id"`
}

// ObservationOptions are the optional parameters of an observations
// query. Zero values fall back to the API defaults (levels, average
// aggregation, ascending order).
type ObservationOptions struct {
	Start             string // YYYY-MM-DD
	End               string // YYYY-MM-DD
	Units             string // lin, chg, pch, pc1, ...
	Frequency         string // d, w, m, q, sa, a
	AggregationMethod string // avg, sum, eop
	SortOrder         string // asc, desc
	Limit             int
	Offset            int
}

// Series fetches metadata for one series ID, e.g. "GDP" or "UNRATE".
func (c *Client) Series(ctx context.Context, seriesID string) (*SeriesInfo, error) {
	var resp struct {
		Seriess []SeriesInfo `json:"seriess"`
	}
	params := url.Values{"series_id": {seriesID}}
	if err := c.get(ctx, "series", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Seriess) == 0 {
		return nil, eris.Errorf("fred: series %q not found", seriesID)
	}
	return &resp.Seriess[0], nil
}

// Observations fetches the data values of one series.
func (c *Client) Observations(ctx context.Context, seriesID string, opts ObservationOptions) ([]Observation, error) {
	params := url.Values{"series_id": {seriesID}}
	if opts.Start != "" {
		params.Set("observation_start", opts.Start)
	}
	if opts.End != "" {
		params.Set("observation_end", opts.End)
	}
	if opts.Units != "" {
		params.Set("units", opts.Units)
	}
	if opts.Frequency != "" {
		params.Set("frequency", opts.Frequency)
	}
	if opts.AggregationMethod != "" {
		params.Set("aggregation_method", opts.AggregationMethod)
	}
	if opts.SortOrder != "" {
		params.Set("sort_order", opts.SortOrder)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		params.Set("offset", strconv.Itoa(opts.Offset))
	}

	var resp struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := c.get(ctx, "series/observations", params, &resp); err != nil {
		return nil, err
	}

	out := make([]Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		date, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			continue
		}
		obs := Observation{Date: date}
		if v, err := strconv.ParseFloat(strings.TrimSpace(o.Value), 64); err == nil {
			obs.Value = &v
		}
		out = append(out, obs)
	}
	return out, nil
}

// SearchSeries runs a full-text search over series metadata, ordered
// by search rank.
func (c *Client) SearchSeries(ctx context.Context, searchText string, limit int) ([]SeriesInfo, error) {
	if limit <= 0 {
		limit = 1000
	}
	params := url.Values{
		"search_text": {searchText},
		"search_type": {"full_text"},
		"limit":       {strconv.Itoa(limit)},
		"order_by":    {"search_rank"},
		"sort_order":  {"desc"},
	}
	var resp struct {
		Seriess []SeriesInfo `json:"seriess"`
	}
	if err := c.get(ctx, "series/search", params, &resp); err != nil {
		return nil, err
	}
	return resp.Seriess, nil
}

// Categories fetches one category by ID; 0 means the root category.
func (c *Client) Categories(ctx context.Context, categoryID int) ([]Category, error) {
	params := url.Values{}
	if categoryID != 0 {
		params.Set("category_id", strconv.Itoa(categoryID))
	}
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := c.get(ctx, "category", params, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// CategorySeries fetches the series belonging to a category.
func (c *Client) CategorySeries(ctx context.Context, categoryID, limit, offset int) ([]SeriesInfo, error) {
	if limit <= 0 {
		limit = 1000
	}
	params := url.Values{
		"category_id": {strconv.Itoa(categoryID)},
		"limit":       {strconv.Itoa(limit)},
		"offset":      {strconv.Itoa(offset)},
	}
	var resp struct {
		Seriess []SeriesInfo `json:"seriess"`
	}
	if err := c.get(ctx, "category/series", params, &resp); err != nil {
		return nil, err
	}
	return resp.Seriess, nil
}

// GDP fetches Gross Domestic Product (series GDP).
func (c *Client) GDP(ctx context.Context, start, end string) ([]Observation, error) {
	return c.Observations(ctx, "GDP", ObservationOptions{Start: start, End: end})
}

// UnemploymentRate fetches the unemployment rate (series UNRATE).
func (c *Client) UnemploymentRate(ctx context.Context, start, end string) ([]Observation, error) {
	return c.Observations(ctx, "UNRATE", ObservationOptions{Start: start, End: end})
}

// FederalFundsRate fetches the effective federal funds rate (series
// DFF).
func (c *Client) FederalFundsRate(ctx context.Context, start, end string) ([]Observation, error) {
	return c.Observations(ctx, "DFF", ObservationOptions{Start: start, End: end})
}

// InflationRate fetches CPI year-over-year percent change (series
// CPIAUCSL with units pc1).
func (c *Client) InflationRate(ctx context.Context, start, end string) ([]Observation, error) {
	return c.Observations(ctx, "CPIAUCSL", ObservationOptions{Start: start, End: end, Units: "pc1"})
}

// get executes one API request and decodes the JSON response.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")

	reqURL := baseURL + "/" + endpoint + "?" + params.Encode()
	body, err := c.fetch.Download(ctx, reqURL)
	if err != nil {
		return eris.Wrapf(err, "fred: %s", endpoint)
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return eris.Wrapf(err, "fred: read %s", endpoint)
	}

	// FRED reports errors as {"error_code": ..., "error_message": ...}.
	var apiErr struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.ErrorCode != 0 {
		return eris.Errorf("fred: %s failed (code %d): %s", endpoint, apiErr.ErrorCode, apiErr.ErrorMessage)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "fred: parse %s response", endpoint)
	}
	return nil
}
