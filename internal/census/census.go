// Package census wraps the U.S. Census Bureau data API at
// api.census.gov, covering the American Community Survey, decennial
// census, economic census, and the timeseries programs.
//
// API docs: https://www.census.gov/data/developers.html
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ecostats/ecostats/internal/fetcher"
)

const baseURL = "https://api.census.gov/data"

// DatasetInfo describes one catalog entry. Timeseries datasets have no
// year in the URL path; the year travels as a query predicate named
// YearParam instead.
type DatasetInfo struct {
	Path        string
	Timeseries  bool
	YearParam   string
	DefaultYear string
	Name        string
}

// datasetCatalog maps friendly dataset keys to their API paths.
// Datasets outside the catalog are treated as literal path segments.
var datasetCatalog = map[string]DatasetInfo{
	"acs1":     {Path: "acs/acs1", DefaultYear: "2023", Name: "American Community Survey 1-Year Estimates"},
	"acs5":     {Path: "acs/acs5", DefaultYear: "2023", Name: "American Community Survey 5-Year Estimates"},
	"dec/pl":   {Path: "dec/pl", DefaultYear: "2020", Name: "Decennial Census Redistricting Data"},
	"ecnbasic": {Path: "ecnbasic", DefaultYear: "2022", Name: "Economic Census - Economy-Wide Key Statistics"},
	"cbp":      {Path: "cbp", DefaultYear: "2022", Name: "County Business Patterns"},
	"pep":      {Path: "pep/population", DefaultYear: "2024", Name: "Population Estimates Program"},
	"geoinfo":  {Path: "geoinfo", DefaultYear: "2024", Name: "Geography Information"},
	"bds":      {Path: "timeseries/bds", Timeseries: true, YearParam: "YEAR", Name: "Business Dynamics Statistics"},
	"qwi/sa":   {Path: "timeseries/qwi/sa", Timeseries: true, YearParam: "year", Name: "Quarterly Workforce Indicators"},
	"govs":     {Path: "timeseries/govs", Timeseries: true, YearParam: "YEAR", Name: "Annual Public Sector Statistics"},
	"saipe":    {Path: "timeseries/poverty/saipe", Timeseries: true, YearParam: "time", Name: "Small Area Income and Poverty Estimates"},
}

// Client queries the Census data API.
type Client struct {
	fetch  fetcher.Fetcher
	apiKey string
}

// NewClient creates a Census client. The key is optional for light
// use but required for most production workloads; register free at
// https://api.census.gov/data/key_signup.html.
func NewClient(f fetcher.Fetcher, apiKey string) *Client {
	return &Client{fetch: f, apiKey: apiKey}
}

// Query describes one data request.
type Query struct {
	// Dataset is a catalog key ("acs5", "bds") or a literal API path
	// segment ("acs/acs5").
	Dataset string
	// Variables are the codes to retrieve, e.g. NAME, B01001_001E.
	Variables []string
	// GeoFor is the "for" geography clause, e.g. "state:*".
	GeoFor string
	// GeoIn is the optional containing-geography "in" clause.
	GeoIn string
	// Year selects the vintage. Year-based datasets put it in the URL
	// path; timeseries datasets send it as their year predicate.
	Year string
	// Predicates are additional query parameters passed through
	// verbatim, e.g. NAICS2017: "54".
	Predicates map[string]string
}

// Data runs a query and returns rows keyed by lowercased column name.
// Duplicate columns get a numeric suffix, matching the API's repeated
// geography headers.
func (c *Client) Data(ctx context.Context, q Query) ([]map[string]string, error) {
	if len(q.Variables) == 0 {
		return nil, eris.New("census: query needs at least one variable")
	}
	if q.GeoFor == "" {
		return nil, eris.New("census: query needs a geography clause")
	}

	reqURL, err := c.buildURL(q)
	if err != nil {
		return nil, err
	}

	body, err := c.fetch.Download(ctx, reqURL)
	if err != nil {
		return nil, eris.Wrapf(err, "census: query %s", q.Dataset)
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "census: read %s", q.Dataset)
	}
	return parseResponse(data, q.Dataset)
}

// ListDatasets returns the catalog keys in sorted order.
func ListDatasets() []string {
	keys := make([]string, 0, len(datasetCatalog))
	for k := range datasetCatalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dataset looks up a catalog entry.
func Dataset(key string) (DatasetInfo, bool) {
	info, ok := datasetCatalog[key]
	return info, ok
}

// ACS fetches American Community Survey data. survey is "acs1" or
// "acs5" (default).
func (c *Client) ACS(ctx context.Context, variables []string, geoFor, geoIn, year, survey string) ([]map[string]string, error) {
	if survey == "" {
		survey = "acs5"
	}
	return c.Data(ctx, Query{
		Dataset:   survey,
		Variables: variables,
		GeoFor:    geoFor,
		GeoIn:     geoIn,
		Year:      year,
	})
}

// Population fetches total population from ACS (variable B01001_001E).
func (c *Client) Population(ctx context.Context, geoFor, geoIn, year string) ([]map[string]string, error) {
	return c.ACS(ctx, []string{"NAME", "B01001_001E"}, geoFor, geoIn, year, "acs5")
}

// MedianIncome fetches median household income from ACS (variable
// B19013_001E).
func (c *Client) MedianIncome(ctx context.Context, geoFor, geoIn, year string) ([]map[string]string, error) {
	return c.ACS(ctx, []string{"NAME", "B19013_001E"}, geoFor, geoIn, year, "acs5")
}

// buildURL assembles the request URL, consulting the catalog for the
// dataset path and year placement.
func (c *Client) buildURL(q Query) (string, error) {
	params := url.Values{
		"get": {strings.Join(q.Variables, ",")},
		"for": {q.GeoFor},
	}
	if q.GeoIn != "" {
		params.Set("in", q.GeoIn)
	}
	for k, v := range q.Predicates {
		params.Set(k, v)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var path string
	if info, ok := datasetCatalog[q.Dataset]; ok {
		if info.Timeseries {
			path = info.Path
			if q.Year != "" && info.YearParam != "" && params.Get(info.YearParam) == "" {
				params.Set(info.YearParam, q.Year)
			}
		} else {
			year := q.Year
			if year == "" {
				year = info.DefaultYear
			}
			if year == "" {
				return "", eris.Errorf("census: dataset %q requires a year", q.Dataset)
			}
			path = year + "/" + info.Path
		}
	} else {
		switch {
		case strings.HasPrefix(q.Dataset, "timeseries/"):
			path = q.Dataset
		case q.Year != "":
			path = q.Year + "/" + q.Dataset
		default:
			path = q.Dataset
		}
	}

	return fmt.Sprintf("%s/%s?%s", baseURL, path, params.Encode()), nil
}

// parseResponse decodes the array-of-arrays payload into header-keyed
// rows. Error responses arrive as a JSON object instead of an array.
func parseResponse(data []byte, dataset string) ([]map[string]string, error) {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
		return nil, eris.Errorf("census: %s failed: %s", dataset, errResp.Error)
	}

	var table [][]*string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, eris.Wrapf(err, "census: parse %s response", dataset)
	}
	if len(table) < 2 {
		return nil, nil
	}

	headers := dedupeHeaders(table[0])
	rows := make([]map[string]string, 0, len(table)-1)
	for _, record := range table[1:] {
		row := make(map[string]string, len(headers))
		for i, name := range headers {
			if i < len(record) && record[i] != nil {
				row[name] = *record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// dedupeHeaders lowercases column names and suffixes repeats, which
// the API produces for nested geography clauses.
func dedupeHeaders(header []*string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		name := ""
		if h != nil {
			name = strings.ToLower(*h)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			out[i] = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 0
			out[i] = name
		}
	}
	return out
}
