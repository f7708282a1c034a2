// Package bea wraps the Bureau of Economic Analysis API at
// apps.bea.gov, which serves the National Income and Product Accounts
// (NIPA), regional economic accounts, and related datasets.
//
// API docs: https://apps.bea.gov/api/
package bea

import (
	"context"
	"encoding/json"
	"io"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/ecostats/ecostats/internal/fetcher"
)

const baseURL = "https://apps.bea.gov/api/data"

// Client queries the BEA API.
type Client struct {
	fetch  fetcher.Fetcher
	apiKey string
}

// NewClient creates a BEA client. Register for a key at
// https://apps.bea.gov/api/signup/.
func NewClient(f fetcher.Fetcher, apiKey string) *Client {
	return &Client{fetch: f, apiKey: apiKey}
}

// Parameter describes one accepted parameter of a BEA dataset.
type Parameter struct {
	Name            string `json:"ParameterName"`
	DataType        string `json:"ParameterDataType"`
	Description     string `json:"ParameterDescription"`
	Required        string `json:"ParameterIsRequiredFlag"`
	DefaultValue    string `json:"ParameterDefaultValue"`
	MultipleAllowed string `json:"MultipleAcceptedFlag"`
}

// Result is the data portion of a GetData response. Rows keep BEA's
// native column names (TableName, LineNumber, TimePeriod, DataValue,
// and so on); the set varies by dataset.
type Result struct {
	Statistic string
	UTCOffset string
	Notes     []Note
	Data      []map[string]string
}

// Note is a footnote attached to a GetData result.
type Note struct {
	Ref  string `json:"NoteRef"`
	Text string `json:"NoteText"`
}

// Data runs a GetData query against a dataset. extra carries
// dataset-specific parameters (TableName, Frequency, Year, GeoFips,
// LineCode, ...) passed through verbatim.
func (c *Client) Data(ctx context.Context, datasetName string, extra map[string]string) (*Result, error) {
	params := url.Values{
		"method":      {"GetData"},
		"datasetname": {datasetName},
	}
	for k, v := range extra {
		if v != "" {
			params.Set(k, v)
		}
	}

	var results struct {
		Statistic string `json:"Statistic"`
		UTCOffset string `json:"UTCProductionTime"`
		Notes     []Note `json:"Notes"`
		Data      []map[string]json.RawMessage
	}
	if err := c.get(ctx, params, &results); err != nil {
		return nil, err
	}

	out := &Result{
		Statistic: results.Statistic,
		UTCOffset: results.UTCOffset,
		Notes:     results.Notes,
		Data:      make([]map[string]string, 0, len(results.Data)),
	}
	for _, row := range results.Data {
		converted := make(map[string]string, len(row))
		for k, raw := range row {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				// Some datasets emit bare numbers.
				s = string(raw)
			}
			converted[k] = s
		}
		out.Data = append(out.Data, converted)
	}
	return out, nil
}

// ParameterList fetches the accepted parameters of a dataset, e.g.
// "NIPA" or "Regional".
func (c *Client) ParameterList(ctx context.Context, datasetName string) ([]Parameter, error) {
	params := url.Values{
		"method":      {"GetParameterList"},
		"datasetname": {datasetName},
	}
	var results struct {
		Parameter []Parameter `json:"Parameter"`
	}
	if err := c.get(ctx, params, &results); err != nil {
		return nil, err
	}
	return results.Parameter, nil
}

// NIPAData fetches a National Income and Product Accounts table.
// frequency is A, Q, or M; year is a year, a comma list, or "X" for
// all years.
func (c *Client) NIPAData(ctx context.Context, tableName, frequency, year string) (*Result, error) {
	if frequency == "" {
		frequency = "A"
	}
	if year == "" {
		year = "X"
	}
	return c.Data(ctx, "NIPA", map[string]string{
		"TableName": tableName,
		"Frequency": frequency,
		"Year":      year,
	})
}

// RegionalData fetches a Regional Economic Accounts table, e.g.
// CAINC1 (personal income summary) for a FIPS code.
func (c *Client) RegionalData(ctx context.Context, tableName, lineCode, geoFips, year string) (*Result, error) {
	if year == "" {
		year = "LAST5"
	}
	return c.Data(ctx, "Regional", map[string]string{
		"TableName": tableName,
		"LineCode":  lineCode,
		"GeoFips":   geoFips,
		"Year":      year,
	})
}

// beaError is the error object BEA nests under Results. The error
// code arrives as a string or a number depending on the endpoint.
type beaError struct {
	Code        any    `json:"APIErrorCode"`
	Description string `json:"APIErrorDescription"`
}

// get executes one API request and decodes Results into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("UserID", c.apiKey)
	params.Set("ResultFormat", "JSON")
	method := params.Get("method")

	reqURL := baseURL + "?" + params.Encode()
	body, err := c.fetch.Download(ctx, reqURL)
	if err != nil {
		return eris.Wrapf(err, "bea: %s", method)
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return eris.Wrapf(err, "bea: read %s", method)
	}

	var envelope struct {
		BEAAPI struct {
			Results json.RawMessage `json:"Results"`
		} `json:"BEAAPI"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return eris.Wrapf(err, "bea: parse %s response", method)
	}
	if len(envelope.BEAAPI.Results) == 0 {
		return eris.Errorf("bea: %s returned no results", method)
	}

	var errCheck struct {
		Error *beaError `json:"Error"`
	}
	if json.Unmarshal(envelope.BEAAPI.Results, &errCheck) == nil && errCheck.Error != nil {
		return eris.Errorf("bea: %s failed (code %v): %s",
			method, errCheck.Error.Code, errCheck.Error.Description)
	}

	if err := json.Unmarshal(envelope.BEAAPI.Results, out); err != nil {
		return eris.Wrapf(err, "bea: parse %s results", method)
	}
	return nil
}
