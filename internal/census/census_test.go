package census

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecostats/ecostats/internal/fetcher"
)

// rewriteFetcher redirects api.census.gov URLs to the test server.
type rewriteFetcher struct {
	fetcher.Fetcher
	base string
}

func (r *rewriteFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	return r.Fetcher.Download(ctx, r.base+url[strings.Index(url, "/data/"):])
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&rewriteFetcher{
		Fetcher: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:    5 * time.Second,
			MaxRetries: 1,
		}),
		base: srv.URL,
	}, "testkey")
}

func TestACS(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2023/acs/acs5", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "NAME,B01001_001E", q.Get("get"))
		assert.Equal(t, "state:*", q.Get("for"))
		assert.Equal(t, "testkey", q.Get("key"))

		_, _ = w.Write([]byte(`[
			["NAME","B01001_001E","state"],
			["Alabama","5108468","01"],
			["Michigan","10037261","26"]
		]`))
	})

	rows, err := c.ACS(context.Background(), []string{"NAME", "B01001_001E"}, "state:*", "", "2023", "acs5")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Michigan", rows[1]["name"])
	assert.Equal(t, "10037261", rows[1]["b01001_001e"])
	assert.Equal(t, "26", rows[1]["state"])
}

func TestDataDefaultYear(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2023/acs/acs5", r.URL.Path, "catalog default year used")
		_, _ = w.Write([]byte(`[["NAME"],["x"]]`))
	})

	_, err := c.Data(context.Background(), Query{
		Dataset:   "acs5",
		Variables: []string{"NAME"},
		GeoFor:    "us:1",
	})
	require.NoError(t, err)
}

func TestDataTimeseriesYearAsPredicate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/timeseries/bds", r.URL.Path, "no year in timeseries path")
		assert.Equal(t, "2021", r.URL.Query().Get("YEAR"))
		_, _ = w.Write([]byte(`[["ESTAB","YEAR"],["5400000","2021"]]`))
	})

	rows, err := c.Data(context.Background(), Query{
		Dataset:   "bds",
		Variables: []string{"ESTAB"},
		GeoFor:    "us:1",
		Year:      "2021",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "5400000", rows[0]["estab"])
}

func TestDataGeoInAndPredicates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "state:26", q.Get("in"))
		assert.Equal(t, "54", q.Get("NAICS2017"))
		_, _ = w.Write([]byte(`[["NAME"],["Wayne County"]]`))
	})

	_, err := c.Data(context.Background(), Query{
		Dataset:    "cbp",
		Variables:  []string{"NAME"},
		GeoFor:     "county:*",
		GeoIn:      "state:26",
		Predicates: map[string]string{"NAICS2017": "54"},
	})
	require.NoError(t, err)
}

func TestDataLiteralPathDataset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2020/dec/dhc", r.URL.Path)
		_, _ = w.Write([]byte(`[["NAME"],["x"]]`))
	})

	_, err := c.Data(context.Background(), Query{
		Dataset:   "dec/dhc",
		Variables: []string{"NAME"},
		GeoFor:    "us:1",
		Year:      "2020",
	})
	require.NoError(t, err)
}

func TestDataAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"error: unknown variable 'B99999_999E'"}`))
	})

	_, err := c.Data(context.Background(), Query{
		Dataset:   "acs5",
		Variables: []string{"B99999_999E"},
		GeoFor:    "us:1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable")
}

func TestDataValidation(t *testing.T) {
	c := NewClient(nil, "")

	_, err := c.Data(context.Background(), Query{Dataset: "acs5", GeoFor: "us:1"})
	assert.Error(t, err, "variables required")

	_, err = c.Data(context.Background(), Query{Dataset: "acs5", Variables: []string{"NAME"}})
	assert.Error(t, err, "geography required")
}

func TestParseResponseNullsAndDuplicates(t *testing.T) {
	rows, err := parseResponse([]byte(`[
		["NAME","state","state"],
		["Alabama",null,"01"]
	]`), "acs5")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["state"], "null becomes empty")
	assert.Equal(t, "01", rows[0]["state_1"], "duplicate header suffixed")
}

func TestListDatasets(t *testing.T) {
	keys := ListDatasets()
	assert.Contains(t, keys, "acs5")
	assert.Contains(t, keys, "bds")
	assert.True(t, sortedStrings(keys))

	info, ok := Dataset("bds")
	require.True(t, ok)
	assert.True(t, info.Timeseries)
	assert.Equal(t, "YEAR", info.YearParam)
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
