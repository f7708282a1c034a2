package flatfile

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecostats/ecostats/internal/bls/program"
	"github.com/ecostats/ecostats/internal/cache"
	"github.com/ecostats/ecostats/internal/fetcher"
)

const cuAreaFile = "area_code\tarea_name\tdisplay_level\tselectable\tsort_sequence\n" +
	"0000\tU.S. city average\t0\tT\t1\n" +
	"0100\tNortheast\t1\tT\t2   \n"

const cuSeriesFile = "series_id\tarea_code\titem_code\tseasonal\tperiodicity_code\n" +
	"CUUR0000SA0     \t0000\tSA0\tU\tR\n" +
	"CUSR0000SA0     \t0000\tSA0\tS\tR\n"

const cuDataFile = "series_id\tyear\tperiod\tvalue\tfootnote_codes\n" +
	"CUUR0000SA0     \t2024\tM02\t310.326\t \n" +
	"CUUR0000SA0     \t2024\tM01\t308.417\t \n"

// rewriteFetcher sends every request to the test server regardless of
// the requested host, preserving the path.
type rewriteFetcher struct {
	fetcher.Fetcher
	base  string
	calls atomic.Int32
}

func (r *rewriteFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	r.calls.Add(1)
	rewritten := r.base + url[strings.Index(url, "/pub/"):]
	return r.Fetcher.Download(ctx, rewritten)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *rewriteFetcher) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rf := &rewriteFetcher{
		Fetcher: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:    5 * time.Second,
			MaxRetries: 1,
		}),
		base: srv.URL,
	}
	return NewClient(rf, cache.New(t.TempDir(), time.Hour)), rf
}

func TestMapping(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pub/time.series/cu/cu.area", r.URL.Path)
		_, _ = w.Write([]byte(cuAreaFile))
	})

	rows, err := c.Mapping(context.Background(), "CU", "area")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "U.S. city average", rows[0]["area_name"])
	assert.Equal(t, "2", rows[1]["sort_sequence"], "trailing whitespace trimmed")
}

func TestMappingUnknownProgram(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for unknown program")
	})

	_, err := c.Mapping(context.Background(), "ZZ", "area")
	require.Error(t, err)
	var unknown *program.UnknownProgramError
	assert.ErrorAs(t, err, &unknown)
}

func TestMappingUsesCache(t *testing.T) {
	c, rf := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(cuAreaFile))
	})

	_, err := c.Mapping(context.Background(), "CU", "area")
	require.NoError(t, err)
	_, err = c.Mapping(context.Background(), "CU", "area")
	require.NoError(t, err)

	assert.Equal(t, int32(1), rf.calls.Load(), "second read served from cache")
}

func TestSeriesList(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pub/time.series/cu/cu.series", r.URL.Path)
		_, _ = w.Write([]byte(cuSeriesFile))
	})

	all, err := c.SeriesList(context.Background(), "CU", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	seasonal, err := c.SeriesList(context.Background(), "CU", map[string]string{"seasonal": "S"})
	require.NoError(t, err)
	require.Len(t, seasonal, 1)
	assert.Equal(t, "CUSR0000SA0", seasonal[0]["series_id"])

	none, err := c.SeriesList(context.Background(), "CU", map[string]string{"seasonal": "S", "area_code": "0100"})
	require.NoError(t, err)
	assert.Empty(t, none, "all filters must match")
}

func TestData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pub/time.series/cu/cu.data.0.Current", r.URL.Path)
		_, _ = w.Write([]byte(cuDataFile))
	})

	rows, err := c.Data(context.Background(), "CU", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CUUR0000SA0", rows[0].SeriesID)
	assert.Equal(t, "2024", rows[0].Year)
	assert.Equal(t, "M02", rows[0].Period)
	assert.Equal(t, "310.326", rows[0].Value)
}

func TestObservations(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(cuDataFile))
	})

	got, err := c.Observations(context.Background(), "CU", "0.Current")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Sorted date-ascending even though the file lists newest first.
	assert.Equal(t, "M01", got[0].Period)
	require.NotNil(t, got[0].Value)
	assert.InDelta(t, 308.417, *got[0].Value, 1e-9)
}

// fileFetcher records DownloadToFile calls without touching the network.
type fileFetcher struct {
	fetcher.Fetcher
	gotURL  string
	gotPath string
}

func (f *fileFetcher) DownloadToFile(_ context.Context, url, path string) (int64, error) {
	f.gotURL = url
	f.gotPath = path
	return 42, nil
}

func TestDownload(t *testing.T) {
	ff := &fileFetcher{}
	c := NewClient(ff, cache.New(t.TempDir(), time.Hour))

	n, err := c.Download(context.Background(), "ce", "data.0.AllCESSeries", "/tmp/ce.data")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, "https://download.bls.gov/pub/time.series/ce/ce.data.0.AllCESSeries", ff.gotURL)
	assert.Equal(t, "/tmp/ce.data", ff.gotPath)

	_, err = c.Download(context.Background(), "ZZ", "area", "/tmp/zz.area")
	require.Error(t, err)
}

func TestParseTSVShortAndLongRows(t *testing.T) {
	rows := parseTSV("a\tb\tc\n1\t2\n1\t2\t3\t4\n")
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0]["c"], "short row leaves missing columns empty")
	assert.Equal(t, "3", rows[1]["c"], "extra fields dropped")
}

func TestParseTSVLatin1Content(t *testing.T) {
	rows := parseTSV("code\tname\nPR\tPuerto Rico\n")
	require.Len(t, rows, 1)
	assert.Equal(t, "Puerto Rico", rows[0]["name"])
}
