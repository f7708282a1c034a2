package schedule

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

const schedulePage = `<html><body>
<table>
<tr><th>Date</th><th>Time</th><th>Release</th></tr>
<tr>
  <td>Friday, January 05, 2024</td>
  <td>08:30 AM</td>
  <td><strong>Employment Situation</strong> for December 2023</td>
</tr>
<tr>
  <td>Tuesday, January 23, 2024</td>
  <td>10:00 AM</td>
  <td><b>State Employment and Unemployment (Monthly)</b> for December 2023</td>
</tr>
<tr>
  <td>Wednesday, February 21, 2024</td>
  <td>10:00 AM</td>
  <td><b>County Employment and Wages</b> for 3rd Quarter 2023</td>
</tr>
<tr>
  <td>Thursday, January 11, 2024</td>
  <td>08:30 AM</td>
  <td><b>Consumer Price Index</b> for December 2023</td>
</tr>
<tr>
  <td>Friday, February 31, 2024</td>
  <td>08:30 AM</td>
  <td><b>Employment Situation</b> for January 2024</td>
</tr>
</table>
</body></html>`

func TestParsePage(t *testing.T) {
	entries := parsePage(schedulePage, 2024)
	require.Len(t, entries, 3, "untracked releases and impossible dates are skipped")

	ces := entries[0]
	assert.Equal(t, "ces_national", ces.Source)
	assert.Equal(t, "Employment Situation", ces.BLSProgramName)
	assert.Equal(t, "December 2023", ces.ReferencePeriod)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), ces.ReleaseDate)
	require.NotNil(t, ces.RefDate)
	assert.Equal(t, time.Date(2023, 12, 12, 0, 0, 0, 0, time.UTC), *ces.RefDate)
	assert.Equal(t, 2024, ces.ScheduleYear)

	state := entries[1]
	assert.Equal(t, "ces_state", state.Source)

	qcew := entries[2]
	assert.Equal(t, "qcew", qcew.Source)
	require.NotNil(t, qcew.RefDate)
	assert.Equal(t, time.Date(2023, 9, 12, 0, 0, 0, 0, time.UTC), *qcew.RefDate,
		"qcew quarters date to the quarter-end month")
}

func TestMatchProgram(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ok     bool
	}{
		{"Employment Situation", "ces_national", true},
		{"employment situation", "ces_national", true},
		{"Employment Situation of Veterans", "ces_national", true},
		{"Regional and State Employment and Unemployment", "ces_state", true},
		{"State Employment and Unemployment (Monthly)", "ces_state", true},
		{"County Employment and Wages", "qcew", true},
		{"Consumer Price Index", "", false},
		{"Producer Price Index", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, ok := matchProgram(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestParseReferencePeriod(t *testing.T) {
	tests := []struct {
		period string
		source string
		want   time.Time
		ok     bool
	}{
		{"December 2023", "ces_national", time.Date(2023, 12, 12, 0, 0, 0, 0, time.UTC), true},
		{"3rd Quarter 2016", "qcew", time.Date(2016, 9, 12, 0, 0, 0, 0, time.UTC), true},
		{"3rd Quarter 2016", "ces_national", time.Date(2016, 7, 12, 0, 0, 0, 0, time.UTC), true},
		{"third quarter 2016", "qcew", time.Date(2016, 9, 12, 0, 0, 0, 0, time.UTC), true},
		{"Q3 2016", "qcew", time.Date(2016, 9, 12, 0, 0, 0, 0, time.UTC), true},
		{"Q1 2020", "qcew", time.Date(2020, 3, 12, 0, 0, 0, 0, time.UTC), true},
		{"Septembruary 2023", "ces_national", time.Time{}, false},
		{"", "qcew", time.Time{}, false},
		{"annual averages", "ces_national", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.period+"/"+tt.source, func(t *testing.T) {
			got, ok := parseReferencePeriod(tt.period, tt.source)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseScheduleDate(t *testing.T) {
	d, ok := parseScheduleDate("Friday, January 05, 2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)

	_, ok = parseScheduleDate("sometime in March")
	assert.False(t, ok)

	_, ok = parseScheduleDate("Friday, February 31, 2024")
	assert.False(t, ok, "impossible dates are rejected")
}

func TestExtractReferencePeriod(t *testing.T) {
	got := extractReferencePeriod("Employment Situation for December 2023", "Employment Situation")
	assert.Equal(t, "December 2023", got)

	got = extractReferencePeriod("County Employment and Wages for 3rd Quarter 2016", "County Employment and Wages")
	assert.Equal(t, "3rd Quarter 2016", got)

	got = extractReferencePeriod("Union Members 2023", "Union Members")
	assert.Equal(t, "2023", got, "no 'for': remainder is the period")
}

// rewriteFetcher redirects www.bls.gov URLs to the test server.
type rewriteFetcher struct {
	fetcher.Fetcher
	base string
}

func (r *rewriteFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	return r.Fetcher.Download(ctx, r.base+url[strings.Index(url, "/schedule/"):])
}

func TestScrapeRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 2026 page does not exist yet.
		if strings.Contains(r.URL.Path, "/2026/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(schedulePage))
	}))
	t.Cleanup(srv.Close)

	s := NewScraper(&rewriteFetcher{
		Fetcher: fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			Timeout:    5 * time.Second,
			MaxRetries: 1,
		}),
		base: srv.URL,
	})

	entries, err := s.ScrapeRange(context.Background(), 2025, 2026)
	require.NoError(t, err, "missing years are skipped, not fatal")
	require.Len(t, entries, 3, "duplicate (source, release date) pairs collapse")

	assert.Equal(t, "ces_national", entries[0].Source)
	assert.Equal(t, "ces_state", entries[1].Source)
	assert.Equal(t, "qcew", entries[2].Source)
}
