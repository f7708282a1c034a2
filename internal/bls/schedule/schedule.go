// Package schedule scrapes BLS yearly release schedules for CES
// National, CES State, and QCEW from the pages at
// https://www.bls.gov/schedule/YYYY/home.htm.
//
// Each page holds twelve monthly tables with Date | Time | Release
// rows; the release cell carries the program name in a bold tag
// followed by "for <reference period>". The pages are static enough
// that regular expressions over the raw HTML hold up across years.
package schedule

import (
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ecostats/ecostats/internal/bls/period"
	"github.com/ecostats/ecostats/internal/fetcher"
)

const baseURL = "https://www.bls.gov/schedule/%d/home.htm"

// Schedule entries date reference periods with the day fixed to 12,
// the survey reference day for the covered programs.
const referenceDay = 12

// programMap maps lowercased BLS release names to our source labels.
// Matching is prefix-based, longest pattern first.
var programMap = []struct {
	pattern string
	source  string
}{
	{"employment situation", "ces_national"},
	{"regional and state employment and unemployment (monthly)", "ces_state"},
	{"regional and state employment and unemployment", "ces_state"},
	{"state employment and unemployment (monthly)", "ces_state"},
	{"state employment and unemployment", "ces_state"},
	{"county employment and wages", "qcew"},
}

// Entry is one scheduled release.
type Entry struct {
	Source          string
	ReferencePeriod string
	RefDate         *time.Time
	ReleaseDate     time.Time
	ScheduleYear    int
	BLSProgramName  string
}

// Scraper fetches and parses the yearly schedule pages.
type Scraper struct {
	fetch fetcher.Fetcher
}

// NewScraper creates a schedule scraper. The fetcher must send
// browser-like headers; www.bls.gov rejects generic clients.
func NewScraper(f fetcher.Fetcher) *Scraper {
	return &Scraper{fetch: f}
}

// ScrapeYear fetches one yearly schedule page and returns the entries
// for the tracked programs.
func (s *Scraper) ScrapeYear(ctx context.Context, year int) ([]Entry, error) {
	url := fmt.Sprintf(baseURL, year)
	body, err := s.fetch.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: fetch %d", year)
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: read %d", year)
	}
	return parsePage(string(data), year), nil
}

// ScrapeRange scrapes the schedule pages from startYear to endYear
// inclusive, sorted by (source, release date) and deduplicated on that
// key. Years that fail to fetch are logged and skipped; schedule pages
// for far-future years do not exist yet.
func (s *Scraper) ScrapeRange(ctx context.Context, startYear, endYear int) ([]Entry, error) {
	var all []Entry
	for year := startYear; year <= endYear; year++ {
		entries, err := s.ScrapeYear(ctx, year)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			zap.L().Warn("schedule: year failed, skipping",
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}
		zap.L().Debug("schedule: scraped year",
			zap.Int("year", year),
			zap.Int("entries", len(entries)),
		)
		all = append(all, entries...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Source != all[j].Source {
			return all[i].Source < all[j].Source
		}
		return all[i].ReleaseDate.Before(all[j].ReleaseDate)
	})

	deduped := all[:0]
	seen := make(map[string]bool, len(all))
	for _, e := range all {
		key := e.Source + "|" + e.ReleaseDate.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, e)
	}
	return deduped, nil
}

var (
	trRe   = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	tdRe   = regexp.MustCompile(`(?is)<td[^>]*>(.*?)</td>`)
	boldRe = regexp.MustCompile(`(?is)<(?:b|strong)[^>]*>(.*?)</(?:b|strong)>`)
	tagRe  = regexp.MustCompile(`(?s)<[^>]*>`)
	wsRe   = regexp.MustCompile(`\s+`)
)

// parsePage extracts tracked releases from a schedule page.
func parsePage(page string, year int) []Entry {
	var entries []Entry
	for _, tr := range trRe.FindAllStringSubmatch(page, -1) {
		cells := tdRe.FindAllStringSubmatch(tr[1], -1)
		if len(cells) < 3 {
			continue
		}

		releaseCell := cells[2][1]
		bold := boldRe.FindStringSubmatch(releaseCell)
		if bold == nil {
			continue
		}
		programName := cleanText(bold[1])

		source, ok := matchProgram(programName)
		if !ok {
			continue
		}

		releaseDate, ok := parseScheduleDate(cleanText(cells[0][1]))
		if !ok {
			continue
		}

		refPeriod := extractReferencePeriod(cleanText(releaseCell), programName)
		e := Entry{
			Source:          source,
			ReferencePeriod: refPeriod,
			ReleaseDate:     releaseDate,
			ScheduleYear:    year,
			BLSProgramName:  programName,
		}
		if refDate, ok := parseReferencePeriod(refPeriod, source); ok {
			e.RefDate = &refDate
		}
		entries = append(entries, e)
	}
	return entries
}

// cleanText strips tags, unescapes entities, and collapses whitespace.
func cleanText(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// matchProgram maps a BLS release name to a source label.
func matchProgram(name string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, pm := range programMap {
		if strings.HasPrefix(normalized, pm.pattern) {
			return pm.source, true
		}
	}
	return "", false
}

var forRe = regexp.MustCompile(`(?i)^\s+for\s+(.+)`)

// extractReferencePeriod pulls the reference period out of the release
// cell text, e.g. "Employment Situation for December 2023" yields
// "December 2023".
func extractReferencePeriod(fullText, programName string) string {
	idx := strings.Index(fullText, programName)
	if idx == -1 {
		return ""
	}
	afterName := fullText[idx+len(programName):]
	if m := forRe.FindStringSubmatch(afterName); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(afterName)
}

var (
	monthYearRe    = regexp.MustCompile(`(?i)^([A-Za-z]+) (\d{4})$`)
	quarterYearRe  = regexp.MustCompile(`(?i)^([1-4])(?:st|nd|rd|th)? quarter (\d{4})$`)
	quarterWordRe  = regexp.MustCompile(`(?i)^(first|second|third|fourth) quarter (\d{4})$`)
	quarterShortRe = regexp.MustCompile(`(?i)^Q([1-4]) (\d{4})$`)
)

var quarterWords = map[string]int{
	"first":  1,
	"second": 2,
	"third":  3,
	"fourth": 4,
}

// parseReferencePeriod parses a reference period like "December 2023",
// "3rd Quarter 2016", or "Q3 2016" into a date with the day fixed to
// 12. QCEW quarters date to the quarter-end month; the monthly CES
// sources date quarters to the first month.
func parseReferencePeriod(referencePeriod, source string) (time.Time, bool) {
	normalized := strings.TrimSpace(wsRe.ReplaceAllString(referencePeriod, " "))
	if normalized == "" {
		return time.Time{}, false
	}

	if m := monthYearRe.FindStringSubmatch(normalized); m != nil {
		month, ok := monthByName(m[1])
		if !ok {
			return time.Time{}, false
		}
		year, _ := strconv.Atoi(m[2])
		return time.Date(year, month, referenceDay, 0, 0, 0, 0, time.UTC), true
	}

	quarter := 0
	yearStr := ""
	switch {
	case quarterYearRe.MatchString(normalized):
		m := quarterYearRe.FindStringSubmatch(normalized)
		quarter, _ = strconv.Atoi(m[1])
		yearStr = m[2]
	case quarterWordRe.MatchString(normalized):
		m := quarterWordRe.FindStringSubmatch(normalized)
		quarter = quarterWords[strings.ToLower(m[1])]
		yearStr = m[2]
	case quarterShortRe.MatchString(normalized):
		m := quarterShortRe.FindStringSubmatch(normalized)
		quarter, _ = strconv.Atoi(m[1])
		yearStr = m[2]
	default:
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(yearStr)
	month := period.QuarterStartMonth(quarter)
	if source == "qcew" {
		month = period.QuarterEndMonth(quarter)
	}
	return time.Date(year, month, referenceDay, 0, 0, 0, 0, time.UTC), true
}

var scheduleDateRe = regexp.MustCompile(
	`(?i)(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday),? ([a-z]+) (\d{1,2}),? (\d{4})`)

// parseScheduleDate parses a release date like
// "Friday, January 05, 2024".
func parseScheduleDate(text string) (time.Time, bool) {
	m := scheduleDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := monthByName(m[1])
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month {
		// time.Date normalizes impossible dates like February 31.
		return time.Time{}, false
	}
	return d, true
}

var monthNames = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

func monthByName(name string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(name)]
	return m, ok
}
