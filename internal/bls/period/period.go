// Package period derives calendar dates from BLS year/period encodings.
//
// BLS observations carry a period code rather than a date: monthly
// M01–M13, quarterly Q01–Q04, semi-annual S01–S02, and annual A01. A
// single representative date is synthesized from the period code, the
// year, and a per-program reference day.
package period

import (
	"strconv"
	"strings"
	"time"
)

// Programs whose survey reference period is the pay period including the
// 12th of the month. Dates for these programs use day 12; all others
// default to day 1.
var referenceDay12 = map[string]bool{
	"CE": true,
	"EN": true,
}

// ReferenceDay returns the reference day-of-month for a BLS program
// code. Unrecognized codes use day 1; bulk files may carry series from
// programs outside the curated registry and must still normalize.
func ReferenceDay(programCode string) int {
	if referenceDay12[strings.ToUpper(programCode)] {
		return 12
	}
	return 1
}

// Month converts a BLS period code to a month number.
//
// Monthly periods M01–M12 map to months 1–12; M13 (annual average) has
// no date and returns false. Quarterly Q01–Q04 map to the first month of
// the quarter, semi-annual S01–S02 to months 1 and 7. Any numeric
// annual code (A01, but also A02 etc. as they appear in the wild) maps
// to month 1. Anything else returns false.
func Month(periodCode string) (time.Month, bool) {
	if len(periodCode) < 2 {
		return 0, false
	}
	category := periodCode[0]
	if category >= 'a' && category <= 'z' {
		category -= 'a' - 'A'
	}
	num, err := strconv.Atoi(periodCode[1:])
	if err != nil {
		return 0, false
	}

	switch {
	case category == 'M' && num >= 1 && num <= 12:
		return time.Month(num), true
	case category == 'Q' && num >= 1 && num <= 4:
		return QuarterStartMonth(num), true
	case category == 'S' && num >= 1 && num <= 2:
		return time.Month((num-1)*6 + 1), true
	case category == 'A':
		return time.January, true
	}
	return 0, false
}

// QuarterStartMonth returns the first month of a quarter. Used when a
// period denotes the start of the interval it covers (series dating).
func QuarterStartMonth(quarter int) time.Month {
	return time.Month((quarter-1)*3 + 1)
}

// QuarterEndMonth returns the last month of a quarter. Used when a
// reference period denotes the end of the interval it covers, as in the
// QCEW release schedule.
func QuarterEndMonth(quarter int) time.Month {
	return time.Month(quarter * 3)
}

// Resolve computes the representative date for a year/period pair with
// the given reference day. The second return is false when the period
// does not map to a month (e.g. M13 annual averages, malformed codes);
// an absent date is an expected outcome, not an error.
func Resolve(year int, periodCode string, referenceDay int) (time.Time, bool) {
	month, ok := Month(periodCode)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(year, month, referenceDay, 0, 0, 0, 0, time.UTC), true
}
