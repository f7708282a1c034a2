// Package series builds and parses BLS series IDs.
//
// BLS series IDs are fixed-width strings whose character positions encode
// the survey program, seasonal adjustment, area, industry, item, and other
// components. The exact layout differs by program and is defined in the
// program registry.
package series

import (
	"fmt"
	"strings"

	"github.com/ecostats/ecostats/internal/bls/program"
)

// padChar fills unspecified positions when building an ID. '0' is the
// "all / default" value in most BLS programs.
const padChar = '0'

// TooShortError is returned when a series ID has fewer characters than
// its program format requires.
type TooShortError struct {
	SeriesID string
	Program  string // empty when the ID is shorter than the 2-char prefix
	Expected int
}

func (e *TooShortError) Error() string {
	if e.Program == "" {
		return fmt.Sprintf("bls: series ID must be at least 2 characters, got %q", e.SeriesID)
	}
	return fmt.Sprintf("bls: series ID %q is too short for program %s: expected at least %d characters, got %d",
		e.SeriesID, e.Program, e.Expected, len(e.SeriesID))
}

// Parse decomposes a BLS series ID into its component fields.
//
// The first two characters identify the program, which determines how the
// remaining positions are interpreted. The result always includes a
// "program" key with the uppercased two-letter prefix, alongside the raw
// "prefix" field defined by the layout.
//
//	Parse("CES0000000001") == map[string]string{
//		"program": "CE", "prefix": "CE", "seasonal": "S",
//		"supersector": "00", "industry": "000000", "data_type": "01",
//	}
func Parse(seriesID string) (map[string]string, error) {
	if len(seriesID) < 2 {
		return nil, &TooShortError{SeriesID: seriesID, Expected: 2}
	}

	prefix := strings.ToUpper(seriesID[:2])
	prog, err := program.Get(prefix)
	if err != nil {
		return nil, err
	}

	if len(seriesID) < prog.IDLength() {
		return nil, &TooShortError{SeriesID: seriesID, Program: prefix, Expected: prog.IDLength()}
	}

	result := make(map[string]string, len(prog.Fields)+1)
	result["program"] = prefix
	for _, f := range prog.Fields {
		result[f.Name] = f.Extract(seriesID)
	}
	return result, nil
}

// Build constructs a BLS series ID from named components.
//
// Components not provided are filled with '0' padding to the correct
// width. The "prefix" component is always set from the program code and
// any caller-supplied value for it is overridden. Values longer than
// their field are silently truncated to fit; shorter values are
// left-aligned and right-padded with '0'. Unknown component names are
// ignored.
//
//	Build("CE", map[string]string{
//		"seasonal": "S", "supersector": "00",
//		"industry": "000000", "data_type": "01",
//	}) == "CES0000000001"
func Build(programCode string, components map[string]string) (string, error) {
	prog, err := program.Get(programCode)
	if err != nil {
		return "", err
	}

	chars := make([]byte, prog.IDLength())
	for i := range chars {
		chars[i] = padChar
	}

	for _, f := range prog.Fields {
		value, ok := components[f.Name]
		if f.Name == "prefix" {
			value, ok = prog.Code, true
		}
		if !ok {
			continue
		}
		padded := pad(value, f.Length())
		copy(chars[f.Start-1:], padded)
	}

	return string(chars), nil
}

// pad left-aligns value within width, padding right with '0' and
// truncating if it is too long.
func pad(value string, width int) string {
	if len(value) >= width {
		return value[:width]
	}
	return value + strings.Repeat(string(padChar), width-len(value))
}
