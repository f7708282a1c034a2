// Package program holds the static registry of BLS LABSTAT survey
// programs. Each program is identified by a two-letter prefix and has a
// fixed-width series ID layout documented at
// https://www.bls.gov/help/hlpforma.htm and the per-survey xx.txt files
// at download.bls.gov/pub/time.series/.
package program

import (
	"fmt"
	"sort"
	"strings"
)

// Field is a single positional field within a BLS series ID.
// Positions are 1-indexed inclusive to match the official BLS docs.
type Field struct {
	Name        string
	Start       int
	End         int
	Description string
}

// Length returns the number of characters this field occupies.
func (f Field) Length() int {
	return f.End - f.Start + 1
}

// Extract returns this field's value from a full series ID string.
// The caller must have validated the ID length against the program.
func (f Field) Extract(seriesID string) string {
	return seriesID[f.Start-1 : f.End]
}

// Program is the metadata for a single LABSTAT survey.
type Program struct {
	// Code is the two-letter program identifier (e.g., "CE"), uppercase.
	Code        string
	Name        string
	Description string

	// Fields is the ordered series ID layout. Order matters for display;
	// positions are what drive parse/build.
	Fields []Field

	// MappingFiles names the lookup files published for this program at
	// download.bls.gov/pub/time.series/{code}/{code}.{name}.
	MappingFiles []string
}

// IDLength returns the expected total length of a series ID for this
// program, or 0 if the program defines no fields.
func (p Program) IDLength() int {
	n := 0
	for _, f := range p.Fields {
		if f.End > n {
			n = f.End
		}
	}
	return n
}

// FieldNames returns the ordered field names.
func (p Program) FieldNames() []string {
	names := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldByName looks up a field by name. The second return is false when
// the program has no field with that name.
func (p Program) FieldByName(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// UnknownProgramError is returned when a two-letter code is not in the
// registry. The message lists every registered code so callers can
// self-correct.
type UnknownProgramError struct {
	Code  string
	Known []string
}

func (e *UnknownProgramError) Error() string {
	return fmt.Sprintf("bls: unknown program %q (available: %s)",
		e.Code, strings.Join(e.Known, ", "))
}

// Get looks up a program by its two-letter code, case-insensitively.
func Get(code string) (Program, error) {
	key := strings.ToUpper(code)
	p, ok := registry[key]
	if !ok {
		return Program{}, &UnknownProgramError{Code: key, Known: Codes()}
	}
	return p, nil
}

// List returns a mapping of every registered program code to its name.
func List() map[string]string {
	out := make(map[string]string, len(registry))
	for code, p := range registry {
		out[code] = p.Name
	}
	return out
}

// Codes returns all registered program codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
