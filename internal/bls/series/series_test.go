package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecostats/ecostats/internal/bls/program"
)

func TestParse_CES(t *testing.T) {
	fields, err := Parse("CES0000000001")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"program":     "CE",
		"prefix":      "CE",
		"seasonal":    "S",
		"supersector": "00",
		"industry":    "000000",
		"data_type":   "01",
	}, fields)
}

func TestParse_CPI(t *testing.T) {
	fields, err := Parse("CUUR0000SA000000")
	require.NoError(t, err)
	assert.Equal(t, "CU", fields["program"])
	assert.Equal(t, "U", fields["seasonal"])
	assert.Equal(t, "R", fields["periodicity"])
	assert.Equal(t, "0000", fields["area"])
	assert.Equal(t, "SA000000", fields["item"])
}

func TestParse_LowercasePrefix(t *testing.T) {
	fields, err := Parse("ces0000000001")
	require.NoError(t, err)
	assert.Equal(t, "CE", fields["program"])
}

func TestParse_TooShort(t *testing.T) {
	t.Run("below prefix length", func(t *testing.T) {
		_, err := Parse("C")
		require.Error(t, err)

		var tooShort *TooShortError
		require.ErrorAs(t, err, &tooShort)
		assert.Empty(t, tooShort.Program)
		assert.Contains(t, err.Error(), "at least 2 characters")
	})

	t.Run("below program length", func(t *testing.T) {
		_, err := Parse("CE12")
		require.Error(t, err)

		var tooShort *TooShortError
		require.ErrorAs(t, err, &tooShort)
		assert.Equal(t, "CE", tooShort.Program)
		assert.Equal(t, 13, tooShort.Expected)
	})
}

func TestParse_UnknownProgram(t *testing.T) {
	_, err := Parse("ZZ0000000000000")
	require.Error(t, err)

	var unknownErr *program.UnknownProgramError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestBuild_CES(t *testing.T) {
	id, err := Build("CE", map[string]string{
		"seasonal":    "S",
		"supersector": "00",
		"industry":    "000000",
		"data_type":   "01",
	})
	require.NoError(t, err)
	assert.Equal(t, "CES0000000001", id)
}

func TestBuild_CPI(t *testing.T) {
	id, err := Build("CU", map[string]string{
		"seasonal":    "U",
		"periodicity": "R",
		"area":        "0000",
		"item":        "SA0",
	})
	require.NoError(t, err)
	// item is left-aligned and zero-padded to its 8-char width.
	assert.Equal(t, "CUUR0000SA000000", id)
	assert.Len(t, id, 16)
}

func TestBuild_MissingComponentsZeroFilled(t *testing.T) {
	id, err := Build("CE", nil)
	require.NoError(t, err)
	assert.Equal(t, "CE00000000000", id)
}

func TestBuild_PrefixForced(t *testing.T) {
	id, err := Build("ce", map[string]string{"prefix": "XX"})
	require.NoError(t, err)
	assert.Equal(t, "CE", id[:2])
}

func TestBuild_UnknownKeysIgnored(t *testing.T) {
	id, err := Build("CE", map[string]string{"nonsense": "value", "data_type": "01"})
	require.NoError(t, err)
	assert.Equal(t, "CE00000000001", id)
}

// Overlong values clip silently to the field width. This is the
// documented contract, not a bug; a stricter mode would reject instead.
func TestBuild_SilentTruncation(t *testing.T) {
	id, err := Build("CE", map[string]string{"supersector": "12345"})
	require.NoError(t, err)
	assert.Equal(t, "CE01200000000", id)
	assert.Equal(t, "12", id[3:5])
}

func TestBuild_UnknownProgram(t *testing.T) {
	_, err := Build("QQ", nil)
	require.Error(t, err)

	var unknownErr *program.UnknownProgramError
	assert.ErrorAs(t, err, &unknownErr)
}

// Round trip: parse(build(...)) reproduces the inputs whenever supplied
// values already match their field width exactly.
func TestRoundTrip_WidthExactValues(t *testing.T) {
	cases := []struct {
		code       string
		components map[string]string
	}{
		{"CE", map[string]string{"seasonal": "S", "supersector": "00", "industry": "000000", "data_type": "01"}},
		{"CU", map[string]string{"seasonal": "U", "periodicity": "R", "area": "0000", "item": "SA0LE12Q"}},
		{"LN", map[string]string{"seasonal": "S", "series_code": "14000000"}},
		{"LA", map[string]string{"seasonal": "U", "area_type": "A", "state_fips": "06", "area": "00000", "measure": "03"}},
		{"EN", map[string]string{"seasonal": "U", "area": "US000", "data_type": "1", "size": "0", "ownership": "5", "industry": "101010"}},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			built, err := Build(tc.code, tc.components)
			require.NoError(t, err)

			parsed, err := Parse(built)
			require.NoError(t, err)
			assert.Equal(t, tc.code, parsed["program"])
			for name, want := range tc.components {
				assert.Equal(t, want, parsed[name], "field %s", name)
			}

			// Rebuilding from the parsed fields reproduces the same ID.
			delete(parsed, "program")
			rebuilt, err := Build(tc.code, parsed)
			require.NoError(t, err)
			assert.Equal(t, built, rebuilt)
		})
	}
}

func TestRoundTrip_AllPrograms_ZeroFill(t *testing.T) {
	for _, code := range program.Codes() {
		t.Run(code, func(t *testing.T) {
			built, err := Build(code, nil)
			require.NoError(t, err)

			p, err := program.Get(code)
			require.NoError(t, err)
			assert.Len(t, built, p.IDLength())

			parsed, err := Parse(built)
			require.NoError(t, err)

			delete(parsed, "program")
			rebuilt, err := Build(code, parsed)
			require.NoError(t, err)
			assert.Equal(t, built, rebuilt)
		})
	}
}
