package accesscode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, Length)
		for _, r := range code {
			require.True(t, strings.ContainsRune(Alphabet, r), "symbol %q outside alphabet", r)
		}
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestGenerate_UsesWholeAlphabet(t *testing.T) {
	counts := make(map[rune]int)
	for i := 0; i < 500; i++ {
		code, err := Generate()
		require.NoError(t, err)
		for _, r := range code {
			counts[r]++
		}
	}
	// 6000 draws over 31 symbols: every symbol shows up with overwhelming probability
	assert.Len(t, counts, len(Alphabet))
}

func TestGeneratedCanonicalForm(t *testing.T) {
	for i := 0; i < 200; i++ {
		raw, err := Generate()
		require.NoError(t, err)

		code := Format(raw)
		require.Len(t, code, FormattedLength)
		assert.Equal(t, byte(Separator), code[4])
		assert.Equal(t, byte(Separator), code[9])
		for i, r := range code {
			if i == 4 || i == 9 {
				continue
			}
			assert.True(t, strings.ContainsRune(Alphabet, r))
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ab23-cd45-ef67", "AB23CD45EF67"},
		{"AB23 CD45 EF67", "AB23CD45EF67"},
		{"  ab23cd45ef67\n", "AB23CD45EF67"},
		{"a-b-2-3", "AB23"},
		{"0O1IL", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"AB23-CD45-EF67", true},
		{"ab23cd45ef67", true},
		{"ab23 cd45 ef67", true},
		{"A-B-2-3-C-D-4-5-E-F-6-7", true},
		{"AB23-CD45", false},
		{"AB23-CD45-EF67-GH", false},
		{"AB20-CD45-EF67", false},
		{"AB2O-CD45-EF67", false},
		{"AB21-CD45-EF67", false},
		{"ABI3-CD45-EF67", false},
		{"ABL3-CD45-EF67", false},
		{"ÄB23-CD45-EF67", false},
		{"AB23!CD45@EF67", false},
		{"AB23\x00CD45EF67", false},
		{"AB23_CD45_EF67", false},
		{"AB23.CD45.EF67", false},
		{"AB23\tCD45\nEF67", true},
		{" AB23-CD45-EF67 ", true},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Validate(tt.in), "Validate(%q)", tt.in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "AB23-CD45-EF67", Format("AB23CD45EF67"))
	assert.Equal(t, "AB23-CD45-EF67", Format("ab23cd45ef67"))
	assert.Equal(t, "AB23-CD45-EF67", Format("AB23-CD45-EF67"))

	// wrong length is a no-op
	assert.Equal(t, "AB23CD45", Format("AB23CD45"))
	assert.Equal(t, "ab23-cd45", Format("ab23-cd45"))
	assert.Equal(t, "", Format(""))
}

func TestFormatNormalizeRoundTrip(t *testing.T) {
	inputs := []string{
		"AB23-CD45-EF67",
		"ab23cd45ef67",
		"Ab23 cD45 eF67",
		"ab2-3cd4-5ef6-7",
		"AB23CD45EF67",
	}
	for _, in := range inputs {
		assert.Equal(t, Format(in), Format(Normalize(in)), "input %q", in)
		assert.Equal(t, "AB23-CD45-EF67", Format(in))
	}
}

func TestCanonical(t *testing.T) {
	code, err := Canonical("ab23cd45ef67")
	require.NoError(t, err)
	assert.Equal(t, "AB23-CD45-EF67", code)

	_, err = Canonical("AB23-CD45")
	assert.ErrorIs(t, err, ErrMalformedCode)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrCodeNotFound)
}
