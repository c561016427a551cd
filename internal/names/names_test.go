package names

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CanonicalForms(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	cases := map[string]string{
		"USA":            "United States of America",
		"UK":             "United Kingdom",
		"Russia":         "Russian Federation",
		"South Korea":    "Korea, Republic of",
		"Korea":          "Korea, Republic of",
		"Venezuela":      "Venezuela (Bolivarian Republic of)",
		"Czech Republic": "Czechia",
		"Ivory Coast":    "Côte d'Ivoire",
		"Iran":           "Iran (Islamic Republic of)",
		"Vietnam":        "Viet Nam",
		"UAE":            "United Arab Emirates",
		"Monaco":         "Monaco",
		"Singapore":      "Singapore",
		"Bahrain":        "Bahrain",
	}
	for alias, want := range cases {
		t.Run(alias, func(t *testing.T) {
			assert.Equal(t, want, m.Map(alias))
		})
	}
}

func TestDefault_EveryPairResolves(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)
	require.Equal(t, 40, m.Len())

	for _, p := range m.Pairs() {
		assert.Equal(t, p.Canonical, m.Map(p.Alias), "alias %q", p.Alias)
	}
}

func TestMap_IdentityForUnknownNames(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	for _, name := range []string{"", "Atlantis", "usa", "United States of America", "  UK", "Finland"} {
		assert.Equal(t, name, m.Map(name), "unknown name %q must map to itself", name)
	}
}

func TestMap_NormalizesUnicode(t *testing.T) {
	m, err := New([]Pair{{Alias: "Côte d'Ivoire", Canonical: "Ivory"}})
	require.NoError(t, err)

	// "o" followed by a combining circumflex is the decomposed form of "ô".
	decomposed := "Co\u0302te d'Ivoire"
	assert.Equal(t, "Ivory", m.Map(decomposed))
}

func TestNew_RejectsDuplicates(t *testing.T) {
	pairs := []Pair{
		{Alias: "USA", Canonical: "United States of America"},
		{Alias: "Singapore", Canonical: "Singapore"},
		{Alias: "Monaco", Canonical: "Monaco"},
		{Alias: "Singapore", Canonical: "Singapore"},
		{Alias: "USA", Canonical: "USA (Las Vegas)"},
	}

	m, err := New(pairs)
	require.Error(t, err)
	assert.Nil(t, m)

	var dupErr *DuplicateAliasError
	require.ErrorAs(t, err, &dupErr)
	assert.Len(t, dupErr.Duplicates, 2)
	assert.Equal(t, []string{"United States of America", "USA (Las Vegas)"}, dupErr.Duplicates["USA"])
	assert.Equal(t, []string{"Singapore", "Singapore"}, dupErr.Duplicates["Singapore"])
	assert.NotContains(t, dupErr.Duplicates, "Monaco")

	msg := err.Error()
	assert.True(t, strings.Index(msg, `"Singapore"`) < strings.Index(msg, `"USA"`), "duplicates are listed in sorted order: %s", msg)
}

func TestNew_CopiesInput(t *testing.T) {
	pairs := []Pair{{Alias: "UK", Canonical: "United Kingdom"}}
	m, err := New(pairs)
	require.NoError(t, err)

	pairs[0].Canonical = "changed"
	assert.Equal(t, "United Kingdom", m.Pairs()[0].Canonical)
}

func TestEqual(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	assert.True(t, m.Equal("United States of America", "USA"))
	assert.True(t, m.Equal("Finland", "Finland"))
	assert.False(t, m.Equal("United States of America", "UK"))
	assert.False(t, m.Equal("", ""), "empty highlight never matches")
}

func TestParse(t *testing.T) {
	pairs, err := Parse(strings.NewReader("- alias: A\n  canonical: B\n- alias: C\n  canonical: D\n"))
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Alias: "A", Canonical: "B"}, {Alias: "C", Canonical: "D"}}, pairs)

	pairs, err = Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, pairs)

	_, err = Parse(strings.NewReader("- alias: \"\"\n  canonical: X\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty alias")

	_, err = Parse(strings.NewReader("alias: [unclosed"))
	require.Error(t, err)
}

func TestParse_Schema(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "misspelled key", yaml: "- alias: Holland\n  canonicl: Netherlands\n"},
		{name: "missing canonical", yaml: "- alias: Holland\n"},
		{name: "blank canonical", yaml: "- alias: Holland\n  canonical: \" \"\n"},
		{name: "number", yaml: "- alias: Holland\n  canonical: 7\n"},
		{name: "not a list", yaml: "alias: Holland\ncanonical: Netherlands\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
		})
	}

	_, err := Parse(strings.NewReader("- alias: Holland\n  canonicl: Netherlands\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alias table schema")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("- alias: Holland\n  canonical: Netherlands\n"), 0644))
	m, err := Load(good)
	require.NoError(t, err)
	assert.Equal(t, "Netherlands", m.Map("Holland"))
	assert.Equal(t, "USA", m.Map("USA"), "a user table replaces the embedded one")

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("- alias: X\n  canonical: Y\n- alias: X\n  canonical: Z\n"), 0644))
	_, err = Load(dup)
	var dupErr *DuplicateAliasError
	assert.ErrorAs(t, err, &dupErr)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	m, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "United Kingdom", m.Map("UK"))
}
