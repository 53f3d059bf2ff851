package labels_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rollforge/internal/combo"
	"github.com/cory-johannsen/rollforge/internal/labels"
)

func mustLoad(t testing.TB) *labels.Catalog {
	t.Helper()
	c, err := labels.Load()
	require.NoError(t, err)
	return c
}

func TestLoad_EmbeddedLocales(t *testing.T) {
	c := mustLoad(t)
	assert.Equal(t, []string{"en", "es", "fr", "ja", "ru", "zh"}, c.Locales())
}

func TestLoad_EveryLocaleHasEveryBaseKey(t *testing.T) {
	c := mustLoad(t)
	base := c.Keys(labels.BaseLocale)
	require.NotEmpty(t, base)
	for _, loc := range c.Locales() {
		assert.Equal(t, base, c.Keys(loc), "locale %s", loc)
	}
}

func TestLoad_EveryLabelHasText(t *testing.T) {
	c := mustLoad(t)
	keys := map[string]bool{}
	for _, k := range c.Keys(labels.BaseLocale) {
		keys[k] = true
	}
	for _, l := range []combo.FitLabel{
		combo.FitPerfect, combo.FitContained, combo.FitWider,
		combo.FitExceedsLow, combo.FitExceedsHigh, combo.FitNoOverlap,
	} {
		assert.True(t, keys[l.Key()], l.Key())
	}
	for _, l := range []combo.DistributionLabel{combo.ShapeBell, combo.ShapeSomewhatBell, combo.ShapeFlat} {
		assert.True(t, keys[l.Key()], l.Key())
	}
}

func TestMatch(t *testing.T) {
	c := mustLoad(t)
	cases := map[string]string{
		"en":    "en",
		"en-US": "en",
		"ja":    "ja",
		"ja-JP": "ja",
		"es-MX": "es",
		"fr-CA": "fr",
		"ru":    "ru",
		"de":    "en",
		"":      "en",
		"!!":    "en",
	}
	for in, want := range cases {
		assert.Equal(t, want, c.Match(in), "Match(%q)", in)
	}
}

func TestText(t *testing.T) {
	c := mustLoad(t)
	assert.Equal(t, "Perfect", c.Text("en", "fit.perfect", nil))
	assert.Equal(t, "完全一致", c.Text("ja", "fit.perfect", nil))
	assert.Equal(t, "Perfecto", c.Text("es-AR", "fit.perfect", nil))
	assert.Equal(t, "Perfect", c.Text("de", "fit.perfect", nil))
	assert.Equal(t, "no.such.key", c.Text("fr", "no.such.key", nil))
}

func TestText_Substitutes(t *testing.T) {
	c := mustLoad(t)
	got := c.Text("en", "analysis.summary", map[string]any{
		"macro": "2d6+3",
		"min":   5,
		"max":   15,
		"avg":   "10.0",
	})
	assert.Equal(t, "2d6+3 rolls from 5 to 15, averaging 10.0.", got)

	assert.Equal(t, "Distribution of 1d6 ({{mode}})",
		c.Text("en", "report.distribution", map[string]any{"macro": "1d6"}))
}

func TestText_FallsBackToBaseForMissingKey(t *testing.T) {
	c, err := labels.LoadFS(fstest.MapFS{
		"locales/en.yaml": {Data: []byte("locale: en\nmessages:\n  a: A\n  b: B\n")},
		"locales/fr.yaml": {Data: []byte("locale: fr\nmessages:\n  a: AA\n")},
	})
	require.NoError(t, err)
	assert.Equal(t, "AA", c.Text("fr", "a", nil))
	assert.Equal(t, "B", c.Text("fr", "b", nil))
}

func TestLoadFS_Errors(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"empty": {},
		"no base": {
			"locales/fr.yaml": {Data: []byte("locale: fr\nmessages:\n  a: A\n")},
		},
		"name mismatch": {
			"locales/en.yaml": {Data: []byte("locale: fr\nmessages:\n  a: A\n")},
		},
		"missing locale": {
			"locales/en.yaml": {Data: []byte("messages:\n  a: A\n")},
		},
		"no messages": {
			"locales/en.yaml": {Data: []byte("locale: en\n")},
		},
		"bad yaml": {
			"locales/en.yaml": {Data: []byte("locale: [en\n")},
		},
		"blank key": {
			"locales/en.yaml": {Data: []byte("locale: en\nmessages:\n  \" \": A\n")},
		},
	}
	for name, fsys := range cases {
		_, err := labels.LoadFS(fsys)
		assert.Error(t, err, name)
	}
}

// TestProperty_TextNeverEmpty verifies every key renders to non-empty text for
// any requested locale.
func TestProperty_TextNeverEmpty(t *testing.T) {
	c := mustLoad(t)
	keys := c.Keys(labels.BaseLocale)
	rapid.Check(t, func(rt *rapid.T) {
		loc := rapid.OneOf(
			rapid.SampledFrom([]string{"en", "es", "fr", "zh", "ja", "ru", "en-GB", "pt-BR", "ko"}),
			rapid.String(),
		).Draw(rt, "locale")
		key := rapid.SampledFrom(keys).Draw(rt, "key")
		assert.NotEmpty(rt, c.Text(loc, key, nil))
	})
}
