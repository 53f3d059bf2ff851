package report_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rollforge/internal/combo"
	"github.com/cory-johannsen/rollforge/internal/dice"
	"github.com/cory-johannsen/rollforge/internal/labels"
	"github.com/cory-johannsen/rollforge/internal/report"
)

func catalog(t *testing.T) *labels.Catalog {
	t.Helper()
	c, err := labels.Load()
	require.NoError(t, err)
	return c
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestHistogram_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Histogram(&buf, "Distribution of 1d6 (exact)", dice.TheoreticalDistribution("1d6", 600), 60))

	got := lines(buf.String())
	require.Len(t, got, 7)
	assert.Equal(t, "Distribution of 1d6 (exact)", got[0])
	for i, l := range got[1:] {
		assert.True(t, strings.HasPrefix(l, string(rune('1'+i))+" │ "), l)
		assert.True(t, strings.HasSuffix(l, " 16.7%"), l)
	}
	assert.Equal(t, strings.Count(got[1], "█"), strings.Count(got[6], "█"))
}

func TestHistogram_ScalesToHeaviestBar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Histogram(&buf, "", dice.Histogram{1: 1, 2: 2}, 30))

	got := lines(buf.String())
	require.Len(t, got, 2)
	// 30 columns minus the label, separator and percentage leaves 19.
	assert.Equal(t, 10, strings.Count(got[0], "█"))
	assert.Equal(t, 19, strings.Count(got[1], "█"))
	assert.True(t, strings.HasSuffix(got[1], " 66.7%"), got[1])
}

func TestHistogram_AlignsNegativeTotals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Histogram(&buf, "", dice.TheoreticalDistribution("1dF", 3), 0))

	got := lines(buf.String())
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "-1 │ "), got[0])
	assert.True(t, strings.HasPrefix(got[1], " 0 │ "), got[1])
	assert.True(t, strings.HasPrefix(got[2], " 1 │ "), got[2])
	assert.Equal(t, 10, strings.Count(got[0], "█"), "narrow widths keep the minimum bar")
}

func TestHistogram_EmptyWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Histogram(&buf, "title", dice.Histogram{}, 80))
	assert.Empty(t, buf.String())
}

func TestCandidates_Table(t *testing.T) {
	g := combo.NewGenerator(combo.DefaultOptions(), nil, zap.NewNop())
	cands := g.Generate(combo.Request{TargetMin: 5, TargetMax: 15, Faces: []string{"d6"}})
	require.NotEmpty(t, cands)

	var buf bytes.Buffer
	require.NoError(t, report.Candidates(&buf, cands, catalog(t), "en"))
	out := buf.String()
	for _, want := range []string{"Dice", "Min", "Max", "Avg", "Fit", "Shape", "Source", "2d6+3", "Perfect (100)", "Generated", "10.00"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "2d6+3"), strings.Index(out, "1d6+7"), "rows keep rank order")
}

func TestCandidates_Localized(t *testing.T) {
	g := combo.NewGenerator(combo.DefaultOptions(), nil, zap.NewNop())
	cands := g.Rank(combo.Request{TargetMin: 2, TargetMax: 12}, []dice.ParsedMacro{dice.Parse("2d6")}, combo.OriginAI)

	var buf bytes.Buffer
	require.NoError(t, report.Candidates(&buf, cands, catalog(t), "es"))
	out := buf.String()
	assert.Contains(t, out, "Dados")
	assert.Contains(t, out, "Perfecto (100)")
	assert.Contains(t, out, "IA")
}

func TestCandidates_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Candidates(&buf, nil, catalog(t), "en"))
	assert.Equal(t, "No combination fits the target with the available dice.\n", buf.String())
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer
	p := dice.Parse("2d4 + 3 + junk")
	require.NoError(t, report.Stats(&buf, p, dice.ComputeStats(p), catalog(t), "en"))
	assert.Equal(t, []string{
		"Dice: 2d4+3",
		"Min: 5",
		"Max: 11",
		"Avg: 8.00",
		"Ignored: +junk",
	}, lines(buf.String()))
}

func TestOutcome(t *testing.T) {
	o := dice.Outcome{
		Expression: "2d6-1d4+3",
		Dice: []dice.DieResult{
			{Face: dice.NumericFace(6), Value: 4, Sign: dice.Plus},
			{Face: dice.NumericFace(6), Value: 5, Sign: dice.Plus},
			{Face: dice.NumericFace(4), Value: 2, Sign: dice.Minus},
		},
		Modifier: 3,
		Total:    10,
	}
	var buf bytes.Buffer
	require.NoError(t, report.Outcome(&buf, o))
	assert.Equal(t, o.String()+"\n", buf.String())
}

func TestTerminalWidth(t *testing.T) {
	assert.Positive(t, report.TerminalWidth())
}
