package combo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rollforge/internal/combo"
	"github.com/cory-johannsen/rollforge/internal/dice"
)

func TestFitScore(t *testing.T) {
	assert.Equal(t, 100.0, combo.FitScore(5, 15, 5, 15))
	assert.InDelta(t, 50.0, combo.FitScore(5, 15, 8, 13), 1e-9)
	assert.Equal(t, 0.0, combo.FitScore(5, 15, 0, 30))
	assert.Equal(t, 100.0, combo.FitScore(7, 7, 7, 7))
	assert.Equal(t, 0.0, combo.FitScore(7, 7, 6, 7))
}

func TestClassifyFit(t *testing.T) {
	cases := []struct {
		lo, hi int
		want   combo.FitLabel
	}{
		{5, 15, combo.FitPerfect},
		{6, 14, combo.FitContained},
		{6, 15, combo.FitContained},
		{4, 16, combo.FitWider},
		{3, 10, combo.FitExceedsLow},
		{4, 15, combo.FitExceedsLow},
		{10, 20, combo.FitExceedsHigh},
		{16, 20, combo.FitNoOverlap},
		{0, 4, combo.FitNoOverlap},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, combo.ClassifyFit(5, 15, tc.lo, tc.hi), "[%d,%d]", tc.lo, tc.hi)
	}
}

func TestLabelKeys(t *testing.T) {
	assert.Equal(t, "fit.perfect", combo.FitPerfect.Key())
	assert.Equal(t, "fit.noOverlap", combo.FitNoOverlap.Key())
	assert.Equal(t, "distribution.somewhatBell", combo.ShapeSomewhatBell.Key())
}

func TestShapeOf(t *testing.T) {
	s := combo.ShapeOf(dice.Parse("2d6+1dF-3"))
	assert.Equal(t, 3, s.Dice)
	assert.Equal(t, 2, s.Distinct)
	assert.InDelta(t, 5.0, s.AvgFaces, 1e-9)

	assert.Equal(t, combo.Shape{}, combo.ShapeOf(dice.Parse("4")))
}

func TestHeuristicScorer(t *testing.T) {
	h := combo.HeuristicScorer{}
	assert.Equal(t, 0.0, h.DistributionScore(combo.Shape{Dice: 1, Distinct: 1, AvgFaces: 20}))
	assert.InDelta(t, 1.5*math.Ln2, h.DistributionScore(combo.Shape{Dice: 2, Distinct: 1, AvgFaces: 6}), 1e-9)
	assert.InDelta(t, 1.5*math.Ln2+0.1, h.DistributionScore(combo.Shape{Dice: 2, Distinct: 2, AvgFaces: 8}), 1e-9)
	assert.InDelta(t, 1.5*math.Ln2-0.2, h.DistributionScore(combo.Shape{Dice: 2, Distinct: 1, AvgFaces: 20}), 1e-9)
	assert.Equal(t, 2.0, h.DistributionScore(combo.Shape{Dice: 10, Distinct: 1, AvgFaces: 6}))
}

func TestClassifyDistribution(t *testing.T) {
	h := combo.HeuristicScorer{}
	assert.Equal(t, combo.ShapeFlat, combo.ClassifyDistribution(h.DistributionScore(combo.ShapeOf(dice.Parse("1d20")))))
	assert.Equal(t, combo.ShapeSomewhatBell, combo.ClassifyDistribution(h.DistributionScore(combo.ShapeOf(dice.Parse("2d6")))))
	assert.Equal(t, combo.ShapeBell, combo.ClassifyDistribution(h.DistributionScore(combo.ShapeOf(dice.Parse("3d6")))))
	assert.Equal(t, combo.ShapeFlat, combo.ClassifyDistribution(0.5))
	assert.Equal(t, combo.ShapeBell, combo.ClassifyDistribution(2))
}

func TestClampDistribution(t *testing.T) {
	assert.Equal(t, 0.0, combo.ClampDistribution(math.NaN()))
	assert.Equal(t, 0.0, combo.ClampDistribution(-3))
	assert.Equal(t, 2.0, combo.ClampDistribution(math.Inf(1)))
	assert.Equal(t, 1.25, combo.ClampDistribution(1.25))
}

// TestProperty_FitScoreBounds verifies FitScore stays in [0, 100] and reaches
// 100 exactly on a perfect fit.
func TestProperty_FitScoreBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tMin := rapid.IntRange(-50, 50).Draw(rt, "tMin")
		tMax := tMin + rapid.IntRange(0, 50).Draw(rt, "tSpan")
		lo := rapid.IntRange(-100, 100).Draw(rt, "lo")
		hi := lo + rapid.IntRange(0, 100).Draw(rt, "span")

		score := combo.FitScore(tMin, tMax, lo, hi)
		assert.GreaterOrEqual(rt, score, 0.0)
		assert.LessOrEqual(rt, score, 100.0)
		label := combo.ClassifyFit(tMin, tMax, lo, hi)
		assert.Equal(rt, label == combo.FitPerfect, score == 100.0)
	})
}
