// Package combo searches for dice combinations that fit a target roll range
// and scores how well, and how bell-shaped, each combination is.
package combo

import (
	"math"

	"github.com/cory-johannsen/rollforge/internal/dice"
)

// FitLabel classifies a combination's range against the target range.
type FitLabel string

const (
	FitPerfect     FitLabel = "perfect"
	FitContained   FitLabel = "contained"
	FitWider       FitLabel = "wider"
	FitExceedsLow  FitLabel = "exceedsLow"
	FitExceedsHigh FitLabel = "exceedsHigh"
	FitNoOverlap   FitLabel = "noOverlap"
)

// Key returns the catalog key for the label, e.g. "fit.perfect".
func (l FitLabel) Key() string { return "fit." + string(l) }

// DistributionLabel describes the shape of a combination's distribution.
type DistributionLabel string

const (
	ShapeBell         DistributionLabel = "bell"
	ShapeSomewhatBell DistributionLabel = "somewhatBell"
	ShapeFlat         DistributionLabel = "flat"
)

// Key returns the catalog key for the label, e.g. "distribution.bell".
func (l DistributionLabel) Key() string { return "distribution." + string(l) }

// Heuristic constants for the distribution score.
const (
	diceWeight        = 1.5  // per ln(dice)
	varietyBonus      = 0.1  // per extra distinct face
	largeFacePenalty  = 0.02 // per average face above largeFaceCutoff
	largeFaceCutoff   = 10.0
	maxDistribution   = 2.0
	bellThreshold     = 1.2
	somewhatThreshold = 0.5
)

// FitScore rates how closely [lo, hi] matches [targetMin, targetMax] on a
// 0..100 scale. The summed deviation of both ends is measured against the
// target span; a zero-width target counts as span 1, so it scores 100 only on
// an exact match.
func FitScore(targetMin, targetMax, lo, hi int) float64 {
	span := targetMax - targetMin
	if span < 1 {
		span = 1
	}
	dev := abs(targetMin-lo) + abs(targetMax-hi)
	score := (1 - float64(dev)/float64(span)) * 100
	return math.Max(0, math.Min(100, score))
}

// ClassifyFit labels [lo, hi] against [targetMin, targetMax].
func ClassifyFit(targetMin, targetMax, lo, hi int) FitLabel {
	switch {
	case lo == targetMin && hi == targetMax:
		return FitPerfect
	case hi < targetMin || lo > targetMax:
		return FitNoOverlap
	case lo >= targetMin && hi <= targetMax:
		return FitContained
	case lo < targetMin && hi > targetMax:
		return FitWider
	case lo < targetMin:
		return FitExceedsLow
	default:
		return FitExceedsHigh
	}
}

// Shape summarizes the dice of a combination for distribution scoring.
type Shape struct {
	Dice     int     // total dice across all terms
	Distinct int     // distinct face types
	AvgFaces float64 // mean outcomes per die; Fudge counts as 3
}

// ShapeOf summarizes the dice of p.
func ShapeOf(p dice.ParsedMacro) Shape {
	var s Shape
	faces := map[dice.Face]bool{}
	outcomes := 0
	for _, t := range p.Terms {
		s.Dice += t.Count
		faces[t.Face] = true
		outcomes += t.Count * t.Face.Outcomes()
	}
	s.Distinct = len(faces)
	if s.Dice > 0 {
		s.AvgFaces = float64(outcomes) / float64(s.Dice)
	}
	return s
}

// DistributionScorer rates how peaked a combination's distribution is, from
// 0 (flat) to 2 (strongly bell-shaped).
type DistributionScorer interface {
	DistributionScore(s Shape) float64
}

// HeuristicScorer is the built-in DistributionScorer:
//
//	0                                                    if Dice <= 1
//	1.5*ln(Dice) + 0.1*(Distinct-1) - 0.02*max(0, AvgFaces-10)  otherwise
//
// clamped to [0, 2]. It approximates peakedness; it is not a kurtosis.
type HeuristicScorer struct{}

// DistributionScore implements DistributionScorer.
func (HeuristicScorer) DistributionScore(s Shape) float64 {
	if s.Dice <= 1 {
		return 0
	}
	score := diceWeight*math.Log(float64(s.Dice)) +
		varietyBonus*float64(s.Distinct-1) -
		largeFacePenalty*math.Max(0, s.AvgFaces-largeFaceCutoff)
	return ClampDistribution(score)
}

// ClampDistribution clamps a distribution score into [0, 2]. NaN maps to 0.
func ClampDistribution(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(maxDistribution, score))
}

// ClassifyDistribution labels a distribution score.
func ClassifyDistribution(score float64) DistributionLabel {
	switch {
	case score > bellThreshold:
		return ShapeBell
	case score > somewhatThreshold:
		return ShapeSomewhatBell
	default:
		return ShapeFlat
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
