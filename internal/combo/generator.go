package combo

import (
	"math"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/rollforge/internal/dice"
)

// Origin records which generator produced a Candidate.
type Origin string

const (
	OriginFallback Origin = "fallback"
	OriginAI       Origin = "ai"
)

// Request asks for combinations whose range matches [TargetMin, TargetMax]
// using only the listed face tags ("d4", "d6", "d2", "dF", ...).
type Request struct {
	TargetMin int
	TargetMax int
	Faces     []string
}

// Normalized returns r with TargetMin <= TargetMax.
func (r Request) Normalized() Request {
	if r.TargetMin > r.TargetMax {
		r.TargetMin, r.TargetMax = r.TargetMax, r.TargetMin
	}
	return r
}

// Candidate is one scored combination.
type Candidate struct {
	Macro             string
	Min               int
	Max               int
	Average           float64
	FitScore          float64
	FitLabel          FitLabel
	DistributionScore float64
	DistributionLabel DistributionLabel
	Origin            Origin
}

// FaceSet is the parsed form of a Request's face tags.
type FaceSet struct {
	Numeric []int // sorted distinct side counts, excluding the d2
	D2      bool
	Fudge   bool
}

// ParseFaces parses face tags, ignoring tags that are not single dice.
func ParseFaces(tags []string) FaceSet {
	var fs FaceSet
	seen := map[int]bool{}
	for _, tag := range tags {
		f, ok := dice.ParseFace(tag)
		switch {
		case !ok:
		case f.IsFudge():
			fs.Fudge = true
		case f.IsD2():
			fs.D2 = true
		case !seen[f.Sides()]:
			seen[f.Sides()] = true
			fs.Numeric = append(fs.Numeric, f.Sides())
		}
	}
	sort.Ints(fs.Numeric)
	return fs
}

// Allows reports whether every face used by p is in the set.
func (fs FaceSet) Allows(p dice.ParsedMacro) bool {
	for _, t := range p.Terms {
		switch {
		case t.Face.IsFudge():
			if !fs.Fudge {
				return false
			}
		case t.Face.IsD2():
			if !fs.D2 {
				return false
			}
		case !slices.Contains(fs.Numeric, t.Face.Sides()):
			return false
		}
	}
	return true
}

// Options tunes the fallback search.
type Options struct {
	Limit       int // maximum candidates returned
	D2Bound     int // largest gap closed with d2 dice
	LadderBound int // largest span covered by a pure d2 or dF ladder
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{Limit: 12, D2Bound: 3, LadderBound: 12}
}

// Generator runs the deterministic fallback search and scores candidates.
type Generator struct {
	opts   Options
	scorer DistributionScorer
	logger *zap.Logger
}

// NewGenerator creates a Generator.
//
// Precondition: logger must be non-nil; a nil scorer selects HeuristicScorer.
func NewGenerator(opts Options, scorer DistributionScorer, logger *zap.Logger) *Generator {
	if scorer == nil {
		scorer = HeuristicScorer{}
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions().Limit
	}
	return &Generator{opts: opts, scorer: scorer, logger: logger}
}

// Generate searches for combinations fitting req and returns them ranked.
//
// Postcondition: len(result) <= Limit; results are sorted by FitScore
// descending, then DistributionScore ascending; every Min/Max/Average equals
// dice.StatsOf(Macro).
func (g *Generator) Generate(req Request) []Candidate {
	req = req.Normalized()
	faces := ParseFaces(req.Faces)
	avg := float64(req.TargetMin+req.TargetMax) / 2

	var proposals []dice.ParsedMacro
	for _, n := range faces.Numeric {
		proposals = append(proposals, centered(avg, n))
	}
	for i := range faces.Numeric {
		for j := i; j < len(faces.Numeric); j++ {
			proposals = append(proposals, centered(avg, faces.Numeric[i], faces.Numeric[j]))
		}
	}
	if faces.D2 {
		proposals = append(proposals, g.closeWithD2(req, proposals)...)
	}
	proposals = append(proposals, g.ladders(req, faces)...)

	out := g.Rank(req, proposals, OriginFallback)
	g.logger.Debug("fallback generation",
		zap.Int("target_min", req.TargetMin),
		zap.Int("target_max", req.TargetMax),
		zap.Ints("numeric_faces", faces.Numeric),
		zap.Bool("d2", faces.D2),
		zap.Bool("fudge", faces.Fudge),
		zap.Int("proposals", len(proposals)),
		zap.Int("returned", len(out)),
	)
	return out
}

// Rank scores proposals against req, drops duplicates by canonical text and
// returns at most Limit candidates in rank order.
func (g *Generator) Rank(req Request, proposals []dice.ParsedMacro, origin Origin) []Candidate {
	req = req.Normalized()
	seen := map[string]bool{}
	cands := make([]Candidate, 0, len(proposals))
	for _, p := range proposals {
		c := g.Evaluate(req, p, origin)
		if seen[c.Macro] {
			continue
		}
		seen[c.Macro] = true
		cands = append(cands, c)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.FitScore != b.FitScore {
			return a.FitScore > b.FitScore
		}
		if a.DistributionScore != b.DistributionScore {
			return a.DistributionScore < b.DistributionScore
		}
		return a.Macro < b.Macro
	})
	if len(cands) > g.opts.Limit {
		cands = cands[:g.opts.Limit]
	}
	return cands
}

// Evaluate computes exact stats and scores for p against req.
func (g *Generator) Evaluate(req Request, p dice.ParsedMacro, origin Origin) Candidate {
	req = req.Normalized()
	st := dice.ComputeStats(p)
	ds := ClampDistribution(g.scorer.DistributionScore(ShapeOf(p)))
	return Candidate{
		Macro:             p.String(),
		Min:               st.Min,
		Max:               st.Max,
		Average:           st.Average,
		FitScore:          FitScore(req.TargetMin, req.TargetMax, st.Min, st.Max),
		FitLabel:          ClassifyFit(req.TargetMin, req.TargetMax, st.Min, st.Max),
		DistributionScore: ds,
		DistributionLabel: ClassifyDistribution(ds),
		Origin:            origin,
	}
}

// centered builds one die of each listed face plus the modifier that moves
// the combination's average onto avg. Repeated faces merge into one term.
func centered(avg float64, sides ...int) dice.ParsedMacro {
	var p dice.ParsedMacro
	mean := 0.0
	for _, n := range sides {
		mean += float64(n+1) / 2
		if k := len(p.Terms); k > 0 && p.Terms[k-1].Face.Sides() == n {
			p.Terms[k-1].Count++
			continue
		}
		p.Terms = append(p.Terms, dice.Term{Count: 1, Face: dice.NumericFace(n), Sign: dice.Plus})
	}
	p.Modifier = int(math.Round(avg - mean))
	return p
}

// closeWithD2 appends +Kd2 to proposals whose max falls short of the target
// by at most D2Bound, and -Kd2 to those whose min overshoots it likewise.
func (g *Generator) closeWithD2(req Request, proposals []dice.ParsedMacro) []dice.ParsedMacro {
	var out []dice.ParsedMacro
	for _, p := range proposals {
		st := dice.ComputeStats(p)
		up := req.TargetMax - st.Max
		down := st.Min - req.TargetMin
		canUp := up > 0 && up <= g.opts.D2Bound
		canDown := down > 0 && down <= g.opts.D2Bound
		if canUp {
			out = append(out, withD2(p, up, dice.Plus))
		}
		if canDown {
			out = append(out, withD2(p, down, dice.Minus))
		}
		if canUp && canDown {
			out = append(out, withD2(withD2(p, up, dice.Plus), down, dice.Minus))
		}
	}
	return out
}

func withD2(p dice.ParsedMacro, count int, sign dice.Sign) dice.ParsedMacro {
	terms := make([]dice.Term, len(p.Terms), len(p.Terms)+1)
	copy(terms, p.Terms)
	p.Terms = append(terms, dice.Term{Count: count, Face: dice.NumericFace(2), Sign: sign})
	return p
}

// ladders covers the target exactly with d2 or Fudge dice alone when the span
// is small enough.
func (g *Generator) ladders(req Request, faces FaceSet) []dice.ParsedMacro {
	span := req.TargetMax - req.TargetMin
	var out []dice.ParsedMacro
	if span <= 0 {
		return out
	}
	if faces.D2 && span <= g.opts.LadderBound {
		out = append(out, dice.ParsedMacro{
			Terms:    []dice.Term{{Count: span, Face: dice.NumericFace(2), Sign: dice.Plus}},
			Modifier: req.TargetMin,
		})
	}
	if faces.Fudge && span%2 == 0 && span/2 <= g.opts.LadderBound {
		k := span / 2
		out = append(out, dice.ParsedMacro{
			Terms:    []dice.Term{{Count: k, Face: dice.FudgeFace, Sign: dice.Plus}},
			Modifier: req.TargetMin + k,
		})
	}
	return out
}
