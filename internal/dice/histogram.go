package dice

import "sort"

// Histogram maps a roll total to its weight. Sampled histograms carry integral
// occurrence counts; theoretical ones may carry fractional weights.
type Histogram map[int]float64

// Point is one bar of a histogram.
type Point struct {
	Total  int
	Weight float64
}

// Points returns the histogram's bars sorted by ascending total.
func (h Histogram) Points() []Point {
	pts := make([]Point, 0, len(h))
	for total, w := range h {
		pts = append(pts, Point{Total: total, Weight: w})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Total < pts[j].Total })
	return pts
}

// Weight returns the sum of all bar weights.
func (h Histogram) Weight() float64 {
	var sum float64
	for _, w := range h {
		sum += w
	}
	return sum
}

// Peak returns the heaviest bar, preferring the lowest total on ties. ok is
// false for an empty histogram.
func (h Histogram) Peak() (p Point, ok bool) {
	for _, pt := range h.Points() {
		if !ok || pt.Weight > p.Weight {
			p, ok = pt, true
		}
	}
	return p, ok
}

// Sample runs SimulateOnce on p exactly trials times and tallies the totals.
//
// Precondition: src must be non-nil.
// Postcondition: result.Weight() == max(trials, 0).
func Sample(p ParsedMacro, trials int, src Source) Histogram {
	h := Histogram{}
	for i := 0; i < trials; i++ {
		h[SimulateOnce(p, src).Total]++
	}
	return h
}

// SimulateBatch parses macro and samples it trials times.
func SimulateBatch(macro string, trials int, src Source) Histogram {
	return Sample(Parse(macro), trials, src)
}

// Theoretical returns the exact uniform distribution of p scaled to
// totalWeight, provided p is a single plain die plus modifier. Any other shape
// yields an empty histogram.
func Theoretical(p ParsedMacro, totalWeight float64) Histogram {
	h := Histogram{}
	t, ok := p.SingleDie()
	if !ok {
		return h
	}
	per := totalWeight / float64(t.Face.Outcomes())
	for v := t.Face.Low(); v <= t.Face.High(); v++ {
		h[int(t.Sign)*v+p.Modifier] = per
	}
	return h
}

// TheoreticalDistribution parses macro and returns its exact distribution
// when the macro is a single plain die (see Theoretical).
func TheoreticalDistribution(macro string, totalWeight float64) Histogram {
	return Theoretical(Parse(macro), totalWeight)
}

// Distribution returns the exact distribution of macro when it is a single
// plain die and a sampled histogram of trials rolls otherwise.
func Distribution(macro string, trials int, src Source) Histogram {
	p := Parse(macro)
	if _, ok := p.SingleDie(); ok {
		return Theoretical(p, float64(trials))
	}
	return Sample(p, trials, src)
}
