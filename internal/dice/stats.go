package dice

// Stats holds the exact range and mean of a macro's total.
//
// Invariant: Min <= Average <= Max.
type Stats struct {
	Min     int
	Max     int
	Average float64
}

// ComputeStats derives exact statistics from p without sampling.
//
// Per term of count c and sign s, with a single die spanning [lo, hi]:
//
//	s = +1: min += c*lo, max += c*hi
//	s = -1: min -= c*hi, max -= c*lo
//	average += s*c*(lo+hi)/2
//
// so a dn spans [1, n], a d2 spans [0, 1] and a Fudge die spans [-1, 1].
// The modifier is added to all three.
func ComputeStats(p ParsedMacro) Stats {
	st := Stats{Min: p.Modifier, Max: p.Modifier, Average: float64(p.Modifier)}
	for _, t := range p.Terms {
		lo, hi := t.Face.Low(), t.Face.High()
		if t.Sign == Minus {
			st.Min -= t.Count * hi
			st.Max -= t.Count * lo
		} else {
			st.Min += t.Count * lo
			st.Max += t.Count * hi
		}
		st.Average += float64(int(t.Sign)*t.Count) * float64(lo+hi) / 2
	}
	return st
}

// StatsOf parses macro and computes its statistics.
func StatsOf(macro string) Stats {
	return ComputeStats(Parse(macro))
}
