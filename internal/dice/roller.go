package dice

// SimulateOnce rolls every die of p once using src.
//
// Precondition: src must be non-nil.
// Postcondition: len(result.Dice) == p.DiceCount();
// result.Total == sum(result.Dice[i].Signed()) + p.Modifier;
// ComputeStats(p).Min <= result.Total <= ComputeStats(p).Max.
func SimulateOnce(p ParsedMacro, src Source) Outcome {
	out := Outcome{
		Expression: p.String(),
		Dice:       make([]DieResult, 0, p.DiceCount()),
		Modifier:   p.Modifier,
		Total:      p.Modifier,
	}
	for _, t := range p.Terms {
		for i := 0; i < t.Count; i++ {
			d := DieResult{Face: t.Face, Value: t.Face.Roll(src), Sign: t.Sign}
			out.Dice = append(out.Dice, d)
			out.Total += d.Signed()
		}
	}
	return out
}

// RollExpr parses macro and rolls it using src in a single call.
//
// Precondition: src must be non-nil.
func RollExpr(macro string, src Source) Outcome {
	return SimulateOnce(Parse(macro), src)
}
