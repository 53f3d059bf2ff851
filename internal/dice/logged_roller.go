package dice

import (
	"time"

	"go.uber.org/zap"
)

// Roller wraps a Source and logger to provide logged dice rolling.
// Single rolls are logged at debug level with expression, dice values,
// modifier, and total; batches are logged with their size and spread.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the Roller's randomness provider.
func (r *Roller) Source() Source {
	return r.src
}

// Roll rolls p once and logs the result at debug level.
//
// Postcondition: result logged; returns the Outcome of SimulateOnce.
func (r *Roller) Roll(p ParsedMacro) Outcome {
	out := SimulateOnce(p, r.src)
	signed := make([]int, len(out.Dice))
	for i, d := range out.Dice {
		signed[i] = d.Signed()
	}
	fields := []zap.Field{
		zap.String("expression", out.Expression),
		zap.Ints("dice", signed),
		zap.Int("modifier", out.Modifier),
		zap.Int("total", out.Total),
	}
	if !p.Complete() {
		fields = append(fields, zap.Strings("unparsed", p.Unparsed))
	}
	r.logger.Debug("dice roll", fields...)
	return out
}

// RollExpr parses macro and rolls it, logging the result.
func (r *Roller) RollExpr(macro string) Outcome {
	return r.Roll(Parse(macro))
}

// Distribution returns the exact or sampled distribution of macro (see the
// package-level Distribution) and logs how it was produced.
func (r *Roller) Distribution(macro string, trials int) Histogram {
	start := time.Now()
	p := Parse(macro)
	mode := "sampled"
	var h Histogram
	if _, ok := p.SingleDie(); ok {
		mode = "theoretical"
		h = Theoretical(p, float64(trials))
	} else {
		h = Sample(p, trials, r.src)
	}
	r.logger.Debug("dice distribution",
		zap.String("expression", p.String()),
		zap.String("mode", mode),
		zap.Int("trials", trials),
		zap.Int("outcomes", len(h)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return h
}
