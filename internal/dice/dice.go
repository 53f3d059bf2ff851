// Package dice provides the dice-macro engine: parsing of macros such as
// "2d6+1dF-3", exact statistics, and random simulation over the parsed form.
package dice

import (
	"fmt"
	"strings"
)

// Sign is the sign applied to every die of a term.
type Sign int

const (
	// Plus adds the term's dice to the total.
	Plus Sign = 1
	// Minus subtracts the term's dice from the total.
	Minus Sign = -1
)

// String returns "+" or "-".
func (s Sign) String() string {
	if s < 0 {
		return "-"
	}
	return "+"
}

// DieResult is the value shown by one simulated die.
//
// Value is the unsigned face value; Sign is the sign of the enclosing term.
type DieResult struct {
	Face  Face
	Value int
	Sign  Sign
}

// Signed returns the die's contribution to the total.
func (d DieResult) Signed() int {
	return int(d.Sign) * d.Value
}

// Outcome holds the full audit trail for a single simulated roll.
//
// Postcondition: Total == sum(Dice[i].Signed()) + Modifier.
type Outcome struct {
	Expression string      // canonical macro text, e.g. "2d6+3"
	Dice       []DieResult // individual die results in term order
	Modifier   int         // flat modifier (may be negative)
	Total      int
}

// String returns a human-readable audit string in the format:
//
//	"2d6-1d4+3 → [+4 +5 -2] +3 = 10"
func (o Outcome) String() string {
	parts := make([]string, len(o.Dice))
	for i, d := range o.Dice {
		parts[i] = fmt.Sprintf("%s%d", d.Sign, d.Value)
	}
	return fmt.Sprintf("%s → [%s] %+d = %d", o.Expression, strings.Join(parts, " "), o.Modifier, o.Total)
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
