package dice

import (
	"strconv"
	"strings"
)

// Face identifies the kind of die a term rolls: a numeric die with a fixed
// number of sides, or a Fudge die.
//
// Invariant: a numeric Face has sides >= 1; the Fudge Face has sides == 0.
type Face struct {
	sides int
	fudge bool
}

// FudgeFace is the Fudge die, emitting {-1, 0, 1}.
var FudgeFace = Face{fudge: true}

// NumericFace returns the numeric face with n sides.
//
// Precondition: n >= 1.
func NumericFace(n int) Face {
	if n < 1 {
		panic("dice: NumericFace called with n < 1")
	}
	return Face{sides: n}
}

// IsFudge reports whether f is the Fudge face.
func (f Face) IsFudge() bool { return f.fudge }

// IsD2 reports whether f is the two-sided die, which emits {0, 1}.
func (f Face) IsD2() bool { return !f.fudge && f.sides == 2 }

// Sides returns the number of sides of a numeric face, or 0 for Fudge.
func (f Face) Sides() int { return f.sides }

// Outcomes returns the number of distinct values a single die can show.
func (f Face) Outcomes() int {
	if f.fudge {
		return 3
	}
	return f.sides
}

// Low returns the smallest value a single die can show.
func (f Face) Low() int {
	switch {
	case f.fudge:
		return -1
	case f.sides == 2:
		return 0
	default:
		return 1
	}
}

// High returns the largest value a single die can show.
func (f Face) High() int {
	return f.Low() + f.Outcomes() - 1
}

// Roll draws one value for a single die of this face from src.
//
// Precondition: src must be non-nil.
// Postcondition: Low() <= result <= High().
func (f Face) Roll(src Source) int {
	return f.Low() + src.Intn(f.Outcomes())
}

// String returns the face tag, e.g. "d6" or "dF".
func (f Face) String() string {
	if f.fudge {
		return "dF"
	}
	return "d" + strconv.Itoa(f.sides)
}

// ParseFace parses a face tag such as "d6", "D20", "dF" or "df".
// Returns false for anything that is not a single die tag.
func ParseFace(tag string) (Face, bool) {
	s := strings.TrimSpace(tag)
	if len(s) < 2 || (s[0] != 'd' && s[0] != 'D') {
		return Face{}, false
	}
	return parseSides(s[1:])
}

func parseSides(s string) (Face, bool) {
	if s == "F" || s == "f" {
		return FudgeFace, true
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Face{}, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxSides {
		return Face{}, false
	}
	return Face{sides: n}, true
}
