package dice

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// termPattern matches the unsigned body of a dice term: optional count, the
// letter d, then either a side count or F.
var termPattern = regexp.MustCompile(`^([0-9]*)[dD]([0-9]+|[fF])$`)

// Input bounds. Chunks beyond them are recorded as unparsed so that exact
// statistics and per-die breakdowns never overflow.
const (
	// MaxCount is the largest number of dice in one term.
	MaxCount = 1000
	// MaxSides is the largest side count of a numeric die.
	MaxSides = 1_000_000
	// MaxModifier is the largest magnitude of the accumulated modifier.
	MaxModifier = 1_000_000_000
)

// Term is one signed group of identical dice, e.g. the "-2d4" in "1d20-2d4".
//
// Invariant: Count >= 1; Sign is Plus or Minus.
type Term struct {
	Count int
	Face  Face
	Sign  Sign
}

// String returns the unsigned term text, e.g. "2d4".
func (t Term) String() string {
	return strconv.Itoa(t.Count) + t.Face.String()
}

// ParsedMacro is the structured form of a dice macro.
//
// Every chunk of Raw is accounted for exactly once: as a Term, folded into
// Modifier, or listed in Unparsed where it contributes 0.
type ParsedMacro struct {
	Raw      string   // input as given
	Terms    []Term   // dice terms in input order
	Modifier int      // sum of all integer chunks
	Unparsed []string // signed chunks that were neither a term nor an integer
}

// Complete reports whether every chunk of the macro was understood.
func (p ParsedMacro) Complete() bool {
	return len(p.Unparsed) == 0
}

// DiceCount returns the total number of dice across all terms.
func (p ParsedMacro) DiceCount() int {
	n := 0
	for _, t := range p.Terms {
		n += t.Count
	}
	return n
}

// SingleDie returns the macro's only term when the macro is one plain numeric
// die plus an optional modifier.
func (p ParsedMacro) SingleDie() (Term, bool) {
	if len(p.Terms) != 1 {
		return Term{}, false
	}
	t := p.Terms[0]
	if t.Count != 1 || t.Face.IsFudge() {
		return Term{}, false
	}
	return t, true
}

// String renders the canonical macro text: terms in order with explicit
// signs, then the modifier when non-zero. A macro with no terms renders as its
// modifier alone.
func (p ParsedMacro) String() string {
	var b strings.Builder
	for i, t := range p.Terms {
		if t.Sign == Minus {
			b.WriteByte('-')
		} else if i > 0 {
			b.WriteByte('+')
		}
		b.WriteString(t.String())
	}
	switch {
	case len(p.Terms) == 0:
		b.WriteString(strconv.Itoa(p.Modifier))
	case p.Modifier > 0:
		b.WriteByte('+')
		b.WriteString(strconv.Itoa(p.Modifier))
	case p.Modifier < 0:
		b.WriteString(strconv.Itoa(p.Modifier))
	}
	return b.String()
}

// Parse parses a dice macro such as "2d6+1dF-3" into a ParsedMacro.
//
// Parse never fails: whitespace is ignored, and any chunk that is neither a
// dice term nor an integer contributes 0 and is recorded in Unparsed. Terms
// over MaxCount dice or MaxSides sides, and integers that would push the
// modifier past MaxModifier, are unparsed too.
//
// Postcondition: Parse(s) is structurally equal to Parse(s) for every s.
func Parse(macro string) ParsedMacro {
	p := ParsedMacro{Raw: macro}
	for _, chunk := range splitSigned(stripSpace(macro)) {
		sign, body := splitSign(chunk)
		if t, ok := parseTerm(sign, body); ok {
			p.Terms = append(p.Terms, t)
			continue
		}
		if n, err := strconv.Atoi(chunk); err == nil && withinModifier(p.Modifier, n) {
			p.Modifier += n
			continue
		}
		p.Unparsed = append(p.Unparsed, chunk)
	}
	return p
}

// MustParse parses macro and panics if any part of it is not understood.
// Useful for package-level constants and tests.
//
// Precondition: macro must be fully valid.
func MustParse(macro string) ParsedMacro {
	p := Parse(macro)
	if !p.Complete() {
		panic("dice: MustParse failed for macro " + macro + ": unparsed " + strings.Join(p.Unparsed, ","))
	}
	return p
}

// withinModifier reports whether adding n to mod keeps the modifier inside
// [-MaxModifier, MaxModifier].
func withinModifier(mod, n int) bool {
	if n < -MaxModifier || n > MaxModifier {
		return false
	}
	sum := mod + n
	return sum >= -MaxModifier && sum <= MaxModifier
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// splitSigned splits s before every '+' or '-'. The sign stays with the chunk
// that follows it.
func splitSigned(s string) []string {
	var chunks []string
	start := 0
	for i := 1; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			chunks = append(chunks, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

func splitSign(chunk string) (Sign, string) {
	switch {
	case strings.HasPrefix(chunk, "-"):
		return Minus, chunk[1:]
	case strings.HasPrefix(chunk, "+"):
		return Plus, chunk[1:]
	default:
		return Plus, chunk
	}
}

func parseTerm(sign Sign, body string) (Term, bool) {
	m := termPattern.FindStringSubmatch(body)
	if m == nil {
		return Term{}, false
	}
	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > MaxCount {
			return Term{}, false
		}
		count = n
	}
	face, ok := parseSides(m[2])
	if !ok {
		return Term{}, false
	}
	return Term{Count: count, Face: face, Sign: sign}, true
}
