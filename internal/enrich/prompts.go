package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/cory-johannsen/rollforge/internal/combo"
	"github.com/cory-johannsen/rollforge/internal/dice"
)

const suggestSystem = `You are a game design assistant who balances tabletop dice mechanics.
Reply with JSON only, no prose, in the form {"combinations":[{"dice":"1d6+2d4+3"}]}.`

const analyzeSystem = `You are a game design expert, skilled in designing and balancing game mechanics with dice.
Reply in plain text of at most three short paragraphs.`

func suggestPrompt(req combo.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target range: minimum %d, maximum %d.\n", req.TargetMin, req.TargetMax)
	fmt.Fprintf(&b, "Available dice: %s.\n", strings.Join(req.Faces, ", "))
	b.WriteString(`Suggest several dice combinations using only the available dice whose minimum and maximum match the target range.
The d2 rolls 0 or 1, which raises the maximum without changing the minimum; subtracting d2 dice lowers the minimum.
The dF rolls -1, 0 or 1.
Use positive or negative integer modifiers to shift the range, and mix different dice where it helps.
Prefer combinations whose average sits near the middle of the target range.
Write each combination like "2d8-1" or "1d6+2d4+3".`)
	return b.String()
}

func analyzePrompt(p dice.ParsedMacro, st dice.Stats, target *combo.Request, lang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "All of your output MUST be in %s.\n", languageName(lang))
	fmt.Fprintf(&b, "Dice combination: %s\n", p.String())
	fmt.Fprintf(&b, "Exact minimum %d, maximum %d, average %.2f.\n", st.Min, st.Max, st.Average)
	if target != nil {
		fmt.Fprintf(&b, "Target range: %d to %d.\n", target.TargetMin, target.TargetMax)
	}
	b.WriteString("Describe the shape of the probability distribution, its mean and spread, and how suitable it is for the target range.")
	return b.String()
}

// languageName renders a BCP 47 tag as an English language name, e.g. "ja"
// becomes "Japanese". Malformed tags fall back to English.
func languageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return "English"
	}
	if name := display.English.Tags().Name(t); name != "" {
		return name
	}
	return "English"
}

type suggestReply struct {
	Combinations []struct {
		Dice string `json:"dice"`
	} `json:"combinations"`
}

// parseSuggestions decodes the macros from a suggestion reply. The JSON
// object may be wrapped in prose or a code fence.
func parseSuggestions(reply string) ([]string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object", ErrMalformedReply)
	}
	var r suggestReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	out := make([]string, 0, len(r.Combinations))
	for _, c := range r.Combinations {
		if d := strings.TrimSpace(c.Dice); d != "" {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyReply
	}
	return out, nil
}
