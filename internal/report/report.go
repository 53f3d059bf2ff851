// Package report renders dice results for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/cory-johannsen/rollforge/internal/combo"
	"github.com/cory-johannsen/rollforge/internal/dice"
	"github.com/cory-johannsen/rollforge/internal/labels"
)

const (
	minBarWidth         = 10
	terminalWidthBackup = 80
	barRune             = "█"
	axisSeparator       = " │ "
)

var (
	accent = lipgloss.Color("#C89A3A")
	muted  = lipgloss.Color("#8C8C8C")
	bright = lipgloss.Color("#F0F0F0")
)

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// Histogram draws one horizontal bar per total, in ascending order, scaled so
// the heaviest bar fills the space width leaves after labels.
//
// Postcondition: writes nothing for an empty histogram.
func Histogram(w io.Writer, title string, h dice.Histogram, width int) error {
	pts := h.Points()
	if len(pts) == 0 {
		return nil
	}
	r := lipgloss.NewRenderer(w)
	titleStyle := r.NewStyle().Bold(true).Foreground(bright)
	axisStyle := r.NewStyle().Foreground(muted)
	barStyle := r.NewStyle().Foreground(accent)

	labelWidth := 0
	maxWeight := 0.0
	for _, p := range pts {
		labelWidth = max(labelWidth, len(strconv.Itoa(p.Total)))
		maxWeight = max(maxWeight, p.Weight)
	}
	total := h.Weight()
	const pctWidth = len(" 100.0%")
	barWidth := max(minBarWidth, width-labelWidth-lipgloss.Width(axisSeparator)-pctWidth)

	var b strings.Builder
	if title != "" {
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
	}
	for _, p := range pts {
		n := 0
		if maxWeight > 0 {
			n = int(float64(barWidth)*p.Weight/maxWeight + 0.5)
		}
		fmt.Fprintf(&b, "%*d%s%s %5.1f%%\n",
			labelWidth, p.Total,
			axisStyle.Render(axisSeparator),
			barStyle.Render(strings.Repeat(barRune, n)),
			100*p.Weight/total,
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Candidates prints a table of ranked candidates with localized headers and
// labels.
func Candidates(w io.Writer, cands []combo.Candidate, catalog *labels.Catalog, locale string) error {
	if len(cands) == 0 {
		_, err := fmt.Fprintln(w, catalog.Text(locale, "generate.empty", nil))
		return err
	}
	r := lipgloss.NewRenderer(w)
	headerStyle := r.NewStyle().Bold(true).Foreground(bright).Padding(0, 1)
	cellStyle := r.NewStyle().Padding(0, 1)

	rows := make([][]string, len(cands))
	for i, c := range cands {
		rows[i] = []string{
			c.Macro,
			strconv.Itoa(c.Min),
			strconv.Itoa(c.Max),
			strconv.FormatFloat(c.Average, 'f', 2, 64),
			fmt.Sprintf("%s (%.0f)", catalog.Text(locale, c.FitLabel.Key(), nil), c.FitScore),
			catalog.Text(locale, c.DistributionLabel.Key(), nil),
			catalog.Text(locale, "source."+string(c.Origin), nil),
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(muted)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(
			catalog.Text(locale, "header.macro", nil),
			catalog.Text(locale, "header.min", nil),
			catalog.Text(locale, "header.max", nil),
			catalog.Text(locale, "header.average", nil),
			catalog.Text(locale, "header.fit", nil),
			catalog.Text(locale, "header.shape", nil),
			catalog.Text(locale, "header.source", nil),
		).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Stats prints the canonical macro with its exact minimum, maximum and average.
func Stats(w io.Writer, p dice.ParsedMacro, st dice.Stats, catalog *labels.Catalog, locale string) error {
	r := lipgloss.NewRenderer(w)
	key := r.NewStyle().Foreground(muted)
	val := r.NewStyle().Bold(true).Foreground(bright)

	lines := []string{
		key.Render(catalog.Text(locale, "header.macro", nil)+": ") + val.Render(p.String()),
		key.Render(catalog.Text(locale, "header.min", nil)+": ") + val.Render(strconv.Itoa(st.Min)),
		key.Render(catalog.Text(locale, "header.max", nil)+": ") + val.Render(strconv.Itoa(st.Max)),
		key.Render(catalog.Text(locale, "header.average", nil)+": ") + val.Render(strconv.FormatFloat(st.Average, 'f', 2, 64)),
	}
	if !p.Complete() {
		lines = append(lines, key.Render(catalog.Text(locale, "report.unparsed", map[string]any{
			"chunks": strings.Join(p.Unparsed, ", "),
		})))
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// Outcome prints one roll as its per-die breakdown with explicit signs, in the
// same layout as dice.Outcome.String with the total highlighted.
func Outcome(w io.Writer, o dice.Outcome) error {
	r := lipgloss.NewRenderer(w)
	dieStyle := r.NewStyle().Foreground(bright)
	totalStyle := r.NewStyle().Bold(true).Foreground(accent)

	parts := make([]string, len(o.Dice))
	for i, d := range o.Dice {
		parts[i] = dieStyle.Render(fmt.Sprintf("%s%d", d.Sign, d.Value))
	}
	_, err := fmt.Fprintf(w, "%s → [%s] %+d = %s\n",
		o.Expression, strings.Join(parts, " "), o.Modifier, totalStyle.Render(strconv.Itoa(o.Total)))
	return err
}
