// Package report renders scenarios, outcomes, and civic profiles as terminal text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/talgya/civicsim/internal/civic"
	"github.com/talgya/civicsim/internal/scenario"
	"github.com/talgya/civicsim/internal/session"
)

const barWidth = 20

var (
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.FgHiBlack).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// Scenario writes a scenario header, its narrative, and the numbered choices.
func Scenario(w io.Writer, step, total int, sc scenario.Scenario) {
	fmt.Fprintf(w, "\n%s\n", faint(fmt.Sprintf("Scenario %d of %d", step, total)))
	fmt.Fprintf(w, "%s\n\n", bold(sc.Title))
	fmt.Fprintf(w, "%s\n", sc.Description)
	if sc.Context != "" {
		fmt.Fprintf(w, "%s\n", faint(sc.Context))
	}
	fmt.Fprintln(w)
	for i, ch := range sc.Choices {
		fmt.Fprintf(w, "  %d. %s\n", i+1, ch.Text)
	}
}

// Outcome writes the consequence of a decision, the effective deltas, and
// any milestone banner.
func Outcome(w io.Writer, out session.Outcome) {
	fmt.Fprintf(w, "\n%s %s\n", cyan("→"), out.Record.Consequence)
	if len(out.Applied) > 0 {
		parts := make([]string, 0, len(out.Applied))
		for _, d := range out.Applied {
			parts = append(parts, Delta(d))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, "  "))
	}

	if title, msg := out.Milestone.Banner(out.Total); title != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", bold(yellow("★ "+title)), msg)
	}
}

// Delta formats a single field change, green when positive and red when negative.
func Delta(d civic.FieldDelta) string {
	s := fmt.Sprintf("%s %+d", d.Field.Label(), d.Delta)
	if d.Delta > 0 {
		return green(s)
	}
	return red(s)
}

// Bar draws a fixed-width bar for a value in [0,100], coloured by level.
func Bar(v int) string {
	filled := v * barWidth / civic.MaxValue
	filled = min(barWidth, max(0, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	switch civic.LevelOf(v) {
	case civic.LevelHigh:
		return green(bar)
	case civic.LevelModerate:
		return yellow(bar)
	default:
		return red(bar)
	}
}

// Metrics writes one labelled bar per field in canonical order.
func Metrics(w io.Writer, m civic.Metrics, ws civic.WorldState) {
	for _, f := range civic.Fields() {
		v := civic.Value(m, ws, f)
		fmt.Fprintf(w, "  %-16s %s %3d\n", f.Label(), Bar(v), v)
	}
}

// Profile writes the final civic profile with metrics, feedback, and the
// journey timeline.
func Profile(w io.Writer, p civic.CivicProfile, m civic.Metrics, ws civic.WorldState, history []civic.ChoiceRecord) {
	fmt.Fprintf(w, "\n%s\n", faint("Simulation Complete"))
	fmt.Fprintf(w, "%s\n", bold(p.Title))
	if n := len(history); n > 0 {
		fmt.Fprintf(w, "%s\n", faint(fmt.Sprintf("Based on %s %s across real-world scenarios",
			humanize.Comma(int64(n)), plural(n, "decision", "decisions"))))
	}
	fmt.Fprintf(w, "\n%s\n\n", p.Description)

	fmt.Fprintf(w, "%s\n", bold("Behavioral Footprint"))
	Metrics(w, m, ws)

	section(w, green("The Good"), p.Strengths)
	section(w, yellow("The Bad"), p.Improvements)
	section(w, red("The Ugly"), p.CriticalInsights)

	if len(history) > 0 {
		fmt.Fprintf(w, "\n%s\n", bold("Your Journey"))
		for i, rec := range history {
			fmt.Fprintf(w, "  %-5s %s — %s\n", humanize.Ordinal(i+1), rec.ScenarioTitle, rec.ChoiceText)
		}
	}
}

// Catalog writes a one-line summary per scenario.
func Catalog(w io.Writer, c *scenario.Catalog) {
	for i, sc := range c.Scenarios() {
		fmt.Fprintf(w, "%-5s %-20s %s %s\n", humanize.Ordinal(i+1), sc.ID, sc.Title,
			faint(fmt.Sprintf("(%d choices)", len(sc.Choices))))
	}
}

func section(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "\n%s\n", bold(title))
	for _, item := range items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
