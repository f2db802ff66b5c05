// Package report renders emission results as a French text summary and a
// PNG bar chart.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/carboncalc/internal/emissions"
	"github.com/rshade/carboncalc/internal/greenops"
)

// Report text.
const (
	Header         = "--- Résultats des émissions de CO2 ---"
	BelowMessage   = "Bravo ! Vous êtes en dessous de la moyenne, continuez ainsi."
	AboveMessage   = "Attention ! Vous dépassez la moyenne, vous devriez réduire votre consommation."
	categoryFormat = "%s : %.2f kg CO2\n"
	entryFormat    = "  %s : %.2f kg CO2\n"
	totalFormat    = "Total des émissions de CO2 : %.2f kg CO2\n"
)

// Options controls text rendering.
type Options struct {
	// BaselineKg is the average footprint the total is compared against.
	BaselineKg float64
	// Styled colours the verdict. Only set it when writing to a terminal.
	Styled bool
	// Equivalencies appends the greenops equivalency line.
	Equivalencies bool
}

// verdictStyles returns the lipgloss styles for the below and above verdicts.
func verdictStyles() (lipgloss.Style, lipgloss.Style) {
	below := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	above := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	return below, above
}

// VerdictMessage returns the message for v.
func VerdictMessage(v emissions.Verdict) string {
	if v == emissions.VerdictBelow {
		return BelowMessage
	}
	return AboveMessage
}

// RenderText writes the per-category breakdown, grand total, baseline verdict
// and the optional equivalency line to w.
func RenderText(w io.Writer, result emissions.Result, opts Options) error {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(Header)
	b.WriteString("\n")
	for _, sub := range result.Subtotals() {
		fmt.Fprintf(&b, categoryFormat, sub.Category, sub.KgCO2)
		for _, e := range sub.Entries {
			fmt.Fprintf(&b, entryFormat, e.Subcategory, e.KgCO2)
		}
	}

	total := result.Total()
	b.WriteString("\n")
	fmt.Fprintf(&b, totalFormat, total)

	verdict := emissions.Evaluate(total, opts.BaselineKg)
	msg := VerdictMessage(verdict)
	if opts.Styled {
		below, above := verdictStyles()
		if verdict == emissions.VerdictBelow {
			msg = below.Render(msg)
		} else {
			msg = above.Render(msg)
		}
	}
	b.WriteString(msg)
	b.WriteString("\n")

	if opts.Equivalencies {
		// Errors only occur for negative or non-finite totals, which get no line.
		if eq, err := greenops.Calculate(total); err == nil && !eq.IsEmpty {
			b.WriteString(eq.DisplayText)
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
