// Package report renders harness results for the terminal.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/notebench/pkg/harness"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	timeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#25b067"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#25b067")).
			Padding(0, 1)
)

// Result renders one successful run.
func Result(name string, r harness.Result) string {
	lines := []string{
		titleStyle.Render(name) + " " + dimStyle.Render(r.Target),
		timeStyle.Render(fmt.Sprintf("%d ms", r.ElapsedMS)),
		"✅ " + r.Label,
		dimStyle.Render(fmt.Sprintf("%s workload, %d batches", r.Workload, r.Batches)),
	}
	if r.NonOK > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d non-2xx responses", r.NonOK)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// Error renders a failed run with the operator hint when one is known.
func Error(name, target string, err error) string {
	lines := []string{
		titleStyle.Render(name) + " " + dimStyle.Render(target),
		errStyle.Render("❌ " + failure(err)),
	}
	var terr *harness.TransportError
	if errors.As(err, &terr) {
		lines = append(lines, dimStyle.Render(terr.Hint()))
	} else {
		lines = append(lines, dimStyle.Render(err.Error()))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func failure(err error) string {
	var terr *harness.TransportError
	if errors.As(err, &terr) {
		return "Server not running"
	}
	return "Run failed"
}

// Outcome renders either side of a comparison.
func Outcome(name string, o harness.Outcome) string {
	if o.Err != nil {
		return Error(name, o.Target, o.Err)
	}
	return Result(name, *o.Result)
}

// Verdict returns the banner text for a decided comparison, or "" when undecided.
func Verdict(c harness.Comparison, firstName, secondName string) string {
	if !c.Decided {
		return ""
	}
	switch c.Verdict {
	case harness.VerdictFirst:
		return fmt.Sprintf("🏆 %s wins! %dms faster", firstName, c.MarginMS)
	case harness.VerdictSecond:
		return fmt.Sprintf("🏆 %s wins! %dms faster", secondName, c.MarginMS)
	default:
		return fmt.Sprintf("🤝 It's a tie! Both took %dms", c.First.Result.ElapsedMS)
	}
}

// Comparison renders both outcomes side by side and the verdict banner below.
func Comparison(c harness.Comparison, firstName, secondName string) string {
	sides := lipgloss.JoinHorizontal(lipgloss.Top,
		Outcome(firstName, c.First),
		" ",
		Outcome(secondName, c.Second),
	)
	verdict := Verdict(c, firstName, secondName)
	if verdict == "" {
		return sides
	}
	return lipgloss.JoinVertical(lipgloss.Left, sides, bannerStyle.Render(verdict))
}
