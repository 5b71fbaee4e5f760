package helpers

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/doeshing/shcmd/internal/domain"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)

func stateColor(state domain.ExecutionState, success bool) *color.Color {
	switch {
	case success:
		return okColor
	case state == domain.StateCancelled:
		return warnColor
	default:
		return failColor
	}
}

// RenderOutcome prints a one-line summary of an execution attempt.
func RenderOutcome(out io.Writer, outcome domain.ExecutionOutcome) {
	name := outcome.Alias
	if name == "" {
		name = outcome.CommandID
	}
	status := string(outcome.State)
	if outcome.ExitCode != nil {
		status = fmt.Sprintf("%s, exit %d", status, *outcome.ExitCode)
	}
	stateColor(outcome.State, outcome.Succeeded).Fprintf(out, "%s", name)
	fmt.Fprintf(out, " (%s) in %s\n", status, outcome.Duration.Round(time.Millisecond))
}

// RenderParsingResults prints one block per parsed field, in name order.
func RenderParsingResults(out io.Writer, results map[string]domain.ParsingResult) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := results[name]
		if res.Succeeded {
			okColor.Fprintf(out, "%s", name)
			fmt.Fprintf(out, " (%s)\n", pluralVariables(res.CountParsedVariables))
			fmt.Fprintf(out, "  %s\n", indent(res.Content()))
			continue
		}
		failColor.Fprintf(out, "%s\n", name)
		dimColor.Fprintf(out, "  %s\n", indent(res.OriginalContent))
		for _, msg := range res.ErrorMessages {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
	}
}

func pluralVariables(n int) string {
	if n == 1 {
		return "1 variable"
	}
	return fmt.Sprintf("%d variables", n)
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}

// RenderHealthReport displays the doctor report
func RenderHealthReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		c := okColor
		switch check.Status {
		case domain.HealthWarn:
			c = warnColor
		case domain.HealthError:
			c = failColor
		}
		c.Fprintf(out, "[%s]", strings.ToUpper(string(check.Status)))
		fmt.Fprintf(out, " %s - %s\n", check.Name, check.Details)
	}
	fmt.Fprintf(out, "%d ok, %d warning(s), %d error(s)\n",
		report.Count(domain.HealthOK), report.Count(domain.HealthWarn), report.Count(domain.HealthError))
}

// RenderHistory prints records with timestamps relative to now.
func RenderHistory(out io.Writer, records []domain.HistoryRecord, now time.Time) {
	for _, rec := range records {
		name := rec.Alias
		if name == "" {
			name = rec.CommandID
		}
		code := "-"
		if rec.ExitCode != nil {
			code = fmt.Sprint(*rec.ExitCode)
		}
		dimColor.Fprintf(out, "%-16s", humanize.RelTime(rec.Timestamp, now, "ago", "from now"))
		fmt.Fprint(out, " | ")
		stateColor(rec.State, rec.Success).Fprintf(out, "%-14s", rec.State)
		fmt.Fprintf(out, " | %3s | %-20s | %s\n", code, name, rec.Command)
	}
}

// RenderHistoryStatistics displays formatted history statistics
func RenderHistoryStatistics(out io.Writer, stats HistoryStatistics) {
	fmt.Fprintf(out, "Attempts: %s\nRan: %s\nSuccess rate: %.1f%%\nAverage run time: %s\n",
		humanize.Comma(int64(stats.Attempts)),
		humanize.Comma(int64(stats.Ran)),
		CalculateSuccessRate(stats.Succeeded, stats.Ran),
		stats.AverageRunTime().Round(time.Millisecond))

	fmt.Fprintln(out, "Top commands:")
	for _, stat := range CalculateTopCommands(stats.Frequency, 5) {
		fmt.Fprintf(out, "  %s (%d)\n", stat.Command, stat.Count)
	}

	fmt.Fprintln(out, "States:")
	states := make([]string, 0, len(stats.ByState))
	for state := range stats.ByState {
		states = append(states, string(state))
	}
	sort.Strings(states)
	for _, state := range states {
		fmt.Fprintf(out, "  %s: %d\n", state, stats.ByState[domain.ExecutionState(state)])
	}
}
