// Package observability provides logging setup and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/fitplan/internal/enrich"
	"github.com/jonathan/fitplan/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfile outputs the submitted fitness profile.
func (p *Printer) PrintProfile(profile *types.UserFitnessProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Age:      %d\n", profile.Age))
	sb.WriteString(fmt.Sprintf("Gender:   %s\n", profile.Gender))
	sb.WriteString(fmt.Sprintf("Body:     %.1f kg, %.0f cm\n", profile.Weight, profile.Height))
	sb.WriteString(fmt.Sprintf("Level:    %s\n", profile.FitnessLevel))
	sb.WriteString(fmt.Sprintf("Goal:     %s\n", profile.Goal))
	sb.WriteString(fmt.Sprintf("Days:     %d per week", profile.DaysPerWeek))
	if len(profile.HealthIssues) > 0 {
		sb.WriteString(fmt.Sprintf("\nHealth:   %s", strings.Join(profile.HealthIssues, ", ")))
	}

	p.printBox("FITNESS PROFILE", sb.String())
}

// PrintPlanSummary outputs the schedule of a generated plan, day by day.
func (p *Printer) PrintPlanSummary(plan *types.TrainingPlan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d days, %d exercises\n", len(plan.WeeklySchedule), plan.ExerciseCount()))
	for _, day := range plan.WeeklySchedule {
		sb.WriteString("\n")
		if day.Focus != "" {
			sb.WriteString(fmt.Sprintf("%s (%s)\n", day.Day, day.Focus))
		} else {
			sb.WriteString(day.Day.String() + "\n")
		}
		count := min(len(day.Exercises), maxItemsToShow)
		for i := 0; i < count; i++ {
			ex := day.Exercises[i]
			marker := "•"
			if ex.Linked() {
				marker = "✓"
			}
			sb.WriteString(fmt.Sprintf("  %s %s", marker, ex.Name))
			if ex.Sets > 0 && ex.Reps != "" {
				sb.WriteString(fmt.Sprintf(" %dx%s", ex.Sets, ex.Reps))
			}
			sb.WriteString("\n")
		}
		if len(day.Exercises) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(day.Exercises)-maxItemsToShow))
		}
	}

	p.printBox("TRAINING PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEnrichment outputs how many exercises were linked to the catalog.
func (p *Printer) PrintEnrichment(report *enrich.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Lookups:   %d\n", report.Lookups))
	sb.WriteString(fmt.Sprintf("Matched:   %d\n", len(report.Matched)))
	sb.WriteString(fmt.Sprintf("Unmatched: %d", len(report.Unmatched)))
	for i, name := range report.Unmatched {
		if i == maxItemsToShow {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(report.Unmatched)-maxItemsToShow))
			break
		}
		sb.WriteString("\n  ? " + name)
	}
	if len(report.Failed) > 0 {
		sb.WriteString(fmt.Sprintf("\nFailed:    %d", len(report.Failed)))
		for _, name := range report.Failed {
			sb.WriteString("\n  ⚠ " + name)
		}
	}

	p.printBox("CATALOG MATCHING", sb.String())
}
