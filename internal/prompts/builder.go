package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/fitplan/internal/types"
)

// SystemPrompt returns the system instruction sent with every plan request.
func SystemPrompt() (string, error) {
	return Lookup(KeySystem)
}

// BuildPlanPrompt renders the user prompt for a profile. Optional profile fields
// that are empty are left out. Hints are catalog exercise names the model may
// draw from, listed in the order given.
func BuildPlanPrompt(profile *types.UserFitnessProfile, hints []string) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("profile is required")
	}

	template, err := Lookup(KeyPlanRequest)
	if err != nil {
		return "", err
	}

	return Fill(template, map[string]string{
		"Profile":     describeProfile(profile),
		"Suggestions": describeHints(hints),
	})
}

func describeProfile(p *types.UserFitnessProfile) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}

	line("Age", strconv.Itoa(p.Age)+" years")
	line("Gender", p.Gender)
	line("Weight", formatNumber(p.Weight)+" kg")
	line("Height", formatNumber(p.Height)+" cm")
	line("Fitness level", p.FitnessLevel)
	line("Goal", humanize(p.Goal))
	line("Training days per week", strconv.Itoa(p.DaysPerWeek))
	if issues := nonBlank(p.HealthIssues); len(issues) > 0 {
		line("Health issues", strings.Join(issues, ", "))
	}
	if preferred := nonBlank(p.PreferredExercises); len(preferred) > 0 {
		line("Preferred exercises", strings.Join(preferred, ", "))
	}
	return b.String()
}

func describeHints(hints []string) string {
	names := nonBlank(hints)
	if len(names) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Where they fit the goal, prefer these exercises from our catalog and use their names verbatim:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	return b.String()
}

// humanize turns enum values such as "muscle_gain" into "muscle gain".
func humanize(value string) string {
	return strings.ReplaceAll(value, "_", " ")
}

// formatNumber prints 72 as "72" and 72.5 as "72.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
