package rendering

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/jonathan/fitplan/internal/types"
)

//go:embed templates/plan.md.tmpl
var templateFS embed.FS

// DefaultTitle heads documents rendered without an explicit title.
const DefaultTitle = "Personalized Training Plan"

// TemplateData is the data passed to the Markdown template
type TemplateData struct {
	Title     string
	CreatedAt string
	Plan      *types.TrainingPlan
	Days      []DaySection
	Nutrition []string
}

// DaySection is one schedule day with pre-formatted exercise detail lines
type DaySection struct {
	Day       string
	Focus     string
	Exercises []ExerciseSection
}

// ExerciseSection is an exercise heading and its escaped detail lines
type ExerciseSection struct {
	Name    string
	Details []string
}

var (
	planTemplate     *template.Template
	planTemplateErr  error
	planTemplateOnce sync.Once
)

func loadTemplate() (*template.Template, error) {
	planTemplateOnce.Do(func() {
		content, err := templateFS.ReadFile("templates/plan.md.tmpl")
		if err != nil {
			planTemplateErr = &Error{Op: "load template", Err: err}
			return
		}
		planTemplate, err = template.New("plan").Funcs(template.FuncMap{
			"escape": EscapeMarkdown,
		}).Parse(string(content))
		if err != nil {
			planTemplateErr = &Error{Op: "parse template", Err: err}
		}
	})
	return planTemplate, planTemplateErr
}

// RenderPlan renders a training plan as a Markdown document.
func RenderPlan(plan *types.TrainingPlan, title string) (string, error) {
	return render(plan, title, time.Time{})
}

// RenderRecord renders a stored plan, stamping its creation time under the title.
func RenderRecord(record *types.StoredPlanRecord) (string, error) {
	if record == nil {
		return "", ErrNilPlan
	}
	return render(&record.Plan, "", record.CreatedAt)
}

func render(plan *types.TrainingPlan, title string, createdAt time.Time) (string, error) {
	if plan == nil {
		return "", ErrNilPlan
	}
	tmpl, err := loadTemplate()
	if err != nil {
		return "", err
	}

	data := buildTemplateData(plan, title, createdAt)

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", &Error{Op: "execute template", Err: err}
	}
	return result.String(), nil
}

func buildTemplateData(plan *types.TrainingPlan, title string, createdAt time.Time) *TemplateData {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	data := &TemplateData{
		Title: EscapeMarkdown(title),
		Plan:  plan,
	}
	if !createdAt.IsZero() {
		data.CreatedAt = createdAt.UTC().Format("2006-01-02 15:04 MST")
	}

	for _, day := range plan.WeeklySchedule {
		section := DaySection{Day: day.Day.String(), Focus: day.Focus.String()}
		for _, ex := range day.Exercises {
			section.Exercises = append(section.Exercises, ExerciseSection{
				Name:    ex.Name,
				Details: exerciseDetails(ex),
			})
		}
		data.Days = append(data.Days, section)
	}

	data.Nutrition = nutritionLines(plan.Nutrition)
	return data
}

func exerciseDetails(ex types.ExerciseEntry) []string {
	var lines []string
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", label, EscapeMarkdown(value)))
		}
	}

	if ex.Sets > 0 {
		lines = append(lines, fmt.Sprintf("Sets: %d", ex.Sets))
	} else {
		add("Sets", ex.SetsText.String())
	}
	add("Reps", ex.Reps.String())
	add("Rest", ex.Rest.String())
	add("Duration", ex.Duration.String())
	add("Intensity", ex.Intensity.String())
	add("Notes", ex.Notes.String())

	if ex.Linked() {
		var parts []string
		for _, v := range []string{ex.TargetMuscle, ex.BodyPart, ex.Equipment} {
			if v != "" {
				parts = append(parts, EscapeMarkdown(v))
			}
		}
		if len(parts) > 0 {
			lines = append(lines, "Catalog: "+strings.Join(parts, ", "))
		}
		if ex.MediaURL != "" {
			lines = append(lines, fmt.Sprintf("[Demonstration](<%s>)", ex.MediaURL))
		}
	}
	return lines
}

func nutritionLines(n types.Nutrition) []string {
	var lines []string
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", label, EscapeMarkdown(value)))
		}
	}
	add("Daily calories", n.DailyCalories.String())
	add("Protein", n.Macronutrients.Protein.String())
	add("Carbohydrates", n.Macronutrients.Carbohydrates.String())
	add("Fats", n.Macronutrients.Fats.String())
	add("Macronutrients", n.Macronutrients.Note.String())
	add("Hydration", n.Hydration.String())
	return lines
}
