package types

import "encoding/json"

// Top-level keys every generated plan must carry
const (
	PlanKeyOverview       = "overview"
	PlanKeyWeeklySchedule = "weeklySchedule"
	PlanKeyNutrition      = "nutrition"
	PlanKeyTips           = "tips"
)

// RequiredPlanKeys lists the top-level plan keys in canonical order.
var RequiredPlanKeys = []string{PlanKeyOverview, PlanKeyWeeklySchedule, PlanKeyNutrition, PlanKeyTips}

// TrainingPlan is the structured weekly workout and nutrition document.
type TrainingPlan struct {
	Overview       string        `json:"overview"`
	WeeklySchedule []DaySchedule `json:"weeklySchedule"`
	Nutrition      Nutrition     `json:"nutrition"`
	Tips           TextList      `json:"tips"`
}

// DaySchedule is one training day of the weekly schedule. Keys the model
// added beyond these are kept in Extra and written back unchanged.
type DaySchedule struct {
	Day       Text
	Focus     Text
	Exercises []ExerciseEntry
	Extra     map[string]json.RawMessage
}

// ExerciseEntry is a single prescribed exercise. The catalog fields stay empty
// until enrichment finds a catalog match for Name.
type ExerciseEntry struct {
	Name string
	// Sets holds a positive whole set count; SetsText keeps any other value
	// the model wrote, such as "3-4".
	Sets      Count
	SetsText  Text
	Reps      Text
	Rest      Text
	Duration  Text
	Intensity Text
	Notes     Text

	CatalogID    string
	CatalogDBID  string
	BodyPart     string
	Equipment    string
	TargetMuscle string
	MediaURL     string

	Extra map[string]json.RawMessage
}

// Linked reports whether the entry carries catalog metadata.
func (e *ExerciseEntry) Linked() bool {
	return e.CatalogDBID != "" || e.CatalogID != ""
}

// Link copies catalog metadata onto the entry. Authored fields are untouched.
func (e *ExerciseEntry) Link(c *CatalogExercise) {
	e.CatalogID = c.ID
	e.CatalogDBID = c.DBID
	e.BodyPart = c.BodyPart
	e.Equipment = c.Equipment
	e.TargetMuscle = c.Target
	e.MediaURL = c.GifURL
}

// Nutrition is the plan's calorie, macro and hydration guidance.
type Nutrition struct {
	DailyCalories   Text
	Macronutrients  Macronutrients
	Hydration       Text
	Recommendations TextList
	Extra           map[string]json.RawMessage
}

// Macronutrients holds daily macro targets as free text (e.g. "150g").
// Note carries macros the model wrote as one sentence instead of an object.
type Macronutrients struct {
	Protein       Text
	Carbohydrates Text
	Fats          Text
	Note          Text
	Extra         map[string]json.RawMessage
}

// ExerciseCount returns the number of exercise entries across all days.
func (p *TrainingPlan) ExerciseCount() int {
	n := 0
	for _, day := range p.WeeklySchedule {
		n += len(day.Exercises)
	}
	return n
}
