package parsing

import (
	"encoding/json"

	"github.com/jonathan/fitplan/internal/types"
)

// DecodePlan decodes validated plan JSON into a TrainingPlan. Scalar exercise
// fields are decoded leniently; a structurally different document (for example a
// day given as a bare string) is reported as a MalformedResponseError.
func DecodePlan(planJSON string) (*types.TrainingPlan, error) {
	var plan types.TrainingPlan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return nil, &MalformedResponseError{
			Raw:     planJSON,
			Message: "plan does not match the expected structure",
			Cause:   err,
		}
	}

	if plan.Tips == nil {
		plan.Tips = []string{}
	}
	for i := range plan.WeeklySchedule {
		if plan.WeeklySchedule[i].Exercises == nil {
			plan.WeeklySchedule[i].Exercises = []types.ExerciseEntry{}
		}
	}
	return &plan, nil
}
