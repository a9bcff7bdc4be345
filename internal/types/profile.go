// Package types provides type definitions for structured data used throughout the fitplan system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Gender values accepted in a profile
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Fitness levels accepted in a profile
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Training goals accepted in a profile
const (
	GoalWeightLoss = "weight_loss"
	GoalMuscleGain = "muscle_gain"
	GoalStrength   = "strength"
	GoalEndurance  = "endurance"
)

// UserFitnessProfile is the user-submitted input to plan generation.
type UserFitnessProfile struct {
	Age                int      `json:"age" validate:"gt=0"`
	Gender             string   `json:"gender" validate:"required,oneof=male female"`
	Weight             float64  `json:"weight" validate:"gt=0"` // kg
	Height             float64  `json:"height" validate:"gt=0"` // cm
	FitnessLevel       string   `json:"fitnessLevel" validate:"required,oneof=beginner intermediate advanced"`
	Goal               string   `json:"goal" validate:"required,oneof=weight_loss muscle_gain strength endurance"`
	DaysPerWeek        int      `json:"daysPerWeek" validate:"min=1,max=7"`
	HealthIssues       []string `json:"healthIssues,omitempty"`
	PreferredExercises []string `json:"preferredExercises,omitempty"`
}

// ProfileError reports the first invalid profile field by its JSON name.
type ProfileError struct {
	Field   string
	Message string
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("invalid profile field %s: %s", e.Field, e.Message)
}

var profileValidator = newProfileValidator()

func newProfileValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks enum membership, positivity and the days-per-week range.
func (p *UserFitnessProfile) Validate() error {
	err := profileValidator.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	return &ProfileError{Field: fe.Field(), Message: describeRule(fe)}
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
