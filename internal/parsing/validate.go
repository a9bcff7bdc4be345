package parsing

import (
	"errors"
	"slices"

	"github.com/jonathan/fitplan/internal/schemas"
	"github.com/jonathan/fitplan/internal/types"
	embedded "github.com/jonathan/fitplan/schemas"
)

// emptinessRules are schema failures where the key exists but carries no content.
var emptinessRules = map[string]bool{
	"string_gte":      true,
	"array_min_items": true,
}

// ValidatePlan checks the sanitized plan JSON for the four required top-level keys.
// Nested exercise fields are optional and not inspected.
func ValidatePlan(planJSON string) error {
	err := schemas.ValidateEmbedded(embedded.TrainingPlan, planJSON)
	if err == nil {
		return nil
	}

	var verr *schemas.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	missing := map[string]bool{}
	empty := map[string]bool{}
	for _, fe := range verr.Errors {
		prop := fe.Property()
		if !slices.Contains(types.RequiredPlanKeys, prop) {
			continue
		}
		if emptinessRules[fe.Rule] {
			empty[prop] = true
		} else {
			missing[prop] = true
		}
	}

	incomplete := &IncompletePlanError{}
	for _, key := range types.RequiredPlanKeys {
		switch {
		case missing[key]:
			incomplete.Missing = append(incomplete.Missing, key)
		case empty[key]:
			incomplete.Empty = append(incomplete.Empty, key)
		}
	}
	if len(incomplete.Missing) == 0 && len(incomplete.Empty) == 0 {
		// Only nested or root-level rules failed; report the whole document.
		return &IncompletePlanError{Missing: []string{"(root)"}}
	}
	return incomplete
}
