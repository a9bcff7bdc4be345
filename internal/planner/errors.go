package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/fitplan/internal/llm"
	"github.com/jonathan/fitplan/internal/parsing"
	"github.com/jonathan/fitplan/internal/types"
)

// Stage names the pipeline step a generation failed in.
type Stage string

// Pipeline stages that abort a generation
const (
	StagePrompt     Stage = "prompt"
	StageBackend    Stage = "backend"
	StageParsing    Stage = "parsing"
	StageValidation Stage = "validation"
)

// Access errors returned by GetPlan
var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrForbidden    = errors.New("plan belongs to another user")
)

// GenerationError wraps the failure of one pipeline stage.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("plan generation failed at %s stage: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Stable error kind names, used for metrics and API responses
const (
	KindInvalidProfile = "invalid_profile"
	KindMalformed      = "malformed_response"
	KindIncomplete     = "incomplete_plan"
	KindForbidden      = "forbidden"
	KindNotFound       = "not_found"
	KindCancelled      = "cancelled"
	KindInternal       = "internal"
)

// KindOf returns the stable kind name for an error from this package.
func KindOf(err error) string {
	var (
		profileErr    *types.ProfileError
		backendErr    *llm.BackendError
		malformedErr  *parsing.MalformedResponseError
		incompleteErr *parsing.IncompletePlanError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &profileErr):
		return KindInvalidProfile
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.As(err, &backendErr):
		return string(backendErr.Kind)
	case errors.As(err, &malformedErr):
		return KindMalformed
	case errors.As(err, &incompleteErr):
		return KindIncomplete
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrPlanNotFound):
		return KindNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindInternal
	}
}

// StageOf returns the failed stage of a GenerationError, or "".
func StageOf(err error) Stage {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Stage
	}
	return ""
}
