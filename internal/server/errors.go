// Package server provides the HTTP API for plan generation and the exercise catalog.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/fitplan/internal/llm"
	"github.com/jonathan/fitplan/internal/parsing"
	"github.com/jonathan/fitplan/internal/planner"
	"github.com/jonathan/fitplan/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Kind names for failures that happen before the planner is involved
const (
	kindBadRequest  = "bad_request"
	kindRateLimited = "rate_limit_exceeded"
	kindUnavailable = "unavailable"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error  string   `json:"error"`
	Kind   string   `json:"kind"`
	Stage  string   `json:"stage,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	switch planner.KindOf(err) {
	case planner.KindInvalidProfile:
		return http.StatusBadRequest
	case string(llm.KindUnavailable), string(llm.KindEmptyResponse),
		planner.KindMalformed, planner.KindIncomplete:
		return http.StatusBadGateway
	case string(llm.KindTimeout):
		return http.StatusGatewayTimeout
	case planner.KindForbidden:
		return http.StatusForbidden
	case planner.KindNotFound:
		return http.StatusNotFound
	case planner.KindCancelled:
		// nginx's "client closed request"; the client is usually gone.
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the client-facing description of err. Model output and
// storage errors are never echoed.
func errorBody(err error) ErrorBody {
	var (
		validationErr *ErrValidation
		profileErr    *types.ProfileError
		incompleteErr *parsing.IncompletePlanError
	)
	if errors.As(err, &validationErr) {
		return ErrorBody{Error: validationErr.Error(), Kind: kindBadRequest, Fields: []string{validationErr.Field}}
	}

	kind := planner.KindOf(err)
	body := ErrorBody{Kind: kind, Stage: string(planner.StageOf(err))}
	switch {
	case errors.As(err, &profileErr):
		body.Error = profileErr.Error()
		body.Fields = []string{profileErr.Field}
	case errors.As(err, &incompleteErr):
		body.Error = incompleteErr.Error()
		body.Fields = incompleteErr.Fields()
	case kind == planner.KindMalformed:
		body.Error = "the model response could not be read as a training plan"
	case kind == planner.KindCancelled:
		body.Error = "request cancelled"
	case llm.IsKind(err, llm.KindUnavailable):
		body.Error = "the completion backend is unavailable"
	case llm.IsKind(err, llm.KindTimeout):
		body.Error = "the completion backend timed out"
	case llm.IsKind(err, llm.KindEmptyResponse):
		body.Error = "the completion backend returned an empty response"
	case kind == planner.KindForbidden:
		body.Error = "plan belongs to another user"
	case kind == planner.KindNotFound:
		body.Error = "plan not found"
	default:
		body.Error = "internal server error"
	}
	return body
}
