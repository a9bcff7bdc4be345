package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/fitplan/internal/llm"
	"github.com/jonathan/fitplan/internal/planner"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "id", Message: "bad"}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("decode: %w", &ErrValidation{Field: "body"}), http.StatusBadRequest},
		{"forbidden", planner.ErrForbidden, http.StatusForbidden},
		{"not found", fmt.Errorf("lookup: %w", planner.ErrPlanNotFound), http.StatusNotFound},
		{"timeout", &llm.BackendError{Kind: llm.KindTimeout}, http.StatusGatewayTimeout},
		{"cancelled", context.Canceled, 499},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrValidation_Error(t *testing.T) {
	err := &ErrValidation{Field: "page", Message: "must be a positive integer"}
	assert.Equal(t, "validation error: page - must be a positive integer", err.Error())
}
