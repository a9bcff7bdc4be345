package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/fitplan/internal/enrich"
	"github.com/jonathan/fitplan/internal/planner"
	"github.com/jonathan/fitplan/internal/rendering"
	"github.com/jonathan/fitplan/internal/server/middleware"
	"github.com/jonathan/fitplan/internal/types"
)

// maxProfileBytes bounds the profile request body.
const maxProfileBytes = 64 << 10

// GenerateResponse is the body of a successful generation.
type GenerateResponse struct {
	PlanID     *uuid.UUID          `json:"plan_id"`
	Saved      bool                `json:"saved"`
	CreatedAt  *time.Time          `json:"created_at,omitempty"`
	Plan       *types.TrainingPlan `json:"plan"`
	Enrichment *enrich.Report      `json:"enrichment"`
}

// PlanSummary is one entry of GET /plans.
type PlanSummary struct {
	ID        uuid.UUID                `json:"id"`
	CreatedAt time.Time                `json:"created_at"`
	Profile   types.UserFitnessProfile `json:"profile"`
	Plan      types.TrainingPlan       `json:"plan"`
}

// PlanListResponse is the body of GET /plans.
type PlanListResponse struct {
	Plans []PlanSummary `json:"plans"`
	Count int           `json:"count"`
}

func newGenerateResponse(outcome *planner.Outcome) GenerateResponse {
	resp := GenerateResponse{
		Saved:      outcome.Saved,
		Plan:       outcome.Plan,
		Enrichment: outcome.Enrichment,
	}
	if outcome.Saved {
		id := outcome.PlanID
		created := outcome.CreatedAt
		resp.PlanID = &id
		resp.CreatedAt = &created
	}
	return resp
}

// decodeProfile reads the request body as a profile. Unknown fields are rejected.
func decodeProfile(w http.ResponseWriter, r *http.Request) (*types.UserFitnessProfile, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxProfileBytes))
	dec.DisallowUnknownFields()

	var profile types.UserFitnessProfile
	if err := dec.Decode(&profile); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, &ErrValidation{Field: "body", Message: "request body too large"}
		case errors.Is(err, io.EOF):
			return nil, &ErrValidation{Field: "body", Message: "request body is empty"}
		default:
			return nil, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
		}
	}
	if dec.More() {
		return nil, &ErrValidation{Field: "body", Message: "unexpected data after profile object"}
	}
	return &profile, nil
}

// requireUser returns the authenticated user id or writes 401.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserID(r)
	if err != nil {
		s.jsonResponse(w, http.StatusUnauthorized, ErrorBody{Error: "authentication required", Kind: "unauthenticated"})
		return "", false
	}
	return userID, true
}

// handleGeneratePlan runs the pipeline and returns the plan.
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	profile, err := decodeProfile(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	outcome, err := s.plans.Generate(r.Context(), userID, profile)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	status := http.StatusCreated
	if !outcome.Saved {
		status = http.StatusOK
	}
	s.jsonResponse(w, status, newGenerateResponse(outcome))
}

// handleGeneratePlanStream streams backend text as chunk events, then a
// complete event with the validated plan, or an error event.
func (s *Server) handleGeneratePlanStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	profile, err := decodeProfile(w, r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := profile.Validate(); err != nil {
		s.errorResponse(w, r, &planner.GenerationError{Stage: planner.StagePrompt, Err: err})
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	outcome, err := s.plans.GenerateStream(r.Context(), userID, profile, sse.WriteChunk)
	if err != nil {
		s.logger.Info("streamed generation failed",
			zap.String("user_id", userID),
			zap.String("kind", planner.KindOf(err)))
		sse.WriteError(errorBody(err))
		return
	}
	sse.WriteComplete(newGenerateResponse(outcome))
}

// handleListPlans returns the caller's plans, newest first.
func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	records, err := s.plans.ListPlans(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	resp := PlanListResponse{Plans: make([]PlanSummary, 0, len(records)), Count: len(records)}
	for _, rec := range records {
		resp.Plans = append(resp.Plans, PlanSummary{
			ID:        rec.ID,
			CreatedAt: rec.CreatedAt,
			Profile:   rec.Profile,
			Plan:      rec.Plan,
		})
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// loadPlan resolves {id} for the caller, writing the error response on failure.
func (s *Server) loadPlan(w http.ResponseWriter, r *http.Request) (*types.StoredPlanRecord, bool) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return nil, false
	}

	planID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "id", Message: "invalid plan ID format"})
		return nil, false
	}

	record, err := s.plans.GetPlan(r.Context(), userID, planID)
	if err != nil {
		s.errorResponse(w, r, err)
		return nil, false
	}
	return record, true
}

// handleGetPlan returns one stored plan owned by the caller.
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	record, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, record)
}

// handleGetPlanMarkdown returns a stored plan rendered as Markdown.
func (s *Server) handleGetPlanMarkdown(w http.ResponseWriter, r *http.Request) {
	record, ok := s.loadPlan(w, r)
	if !ok {
		return
	}

	doc, err := rendering.RenderRecord(record)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="plan-`+record.ID.String()+`.md"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, doc); err != nil {
		s.logger.Warn("failed to write markdown response", zap.Error(err))
	}
}
