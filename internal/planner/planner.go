// Package planner runs the end-to-end training plan generation pipeline.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jonathan/fitplan/internal/enrich"
	"github.com/jonathan/fitplan/internal/llm"
	"github.com/jonathan/fitplan/internal/parsing"
	"github.com/jonathan/fitplan/internal/prompts"
	"github.com/jonathan/fitplan/internal/types"
)

// rawLogLimit bounds how much of a backend reply reaches debug logs.
const rawLogLimit = 512

// Store persists generated plans. Implementations must accept concurrent inserts.
type Store interface {
	SavePlan(ctx context.Context, userID string, profile *types.UserFitnessProfile, plan *types.TrainingPlan) (*types.StoredPlanRecord, error)
	ListPlansByUser(ctx context.Context, userID string) ([]types.StoredPlanRecord, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*types.StoredPlanRecord, error)
}

// Options tunes the pipeline.
type Options struct {
	// CatalogHints is the maximum number of catalog exercise names suggested in
	// the prompt. Zero disables hints.
	CatalogHints int
	Enrich       enrich.Options
	Tracer       trace.Tracer
	Meter        metric.Meter
}

// Outcome is the result of a successful generation.
type Outcome struct {
	Plan       *types.TrainingPlan `json:"plan"`
	PlanID     uuid.UUID           `json:"plan_id"`
	Saved      bool                `json:"saved"`
	CreatedAt  time.Time           `json:"created_at,omitempty"`
	Enrichment *enrich.Report      `json:"enrichment"`
}

// Service composes prompt building, completion, parsing, enrichment and storage.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	client   llm.Client
	store    Store
	catalog  enrich.Catalog
	enricher *enrich.Enricher
	opts     Options
	logger   *zap.Logger
	tracer   trace.Tracer
	metrics  *instruments
}

// New creates a Service. store and catalog may be nil: without a store plans
// are returned unsaved, without a catalog they are returned unenriched.
func New(client llm.Client, store Store, catalog enrich.Catalog, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Tracer == nil {
		opts.Tracer = defaultTracer()
	}
	if opts.Meter == nil {
		opts.Meter = defaultMeter()
	}

	s := &Service{
		client:  client,
		store:   store,
		catalog: catalog,
		opts:    opts,
		logger:  logger,
		tracer:  opts.Tracer,
		metrics: newInstruments(opts.Meter),
	}
	if catalog != nil {
		s.enricher = enrich.New(catalog, opts.Enrich, logger.Named("enrich"))
	}
	return s
}

// completeFunc is the backend call used by one generation.
type completeFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Generate builds a plan for the profile and saves it for userID. Backend,
// parsing and validation failures abort with a *GenerationError. Enrichment and
// persistence failures are logged; the plan is still returned with Saved=false.
func (s *Service) Generate(ctx context.Context, userID string, profile *types.UserFitnessProfile) (*Outcome, error) {
	return s.run(ctx, userID, profile, false, s.client.Complete)
}

// GenerateStream is Generate with the backend reply delivered to onChunk as it
// arrives. Chunks are raw model text; only the returned Outcome is validated.
func (s *Service) GenerateStream(ctx context.Context, userID string, profile *types.UserFitnessProfile, onChunk func(string) error) (*Outcome, error) {
	return s.run(ctx, userID, profile, true, func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return s.client.CompleteStream(ctx, systemPrompt, userPrompt, onChunk)
	})
}

func (s *Service) run(ctx context.Context, userID string, profile *types.UserFitnessProfile, streaming bool, complete completeFunc) (*Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "planner.Generate", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Bool("streaming", streaming),
	))
	defer span.End()

	start := time.Now()
	log := s.logger.With(zap.String("user_id", userID))

	outcome, err := s.generate(ctx, log, userID, profile, complete)
	s.metrics.duration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		kind := KindOf(err)
		s.metrics.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("stage", string(StageOf(err))),
		))
		span.SetStatus(codes.Error, kind)
		span.RecordError(err)
		log.Warn("plan generation failed",
			zap.String("kind", kind),
			zap.String("stage", string(StageOf(err))),
			zap.Error(err))
		return nil, err
	}

	s.metrics.generations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("saved", outcome.Saved)))
	span.SetAttributes(
		attribute.Bool("plan.saved", outcome.Saved),
		attribute.Int("plan.exercises", outcome.Plan.ExerciseCount()),
	)
	log.Info("plan generated",
		zap.Stringer("plan_id", outcome.PlanID),
		zap.Bool("saved", outcome.Saved),
		zap.Int("days", len(outcome.Plan.WeeklySchedule)),
		zap.Duration("elapsed", time.Since(start)))
	return outcome, nil
}

func (s *Service) generate(ctx context.Context, log *zap.Logger, userID string, profile *types.UserFitnessProfile, complete completeFunc) (*Outcome, error) {
	if profile == nil {
		return nil, &GenerationError{Stage: StagePrompt, Err: &types.ProfileError{Field: "profile", Message: "is required"}}
	}
	if err := profile.Validate(); err != nil {
		return nil, &GenerationError{Stage: StagePrompt, Err: err}
	}

	systemPrompt, err := prompts.SystemPrompt()
	if err != nil {
		return nil, &GenerationError{Stage: StagePrompt, Err: err}
	}
	userPrompt, err := prompts.BuildPlanPrompt(profile, s.catalogHints(ctx, log, profile))
	if err != nil {
		return nil, &GenerationError{Stage: StagePrompt, Err: err}
	}

	stageStart := time.Now()
	raw, err := complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, &GenerationError{Stage: StageBackend, Err: err}
	}
	log.Debug("backend replied",
		zap.Duration("elapsed", time.Since(stageStart)),
		zap.Int("bytes", len(raw)))

	planJSON, err := parsing.Sanitize(raw)
	if err != nil {
		logMalformed(log, err)
		return nil, &GenerationError{Stage: StageParsing, Err: err}
	}
	if err := parsing.ValidatePlan(planJSON); err != nil {
		return nil, &GenerationError{Stage: StageValidation, Err: err}
	}
	plan, err := parsing.DecodePlan(planJSON)
	if err != nil {
		logMalformed(log, err)
		return nil, &GenerationError{Stage: StageParsing, Err: err}
	}

	outcome := &Outcome{Plan: plan, Enrichment: &enrich.Report{}}
	if s.enricher != nil {
		outcome.Enrichment = s.enricher.Enrich(ctx, plan)
		if n := len(outcome.Enrichment.Failed); n > 0 {
			s.metrics.lookupFailures.Add(ctx, int64(n))
		}
	}

	// A cancelled request must not leave a record behind.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation cancelled before save: %w", err)
	}

	if s.store == nil {
		return outcome, nil
	}
	record, err := s.store.SavePlan(ctx, userID, profile, plan)
	if err != nil {
		s.metrics.persistenceFailures.Add(ctx, 1)
		log.Error("failed to persist generated plan", zap.Error(err))
		return outcome, nil
	}
	outcome.PlanID = record.ID
	outcome.Saved = true
	outcome.CreatedAt = record.CreatedAt
	return outcome, nil
}

// catalogHints looks up the user's preferred exercises and returns up to
// CatalogHints distinct catalog names. Lookup failures only cost the hint.
func (s *Service) catalogHints(ctx context.Context, log *zap.Logger, profile *types.UserFitnessProfile) []string {
	if s.catalog == nil || s.opts.CatalogHints <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var hints []string
	for _, preferred := range profile.PreferredExercises {
		if len(hints) >= s.opts.CatalogHints {
			break
		}
		query := strings.TrimSpace(preferred)
		if query == "" {
			continue
		}
		page, err := s.catalog.SearchExercises(ctx, query, 1, 1)
		if err != nil {
			log.Warn("catalog hint lookup failed", zap.String("exercise", query), zap.Error(err))
			continue
		}
		if page == nil || len(page.Items) == 0 {
			continue
		}
		name := page.Items[0].Name
		if !seen[name] {
			seen[name] = true
			hints = append(hints, name)
		}
	}
	return hints
}

// ListPlans returns the user's saved plans, newest first.
func (s *Service) ListPlans(ctx context.Context, userID string) ([]types.StoredPlanRecord, error) {
	if s.store == nil {
		return nil, errors.New("plan storage is not configured")
	}
	records, err := s.store.ListPlansByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return records, nil
}

// GetPlan returns a saved plan if requesterID owns it. Unknown ids yield
// ErrPlanNotFound and plans owned by someone else yield ErrForbidden.
func (s *Service) GetPlan(ctx context.Context, requesterID string, planID uuid.UUID) (*types.StoredPlanRecord, error) {
	if s.store == nil {
		return nil, errors.New("plan storage is not configured")
	}
	record, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if record == nil {
		return nil, ErrPlanNotFound
	}
	if !record.OwnedBy(requesterID) {
		s.logger.Warn("plan access denied",
			zap.String("user_id", requesterID),
			zap.Stringer("plan_id", planID))
		return nil, ErrForbidden
	}
	return record, nil
}

func logMalformed(log *zap.Logger, err error) {
	var malformed *parsing.MalformedResponseError
	if errors.As(err, &malformed) {
		log.Debug("unusable reply", zap.String("raw", malformed.Snippet(rawLogLimit)))
	}
}
