// Package enrich links the exercises of a generated plan to catalog records.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/fitplan/internal/types"
)

// Defaults for catalog matching
const (
	DefaultLimit       = 5
	DefaultConcurrency = 4
)

// Catalog is the read-only exercise search the enricher consults.
// Implementations must be safe for concurrent use.
type Catalog interface {
	SearchExercises(ctx context.Context, query string, page, limit int) (*types.CatalogPage, error)
}

// MatchPolicy selects the canonical exercise from a ranked result list.
type MatchPolicy string

const (
	// MatchFirst takes the highest-ranked result.
	MatchFirst MatchPolicy = "first"
	// MatchExact takes a case-insensitive exact name match when one is present,
	// otherwise the highest-ranked result.
	MatchExact MatchPolicy = "exact"
)

// ParseMatchPolicy validates a policy name; an empty name means MatchFirst.
func ParseMatchPolicy(name string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", MatchFirst:
		return MatchFirst, nil
	case MatchExact:
		return MatchExact, nil
	default:
		return "", fmt.Errorf("unknown match policy %q (expected first or exact)", name)
	}
}

// Options tunes an Enricher. Zero values fall back to the defaults.
type Options struct {
	Limit       int
	Concurrency int
	Policy      MatchPolicy
}

// Report summarizes one enrichment pass.
type Report struct {
	Matched   []string `json:"matched"`
	Unmatched []string `json:"unmatched"`
	Failed    []string `json:"failed"`
	Lookups   int      `json:"lookups"`
	Linked    int      `json:"linked_entries"`
}

// Enricher annotates plan exercises with catalog metadata.
type Enricher struct {
	catalog Catalog
	opts    Options
	logger  *zap.Logger
}

// New creates an Enricher. A nil logger disables logging.
func New(catalog Catalog, opts Options, logger *zap.Logger) *Enricher {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Policy == "" {
		opts.Policy = MatchFirst
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{catalog: catalog, opts: opts, logger: logger}
}

type lookup struct {
	match *types.CatalogExercise
	err   error
}

// Enrich resolves each distinct exercise name once and annotates every entry
// carrying a matched name. Per-name lookup failures are logged and recorded in
// the report; they never abort the pass. Entries are never removed or reordered.
func (e *Enricher) Enrich(ctx context.Context, plan *types.TrainingPlan) *Report {
	report := &Report{Matched: []string{}, Unmatched: []string{}, Failed: []string{}}
	if plan == nil {
		return report
	}

	names := DistinctNames(plan)
	if len(names) == 0 {
		return report
	}

	results := make([]lookup, len(names))
	g := new(errgroup.Group)
	g.SetLimit(e.opts.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			match, err := e.resolve(ctx, name)
			results[i] = lookup{match: match, err: err}
			return nil
		})
	}
	_ = g.Wait()
	report.Lookups = len(names)

	matches := make(map[string]*types.CatalogExercise, len(names))
	for i, name := range names {
		res := results[i]
		switch {
		case res.err != nil:
			e.logger.Warn("catalog lookup failed",
				zap.String("exercise", name),
				zap.Error(res.err))
			report.Failed = append(report.Failed, name)
		case res.match == nil:
			report.Unmatched = append(report.Unmatched, name)
		default:
			matches[name] = res.match
			report.Matched = append(report.Matched, name)
		}
	}

	for d := range plan.WeeklySchedule {
		exercises := plan.WeeklySchedule[d].Exercises
		for x := range exercises {
			if match, ok := matches[exercises[x].Name]; ok {
				exercises[x].Link(match)
				report.Linked++
			}
		}
	}

	e.logger.Debug("enrichment complete",
		zap.Int("lookups", report.Lookups),
		zap.Int("matched", len(report.Matched)),
		zap.Int("unmatched", len(report.Unmatched)),
		zap.Int("failed", len(report.Failed)))
	return report
}

func (e *Enricher) resolve(ctx context.Context, name string) (*types.CatalogExercise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := e.catalog.SearchExercises(ctx, name, 1, e.opts.Limit)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, nil
	}
	return pick(page.Items, name, e.opts.Policy), nil
}

func pick(items []types.CatalogExercise, name string, policy MatchPolicy) *types.CatalogExercise {
	if len(items) == 0 {
		return nil
	}
	if policy == MatchExact {
		for i := range items {
			if strings.EqualFold(strings.TrimSpace(items[i].Name), strings.TrimSpace(name)) {
				return &items[i]
			}
		}
	}
	return &items[0]
}

// DistinctNames returns the plan's exercise names in first-occurrence order.
// Names compare case-sensitively; blank names are skipped.
func DistinctNames(plan *types.TrainingPlan) []string {
	seen := make(map[string]bool)
	var names []string
	for _, day := range plan.WeeklySchedule {
		for _, ex := range day.Exercises {
			if strings.TrimSpace(ex.Name) == "" || seen[ex.Name] {
				continue
			}
			seen[ex.Name] = true
			names = append(names, ex.Name)
		}
	}
	return names
}
