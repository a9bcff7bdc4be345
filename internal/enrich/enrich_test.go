package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fitplan/internal/types"
)

type fakeCatalog struct {
	mu      sync.Mutex
	calls   map[string]int
	entries map[string][]types.CatalogExercise
	fail    map[string]error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		calls:   map[string]int{},
		entries: map[string][]types.CatalogExercise{},
		fail:    map[string]error{},
	}
}

func (f *fakeCatalog) SearchExercises(_ context.Context, query string, _, limit int) (*types.CatalogPage, error) {
	f.mu.Lock()
	f.calls[query]++
	f.mu.Unlock()

	if err := f.fail[query]; err != nil {
		return nil, err
	}
	items := f.entries[strings.ToLower(query)]
	if len(items) > limit {
		items = items[:limit]
	}
	return &types.CatalogPage{Items: items, Total: int64(len(items)), Page: 1, Limit: limit}, nil
}

func (f *fakeCatalog) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

var benchPress = types.CatalogExercise{
	DBID:      "d1",
	ID:        "0025",
	Name:      "barbell bench press",
	BodyPart:  "chest",
	Equipment: "barbell",
	Target:    "pectorals",
	GifURL:    "https://example.test/0025.gif",
}

func planWith(days ...[]types.ExerciseEntry) *types.TrainingPlan {
	plan := &types.TrainingPlan{Overview: "x", Tips: []string{}}
	for i, exercises := range days {
		plan.WeeklySchedule = append(plan.WeeklySchedule, types.DaySchedule{
			Day:       types.Text(string(rune('A' + i))),
			Exercises: exercises,
		})
	}
	return plan
}

func TestEnrich_LinksEveryOccurrenceWithOneLookup(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.entries["bench press"] = []types.CatalogExercise{benchPress}

	plan := planWith(
		[]types.ExerciseEntry{{Name: "Bench Press", Sets: 3, Reps: "8-10"}},
		[]types.ExerciseEntry{{Name: "Bench Press", Sets: 4, Reps: "6"}},
		[]types.ExerciseEntry{{Name: "Bench Press", Notes: "paused"}},
	)

	report := New(catalog, Options{}, nil).Enrich(context.Background(), plan)

	assert.Equal(t, 1, catalog.totalCalls())
	assert.Equal(t, 1, report.Lookups)
	assert.Equal(t, []string{"Bench Press"}, report.Matched)
	assert.Equal(t, 3, report.Linked)

	for _, day := range plan.WeeklySchedule {
		entry := day.Exercises[0]
		assert.Equal(t, "0025", entry.CatalogID)
		assert.Equal(t, "d1", entry.CatalogDBID)
		assert.Equal(t, "chest", entry.BodyPart)
		assert.Equal(t, "barbell", entry.Equipment)
		assert.Equal(t, "pectorals", entry.TargetMuscle)
		assert.Equal(t, "https://example.test/0025.gif", entry.MediaURL)
		assert.Equal(t, "Bench Press", entry.Name)
	}
	assert.Equal(t, types.Count(3), plan.WeeklySchedule[0].Exercises[0].Sets)
	assert.Equal(t, types.Text("6"), plan.WeeklySchedule[1].Exercises[0].Reps)
	assert.Equal(t, types.Text("paused"), plan.WeeklySchedule[2].Exercises[0].Notes)
}

func TestEnrich_UnmatchedNameLeftUnlinked(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.entries["bench press"] = []types.CatalogExercise{benchPress}

	plan := planWith([]types.ExerciseEntry{
		{Name: "Bench Press"},
		{Name: "Underwater Basket Weaving", Reps: "10"},
	})

	report := New(catalog, Options{}, nil).Enrich(context.Background(), plan)

	assert.Equal(t, []string{"Underwater Basket Weaving"}, report.Unmatched)
	assert.Empty(t, report.Failed)

	unmatched := plan.WeeklySchedule[0].Exercises[1]
	assert.False(t, unmatched.Linked())
	assert.Empty(t, unmatched.BodyPart)
	assert.Equal(t, types.Text("10"), unmatched.Reps)
}

func TestEnrich_LookupFailureIsolated(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.entries["bench press"] = []types.CatalogExercise{benchPress}
	catalog.entries["squat"] = []types.CatalogExercise{{DBID: "d2", ID: "0043", Name: "barbell full squat"}}
	catalog.fail["Deadlift"] = errors.New("connection reset")

	plan := planWith(
		[]types.ExerciseEntry{{Name: "Bench Press"}, {Name: "Deadlift", Sets: 5}},
		[]types.ExerciseEntry{{Name: "Squat"}},
	)

	report := New(catalog, Options{}, nil).Enrich(context.Background(), plan)

	assert.Equal(t, []string{"Bench Press", "Squat"}, report.Matched)
	assert.Equal(t, []string{"Deadlift"}, report.Failed)
	assert.Equal(t, 3, report.Lookups)

	assert.True(t, plan.WeeklySchedule[0].Exercises[0].Linked())
	assert.False(t, plan.WeeklySchedule[0].Exercises[1].Linked())
	assert.Equal(t, types.Count(5), plan.WeeklySchedule[0].Exercises[1].Sets)
	assert.True(t, plan.WeeklySchedule[1].Exercises[0].Linked())
}

func TestEnrich_NamesAreCaseSensitive(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.entries["bench press"] = []types.CatalogExercise{benchPress}

	plan := planWith([]types.ExerciseEntry{{Name: "Bench Press"}, {Name: "bench press"}})

	report := New(catalog, Options{}, nil).Enrich(context.Background(), plan)

	assert.Equal(t, 2, report.Lookups)
	assert.Equal(t, 2, catalog.totalCalls())
}

func TestEnrich_PreservesOrderAndCount(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.entries["bench press"] = []types.CatalogExercise{benchPress}

	plan := planWith(
		[]types.ExerciseEntry{{Name: "Plank"}, {Name: "Bench Press"}, {Name: ""}},
		[]types.ExerciseEntry{},
	)

	New(catalog, Options{}, nil).Enrich(context.Background(), plan)

	require.Len(t, plan.WeeklySchedule, 2)
	require.Len(t, plan.WeeklySchedule[0].Exercises, 3)
	assert.Equal(t, "Plank", plan.WeeklySchedule[0].Exercises[0].Name)
	assert.Equal(t, "Bench Press", plan.WeeklySchedule[0].Exercises[1].Name)
	assert.Equal(t, "", plan.WeeklySchedule[0].Exercises[2].Name)
	assert.Empty(t, plan.WeeklySchedule[1].Exercises)
	assert.Equal(t, 0, catalog.calls[""], "blank names are never looked up")
}

func TestEnrich_MatchPolicy(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.entries["push-up"] = []types.CatalogExercise{
		{DBID: "a", ID: "0001", Name: "archer push up"},
		{DBID: "b", ID: "0002", Name: "Push-Up"},
	}

	tests := []struct {
		policy MatchPolicy
		wantID string
	}{
		{MatchFirst, "0001"},
		{MatchExact, "0002"},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			plan := planWith([]types.ExerciseEntry{{Name: "push-up"}})
			New(catalog, Options{Policy: tt.policy}, nil).Enrich(context.Background(), plan)
			assert.Equal(t, tt.wantID, plan.WeeklySchedule[0].Exercises[0].CatalogID)
		})
	}
}

func TestEnrich_ExactFallsBackToFirst(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.entries["rows"] = []types.CatalogExercise{{DBID: "a", ID: "0100", Name: "cable seated row"}}

	plan := planWith([]types.ExerciseEntry{{Name: "Rows"}})
	New(catalog, Options{Policy: MatchExact}, nil).Enrich(context.Background(), plan)

	assert.Equal(t, "0100", plan.WeeklySchedule[0].Exercises[0].CatalogID)
}

func TestEnrich_CancelledContextLinksNothing(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.entries["bench press"] = []types.CatalogExercise{benchPress}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := planWith([]types.ExerciseEntry{{Name: "Bench Press"}})
	report := New(catalog, Options{}, nil).Enrich(ctx, plan)

	assert.Equal(t, []string{"Bench Press"}, report.Failed)
	assert.False(t, plan.WeeklySchedule[0].Exercises[0].Linked())
	assert.Equal(t, 0, catalog.totalCalls())
}

func TestEnrich_ManyNamesBoundedConcurrency(t *testing.T) {
	catalog := newFakeCatalog()
	var entries []types.ExerciseEntry
	for i := 0; i < 20; i++ {
		name := "exercise " + string(rune('a'+i))
		catalog.entries[name] = []types.CatalogExercise{{DBID: name, ID: name, Name: name}}
		entries = append(entries, types.ExerciseEntry{Name: name}, types.ExerciseEntry{Name: name})
	}
	plan := planWith(entries)

	report := New(catalog, Options{Concurrency: 3}, nil).Enrich(context.Background(), plan)

	assert.Equal(t, 20, report.Lookups)
	assert.Equal(t, 20, catalog.totalCalls())
	assert.Equal(t, 40, report.Linked)
	for _, ex := range plan.WeeklySchedule[0].Exercises {
		assert.Equal(t, ex.Name, ex.CatalogID)
	}
}

func TestEnrich_NilPlan(t *testing.T) {
	report := New(newFakeCatalog(), Options{}, nil).Enrich(context.Background(), nil)
	assert.Equal(t, 0, report.Lookups)
}

func TestParseMatchPolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    MatchPolicy
		wantErr bool
	}{
		{"", MatchFirst, false},
		{"first", MatchFirst, false},
		{"EXACT", MatchExact, false},
		{"fuzzy", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMatchPolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDistinctNames(t *testing.T) {
	plan := planWith(
		[]types.ExerciseEntry{{Name: "Squat"}, {Name: "Lunge"}, {Name: "  "}},
		[]types.ExerciseEntry{{Name: "Lunge"}, {Name: "Squat"}, {Name: "Plank"}},
	)
	assert.Equal(t, []string{"Squat", "Lunge", "Plank"}, DistinctNames(plan))
}
