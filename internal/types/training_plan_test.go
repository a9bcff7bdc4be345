package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseEntry_Link(t *testing.T) {
	entry := ExerciseEntry{Name: "Bench Press", Sets: 3, Reps: "8-10", Notes: "control the descent"}
	entry.Link(&CatalogExercise{
		DBID:      "4f0c",
		ID:        "0025",
		Name:      "barbell bench press",
		BodyPart:  "chest",
		Equipment: "barbell",
		Target:    "pectorals",
		GifURL:    "https://example.com/0025.gif",
	})

	assert.True(t, entry.Linked())
	assert.Equal(t, "Bench Press", entry.Name)
	assert.Equal(t, Count(3), entry.Sets)
	assert.Equal(t, Text("8-10"), entry.Reps)
	assert.Equal(t, Text("control the descent"), entry.Notes)
	assert.Equal(t, "0025", entry.CatalogID)
	assert.Equal(t, "4f0c", entry.CatalogDBID)
	assert.Equal(t, "chest", entry.BodyPart)
	assert.Equal(t, "barbell", entry.Equipment)
	assert.Equal(t, "pectorals", entry.TargetMuscle)
	assert.Equal(t, "https://example.com/0025.gif", entry.MediaURL)
}

func TestExerciseEntry_UnlinkedOmitsCatalogFields(t *testing.T) {
	data, err := json.Marshal(ExerciseEntry{Name: "Squat", Sets: 4})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, map[string]any{"name": "Squat", "sets": float64(4)}, fields)
}

func TestTrainingPlan_ExerciseCount(t *testing.T) {
	plan := TrainingPlan{
		WeeklySchedule: []DaySchedule{
			{Day: "Mon", Exercises: []ExerciseEntry{{Name: "a"}, {Name: "b"}}},
			{Day: "Wed"},
			{Day: "Fri", Exercises: []ExerciseEntry{{Name: "a"}}},
		},
	}
	assert.Equal(t, 3, plan.ExerciseCount())
}

func TestStoredPlanRecord_OwnedBy(t *testing.T) {
	rec := StoredPlanRecord{UserID: "user-1"}
	assert.True(t, rec.OwnedBy("user-1"))
	assert.False(t, rec.OwnedBy("user-2"))
	assert.False(t, rec.OwnedBy(""))
}

func TestMacronutrients_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Macronutrients
		wantJSON string
	}{
		{
			name:     "object",
			input:    `{"protein":"150g","carbohydrates":250,"fats":"70g"}`,
			want:     Macronutrients{Protein: "150g", Carbohydrates: "250", Fats: "70g"},
			wantJSON: `{"protein":"150g","carbohydrates":"250","fats":"70g"}`,
		},
		{
			name:     "text",
			input:    `"40% carbs, 30% protein, 30% fat"`,
			want:     Macronutrients{Note: "40% carbs, 30% protein, 30% fat"},
			wantJSON: `"40% carbs, 30% protein, 30% fat"`,
		},
		{
			name:     "extra macro",
			input:    `{"protein":"150g","fiber":"30g"}`,
			want:     Macronutrients{Protein: "150g", Extra: map[string]json.RawMessage{"fiber": json.RawMessage(`"30g"`)}},
			wantJSON: `{"protein":"150g","fiber":"30g"}`,
		},
		{
			name:     "list",
			input:    `["150g protein","250g carbs"]`,
			want:     Macronutrients{Note: `["150g protein","250g carbs"]`},
			wantJSON: `"[\"150g protein\",\"250g carbs\"]"`,
		},
		{
			name:     "empty",
			input:    `null`,
			want:     Macronutrients{},
			wantJSON: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Macronutrients
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)

			out, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(out))
		})
	}
}

func TestDaySchedule_ExtraKeysRoundTrip(t *testing.T) {
	input := `{"day":"Tue","focus":"Pull","warmup":{"minutes":5},"exercises":[{"name":"Row","tempo":"2-0-2"}]}`

	var day DaySchedule
	require.NoError(t, json.Unmarshal([]byte(input), &day))
	assert.Equal(t, Text("Tue"), day.Day)
	assert.Equal(t, Text("Pull"), day.Focus)
	require.Len(t, day.Exercises, 1)
	assert.JSONEq(t, `"2-0-2"`, string(day.Exercises[0].Extra["tempo"]))

	out, err := json.Marshal(day)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestExerciseEntry_ExtraCannotShadowKnownKeys(t *testing.T) {
	entry := ExerciseEntry{Name: "Row", Extra: map[string]json.RawMessage{"name": json.RawMessage(`"other"`), "weight": json.RawMessage(`20`)}}
	out, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Row","weight":20}`, string(out))
}
