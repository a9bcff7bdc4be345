package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Text
	}{
		{"string", `"8-10"`, "8-10"},
		{"integer", `10`, "10"},
		{"float", `1.5`, "1.5"},
		{"bool", `true`, "true"},
		{"null", `null`, ""},
		{"object kept compact", `{"min": 8, "max": 10}`, `{"min":8,"max":10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Count
	}{
		{"integer", `3`, 3},
		{"whole float", `4.0`, 4},
		{"numeric string", `" 5 "`, 5},
		{"range string", `"3-4"`, 0},
		{"fraction", `2.5`, 0},
		{"zero", `0`, 0},
		{"negative", `-2`, 0},
		{"null", `null`, 0},
		{"object", `{"n":3}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Count
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExerciseEntry_TolerantDecode(t *testing.T) {
	var entry ExerciseEntry
	err := json.Unmarshal([]byte(`{"name":"Plank","sets":"3","reps":60,"rest":"30s","duration":"1 min"}`), &entry)
	require.NoError(t, err)

	assert.Equal(t, "Plank", entry.Name)
	assert.Equal(t, Count(3), entry.Sets)
	assert.Equal(t, Text("60"), entry.Reps)
	assert.Equal(t, Text("30s"), entry.Rest)
	assert.False(t, entry.Linked())
}

func TestTextList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TextList
	}{
		{"strings", `["a", "b"]`, TextList{"a", "b"}},
		{"mixed items", `["a", 2, {"k":"v"}]`, TextList{"a", "2", `{"k":"v"}`}},
		{"blank items dropped", `["a", " ", null]`, TextList{"a"}},
		{"empty list", `[]`, TextList{}},
		{"single string", `"drink water"`, TextList{"drink water"}},
		{"single number", `3`, TextList{"3"}},
		{"blank string", `""`, nil},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TextList
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExerciseEntry_SetsText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantSets Count
		wantText Text
		wantJSON string
	}{
		{"count", `{"name":"Row","sets":3}`, 3, "", `{"name":"Row","sets":3}`},
		{"numeric string", `{"name":"Row","sets":"4"}`, 4, "", `{"name":"Row","sets":4}`},
		{"range", `{"name":"Row","sets":"3-4"}`, 0, "3-4", `{"name":"Row","sets":"3-4"}`},
		{"prose", `{"name":"Row","sets":"to failure"}`, 0, "to failure", `{"name":"Row","sets":"to failure"}`},
		{"absent", `{"name":"Row"}`, 0, "", `{"name":"Row"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry ExerciseEntry
			require.NoError(t, json.Unmarshal([]byte(tt.input), &entry))
			assert.Equal(t, tt.wantSets, entry.Sets)
			assert.Equal(t, tt.wantText, entry.SetsText)

			out, err := json.Marshal(entry)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(out))
		})
	}
}
