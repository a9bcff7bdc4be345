package types

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Plan documents come from a model, so the codecs below accept any JSON value
// for scalar fields and keep unknown keys. Only a non-object where an object
// is required (a day, an exercise) is a decode error.

type dayWire struct {
	Day       Text            `json:"day"`
	Focus     Text            `json:"focus,omitempty"`
	Exercises []ExerciseEntry `json:"exercises"`
}

var dayKeys = keySet("day", "focus", "exercises")

// UnmarshalJSON implements json.Unmarshaler.
func (d *DaySchedule) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*d = DaySchedule{
		Day:   textOf(fields["day"]),
		Focus: textOf(fields["focus"]),
		Extra: extraFields(fields, dayKeys),
	}
	if raw, ok := fields["exercises"]; ok {
		if err := json.Unmarshal(raw, &d.Exercises); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d DaySchedule) MarshalJSON() ([]byte, error) {
	return withExtra(dayWire{Day: d.Day, Focus: d.Focus, Exercises: d.Exercises}, d.Extra, dayKeys)
}

type exerciseWire struct {
	Name      string `json:"name"`
	Sets      any    `json:"sets,omitempty"`
	Reps      Text   `json:"reps,omitempty"`
	Rest      Text   `json:"rest,omitempty"`
	Duration  Text   `json:"duration,omitempty"`
	Intensity Text   `json:"intensity,omitempty"`
	Notes     Text   `json:"notes,omitempty"`

	CatalogID    string `json:"catalogId,omitempty"`
	CatalogDBID  string `json:"catalogDbId,omitempty"`
	BodyPart     string `json:"bodyPart,omitempty"`
	Equipment    string `json:"equipment,omitempty"`
	TargetMuscle string `json:"targetMuscle,omitempty"`
	MediaURL     string `json:"mediaUrl,omitempty"`
}

var exerciseKeys = keySet("name", "sets", "reps", "rest", "duration", "intensity", "notes",
	"catalogId", "catalogDbId", "bodyPart", "equipment", "targetMuscle", "mediaUrl")

// UnmarshalJSON implements json.Unmarshaler.
func (e *ExerciseEntry) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*e = ExerciseEntry{
		Name:         string(textOf(fields["name"])),
		Reps:         textOf(fields["reps"]),
		Rest:         textOf(fields["rest"]),
		Duration:     textOf(fields["duration"]),
		Intensity:    textOf(fields["intensity"]),
		Notes:        textOf(fields["notes"]),
		CatalogID:    string(textOf(fields["catalogId"])),
		CatalogDBID:  string(textOf(fields["catalogDbId"])),
		BodyPart:     string(textOf(fields["bodyPart"])),
		Equipment:    string(textOf(fields["equipment"])),
		TargetMuscle: string(textOf(fields["targetMuscle"])),
		MediaURL:     string(textOf(fields["mediaUrl"])),
		Extra:        extraFields(fields, exerciseKeys),
	}
	if raw, ok := fields["sets"]; ok {
		_ = json.Unmarshal(raw, &e.Sets)
		if e.Sets == 0 {
			e.SetsText = textOf(raw)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e ExerciseEntry) MarshalJSON() ([]byte, error) {
	w := exerciseWire{
		Name:         e.Name,
		Reps:         e.Reps,
		Rest:         e.Rest,
		Duration:     e.Duration,
		Intensity:    e.Intensity,
		Notes:        e.Notes,
		CatalogID:    e.CatalogID,
		CatalogDBID:  e.CatalogDBID,
		BodyPart:     e.BodyPart,
		Equipment:    e.Equipment,
		TargetMuscle: e.TargetMuscle,
		MediaURL:     e.MediaURL,
	}
	switch {
	case e.Sets > 0:
		w.Sets = int(e.Sets)
	case e.SetsText != "":
		w.Sets = e.SetsText
	}
	return withExtra(w, e.Extra, exerciseKeys)
}

type nutritionWire struct {
	DailyCalories   Text           `json:"dailyCalories,omitempty"`
	Macronutrients  Macronutrients `json:"macronutrients"`
	Hydration       Text           `json:"hydration,omitempty"`
	Recommendations TextList       `json:"recommendations,omitempty"`
}

var nutritionKeys = keySet("dailyCalories", "macronutrients", "hydration", "recommendations")

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nutrition) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*n = Nutrition{
		DailyCalories: textOf(fields["dailyCalories"]),
		Hydration:     textOf(fields["hydration"]),
		Extra:         extraFields(fields, nutritionKeys),
	}
	if raw, ok := fields["macronutrients"]; ok {
		if err := n.Macronutrients.UnmarshalJSON(raw); err != nil {
			return err
		}
	}
	if raw, ok := fields["recommendations"]; ok {
		if err := n.Recommendations.UnmarshalJSON(raw); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Nutrition) MarshalJSON() ([]byte, error) {
	return withExtra(nutritionWire{
		DailyCalories:   n.DailyCalories,
		Macronutrients:  n.Macronutrients,
		Hydration:       n.Hydration,
		Recommendations: n.Recommendations,
	}, n.Extra, nutritionKeys)
}

type macroWire struct {
	Protein       Text `json:"protein,omitempty"`
	Carbohydrates Text `json:"carbohydrates,omitempty"`
	Fats          Text `json:"fats,omitempty"`
	Note          Text `json:"note,omitempty"`
}

var macroKeys = keySet("protein", "carbohydrates", "fats", "note")

// UnmarshalJSON implements json.Unmarshaler. A non-object value is kept as Note.
func (m *Macronutrients) UnmarshalJSON(data []byte) error {
	*m = Macronutrients{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		m.Note = textOf(data)
		return nil
	}
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*m = Macronutrients{
		Protein:       textOf(fields["protein"]),
		Carbohydrates: textOf(fields["carbohydrates"]),
		Fats:          textOf(fields["fats"]),
		Note:          textOf(fields["note"]),
		Extra:         extraFields(fields, macroKeys),
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Macros holding only a Note are
// written back as the plain text they came from.
func (m Macronutrients) MarshalJSON() ([]byte, error) {
	if m.Note != "" && m.Protein == "" && m.Carbohydrates == "" && m.Fats == "" && len(m.Extra) == 0 {
		return json.Marshal(string(m.Note))
	}
	return withExtra(macroWire{
		Protein:       m.Protein,
		Carbohydrates: m.Carbohydrates,
		Fats:          m.Fats,
		Note:          m.Note,
	}, m.Extra, macroKeys)
}

func keySet(keys ...string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// objectFields splits a JSON object into raw members. null yields no members.
func objectFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func textOf(raw json.RawMessage) Text {
	var t Text
	if len(raw) == 0 {
		return t
	}
	_ = t.UnmarshalJSON(raw)
	return t
}

func extraFields(fields map[string]json.RawMessage, known map[string]bool) map[string]json.RawMessage {
	var extra map[string]json.RawMessage
	for k, v := range fields {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra
}

// withExtra encodes the known fields and appends extra members in key order.
// Extra keys that collide with known ones are dropped.
func withExtra(known any, extra map[string]json.RawMessage, reserved map[string]bool) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return data, nil
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, k := range keys {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := json.Compact(&buf, extra[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
