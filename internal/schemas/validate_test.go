package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	embedded "github.com/jonathan/fitplan/schemas"
)

const personSchema = `{
  "type": "object",
  "required": ["name", "tags"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "tags": {"type": "array"},
    "address": {
      "type": "object",
      "required": ["city"],
      "properties": {"city": {"type": "string"}}
    }
  }
}`

func checkPerson(t *testing.T, doc string) error {
	t.Helper()
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(personSchema))
	require.NoError(t, err)
	return check(schema, doc)
}

func TestCheck_Valid(t *testing.T) {
	err := checkPerson(t, `{"name": "Ada", "tags": []}`)
	assert.NoError(t, err)
}

func TestCheck_MissingField(t *testing.T) {
	err := checkPerson(t, `{"name": "Ada"}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	require.Len(t, validationErr.Errors, 1)

	fe := validationErr.Errors[0]
	assert.Equal(t, "tags", fe.Field)
	assert.Equal(t, "required", fe.Rule)
	assert.Equal(t, "tags", fe.Property())
}

func TestCheck_NestedRequired(t *testing.T) {
	err := checkPerson(t, `{"name": "Ada", "tags": [], "address": {}}`)
	require.Error(t, err)

	validationErr := err.(*ValidationError)
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "address.city", validationErr.Errors[0].Field)
	assert.Equal(t, "address", validationErr.Errors[0].Property())
}

func TestCheck_WrongTypeAndEmpty(t *testing.T) {
	err := checkPerson(t, `{"name": "", "tags": null}`)
	require.Error(t, err)

	validationErr := err.(*ValidationError)
	rules := map[string]string{}
	for _, fe := range validationErr.Errors {
		rules[fe.Property()] = fe.Rule
	}
	assert.Equal(t, "string_gte", rules["name"])
	assert.Equal(t, "invalid_type", rules["tags"])
	assert.Contains(t, err.Error(), "validation failed")
}

func TestCheck_RootError(t *testing.T) {
	err := checkPerson(t, `[1, 2]`)
	require.Error(t, err)

	validationErr := err.(*ValidationError)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Equal(t, "", validationErr.Errors[0].Property())
}

func TestCheck_NotJSON(t *testing.T) {
	err := checkPerson(t, `{"name": `)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "invalid_json", validationErr.Errors[0].Rule)
}

func TestValidateEmbedded_CachesCompiledSchema(t *testing.T) {
	require.NoError(t, ValidateEmbedded(embedded.CatalogExercises, `[{"id":"1","name":"x"}]`))
	_, ok := compiled.Load(embedded.CatalogExercises)
	assert.True(t, ok)
	assert.Error(t, ValidateEmbedded(embedded.CatalogExercises, `[{"id":"1"}]`))
}

func TestValidateEmbedded_TrainingPlan(t *testing.T) {
	valid := `{"overview":"x","weeklySchedule":[{"day":"Mon"}],"nutrition":{},"tips":[]}`
	assert.NoError(t, ValidateEmbedded(embedded.TrainingPlan, valid))

	err := ValidateEmbedded(embedded.TrainingPlan, `{"overview":"x","weeklySchedule":[]}`)
	require.Error(t, err)

	props := map[string]bool{}
	for _, fe := range err.(*ValidationError).Errors {
		props[fe.Property()] = true
	}
	assert.True(t, props["weeklySchedule"])
	assert.True(t, props["nutrition"])
	assert.True(t, props["tips"])
	assert.False(t, props["overview"])
}

func TestValidateEmbedded_UnknownSchema(t *testing.T) {
	err := ValidateEmbedded("missing.schema.json", `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.schema.json")

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.schema.json", loadErr.Schema)
}
