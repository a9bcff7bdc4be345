// Package schemas validates model replies and catalog dumps against the
// JSON Schemas embedded in the schemas directory.
package schemas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	embedded "github.com/jonathan/fitplan/schemas"
)

// FieldError is one schema violation.
type FieldError struct {
	Field   string // dotted path, "(root)" for the document itself
	Rule    string // gojsonschema error type, e.g. "required", "invalid_type"
	Message string
}

// Property returns the top-level property the error is about, or "" for the root.
func (fe FieldError) Property() string {
	if fe.Field == "" || fe.Field == "(root)" {
		return ""
	}
	return strings.SplitN(fe.Field, ".", 2)[0]
}

// ValidationError lists every violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// LoadError means the schema itself could not be read or compiled.
type LoadError struct {
	Schema string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("schema %s unusable: %v", e.Schema, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// compiled caches embedded schemas by file name.
var compiled sync.Map

// ValidateEmbedded validates jsonContent against an embedded schema such as
// embedded.TrainingPlan. Each schema is compiled on first use.
func ValidateEmbedded(schemaName, jsonContent string) error {
	if cached, ok := compiled.Load(schemaName); ok {
		return check(cached.(*gojsonschema.Schema), jsonContent)
	}

	content, err := embedded.Read(schemaName)
	if err != nil {
		return &LoadError{Schema: schemaName, Err: err}
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return &LoadError{Schema: schemaName, Err: err}
	}
	actual, _ := compiled.LoadOrStore(schemaName, schema)
	return check(actual.(*gojsonschema.Schema), jsonContent)
}

func check(schema *gojsonschema.Schema, jsonContent string) error {
	result, err := schema.Validate(gojsonschema.NewStringLoader(jsonContent))
	if err != nil {
		// The document is not JSON at all.
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Rule: "invalid_json", Message: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}

	out := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, FieldError{
			Field:   fieldOf(desc),
			Rule:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return out
}

// fieldOf points "required" errors at the missing property instead of its parent.
func fieldOf(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			parent := ""
			if ctx := desc.Context(); ctx != nil {
				parent = strings.TrimPrefix(strings.TrimPrefix(ctx.String(), "(root)"), ".")
			}
			if parent == "" {
				field = prop
			} else {
				field = parent + "." + prop
			}
		}
	}
	if field == "" {
		return "(root)"
	}
	return field
}
