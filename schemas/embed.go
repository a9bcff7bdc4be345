// Package schemas holds the JSON Schema documents shipped with fitplan.
package schemas

import (
	"embed"
	"fmt"
)

//go:embed *.schema.json
var files embed.FS

// Schema file names
const (
	TrainingPlan     = "training_plan.schema.json"
	CatalogExercises = "catalog_exercises.schema.json"
)

// Read returns the content of an embedded schema file.
func Read(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("schema %s not found: %w", name, err)
	}
	return string(data), nil
}
