// Package ingestion loads ExerciseDB-style catalog dumps for import.
package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jonathan/fitplan/internal/fetch"
	"github.com/jonathan/fitplan/internal/schemas"
	"github.com/jonathan/fitplan/internal/types"
	embedded "github.com/jonathan/fitplan/schemas"
)

var whitespace = regexp.MustCompile(`\s+`)

// dumpRecord accepts numeric or string ids as found in public dumps.
type dumpRecord struct {
	ID               json.Number `json:"id"`
	Name             string      `json:"name"`
	BodyPart         string      `json:"bodyPart"`
	Equipment        string      `json:"equipment"`
	Target           string      `json:"target"`
	GifURL           string      `json:"gifUrl"`
	SecondaryMuscles []string    `json:"secondaryMuscles"`
	Instructions     []string    `json:"instructions"`
}

// UnmarshalJSON reads the id as text whether it was quoted or not.
func (r *dumpRecord) UnmarshalJSON(data []byte) error {
	type plain dumpRecord
	var aux struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = dumpRecord(aux.plain)

	var s string
	if err := json.Unmarshal(aux.ID, &s); err == nil {
		r.ID = json.Number(s)
		return nil
	}
	r.ID = json.Number(strings.TrimSpace(string(aux.ID)))
	return nil
}

// ParseCatalog validates a catalog dump and converts it to catalog exercises.
// Records are normalized; a repeated id keeps its last occurrence in the
// position of its first. Records whose id normalizes to empty are skipped.
func ParseCatalog(data []byte) ([]types.CatalogExercise, int, error) {
	if err := schemas.ValidateEmbedded(embedded.CatalogExercises, string(data)); err != nil {
		return nil, 0, fmt.Errorf("catalog dump rejected: %w", err)
	}

	var records []dumpRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to parse catalog dump: %w", err)
	}

	index := make(map[string]int, len(records))
	out := make([]types.CatalogExercise, 0, len(records))
	skipped := 0
	for _, rec := range records {
		ex := normalize(rec)
		if ex.ID == "" || ex.Name == "" {
			skipped++
			continue
		}
		if i, ok := index[ex.ID]; ok {
			out[i] = ex
			skipped++
			continue
		}
		index[ex.ID] = len(out)
		out = append(out, ex)
	}
	return out, skipped, nil
}

// LoadCatalogFile reads and parses a catalog dump from disk.
func LoadCatalogFile(path string) ([]types.CatalogExercise, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	exercises, skipped, err := ParseCatalog(content)
	if err != nil {
		return nil, nil, err
	}

	meta := NewMetadata(content, path)
	meta.Records = len(exercises)
	meta.Skipped = skipped
	return exercises, meta, nil
}

// LoadCatalogURL downloads and parses a catalog dump over HTTP.
func LoadCatalogURL(ctx context.Context, url string, opts *fetch.Options) ([]types.CatalogExercise, *Metadata, error) {
	result, err := fetch.URL(ctx, url, opts)
	if err != nil {
		return nil, nil, err
	}

	exercises, skipped, err := ParseCatalog(result.Body)
	if err != nil {
		return nil, nil, err
	}

	meta := NewMetadata(result.Body, url)
	meta.Records = len(exercises)
	meta.Skipped = skipped
	return exercises, meta, nil
}

func normalize(rec dumpRecord) types.CatalogExercise {
	return types.CatalogExercise{
		ID:               cleanField(rec.ID.String()),
		Name:             cleanField(rec.Name),
		BodyPart:         cleanField(rec.BodyPart),
		Equipment:        cleanField(rec.Equipment),
		Target:           cleanField(rec.Target),
		GifURL:           strings.TrimSpace(rec.GifURL),
		SecondaryMuscles: cleanList(rec.SecondaryMuscles),
		Instructions:     cleanList(rec.Instructions),
	}
}

// cleanField trims and collapses internal whitespace.
func cleanField(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c := cleanField(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}
