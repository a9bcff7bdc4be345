// Package prompts builds the LLM prompts used for plan generation.
// Prompt texts live in training.json, embedded at compile time.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Key names one prompt text in the embedded prompt set.
type Key string

const (
	KeySystem      Key = "system"
	KeyPlanRequest Key = "plan-request"
)

//go:embed training.json
var trainingJSON []byte

var (
	loadOnce sync.Once
	texts    map[Key]string
	loadErr  error
)

var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z]+)\}\}`)

func load() (map[Key]string, error) {
	loadOnce.Do(func() {
		texts, loadErr = parseSet(trainingJSON)
	})
	return texts, loadErr
}

func parseSet(data []byte) (map[Key]string, error) {
	var raw map[Key]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse prompt set: %w", err)
	}
	for _, required := range []Key{KeySystem, KeyPlanRequest} {
		if strings.TrimSpace(raw[required]) == "" {
			return nil, fmt.Errorf("prompt set is missing %q", required)
		}
	}
	return raw, nil
}

// Lookup returns the prompt text stored under key.
func Lookup(key Key) (string, error) {
	set, err := load()
	if err != nil {
		return "", err
	}
	text, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", key)
	}
	return text, nil
}

// Fill substitutes {{.Name}} placeholders with values from data. A placeholder
// without a value is an error so an unfinished prompt never reaches the model.
func Fill(template string, data map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		value, ok := data[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt placeholders without values: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
