// Package parsing turns raw LLM replies into validated training plans.
package parsing

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// codeFence matches Markdown fence delimiters with an optional language tag.
var codeFence = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// Sanitize extracts a JSON object from an LLM reply that may be wrapped in code
// fences or surrounded by commentary. Text that already parses as an object is
// returned unchanged. Truncated JSON, trailing commas and similar damage are not
// repaired and yield a MalformedResponseError.
func Sanitize(raw string) (string, error) {
	if err := parseObject(raw); err == nil {
		return raw, nil
	}

	cleaned := codeFence.ReplaceAllString(raw, "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	cleaned = strings.TrimSpace(cleaned)

	err := parseObject(cleaned)
	if err == nil {
		return cleaned, nil
	}

	msg := "no parseable JSON object found"
	if start < 0 || end <= start {
		msg = "no JSON object delimiters found"
	}
	return "", &MalformedResponseError{Raw: raw, Message: msg, Cause: err}
}

// parseObject returns nil when text is a single syntactically valid JSON object.
func parseObject(text string) error {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotObject
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal(trimmed, &obj)
}

var errNotObject = errors.New("text is not a JSON object")
