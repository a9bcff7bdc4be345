package parsing

import (
	"fmt"
	"strings"
)

// MalformedResponseError means no JSON object could be recovered from a backend reply.
// Raw holds the untouched reply for diagnostics; it is never part of Error().
type MalformedResponseError struct {
	Raw     string
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed response: %s", e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// Snippet returns at most n bytes of the raw reply, for logs.
func (e *MalformedResponseError) Snippet(n int) string {
	if len(e.Raw) <= n {
		return e.Raw
	}
	return e.Raw[:n] + "..."
}

// IncompletePlanError means a parsed plan lacks required top-level content.
// Missing holds keys that are absent, null or of the wrong type; Empty holds keys
// that are present but empty where content is required.
type IncompletePlanError struct {
	Missing []string
	Empty   []string
}

func (e *IncompletePlanError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Empty) > 0 {
		parts = append(parts, "empty "+strings.Join(e.Empty, ", "))
	}
	return "incomplete plan: " + strings.Join(parts, "; ")
}

// Fields returns every offending key, missing first.
func (e *IncompletePlanError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Empty))
	out = append(out, e.Missing...)
	return append(out, e.Empty...)
}
