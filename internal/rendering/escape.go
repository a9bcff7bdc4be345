package rendering

import "strings"

// EscapeMarkdown escapes inline Markdown syntax in model-authored text and
// folds line breaks into spaces so a value cannot start a new block.
// Escaped characters: \ ` * _ [ ] # < >
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + 8)

	for _, r := range text {
		switch r {
		case '\\', '`', '*', '_', '[', ']', '#', '<', '>':
			result.WriteByte('\\')
			result.WriteRune(r)
		case '\r':
		case '\n':
			result.WriteByte(' ')
		default:
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
