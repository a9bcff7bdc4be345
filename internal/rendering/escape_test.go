package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Barbell back squat", "Barbell back squat"},
		{"emphasis", "keep *tight* core", `keep \*tight\* core`},
		{"underscore", "under_score", `under\_score`},
		{"heading marker", "#1 priority", `\#1 priority`},
		{"link brackets", "[click](x)", `\[click\](x)`},
		{"html", "<b>bold</b>", `\<b\>bold\</b\>`},
		{"backslash and backtick", "a\\b `c`", "a\\\\b \\`c\\`"},
		{"newlines folded", "line one\r\nline two\n", "line one line two"},
		{"unicode untouched", "深蹲 3×10", "深蹲 3×10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeMarkdown(tt.in))
		})
	}
}
