package cleaner

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultMaxRunes caps notification text
const DefaultMaxRunes = 200

// Cleaner turns server-provided strings into plain text safe to show users
type Cleaner struct {
	policy   *bluemonday.Policy
	maxRunes int
}

// NewCleaner creates a cleaner that strips all markup
func NewCleaner() *Cleaner {
	return &Cleaner{policy: bluemonday.StrictPolicy(), maxRunes: DefaultMaxRunes}
}

// WithMaxRunes returns a copy that truncates to n runes, n <= 0 disables truncation
func (c *Cleaner) WithMaxRunes(n int) *Cleaner {
	cp := *c
	cp.maxRunes = n
	return &cp
}

// Text strips tags, decodes entities, collapses whitespace and truncates
func (c *Cleaner) Text(s string) string {
	text := html.UnescapeString(c.policy.Sanitize(s))
	text = strings.Join(strings.Fields(text), " ")

	if c.maxRunes > 0 && utf8.RuneCountInString(text) > c.maxRunes {
		runes := []rune(text)
		text = string(runes[:c.maxRunes]) + "…"
	}
	return text
}

// Map cleans all string values in a decoded JSON object, recursing into
// nested objects and arrays
func (c *Cleaner) Map(data map[string]any) map[string]any {
	result := make(map[string]any, len(data))
	for k, v := range data {
		result[k] = c.value(v)
	}
	return result
}

func (c *Cleaner) value(v any) any {
	switch val := v.(type) {
	case string:
		return c.Text(val)
	case map[string]any:
		return c.Map(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = c.value(item)
		}
		return out
	default:
		return v
	}
}
