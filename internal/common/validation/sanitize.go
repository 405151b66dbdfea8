package validation

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// SanitizeText strips HTML markup from a free-text answer. The result is
// plain text and must still be escaped when rendered as HTML.
func SanitizeText(raw string) string {
	if !strings.ContainsAny(raw, "<>") {
		return raw
	}
	return html.UnescapeString(textSanitizer().Sanitize(raw))
}

// SanitizeData applies SanitizeText to every string value of data, one
// level deep. Non-string values are kept as is.
func SanitizeData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			out[k] = SanitizeText(s)
			continue
		}
		out[k] = v
	}
	return out
}
