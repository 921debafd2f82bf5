// Package text turns user-submitted text into safe HTML for the feed.
package text

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextProcessor shows text literally: markup characters are escaped, never
// interpreted, and line breaks are kept.
type TextProcessor struct {
	policy *bluemonday.Policy
}

func New() *TextProcessor {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("br")
	return &TextProcessor{policy: policy}
}

// Render escapes text and turns newlines into <br>.
func (tp *TextProcessor) Render(text string) template.HTML {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = template.HTMLEscapeString(line)
	}
	return template.HTML(tp.policy.Sanitize(strings.Join(lines, "<br>")))
}
