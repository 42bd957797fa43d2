package agents

import (
	"context"
	"strings"
)

// ContentHealerAgent scans a page bundle for content defects: leftover
// placeholder copy and media references that point nowhere.
type ContentHealerAgent struct{}

// NewContentHealerAgent builds the detector.
func NewContentHealerAgent() *ContentHealerAgent { return &ContentHealerAgent{} }

// Run inspects the "html" field of the input and reports content issues. The
// result always carries an "issues" list, possibly empty.
func (a *ContentHealerAgent) Run(_ context.Context, input map[string]any) map[string]any {
	html := stringValue(input["html"])
	issues := make([]any, 0)

	if strings.Contains(html, "Lorem ipsum") {
		issues = append(issues, map[string]any{
			"type":        "placeholder",
			"description": "Placeholder lorem ipsum copy shipped to production",
		})
	}
	if strings.Contains(html, `<img src="#"`) {
		issues = append(issues, map[string]any{
			"type":        "missing_image",
			"description": "Image tag without a real source or alt text",
		})
	}
	return map[string]any{"issues": issues}
}
