package agents

import (
	"context"
	"regexp"
	"strings"
)

var fixedPixelWidth = regexp.MustCompile(`width:\s*\d+px`)

// LayoutValidatorAgent scans a page bundle for layout defects. The heuristics
// are deliberately shallow string checks; the downstream fix catalog only
// understands a fixed set of type tags, so the detector's job is to produce
// those tags, not to parse CSS properly.
type LayoutValidatorAgent struct{}

// NewLayoutValidatorAgent builds the detector.
func NewLayoutValidatorAgent() *LayoutValidatorAgent { return &LayoutValidatorAgent{} }

// Run inspects the "css" and "html" fields of the input and reports layout
// issues. The result always carries an "issues" list, possibly empty.
func (a *LayoutValidatorAgent) Run(_ context.Context, input map[string]any) map[string]any {
	css := stringValue(input["css"])
	issues := make([]any, 0)

	if strings.Contains(css, "position: absolute") {
		issues = append(issues, map[string]any{
			"type":        "positioning",
			"description": "Absolutely positioned element can overlap surrounding content",
		})
	}
	if fixedPixelWidth.MatchString(css) {
		issues = append(issues, map[string]any{
			"type":        "responsive",
			"description": "Fixed pixel width breaks small viewports",
		})
	}
	return map[string]any{"issues": issues}
}
