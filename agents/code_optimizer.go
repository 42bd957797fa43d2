package agents

import "context"

// CodeOptimizerAgent derives optimization suggestions from the fixes the
// generator produced. Suggestions are fixed templates keyed by the fix types
// present: the optimizer proposes follow-up work, it does not rewrite code.
type CodeOptimizerAgent struct{}

// NewCodeOptimizerAgent builds the optimizer.
func NewCodeOptimizerAgent() *CodeOptimizerAgent { return &CodeOptimizerAgent{} }

var optimizationTemplates = map[string]map[string]any{
	"css_fix": {
		"type":       "css_optimization",
		"suggestion": "Combine duplicate selectors and drop unused rules",
	},
	"js_fix": {
		"type":       "js_optimization",
		"suggestion": "Defer non-critical scripts and cache DOM lookups",
	},
	"content_fix": {
		"type":       "asset_optimization",
		"suggestion": "Compress images and lazy-load below-the-fold media",
	},
	"html_fix": {
		"type":       "asset_optimization",
		"suggestion": "Compress images and lazy-load below-the-fold media",
	},
}

// Run maps the accepted fixes onto optimization suggestions, one per distinct
// fix type, in the order fixes appear. The result always carries an
// "optimizations" list, possibly empty.
func (a *CodeOptimizerAgent) Run(_ context.Context, input map[string]any) map[string]any {
	optimizations := make([]any, 0)
	seen := make(map[string]bool)

	fixesPayload, _ := input["fixes"].(map[string]any)
	list, _ := fixesPayload["fixes"].([]any)
	for _, element := range list {
		record, ok := element.(map[string]any)
		if !ok {
			continue
		}
		fixType := stringValue(record["type"])
		template, known := optimizationTemplates[fixType]
		if !known || seen[fixType] {
			continue
		}
		seen[fixType] = true
		optimizations = append(optimizations, map[string]any{
			"type":       template["type"],
			"suggestion": template["suggestion"],
			"source_fix": fixType,
		})
	}
	return map[string]any{"optimizations": optimizations}
}
