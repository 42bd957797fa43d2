package agents

import (
	"context"
	"fmt"

	"github.com/lexcodex/pagemend/fixer"
	"github.com/lexcodex/pagemend/framework"
)

// FixGeneratorAgent turns detected issues into concrete before/after code
// changes. It routes the issue summary through the bounded planner to one of
// the three catalog tools and filters the outcome through the fallback
// classifier, so the stage result is always well-formed: either fixes or a
// manual escalation, never an error.
type FixGeneratorAgent struct {
	planner    *Planner
	classifier Classifier
	catalog    *framework.ToolRegistry
}

// NewFixGeneratorAgent wires the agent with an injected language model. The
// tool catalog and the classifier's valid-action set are static.
func NewFixGeneratorAgent(model framework.LanguageModel, options *framework.LLMOptions) *FixGeneratorAgent {
	catalog := fixer.NewCatalog()
	return &FixGeneratorAgent{
		planner: &Planner{
			Model: model,
			Tools: catalog,
			Mission: "You are a Fix Generator Agent specialized in creating solutions for web issues. " +
				"Your goal is to generate fixes for layout problems, content issues, JavaScript errors, CSS conflicts, and responsive design problems.",
			Options: options,
		},
		classifier: Classifier{ValidTools: catalog.Names()},
		catalog:    catalog,
	}
}

// Catalog exposes the agent's tool registry, mainly for direct invocation in
// diagnostics and tests.
func (a *FixGeneratorAgent) Catalog() *framework.ToolRegistry { return a.catalog }

// Run generates fixes for the issues payload. The input carries an "issues"
// map with "layout" and "content" entries holding the upstream detector
// payloads. Run never returns an error to its caller.
func (a *FixGeneratorAgent) Run(ctx context.Context, input map[string]any) map[string]any {
	issues, _ := input["issues"].(map[string]any)
	summary := issueSummary(issues)
	raw := a.planner.Plan(ctx, summary, combinedIssueList(issues))
	return a.classifier.Classify(raw, summary)
}

// issueSummary renders the natural-language summary handed to the planner.
func issueSummary(issues map[string]any) string {
	return fmt.Sprintf("Layout Issues: %v\nContent Issues: %v",
		orEmptyList(issues["layout"]), orEmptyList(issues["content"]))
}

func orEmptyList(value any) any {
	if value == nil {
		return []any{}
	}
	return value
}

// combinedIssueList flattens the per-detector payloads into one batch so a
// tool invoked without explicit arguments still receives every issue record.
func combinedIssueList(issues map[string]any) []any {
	var combined []any
	for _, category := range []string{"layout", "content"} {
		payload, ok := issues[category].(map[string]any)
		if !ok {
			continue
		}
		if list, ok := payload["issues"].([]any); ok {
			combined = append(combined, list...)
		}
	}
	return combined
}
