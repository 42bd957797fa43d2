// Package agents implements the five collaborating agents of the remediation
// pipeline and the workflow that chains them: layout validation, content
// healing, fix generation, code optimization, and user approval.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lexcodex/pagemend/framework"
)

// Planner is the bounded single-shot planning step. Given a natural-language
// issue summary and a tool catalog it asks the language model which tool (if
// any) addresses the summary, invokes that tool at most once, and returns the
// structured result. There is deliberately no loop construct here: the
// one-invocation cap is a cost and safety control, and the shape of Plan
// makes it impossible to exceed.
type Planner struct {
	Model   framework.LanguageModel
	Tools   *framework.ToolRegistry
	Mission string
	Options *framework.LLMOptions
}

// decision models the JSON object the model is instructed to emit.
type decision struct {
	Thought   string         `json:"thought"`
	Tool      string         `json:"tool"`
	Action    string         `json:"action"`
	Arguments map[string]any `json:"arguments"`
	Complete  bool           `json:"complete"`
}

// Plan runs the single planning round. It never returns an error: a failed
// or unparseable capability call degrades to a result the fallback classifier
// will escalate, and a result naming an unregistered tool is passed through
// untouched so the classifier can flag the unsupported action.
//
// payload is the structured issue data handed to the selected tool when the
// model does not supply explicit arguments.
func (p *Planner) Plan(ctx context.Context, summary string, payload any) any {
	if p.Model == nil {
		return degradedResult()
	}
	resp, err := p.Model.Generate(ctx, p.buildPrompt(summary), p.Options)
	if err != nil || resp == nil {
		return degradedResult()
	}

	dec, ok := parseDecision(resp.Text)
	if !ok {
		// Not a tool invocation. Surface the raw text so the classifier can
		// recognize generic non-actionable advice.
		if text := strings.TrimSpace(resp.Text); text != "" {
			return text
		}
		return degradedResult()
	}

	name := dec.Tool
	if name == "" {
		name = dec.Action
	}
	if name == "" || name == "none" {
		if thought := strings.TrimSpace(dec.Thought); thought != "" {
			return thought
		}
		return degradedResult()
	}

	tool, registered := p.Tools.Get(name)
	if !registered {
		return map[string]any{"tool": name, "fixes": []any{}}
	}

	result := tool.Invoke(p.toolInput(dec, payload))
	if result == nil {
		result = map[string]any{}
	}
	result["tool"] = name
	return result
}

// toolInput prefers arguments the model supplied, falling back to the
// caller's structured payload.
func (p *Planner) toolInput(dec decision, payload any) any {
	if dec.Arguments != nil {
		if issue, ok := dec.Arguments["issue"]; ok {
			return issue
		}
		if issues, ok := dec.Arguments["issues"]; ok {
			return issues
		}
		if len(dec.Arguments) > 0 {
			return dec.Arguments
		}
	}
	return payload
}

func (p *Planner) buildPrompt(summary string) string {
	var tools []string
	for _, tool := range p.Tools.All() {
		tools = append(tools, fmt.Sprintf("- %s: %s", tool.Name(), tool.Description()))
	}
	mission := p.Mission
	if mission == "" {
		mission = "You select remediation tools for detected web page issues."
	}
	return fmt.Sprintf(`%s

Input:
%s

Available tools:
%s

Reply with exactly one JSON object: {"thought": "...", "tool": "tool_name or none", "arguments": {...}, "complete": bool}
IMPORTANT: Only use the available tools. Do NOT use 'manual fix', 'None', or any unsupported action. If a fix cannot be automated, return a message explaining why.`,
		mission, summary, strings.Join(tools, "\n"))
}

// degradedResult is the "no actionable fix" shape returned when the
// capability output cannot be used at all.
func degradedResult() map[string]any {
	return map[string]any{"fixes": []any{}}
}

// parseDecision extracts the first JSON object from the model output. Models
// routinely wrap the object in prose or code fences, so the parse tolerates
// surrounding text.
func parseDecision(raw string) (decision, bool) {
	snippet := extractJSON(raw)
	if snippet == "" {
		return decision{}, false
	}
	var dec decision
	if err := json.Unmarshal([]byte(snippet), &dec); err != nil {
		return decision{}, false
	}
	return dec, true
}

// extractJSON returns the outermost brace-delimited substring, or "" when the
// text carries no object at all.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end >= start {
		return raw[start : end+1]
	}
	return ""
}
