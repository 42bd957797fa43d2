package agents

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lexcodex/pagemend/fixer"
	"github.com/lexcodex/pagemend/framework"
)

// Approval tool names. They form the valid-action set of the approval stage's
// fallback classifier.
const (
	ToolGenerateSummary = "generate_summary"
	ToolCreateDiffView  = "create_diff_view"
	ToolSaveApprovalLog = "save_approval_log"
)

// Impact ratings are a fixed lookup by change category, never computed from
// the change content itself.
const (
	ImpactLayout        = "medium"
	ImpactContent       = "low"
	ImpactOptimizations = "high"
)

// UserApprovalAgent prepares proposed changes for human sign-off: a grouped
// summary, side-by-side diff views, and a canonical audit-log entry. The
// agent only shapes data; recording a decision durably is the caller's job.
type UserApprovalAgent struct {
	planner    *Planner
	classifier Classifier
	tools      *framework.ToolRegistry
}

// NewUserApprovalAgent wires the agent with an injected language model.
func NewUserApprovalAgent(model framework.LanguageModel, options *framework.LLMOptions) *UserApprovalAgent {
	registry := framework.NewToolRegistry()
	for _, tool := range []framework.Tool{summaryTool{}, diffViewTool{}, approvalLogTool{}} {
		_ = registry.Register(tool)
	}
	return &UserApprovalAgent{
		planner: &Planner{
			Model: model,
			Tools: registry,
			Mission: "You are a User Approval Agent managing the change approval process. " +
				"Your goal is to summarize proposed changes, present clear before/after comparisons, track approval decisions, and maintain audit logs.",
			Options: options,
		},
		classifier: Classifier{
			ValidTools:  registry.Names(),
			PayloadKeys: []string{"summary", "diff_views", "log_entry"},
		},
		tools: registry,
	}
}

// Run builds the approval package for the proposed changes. Manual-fix
// entries accumulated by earlier stages are merged into the output, never
// replaced: an escalation recorded upstream survives every later stage.
func (a *UserApprovalAgent) Run(ctx context.Context, input map[string]any) map[string]any {
	changes, _ := input["changes"].(map[string]any)
	upstream := manualEntries(input["manual_fix_required"])

	summary := fmt.Sprintf("Proposed Changes: %v", changes)
	raw := a.planner.Plan(ctx, summary, changes)
	result := a.classifier.Classify(raw, summary)

	merged := append(upstream, manualEntries(result["manual_fix_required"])...)
	if len(merged) > 0 {
		result["manual_fix_required"] = merged
	}
	return result
}

// manualEntries normalizes the accumulated escalation list out of a stage
// payload, tolerating both the typed and the decoded-JSON representation.
func manualEntries(value any) []fixer.ManualFixEntry {
	switch entries := value.(type) {
	case nil:
		return nil
	case []fixer.ManualFixEntry:
		return append([]fixer.ManualFixEntry(nil), entries...)
	case []any:
		var out []fixer.ManualFixEntry
		for _, element := range entries {
			switch entry := element.(type) {
			case fixer.ManualFixEntry:
				out = append(out, entry)
			case map[string]any:
				out = append(out, fixer.ManualFixEntry{
					Issue:  stringValue(entry["issue"]),
					Reason: stringValue(entry["reason"]),
				})
			}
		}
		return out
	default:
		return nil
	}
}

// BuildSummary groups incoming changes by category and annotates each with
// its fixed impact rating. A non-map payload is wrapped as a single note;
// non-record entries inside a category list are skipped.
func BuildSummary(changes any) map[string]any {
	changeMap, ok := changes.(map[string]any)
	if !ok {
		return map[string]any{"summary": map[string]any{"note": fmt.Sprint(changes)}}
	}
	summary := map[string]any{
		"layout_changes":  summarizeCategory(changeMap["layout"], "explanation", ImpactLayout),
		"content_changes": summarizeCategory(changeMap["content"], "explanation", ImpactContent),
		"optimizations":   summarizeCategory(changeMap["optimizations"], "suggestion", ImpactOptimizations),
	}
	return map[string]any{"summary": summary}
}

func summarizeCategory(value any, descriptionKey, impact string) []any {
	entries := make([]any, 0)
	list, _ := value.([]any)
	for _, element := range list {
		record, ok := element.(map[string]any)
		if !ok {
			continue
		}
		entries = append(entries, map[string]any{
			"type":        record["type"],
			"description": record[descriptionKey],
			"impact":      impact,
		})
	}
	return entries
}

// BuildDiffViews emits a before/after view for every change in every
// category. Missing fields default to empty strings and zero line numbers; a
// non-map payload becomes a single note entry. Categories are walked in
// sorted order so output is deterministic.
func BuildDiffViews(changes any) map[string]any {
	changeMap, ok := changes.(map[string]any)
	if !ok {
		return map[string]any{"diff_views": []any{map[string]any{"note": fmt.Sprint(changes)}}}
	}
	categories := make([]string, 0, len(changeMap))
	for category := range changeMap {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	views := make([]any, 0)
	for _, category := range categories {
		list, _ := changeMap[category].([]any)
		for _, element := range list {
			record, ok := element.(map[string]any)
			if !ok {
				continue
			}
			views = append(views, map[string]any{
				"type":        category,
				"before":      stringValue(record["before"]),
				"after":       stringValue(record["after"]),
				"explanation": stringValue(record["explanation"]),
				"line_numbers": map[string]any{
					"before": intValue(record["before_line"]),
					"after":  intValue(record["after_line"]),
				},
			})
		}
	}
	return map[string]any{"diff_views": views}
}

// NormalizeAuditEntry converts a decision into the canonical audit record. A
// raw string populates only the comments field; a structured decision copies
// whatever fields it carries and leaves the rest null.
func NormalizeAuditEntry(decision any) framework.AuditEntry {
	record, ok := decision.(map[string]any)
	if !ok {
		comment := fmt.Sprint(decision)
		return framework.AuditEntry{Comments: &comment}
	}
	entry := framework.AuditEntry{
		ChangeID: optionalString(record["change_id"]),
		Status:   optionalString(record["status"]),
		Approver: optionalString(record["approver"]),
		Comments: optionalString(record["comments"]),
	}
	entry.Timestamp = optionalTime(record["timestamp"])
	return entry
}

type summaryTool struct{}

func (summaryTool) Name() string        { return ToolGenerateSummary }
func (summaryTool) Description() string { return "Generates summary of proposed changes" }
func (summaryTool) Invoke(input any) map[string]any {
	return BuildSummary(input)
}

type diffViewTool struct{}

func (diffViewTool) Name() string        { return ToolCreateDiffView }
func (diffViewTool) Description() string { return "Creates side-by-side diff view of changes" }
func (diffViewTool) Invoke(input any) map[string]any {
	return BuildDiffViews(input)
}

type approvalLogTool struct{}

func (approvalLogTool) Name() string        { return ToolSaveApprovalLog }
func (approvalLogTool) Description() string { return "Normalizes approval decisions into audit log entries" }
func (approvalLogTool) Invoke(input any) map[string]any {
	return map[string]any{"log_entry": NormalizeAuditEntry(input)}
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func intValue(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func optionalString(value any) *string {
	if value == nil {
		return nil
	}
	s := stringValue(value)
	return &s
}

func optionalTime(value any) *time.Time {
	switch v := value.(type) {
	case time.Time:
		utc := v.UTC()
		return &utc
	case *time.Time:
		return v
	case string:
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			utc := parsed.UTC()
			return &utc
		}
		return nil
	default:
		return nil
	}
}
