package agents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lexcodex/pagemend/fixer"
	"github.com/lexcodex/pagemend/framework"
)

func sampleChanges() map[string]any {
	return map[string]any{
		"layout": []any{map[string]any{
			"type":        "css_fix",
			"before":      "position: absolute;",
			"after":       "position: relative;",
			"explanation": "Changed to relative positioning",
			"before_line": 12,
			"after_line":  12,
		}},
		"content": []any{map[string]any{
			"type":        "content_fix",
			"before":      "Lorem ipsum",
			"after":       "[Add relevant content here]",
			"explanation": "Remove placeholder",
		}},
		"optimizations": []any{map[string]any{
			"type":       "css_optimization",
			"suggestion": "Combine duplicate selectors",
		}},
	}
}

func TestBuildSummaryImpactRatings(t *testing.T) {
	result := BuildSummary(sampleChanges())
	summary := result["summary"].(map[string]any)

	layout := summary["layout_changes"].([]any)
	assert.Len(t, layout, 1)
	assert.Equal(t, "medium", layout[0].(map[string]any)["impact"])
	assert.Equal(t, "Changed to relative positioning", layout[0].(map[string]any)["description"])

	content := summary["content_changes"].([]any)
	assert.Len(t, content, 1)
	assert.Equal(t, "low", content[0].(map[string]any)["impact"])

	optimizations := summary["optimizations"].([]any)
	assert.Len(t, optimizations, 1)
	assert.Equal(t, "high", optimizations[0].(map[string]any)["impact"])
	assert.Equal(t, "Combine duplicate selectors", optimizations[0].(map[string]any)["description"])
}

func TestBuildSummaryTolerantOfBadInput(t *testing.T) {
	wrapped := BuildSummary("just words")
	summary := wrapped["summary"].(map[string]any)
	assert.Equal(t, "just words", summary["note"])

	sparse := BuildSummary(map[string]any{"layout": []any{"not a record"}})
	categories := sparse["summary"].(map[string]any)
	assert.Empty(t, categories["layout_changes"])
	assert.Empty(t, categories["content_changes"])
}

func TestBuildDiffViews(t *testing.T) {
	result := BuildDiffViews(sampleChanges())
	views := result["diff_views"].([]any)
	assert.Len(t, views, 3)

	// Categories walk in sorted order: content, layout, optimizations.
	first := views[0].(map[string]any)
	assert.Equal(t, "content", first["type"])

	second := views[1].(map[string]any)
	assert.Equal(t, "layout", second["type"])
	assert.Equal(t, "position: absolute;", second["before"])
	lines := second["line_numbers"].(map[string]any)
	assert.Equal(t, 12, lines["before"])
	assert.Equal(t, 12, lines["after"])

	// Optimization records carry no before/after; fields default.
	third := views[2].(map[string]any)
	assert.Equal(t, "", third["before"])
	assert.Equal(t, "", third["after"])
	thirdLines := third["line_numbers"].(map[string]any)
	assert.Equal(t, 0, thirdLines["before"])
}

func TestBuildDiffViewsNonMapPayload(t *testing.T) {
	result := BuildDiffViews([]any{"oops"})
	views := result["diff_views"].([]any)
	assert.Len(t, views, 1)
	assert.Contains(t, views[0].(map[string]any)["note"], "oops")
}

func TestNormalizeAuditEntry(t *testing.T) {
	fromString := NormalizeAuditEntry("quick note")
	assert.Nil(t, fromString.ChangeID)
	assert.Nil(t, fromString.Status)
	assert.Nil(t, fromString.Timestamp)
	assert.Equal(t, "quick note", *fromString.Comments)

	stamp := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	fromMap := NormalizeAuditEntry(map[string]any{
		"change_id": "change-9",
		"status":    "approved",
		"approver":  "dana",
		"timestamp": stamp,
	})
	assert.Equal(t, "change-9", *fromMap.ChangeID)
	assert.Equal(t, "approved", *fromMap.Status)
	assert.Equal(t, "dana", *fromMap.Approver)
	assert.Nil(t, fromMap.Comments)
	assert.Equal(t, stamp, *fromMap.Timestamp)

	fromRFC := NormalizeAuditEntry(map[string]any{"timestamp": "2026-08-20T10:00:00Z"})
	assert.Equal(t, stamp, *fromRFC.Timestamp)

	badTime := NormalizeAuditEntry(map[string]any{"timestamp": "yesterday-ish"})
	assert.Nil(t, badTime.Timestamp)
}

func TestApprovalToolsRegistered(t *testing.T) {
	agent := NewUserApprovalAgent(nil, nil)
	assert.Equal(t, []string{
		"create_diff_view", "generate_summary", "save_approval_log",
	}, agent.tools.Names())
}

func TestApprovalRunMergesUpstreamEscalations(t *testing.T) {
	llm := &stubLLM{responses: []*framework.LLMResponse{
		{Text: `{"thought":"","tool":"generate_summary","arguments":{},"complete":true}`},
	}}
	agent := NewUserApprovalAgent(llm, nil)

	upstream := []fixer.ManualFixEntry{{Issue: "earlier issue", Reason: "No automated fix could be generated. Manual intervention required."}}
	result := agent.Run(context.Background(), map[string]any{
		"changes":             sampleChanges(),
		"manual_fix_required": upstream,
	})

	assert.Contains(t, result, "summary")
	merged := result["manual_fix_required"].([]fixer.ManualFixEntry)
	assert.Len(t, merged, 1)
	assert.Equal(t, "earlier issue", merged[0].Issue)
}

func TestApprovalRunEscalationAppendsNotReplaces(t *testing.T) {
	// Planner returns generic advice; the approval stage adds its own
	// escalation after the upstream one.
	llm := &stubLLM{responses: []*framework.LLMResponse{
		{Text: "as a best practice, have a human review these"},
	}}
	agent := NewUserApprovalAgent(llm, nil)

	upstream := []any{map[string]any{"issue": "old", "reason": "unsupported"}}
	result := agent.Run(context.Background(), map[string]any{
		"changes":             sampleChanges(),
		"manual_fix_required": upstream,
	})

	merged := result["manual_fix_required"].([]fixer.ManualFixEntry)
	assert.Len(t, merged, 2)
	assert.Equal(t, "old", merged[0].Issue)
	assert.Equal(t, "unsupported", merged[0].Reason)
	assert.Equal(t, "No automated fix could be generated. Manual intervention required.", merged[1].Reason)
}

func TestApprovalRunWithoutModelEscalates(t *testing.T) {
	agent := NewUserApprovalAgent(nil, nil)
	result := agent.Run(context.Background(), map[string]any{"changes": sampleChanges()})

	entries := result["manual_fix_required"].([]fixer.ManualFixEntry)
	assert.Len(t, entries, 1)
	assert.Contains(t, entries[0].Issue, "Proposed Changes:")
}
