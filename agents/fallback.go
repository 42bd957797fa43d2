package agents

import (
	"fmt"
	"strings"

	"github.com/lexcodex/pagemend/fixer"
)

// nonActionableMarker is the phrase that identifies generic advice in a raw
// string result. A "best practice" suggestion carries no concrete
// before/after change, so it is never accepted as an automated fix.
const nonActionableMarker = "best practice"

const reasonNoAutomatedFix = "No automated fix could be generated. Manual intervention required."

// Classifier decides whether a planner result is usable or must be escalated
// to manual review. Classification is a pure function of the result and the
// static tool catalog: no hidden state, no capability calls.
type Classifier struct {
	// ValidTools is the complete set of supported action names.
	ValidTools []string
	// PayloadKeys are the result keys whose non-empty value marks the result
	// as actionable. Empty means the default of {"fixes"}.
	PayloadKeys []string
}

// Classify applies the acceptance rules in order:
//
//  1. A result naming an action outside ValidTools escalates as unsupported.
//  2. A result with no actionable payload, or a raw string carrying only
//     generic advice, escalates as "no automated fix".
//  3. Anything else passes through unchanged.
//
// Escalations always return the empty-fix shape with a single ManualFixEntry
// built from the issue summary.
func (c Classifier) Classify(result any, summary string) map[string]any {
	switch value := result.(type) {
	case map[string]any:
		if action := claimedAction(value); action != "" && !c.supported(action) {
			return escalate(summary, fmt.Sprintf("Cannot auto-fix with available tools. Action '%s' is not supported.", action))
		}
		if !c.actionable(value) {
			return escalate(summary, reasonNoAutomatedFix)
		}
		return value
	case string:
		if strings.Contains(value, nonActionableMarker) {
			return escalate(summary, reasonNoAutomatedFix)
		}
		if strings.TrimSpace(value) == "" {
			return escalate(summary, reasonNoAutomatedFix)
		}
		return map[string]any{"result": value}
	default:
		return escalate(summary, reasonNoAutomatedFix)
	}
}

func (c Classifier) supported(action string) bool {
	for _, name := range c.ValidTools {
		if name == action {
			return true
		}
	}
	return false
}

func (c Classifier) actionable(result map[string]any) bool {
	keys := c.PayloadKeys
	if len(keys) == 0 {
		keys = []string{"fixes"}
	}
	for _, key := range keys {
		if value, ok := result[key]; ok && nonEmpty(value) {
			return true
		}
	}
	return false
}

func claimedAction(result map[string]any) string {
	if tool, ok := result["tool"].(string); ok && tool != "" {
		return tool
	}
	if action, ok := result["action"].(string); ok && action != "" {
		return action
	}
	return ""
}

func nonEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func escalate(summary, reason string) map[string]any {
	return map[string]any{
		"fixes": []any{},
		"manual_fix_required": []fixer.ManualFixEntry{
			{Issue: summary, Reason: reason},
		},
	}
}
