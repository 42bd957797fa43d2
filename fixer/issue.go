// Package fixer holds the typed records of the remediation domain (issues,
// fixes, manual escalations) and the fixed catalog of deterministic
// issue-to-fix tools owned by the fix generator agent.
package fixer

import "fmt"

// Issue is a loosely-typed defect record produced by the detector agents.
// The "type" key carries the discriminating tag; the remaining keys are
// detector-specific and pass through untouched.
type Issue = map[string]any

// Fix describes one proposed before/after code change. Fixes are produced
// only by catalog tools and never mutated after creation.
type Fix struct {
	Type        string `json:"type"`
	Before      string `json:"before"`
	After       string `json:"after"`
	Explanation string `json:"explanation"`
}

// Map renders the fix in the wire shape shared with the summarizer and the
// diff builder.
func (f Fix) Map() map[string]any {
	return map[string]any{
		"type":        f.Type,
		"before":      f.Before,
		"after":       f.After,
		"explanation": f.Explanation,
	}
}

// ManualFixEntry flags an issue that could not be auto-resolved. Entries are
// append-only: once a stage escalates, no later stage may revoke it.
type ManualFixEntry struct {
	Issue  string `json:"issue"`
	Reason string `json:"reason"`
}

// InputKind discriminates the three shapes an issue payload can arrive in.
type InputKind int

const (
	// KindSingle is one issue record.
	KindSingle InputKind = iota
	// KindBatch is a list whose elements may or may not be records.
	KindBatch
	// KindOpaque is an unstructured string treated as a freeform issue.
	KindOpaque
)

// IssueInput is the explicit tagged variant for the polymorphic issue
// payload. Catalog tools pattern-match on the kind instead of re-inspecting
// runtime types, so the one place that coerces arbitrary payloads is
// CoerceIssueInput.
type IssueInput struct {
	kind   InputKind
	single Issue
	batch  []any
	opaque string
}

// SingleIssue wraps one issue record.
func SingleIssue(issue Issue) IssueInput {
	return IssueInput{kind: KindSingle, single: issue}
}

// BatchIssues wraps a list of candidate records. Elements are kept as-is;
// tools skip non-record elements when they map over the batch.
func BatchIssues(items []any) IssueInput {
	return IssueInput{kind: KindBatch, batch: items}
}

// OpaqueIssue wraps an unstructured description.
func OpaqueIssue(text string) IssueInput {
	return IssueInput{kind: KindOpaque, opaque: text}
}

// CoerceIssueInput maps an arbitrary payload onto the variant. Anything that
// is neither a record, a list, nor a string is stringified and treated as
// opaque, keeping the catalog contract total.
func CoerceIssueInput(v any) IssueInput {
	switch value := v.(type) {
	case nil:
		return BatchIssues(nil)
	case IssueInput:
		return value
	case Issue:
		return SingleIssue(value)
	case []any:
		return BatchIssues(value)
	case []Issue:
		items := make([]any, len(value))
		for i, rec := range value {
			items[i] = rec
		}
		return BatchIssues(items)
	case string:
		return OpaqueIssue(value)
	default:
		return OpaqueIssue(fmt.Sprint(v))
	}
}

// Kind reports the variant tag.
func (in IssueInput) Kind() InputKind { return in.kind }

// Single returns the wrapped record; valid only for KindSingle.
func (in IssueInput) Single() Issue { return in.single }

// Batch returns the wrapped list; valid only for KindBatch.
func (in IssueInput) Batch() []any { return in.batch }

// Opaque returns the wrapped string; valid only for KindOpaque.
func (in IssueInput) Opaque() string { return in.opaque }

// TypeTag extracts the discriminating tag from a record, or "" when absent.
func TypeTag(issue Issue) string {
	if tag, ok := issue["type"].(string); ok {
		return tag
	}
	return ""
}
