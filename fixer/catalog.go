package fixer

import "github.com/lexcodex/pagemend/framework"

// Tool names of the fix generator's catalog. The fallback classifier treats
// this set as the complete list of supported actions.
const (
	ToolLayoutFix  = "generate_layout_fix"
	ToolContentFix = "generate_content_fix"
	ToolScriptFix  = "generate_js_fix"
)

// NewCatalog returns the fix generator's registry: three deterministic
// template tools, one per defect family.
func NewCatalog() *framework.ToolRegistry {
	registry := framework.NewToolRegistry()
	for _, tool := range []framework.Tool{layoutFixTool{}, contentFixTool{}, scriptFixTool{}} {
		// Names are compile-time constants, duplicates are impossible.
		_ = registry.Register(tool)
	}
	return registry
}

// dispatch maps a recognized type tag to its fixed fix template. Unrecognized
// tags return no fixes at all: the record is dropped silently rather than
// escalated, a permissive behavior kept on purpose (the fallback classifier
// only sees the aggregate result, not per-record misses).
type dispatch func(issue Issue) []Fix

// apply runs the shared polymorphic-input contract: a single record goes
// through dispatch directly, a batch maps dispatch over its record elements
// (silently skipping anything that is not a record, in input order), and an
// opaque string is handed to the tool-specific fallback.
func apply(in IssueInput, match dispatch, opaque func(text string) []Fix) map[string]any {
	var fixes []Fix
	switch in.Kind() {
	case KindSingle:
		fixes = match(in.Single())
	case KindBatch:
		for _, element := range in.Batch() {
			record, ok := element.(map[string]any)
			if !ok {
				continue
			}
			fixes = append(fixes, match(record)...)
		}
	case KindOpaque:
		fixes = opaque(in.Opaque())
	}
	return fixesPayload(fixes)
}

func fixesPayload(fixes []Fix) map[string]any {
	out := make([]any, 0, len(fixes))
	for _, fix := range fixes {
		out = append(out, fix.Map())
	}
	return map[string]any{"fixes": out}
}

// layoutFixTool repairs positioning and responsiveness defects in CSS.
type layoutFixTool struct{}

func (layoutFixTool) Name() string        { return ToolLayoutFix }
func (layoutFixTool) Description() string { return "Generates fixes for layout issues" }

func (layoutFixTool) Invoke(input any) map[string]any {
	return apply(CoerceIssueInput(input), layoutDispatch, func(text string) []Fix {
		// A freeform layout complaint still yields a best-effort record with
		// the description carried in the explanation. The content and script
		// tools do not do this; the asymmetry is inherited behavior.
		return []Fix{{Type: "layout_fix", Explanation: text}}
	})
}

func layoutDispatch(issue Issue) []Fix {
	switch TypeTag(issue) {
	case "positioning":
		return []Fix{{
			Type:        "css_fix",
			Before:      "position: absolute;",
			After:       "position: relative;\nz-index: 1;",
			Explanation: "Changed to relative positioning to prevent overlap",
		}}
	case "responsive":
		return []Fix{{
			Type:        "css_fix",
			Before:      "width: 300px;",
			After:       "width: 100%;\nmax-width: 300px;",
			Explanation: "Made width responsive with max-width constraint",
		}}
	}
	return nil
}

// contentFixTool repairs placeholder text and broken media references.
type contentFixTool struct{}

func (contentFixTool) Name() string        { return ToolContentFix }
func (contentFixTool) Description() string { return "Generates fixes for content issues" }

func (contentFixTool) Invoke(input any) map[string]any {
	return apply(CoerceIssueInput(input), contentDispatch, func(string) []Fix { return nil })
}

func contentDispatch(issue Issue) []Fix {
	switch TypeTag(issue) {
	case "placeholder":
		return []Fix{{
			Type:        "content_fix",
			Before:      "Lorem ipsum dolor sit amet",
			After:       "[Add relevant content here]",
			Explanation: "Remove lorem ipsum placeholder",
		}}
	case "missing_image":
		return []Fix{{
			Type:        "html_fix",
			Before:      `<img src="#" alt="">`,
			After:       `<img src="path/to/image.jpg" alt="Descriptive text">`,
			Explanation: "Add proper image source and alt text",
		}}
	}
	return nil
}

// scriptFixTool repairs common JavaScript defects.
type scriptFixTool struct{}

func (scriptFixTool) Name() string        { return ToolScriptFix }
func (scriptFixTool) Description() string { return "Generates fixes for JavaScript issues" }

func (scriptFixTool) Invoke(input any) map[string]any {
	return apply(CoerceIssueInput(input), scriptDispatch, func(string) []Fix { return nil })
}

func scriptDispatch(issue Issue) []Fix {
	switch TypeTag(issue) {
	case "syntax_error":
		return []Fix{{
			Type:        "js_fix",
			Before:      "function() { console.log('error'",
			After:       "function() { console.log('error'); }",
			Explanation: "Fixed missing closing bracket and semicolon",
		}}
	case "potential_null":
		return []Fix{{
			Type:        "js_fix",
			Before:      "if (obj.property)",
			After:       "if (obj && obj.property)",
			Explanation: "Added null check for obj",
		}}
	case "missing_element":
		return []Fix{{
			Type:        "js_fix",
			Before:      "document.getElementById('missing-id').innerText = 'Clicked!';",
			After:       "var el = document.getElementById('missing-id');\nif (el) { el.innerText = 'Clicked!'; }",
			Explanation: "Added check for missing element before accessing innerText",
		}}
	}
	return nil
}
