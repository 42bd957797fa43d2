package fixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func invoke(t *testing.T, name string, input any) []any {
	t.Helper()
	tool, ok := NewCatalog().Get(name)
	assert.True(t, ok)
	result := tool.Invoke(input)
	fixes, ok := result["fixes"].([]any)
	assert.True(t, ok, "result must carry a fixes list")
	return fixes
}

func TestCatalogRegistersAllTools(t *testing.T) {
	assert.Equal(t, []string{"generate_content_fix", "generate_js_fix", "generate_layout_fix"}, NewCatalog().Names())
}

func TestLayoutFixPositioning(t *testing.T) {
	fixes := invoke(t, ToolLayoutFix, map[string]any{"type": "positioning"})
	assert.Len(t, fixes, 1)
	fix := fixes[0].(map[string]any)
	assert.Equal(t, "css_fix", fix["type"])
	assert.Equal(t, "position: absolute;", fix["before"])
	assert.Equal(t, "position: relative;\nz-index: 1;", fix["after"])
	assert.Equal(t, "Changed to relative positioning to prevent overlap", fix["explanation"])
}

func TestLayoutFixResponsive(t *testing.T) {
	fixes := invoke(t, ToolLayoutFix, map[string]any{"type": "responsive"})
	assert.Len(t, fixes, 1)
	fix := fixes[0].(map[string]any)
	assert.Equal(t, "width: 300px;", fix["before"])
	assert.Equal(t, "width: 100%;\nmax-width: 300px;", fix["after"])
	assert.Equal(t, "Made width responsive with max-width constraint", fix["explanation"])
}

func TestContentFixTemplates(t *testing.T) {
	fixes := invoke(t, ToolContentFix, map[string]any{"type": "placeholder"})
	assert.Len(t, fixes, 1)
	fix := fixes[0].(map[string]any)
	assert.Equal(t, "content_fix", fix["type"])
	assert.Equal(t, "Lorem ipsum dolor sit amet", fix["before"])
	assert.Equal(t, "[Add relevant content here]", fix["after"])

	fixes = invoke(t, ToolContentFix, map[string]any{"type": "missing_image"})
	assert.Len(t, fixes, 1)
	fix = fixes[0].(map[string]any)
	assert.Equal(t, "html_fix", fix["type"])
	assert.Equal(t, `<img src="#" alt="">`, fix["before"])
	assert.Equal(t, `<img src="path/to/image.jpg" alt="Descriptive text">`, fix["after"])
}

func TestScriptFixTemplates(t *testing.T) {
	cases := map[string]string{
		"syntax_error":    "Fixed missing closing bracket and semicolon",
		"potential_null":  "Added null check for obj",
		"missing_element": "Added check for missing element before accessing innerText",
	}
	for tag, explanation := range cases {
		fixes := invoke(t, ToolScriptFix, map[string]any{"type": tag})
		assert.Len(t, fixes, 1, tag)
		fix := fixes[0].(map[string]any)
		assert.Equal(t, "js_fix", fix["type"], tag)
		assert.Equal(t, explanation, fix["explanation"], tag)
	}
}

func TestUnknownTagDroppedSilently(t *testing.T) {
	for _, name := range []string{ToolLayoutFix, ToolContentFix, ToolScriptFix} {
		fixes := invoke(t, name, map[string]any{"type": "mystery"})
		assert.Empty(t, fixes, name)
	}
}

func TestBatchPreservesOrderAndSkipsNonRecords(t *testing.T) {
	fixes := invoke(t, ToolLayoutFix, []any{
		map[string]any{"type": "responsive"},
		"not a record",
		42,
		map[string]any{"type": "positioning"},
		map[string]any{"type": "unknown"},
	})
	assert.Len(t, fixes, 2)
	assert.Equal(t, "Made width responsive with max-width constraint", fixes[0].(map[string]any)["explanation"])
	assert.Equal(t, "Changed to relative positioning to prevent overlap", fixes[1].(map[string]any)["explanation"])
}

func TestToolsAreIdempotent(t *testing.T) {
	input := []any{map[string]any{"type": "positioning"}}
	first := invoke(t, ToolLayoutFix, input)
	second := invoke(t, ToolLayoutFix, input)
	assert.Equal(t, first, second)
}

func TestOpaqueInputPerToolBehavior(t *testing.T) {
	// Layout wraps the freeform text as a best-effort fix record.
	fixes := invoke(t, ToolLayoutFix, "header overlaps the nav on mobile")
	assert.Len(t, fixes, 1)
	fix := fixes[0].(map[string]any)
	assert.Equal(t, "layout_fix", fix["type"])
	assert.Equal(t, "header overlaps the nav on mobile", fix["explanation"])
	assert.Equal(t, "", fix["before"])
	assert.Equal(t, "", fix["after"])

	// Content and script return no fixes for a freeform description.
	assert.Empty(t, invoke(t, ToolContentFix, "weird copy on the landing page"))
	assert.Empty(t, invoke(t, ToolScriptFix, "click handler throws sometimes"))
}

func TestNilAndEmptyInputs(t *testing.T) {
	assert.Empty(t, invoke(t, ToolLayoutFix, nil))
	assert.Empty(t, invoke(t, ToolContentFix, []any{}))
	assert.Empty(t, invoke(t, ToolScriptFix, map[string]any{}))
}
