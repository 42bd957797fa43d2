package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type namedTool struct{ name string }

func (t namedTool) Name() string              { return t.name }
func (t namedTool) Description() string       { return "test tool" }
func (t namedTool) Invoke(any) map[string]any { return map[string]any{} }

func TestToolRegistryRejectsDuplicates(t *testing.T) {
	registry := NewToolRegistry()
	assert.NoError(t, registry.Register(namedTool{name: "alpha"}))
	assert.Error(t, registry.Register(namedTool{name: "alpha"}))
}

func TestToolRegistryNamesSorted(t *testing.T) {
	registry := NewToolRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		assert.NoError(t, registry.Register(namedTool{name: name}))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, registry.Names())

	tool, ok := registry.Get("mid")
	assert.True(t, ok)
	assert.Equal(t, "mid", tool.Name())

	_, ok = registry.Get("missing")
	assert.False(t, ok)
}
