package framework

import (
	"fmt"
	"sort"
	"sync"
)

// Tool is a deterministic capability owned by an agent. The input is
// intentionally loose: catalog tools accept a single issue record, a list of
// records, or an opaque string, and always return a JSON-serializable map.
// Tools never return errors; an unusable input yields an empty result.
type Tool interface {
	Name() string
	Description() string
	Invoke(input any) map[string]any
}

// ToolRegistry holds an agent's fixed tool catalog. Planners consult it to
// discover the available actions and the fallback classifier consults it to
// validate the action a result claims to have taken.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewToolRegistry builds an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name()]; exists {
		return fmt.Errorf("tool %s already registered", tool.Name())
	}
	r.tools[tool.Name()] = tool
	return nil
}

// Get fetches a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// All returns every registered tool.
func (r *ToolRegistry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

// Names returns the sorted tool names. This is the valid-action set used by
// the fallback classifier.
func (r *ToolRegistry) Names() []string {
	tools := r.All()
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name())
	}
	return names
}
