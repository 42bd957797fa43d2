package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexcodex/pagemend/fixer"
	"github.com/lexcodex/pagemend/framework"
)

type stubLLM struct {
	responses     []*framework.LLMResponse
	err           error
	idx           int
	generateCalls int
	prompts       []string
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	s.generateCalls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return nil, s.err
	}
	if s.idx >= len(s.responses) {
		return nil, errors.New("no response")
	}
	resp := s.responses[s.idx]
	s.idx++
	return resp, nil
}

func (s *stubLLM) Chat(ctx context.Context, messages []framework.Message, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	return nil, errors.New("not implemented")
}

func newCatalogPlanner(model framework.LanguageModel) *Planner {
	return &Planner{Model: model, Tools: fixer.NewCatalog()}
}

func TestPlannerInvokesSelectedToolOnce(t *testing.T) {
	llm := &stubLLM{responses: []*framework.LLMResponse{
		{Text: `{"thought":"layout problem","tool":"generate_layout_fix","arguments":{"issue":{"type":"positioning"}},"complete":true}`},
	}}
	planner := newCatalogPlanner(llm)

	result := planner.Plan(context.Background(), "Layout Issues: overlap", nil)
	assert.Equal(t, 1, llm.generateCalls)

	payload, ok := result.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "generate_layout_fix", payload["tool"])
	fixes := payload["fixes"].([]any)
	assert.Len(t, fixes, 1)
}

func TestPlannerUsesFallbackPayloadWithoutArguments(t *testing.T) {
	llm := &stubLLM{responses: []*framework.LLMResponse{
		{Text: `{"thought":"","tool":"generate_js_fix","arguments":{},"complete":true}`},
	}}
	planner := newCatalogPlanner(llm)

	result := planner.Plan(context.Background(), "JS issues", []any{map[string]any{"type": "potential_null"}})
	payload := result.(map[string]any)
	fixes := payload["fixes"].([]any)
	assert.Len(t, fixes, 1)
	assert.Equal(t, "Added null check for obj", fixes[0].(map[string]any)["explanation"])
}

func TestPlannerUnregisteredToolPassedThrough(t *testing.T) {
	llm := &stubLLM{responses: []*framework.LLMResponse{
		{Text: `{"thought":"","tool":"manual fix","arguments":{},"complete":true}`},
	}}
	planner := newCatalogPlanner(llm)

	result := planner.Plan(context.Background(), "anything", nil)
	payload := result.(map[string]any)
	assert.Equal(t, "manual fix", payload["tool"])
	assert.Empty(t, payload["fixes"])
}

func TestPlannerDegradedPaths(t *testing.T) {
	empty := map[string]any{"fixes": []any{}}

	// Missing model.
	planner := &Planner{Tools: fixer.NewCatalog()}
	assert.Equal(t, empty, planner.Plan(context.Background(), "x", nil))

	// Model error.
	planner = newCatalogPlanner(&stubLLM{err: errors.New("connection refused")})
	assert.Equal(t, empty, planner.Plan(context.Background(), "x", nil))

	// Blank output.
	planner = newCatalogPlanner(&stubLLM{responses: []*framework.LLMResponse{{Text: "   "}}})
	assert.Equal(t, empty, planner.Plan(context.Background(), "x", nil))

	// Tool "none" with an empty thought.
	planner = newCatalogPlanner(&stubLLM{responses: []*framework.LLMResponse{
		{Text: `{"thought":"","tool":"none","arguments":{},"complete":true}`},
	}})
	assert.Equal(t, empty, planner.Plan(context.Background(), "x", nil))
}

func TestPlannerSurfacesProseOutput(t *testing.T) {
	planner := newCatalogPlanner(&stubLLM{responses: []*framework.LLMResponse{
		{Text: "As a best practice, review the stylesheet manually."},
	}})
	result := planner.Plan(context.Background(), "x", nil)
	assert.Equal(t, "As a best practice, review the stylesheet manually.", result)
}

func TestPlannerSurfacesThoughtWhenNoTool(t *testing.T) {
	planner := newCatalogPlanner(&stubLLM{responses: []*framework.LLMResponse{
		{Text: `{"thought":"nothing to do here","tool":"none","arguments":{},"complete":true}`},
	}})
	result := planner.Plan(context.Background(), "x", nil)
	assert.Equal(t, "nothing to do here", result)
}

func TestPlannerToleratesFencedJSON(t *testing.T) {
	llm := &stubLLM{responses: []*framework.LLMResponse{
		{Text: "Here is my choice:\n```json\n{\"thought\":\"\",\"tool\":\"generate_content_fix\",\"arguments\":{\"issue\":{\"type\":\"placeholder\"}},\"complete\":true}\n```"},
	}}
	planner := newCatalogPlanner(llm)
	result := planner.Plan(context.Background(), "content", nil)
	payload := result.(map[string]any)
	assert.Equal(t, "generate_content_fix", payload["tool"])
	assert.Len(t, payload["fixes"].([]any), 1)
}

func TestPlannerPromptListsTools(t *testing.T) {
	llm := &stubLLM{responses: []*framework.LLMResponse{{Text: "   "}}}
	planner := newCatalogPlanner(llm)
	planner.Plan(context.Background(), "the summary", nil)

	assert.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "the summary")
	assert.Contains(t, prompt, "generate_layout_fix")
	assert.Contains(t, prompt, "generate_content_fix")
	assert.Contains(t, prompt, "generate_js_fix")
	assert.Contains(t, prompt, "Only use the available tools")
}
