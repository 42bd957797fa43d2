package framework

import "context"

// LLMOptions configures language model calls. Keeping the options struct in
// the framework avoids hard-coding backend specific fields in agent code.
type LLMOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Stop        []string
	TopP        float64
}

// LLMResponse is the result of a language model invocation.
type LLMResponse struct {
	Text         string         `json:"text,omitempty"`
	FinishReason string         `json:"finish_reason,omitempty"`
	Usage        map[string]int `json:"usage,omitempty"`
}

// Message is used for chat-like interactions.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LanguageModel is the capability injected into planners. Implementations
// wrap a concrete backend (the llm package ships an Ollama client); tests
// substitute stubs. A slow or hanging call stalls the whole run: the pipeline
// models no timeout of its own, only the caller's context.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string, options *LLMOptions) (*LLMResponse, error)
	Chat(ctx context.Context, messages []Message, options *LLMOptions) (*LLMResponse, error)
}
