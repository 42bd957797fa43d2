// Package llm provides the concrete language-model backend injected into the
// planners: an HTTP client for a local Ollama server.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lexcodex/pagemend/framework"
)

// Client implements framework.LanguageModel for Ollama.
type Client struct {
	Endpoint string
	Model    string
	Debug    bool
	client   *http.Client
}

// NewClient builds a new Ollama client.
func NewClient(endpoint, model string) *Client {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	return &Client{
		Endpoint: endpoint,
		Model:    model,
		client: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

// Generate implements single prompt completion.
func (c *Client) Generate(ctx context.Context, prompt string, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	payload := map[string]any{
		"model":  c.model(options),
		"prompt": prompt,
		"stream": false,
	}
	c.applyOptions(payload, options)
	return c.doRequest(ctx, "/api/generate", payload)
}

// Chat implements chat style conversation.
func (c *Client) Chat(ctx context.Context, messages []framework.Message, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	converted := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, map[string]any{
			"role":    msg.Role,
			"content": msg.Content,
		})
	}
	payload := map[string]any{
		"model":    c.model(options),
		"messages": converted,
		"stream":   false,
	}
	c.applyOptions(payload, options)
	return c.doRequest(ctx, "/api/chat", payload)
}

// SetDebugLogging enables or disables verbose logging for requests/responses.
func (c *Client) SetDebugLogging(enabled bool) {
	c.Debug = enabled
}

func (c *Client) model(options *framework.LLMOptions) string {
	if options != nil && options.Model != "" {
		return options.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return "codellama"
}

func (c *Client) applyOptions(payload map[string]any, options *framework.LLMOptions) {
	if options == nil {
		return
	}
	if options.Temperature != 0 {
		payload["temperature"] = options.Temperature
	}
	if options.MaxTokens != 0 {
		payload["max_tokens"] = options.MaxTokens
	}
	if options.Stop != nil {
		payload["stop"] = options.Stop
	}
	if options.TopP != 0 {
		payload["top_p"] = options.TopP
	}
}

func (c *Client) getHTTPClient() *http.Client {
	if c.client != nil {
		return c.client
	}
	c.client = &http.Client{Timeout: 60 * time.Second}
	return c.client
}

func (c *Client) doRequest(ctx context.Context, path string, payload any) (*framework.LLMResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	c.logf("request %s payload: %s", path, truncate(string(body), 2048))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := strings.TrimSpace(string(msg))
		if detail != "" {
			return nil, fmt.Errorf("ollama error: %s: %s", resp.Status, detail)
		}
		return nil, fmt.Errorf("ollama error: %s", resp.Status)
	}
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logf("response %s payload: %s", path, truncate(string(responseBody), 2048))
	return decodeResponse(responseBody)
}

// ollamaResponse covers both the /api/generate and /api/chat shapes.
type ollamaResponse struct {
	Text            string         `json:"text"`
	Response        string         `json:"response"`
	Message         *ollamaMessage `json:"message"`
	DoneReason      string         `json:"done_reason"`
	Usage           map[string]int `json:"usage"`
	EvalCount       int            `json:"eval_count"`
	PromptEvalCount int            `json:"prompt_eval_count"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func decodeResponse(body []byte) (*framework.LLMResponse, error) {
	var raw ollamaResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	resp := &framework.LLMResponse{
		Text:         firstNonEmpty(raw.Text, raw.Response),
		FinishReason: raw.DoneReason,
		Usage:        normalizeUsage(raw),
	}
	if resp.Text == "" && raw.Message != nil {
		resp.Text = raw.Message.Content
	}
	return resp, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func normalizeUsage(raw ollamaResponse) map[string]int {
	if raw.Usage != nil {
		return raw.Usage
	}
	usage := make(map[string]int)
	if raw.EvalCount > 0 {
		usage["completion_tokens"] = raw.EvalCount
	}
	if raw.PromptEvalCount > 0 {
		usage["prompt_tokens"] = raw.PromptEvalCount
	}
	if len(usage) == 0 {
		return nil
	}
	return usage
}

func (c *Client) logf(format string, args ...any) {
	if !c.Debug {
		return
	}
	log.Printf("[ollama] "+format, args...)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
