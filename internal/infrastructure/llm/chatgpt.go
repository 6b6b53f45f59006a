package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"TOSAnalyzer/internal/config"
	"TOSAnalyzer/internal/ports"
)

const defaultSystemPrompt = "You summarize terms of service documents for ordinary users in a few plain sentences."

// ChatGPTClient summarizes documents through an OpenAI-compatible chat API.
type ChatGPTClient struct {
	client       *openai.Client
	model        string
	systemPrompt string
	maxTokens    int
}

var _ ports.Summarizer = (*ChatGPTClient)(nil)
var _ ports.ReadinessChecker = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration. Without an API key the
// client reports ports.ErrSummarizerUnavailable on every call.
func NewChatGPTClient(cfg config.ChatGPTConfig) *ChatGPTClient {
	if strings.TrimSpace(cfg.APIKey) == "" || cfg.Model == "" {
		return &ChatGPTClient{}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	}

	return &ChatGPTClient{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: safePrompt(cfg.SystemPrompt),
		maxTokens:    cfg.MaxTokens,
	}
}

// Summarize sends the document as a user message and returns the first choice.
func (c *ChatGPTClient) Summarize(ctx context.Context, text string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("chatgpt client misconfigured: %w", ports.ErrSummarizerUnavailable)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}
	if c.maxTokens > 0 {
		req.MaxCompletionTokens = c.maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chatgpt completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chatgpt returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Ready checks that the configured model is visible to the API key.
func (c *ChatGPTClient) Ready(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ports.ErrSummarizerUnavailable
	}
	if _, err := c.client.GetModel(ctx, c.model); err != nil {
		return fmt.Errorf("chatgpt model %s: %w", c.model, err)
	}
	return nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return defaultSystemPrompt
	}
	return prompt
}
