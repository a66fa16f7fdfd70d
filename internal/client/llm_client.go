package client

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/summarizer/api/internal/config"
)

// LLMClient wraps one OpenAI-compatible completion endpoint. The service
// runs two of these: the summarization model and the QA model.
type LLMClient struct {
	api   *openai.Client
	model string
	cfg   config.LLMConfig
}

// NewLLMClient creates a client for an OpenAI-compatible endpoint
func NewLLMClient(cfg config.LLMConfig) *LLMClient {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL

	return &LLMClient{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
		cfg:   cfg,
	}
}

// Model returns the configured model name
func (c *LLMClient) Model() string {
	return c.model
}

// IsConfigured returns true if the client has an endpoint to talk to
func (c *LLMClient) IsConfigured() bool {
	return c.cfg.BaseURL != ""
}

// Completion sends a raw completion request and returns the generated text
func (c *LLMClient) Completion(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.api.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   c.cfg.MaxCompletion,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Text, nil
}

// ChatCompletion sends a chat completion request. Mistral models do not
// support the system role, so the system prompt is folded into a single
// user message using the chat markup the model was trained on.
func (c *LLMClient) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if strings.HasPrefix(c.model, "mistral") {
		messages = []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: FormatMistralPrompt(system, user)},
		}
	} else {
		messages = []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.cfg.MaxCompletion,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// FormatMistralPrompt folds a system prompt and user prompt into the
// chat-markup format mistral instruct models expect.
func FormatMistralPrompt(system, user string) string {
	const prefix = "<|im_start|>"
	const suffix = "<|im_end|>\n"

	var b strings.Builder
	b.WriteString(prefix + "system\n" + system + suffix)
	b.WriteString(prefix + "user\n" + user + suffix)
	b.WriteString(prefix + "assistant\n")
	return b.String()
}

// EstimateTokens gives a rough token count for budgeting prompts against
// the model context window. Uses the max of a word-based and a char-based
// estimate, which overestimates slightly and is safe for budgeting.
func EstimateTokens(text string) int {
	wordEst := float64(len(strings.Fields(text))) / 0.75
	charEst := float64(len(text)) / 3.0
	if wordEst > charEst {
		return int(wordEst)
	}
	return int(charEst)
}
