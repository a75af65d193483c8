// In file: internal/llm/openai_client.go
package llm

import (
	"context"
	"errors"
	"net/http"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float32      `json:"temperature,omitempty"`
	TopP        *float32      `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
// Groq, OpenAI and Mistral all speak this protocol; only the URL and key differ.
type OpenAIClient struct {
	endpoint jsonEndpoint
}

var _ LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client for the chat completions endpoint at url.
// An empty url selects the OpenAI endpoint.
//
// The HTTP client has no overall timeout: a request lives as long as ctx does.
func NewOpenAIClient(apiKey, url string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	return &OpenAIClient{endpoint: jsonEndpoint{
		api:     "chat completion",
		url:     orDefault(url, OpenAIChatURL),
		headers: bearer(apiKey),
		client:  &http.Client{},
	}}, nil
}

// Generate performs one blocking chat completion request.
func (c *OpenAIClient) Generate(ctx context.Context, messages []Message, config *GenerationConfig) (*GenerationResult, error) {
	req := chatRequest{
		Messages:  make([]chatMessage, len(messages)),
		MaxTokens: maxTokensOr(config),
	}
	if config != nil {
		req.Model = config.Model
		req.Temperature = config.Temperature
		req.TopP = config.TopP
		req.Stop = config.Stop
	}
	for i, msg := range messages {
		req.Messages[i] = chatMessage{Role: string(msg.Role), Content: msg.Content}
	}

	var resp chatResponse
	if err := c.endpoint.post(ctx, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices returned from chat completion API")
	}
	return &GenerationResult{Content: resp.Choices[0].Message.Content, Usage: resp.Usage}, nil
}
