// In file: internal/llm/anthropic_client.go
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

const (
	AnthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

type anthropicRequest struct {
	Model         string        `json:"model"`
	System        string        `json:"system,omitempty"`
	Messages      []chatMessage `json:"messages"`
	MaxTokens     int           `json:"max_tokens"`
	Temperature   *float32      `json:"temperature,omitempty"`
	TopP          *float32      `json:"top_p,omitempty"`
	StopSequences []string      `json:"stop_sequences,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	endpoint jsonEndpoint
}

var _ LLMClient = (*AnthropicClient)(nil)

func NewAnthropicClient(apiKey, url string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic API key cannot be empty")
	}
	headers := http.Header{}
	headers.Set("x-api-key", apiKey)
	headers.Set("anthropic-version", anthropicVersion)
	return &AnthropicClient{endpoint: jsonEndpoint{
		api:     "anthropic",
		url:     orDefault(url, AnthropicMessagesURL),
		headers: headers,
		client:  &http.Client{},
	}}, nil
}

// Generate sends one Messages request. System messages move to the top-level
// system field; the API rejects them inside the message list.
func (c *AnthropicClient) Generate(ctx context.Context, messages []Message, config *GenerationConfig) (*GenerationResult, error) {
	req := anthropicRequest{MaxTokens: maxTokensOr(config)}
	if config != nil {
		req.Model = config.Model
		req.Temperature = config.Temperature
		req.TopP = config.TopP
		req.StopSequences = config.Stop
	}
	system, conversation := splitSystem(messages)
	req.System = system
	for _, msg := range conversation {
		req.Messages = append(req.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	var resp anthropicResponse
	if err := c.endpoint.post(ctx, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Content) == 0 {
		return nil, errors.New("no content returned from Anthropic")
	}
	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	in, out := resp.Usage.InputTokens, resp.Usage.OutputTokens
	return &GenerationResult{
		Content: strings.TrimSpace(text.String()),
		Usage:   Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out},
	}, nil
}
