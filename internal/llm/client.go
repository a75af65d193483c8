// In file: internal/llm/client.go
package llm

import (
	"context"
	"errors"
	"strings"
)

// =================================================================================
// Core Data Structures
// =================================================================================

// Role represents the originator of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerationConfig holds the parameters that control a single completion.
type GenerationConfig struct {
	// The specific model to use (e.g., "llama3-8b-8192", "gemini-1.5-flash").
	Model string
	// Controls randomness. A pointer distinguishes an explicit 0 from "provider default".
	Temperature *float32
	// The maximum number of tokens to generate in the response.
	MaxTokens int
	// Nucleus sampling.
	TopP *float32
	// Stop sequences; generation halts before emitting any of them.
	Stop []string
}

// Usage reports token accounting for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage record into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// GenerationResult holds the complete output from an LLM call.
type GenerationResult struct {
	// The generated text content from the model.
	Content string
	// Token usage statistics for the generation request.
	Usage Usage
}

// =================================================================================
// LLM Client Interface
// =================================================================================

// LLMClient is the interface every model backend implements: prompt in, text out.
// Implementations make exactly one request per call and never retry.
type LLMClient interface {
	Generate(ctx context.Context, messages []Message, config *GenerationConfig) (*GenerationResult, error)
}

// ErrEmptyCompletion is returned when a backend answers with no text at all.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Complete sends a single user prompt and returns the trimmed text of the reply.
func Complete(ctx context.Context, client LLMClient, prompt string, config *GenerationConfig) (string, error) {
	result, err := client.Generate(ctx, []Message{{Role: RoleUser, Content: prompt}}, config)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(result.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// Float32 returns a pointer to v, for the optional sampling fields of GenerationConfig.
func Float32(v float32) *float32 {
	return &v
}
