// In file: internal/llm/provider.go
package llm

import (
	"context"
	"fmt"
)

// Provider names accepted by NewClient.
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderMistral   = "mistral"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Providers lists every supported provider name.
var Providers = []string{ProviderGroq, ProviderOpenAI, ProviderMistral, ProviderAnthropic, ProviderGemini}

// NewClient builds the LLMClient for provider. An empty baseURL selects the
// provider's public endpoint.
func NewClient(ctx context.Context, provider, apiKey, baseURL string) (LLMClient, error) {
	switch provider {
	case ProviderGroq:
		return NewOpenAIClient(apiKey, orDefault(baseURL, GroqChatURL))
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey, orDefault(baseURL, OpenAIChatURL))
	case ProviderMistral:
		return NewOpenAIClient(apiKey, orDefault(baseURL, MistralChatURL))
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey, baseURL)
	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
