// In file: internal/llm/constants.go
package llm

// This file centralizes constants shared across the clients and services
// in the llm package.
const (
	// defaultMaxTokens applies when a GenerationConfig leaves MaxTokens unset.
	defaultMaxTokens = 1024

	// errorBodyLimit caps how much of a failed response body ends up in an error message.
	errorBodyLimit = 512

	// embeddingBatchSize is the number of chunks sent per embeddings request.
	embeddingBatchSize = 64

	// embeddingWorkers bounds concurrent embedding requests while indexing.
	embeddingWorkers = 4
)

// Provider endpoints for the OpenAI-compatible chat completions API.
const (
	OpenAIChatURL  = "https://api.openai.com/v1/chat/completions"
	GroqChatURL    = "https://api.groq.com/openai/v1/chat/completions"
	MistralChatURL = "https://api.mistral.ai/v1/chat/completions"

	OpenAIEmbeddingsURL = "https://api.openai.com/v1/embeddings"
)
