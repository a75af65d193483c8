package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientGenerate(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Decision: CALCULATOR"}}],"usage":{"prompt_tokens":10,"completion_tokens":3,"total_tokens":13}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", server.URL)
	require.NoError(t, err)

	result, err := client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "2+2"}}, &GenerationConfig{
		Model:       "llama3-8b-8192",
		Temperature: Float32(0),
		Stop:        []string{"\nObservation:"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Decision: CALCULATOR", result.Content)
	assert.Equal(t, 13, result.Usage.TotalTokens)

	assert.Equal(t, "llama3-8b-8192", got.Model)
	require.NotNil(t, got.Temperature)
	assert.Zero(t, *got.Temperature)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.Equal(t, []string{"\nObservation:"}, got.Stop)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestOpenAIClientDoesNotRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewOpenAIClient("test-key", server.URL)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "")
	assert.Error(t, err)
}

func TestCompleteRejectsEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"   "}}]}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient("k", server.URL)
	require.NoError(t, err)

	_, err = Complete(context.Background(), client, "hello", nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestAnthropicClientGenerate(t *testing.T) {
	var got anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":" Paris "}],"usage":{"input_tokens":4,"output_tokens":1}}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient("test-key", server.URL)
	require.NoError(t, err)

	result, err := client.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "Be brief."},
		{Role: RoleUser, Content: "Capital of France?"},
	}, &GenerationConfig{Model: "claude-3-haiku", MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "Paris", result.Content)
	assert.Equal(t, 5, result.Usage.TotalTokens)

	assert.Equal(t, "Be brief.", got.System)
	assert.Equal(t, 50, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestNewClientProviders(t *testing.T) {
	for _, provider := range []string{ProviderGroq, ProviderOpenAI, ProviderMistral, ProviderAnthropic} {
		client, err := NewClient(context.Background(), provider, "key", "")
		require.NoError(t, err, provider)
		assert.NotNil(t, client)
	}

	_, err := NewClient(context.Background(), "cohere", "key", "")
	assert.Error(t, err)

	_, err = NewClient(context.Background(), ProviderGroq, "", "")
	assert.Error(t, err)
}
