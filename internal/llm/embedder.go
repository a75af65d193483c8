// In file: internal/llm/embedder.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/generative-ai-go/genai"
	"github.com/redis/go-redis/v9"

	cacheversion "github.com/dileep-u-k/agent-gateway/internal/version"
)

// Embedder turns texts into vectors. The returned slice is parallel to texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// =================================================================================
// OpenAI-compatible embeddings
// =================================================================================

const defaultEmbeddingModel = "text-embedding-3-small"

// OpenAIEmbedder calls an OpenAI-compatible /v1/embeddings endpoint.
type OpenAIEmbedder struct {
	endpoint jsonEndpoint
	model    string
}

var _ Embedder = (*OpenAIEmbedder)(nil)

func NewOpenAIEmbedder(apiKey, url, model string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("embedding API key cannot be empty")
	}
	return &OpenAIEmbedder{
		endpoint: jsonEndpoint{
			api:     "embedding",
			url:     orDefault(url, OpenAIEmbeddingsURL),
			headers: bearer(apiKey),
			client:  &http.Client{Timeout: 30 * time.Second},
		},
		model: orDefault(model, defaultEmbeddingModel),
	}, nil
}

// Embed sends all texts in one batch request. Vectors are placed by the index
// the API reports, which need not follow input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}{Input: texts, Model: e.model}
	var resp struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := e.endpoint.post(ctx, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("mismatch between inputs (%d) and embeddings (%d)", len(texts), len(resp.Data))
	}
	vectors := make([][]float32, len(texts))
	for i, d := range resp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(texts) {
			idx = i
		}
		vectors[idx] = d.Embedding
	}
	return vectors, nil
}

// =================================================================================
// Gemini embeddings
// =================================================================================

// GeminiEmbedder embeds through a Gemini embedding model. Obtain one from GeminiClient.Embedder.
type GeminiEmbedder struct {
	model *genai.EmbeddingModel
}

var _ Embedder = (*GeminiEmbedder)(nil)

func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		res, err := e.model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, fmt.Errorf("gemini embedding failed: %w", err)
		}
		if res.Embedding == nil {
			return nil, errors.New("gemini returned no embedding")
		}
		vectors[i] = res.Embedding.Values
	}
	return vectors, nil
}

// =================================================================================
// Lexical embeddings
// =================================================================================

// LexicalEmbedder hashes word counts into a fixed number of buckets. It needs no
// credentials or network, so document QA keeps working without an embedding provider.
type LexicalEmbedder struct {
	dims int
}

var _ Embedder = (*LexicalEmbedder)(nil)

func NewLexicalEmbedder(dims int) *LexicalEmbedder {
	if dims <= 0 {
		dims = 512
	}
	return &LexicalEmbedder{dims: dims}
}

func (e *LexicalEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dims)
		for _, token := range tokenize(text) {
			h := fnv.New32a()
			h.Write([]byte(token))
			vec[h.Sum32()%uint32(e.dims)]++
		}
		for j, v := range vec {
			if v > 0 {
				// Dampen repeated terms.
				vec[j] = float32(1 + math.Log(float64(v)))
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true, "of": true,
	"to": true, "in": true, "on": true, "and": true, "or": true, "for": true, "what": true,
	"who": true, "how": true, "does": true, "do": true, "it": true, "this": true, "that": true,
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if !stopWords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// =================================================================================
// Redis-cached embeddings
// =================================================================================

const (
	embeddingCachePrefix = "embeddingcache"
	embeddingCacheTTL    = 7 * 24 * time.Hour
)

// CachedEmbedder fronts another Embedder with a Redis cache. Keys carry the corpus
// version and the embedder namespace, so switching models never serves stale vectors.
// Redis failures are logged and treated as misses.
type CachedEmbedder struct {
	inner     Embedder
	rdb       *redis.Client
	namespace string
}

var _ Embedder = (*CachedEmbedder)(nil)

func NewCachedEmbedder(inner Embedder, rdb *redis.Client, namespace string) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, rdb: rdb, namespace: namespace}
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = cacheversion.GenerateVersionedCacheKey(embeddingCachePrefix, e.namespace+"::"+text)
	}

	vectors := make([][]float32, len(texts))
	var missIdx []int
	cached, err := e.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("Redis MGET error for embeddings: %v", err)
		cached = make([]interface{}, len(texts))
	}
	for i, val := range cached {
		s, ok := val.(string)
		if !ok {
			missIdx = append(missIdx, i)
			continue
		}
		if err := json.Unmarshal([]byte(s), &vectors[i]); err != nil {
			log.Printf("Error unmarshalling cached embedding: %v", err)
			missIdx = append(missIdx, i)
		}
	}
	if len(missIdx) == 0 {
		return vectors, nil
	}

	missTexts := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = texts[i]
	}
	fresh, err := e.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	pipe := e.rdb.Pipeline()
	for j, i := range missIdx {
		vectors[i] = fresh[j]
		if b, err := json.Marshal(fresh[j]); err == nil {
			pipe.Set(ctx, keys[i], b, embeddingCacheTTL)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Failed to cache embeddings in Redis: %v", err)
	}
	log.Printf("Embedding cache: %d hit, %d miss", len(texts)-len(missIdx), len(missIdx))
	return vectors, nil
}
