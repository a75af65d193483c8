// In file: internal/app/app.go

// Package app is the composition root shared by the gateway server and the CLI.
// It turns a Config into a ready Controller plus the services around it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dileep-u-k/agent-gateway/internal/agent"
	"github.com/dileep-u-k/agent-gateway/internal/config"
	"github.com/dileep-u-k/agent-gateway/internal/llm"
	"github.com/dileep-u-k/agent-gateway/internal/store"
	"github.com/dileep-u-k/agent-gateway/internal/tools"
)

// App owns every long-lived service. Build it once and share it.
type App struct {
	Config     *config.Config
	LLM        llm.LLMClient
	RAG        *llm.RAGService
	Tools      *tools.ToolManager
	Controller *agent.Controller
	Store      *store.Store
	Health     *HealthChecker

	closers []func() error
}

// Options lets callers swap the language model backend, mainly in tests.
type Options struct {
	// LLM, when set, is used instead of a client built from the configured provider.
	LLM llm.LLMClient
	// SkipStore disables the answer log.
	SkipStore bool
}

// New builds the application from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}

	// 1. LANGUAGE MODEL BACKEND
	a.LLM = opts.LLM
	if a.LLM == nil {
		client, err := a.newLLMClient(ctx)
		if err != nil {
			return nil, err
		}
		a.LLM = client
	}

	// 2. DOCUMENT CORPUS
	embedder, err := a.newEmbedder(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.RAG = llm.NewRAGService(llm.RAGConfig{
		DocumentsDir: cfg.Documents.Dir,
		ChunkSize:    cfg.Documents.ChunkSize,
		ChunkOverlap: cfg.Documents.ChunkOverlap,
		TopK:         cfg.Documents.TopK,
	}, embedder)

	// 3. TOOLS AND AGENT
	a.Tools = a.newToolManager()
	cache, err := agent.NewResultCache(a.Tools, cfg.Agent.CacheSize)
	if err != nil {
		a.Close()
		return nil, err
	}
	classifier := agent.NewIntentClassifier(a.LLM, cfg.LLM.Model, a.Tools)
	loop := agent.NewReasoningLoop(a.LLM, cfg.LLM.Model, a.Tools, cache, cfg.Agent.MaxIterations)
	a.Controller = agent.NewController(a.LLM, classifier, cache, loop, agent.ControllerConfig{
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	a.Health = NewHealthChecker(a.LLM, cfg.LLM.Model)

	// 4. ANSWER LOG
	if !opts.SkipStore {
		st, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Store = st
		a.closers = append(a.closers, st.Close)
	}

	log.Printf("✅ Agent ready: provider=%s model=%s tools=%d", cfg.LLM.Provider, cfg.LLM.Model, a.Tools.ToolCount())
	return a, nil
}

// newLLMClient builds the configured provider's client. A missing key is not
// fatal: the gateway still starts and every answer reports the missing backend.
func (a *App) newLLMClient(ctx context.Context) (llm.LLMClient, error) {
	provider := a.Config.LLM.Provider
	key := a.Config.Keys.ForProvider(provider)
	if key == "" {
		log.Printf("⚠️  No API key for provider %s; answers will report the backend as unavailable.", provider)
		return nil, nil
	}
	client, err := llm.NewClient(ctx, provider, key, a.Config.LLM.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", provider, err)
	}
	if c, ok := client.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}
	log.Printf("✅ LLM client initialized for provider %s.", provider)
	return client, nil
}

// newEmbedder picks the corpus embedder and fronts it with Redis when configured.
func (a *App) newEmbedder(ctx context.Context) (llm.Embedder, error) {
	docs := a.Config.Documents
	keys := a.Config.Keys

	choice := docs.EmbeddingProvider
	if choice == config.EmbeddingAuto {
		switch {
		case keys.OpenAI != "":
			choice = config.EmbeddingOpenAI
		case keys.Gemini != "":
			choice = config.EmbeddingGemini
		default:
			choice = config.EmbeddingLexical
		}
	}

	var embedder llm.Embedder
	namespace := choice
	switch choice {
	case config.EmbeddingOpenAI:
		e, err := llm.NewOpenAIEmbedder(keys.OpenAI, "", docs.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedder: %w", err)
		}
		embedder = e
		namespace += ":" + docs.EmbeddingModel
	case config.EmbeddingGemini:
		gc, err := llm.NewGeminiClient(ctx, keys.Gemini)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedder: %w", err)
		}
		a.closers = append(a.closers, gc.Close)
		model := docs.EmbeddingModel
		if model == "" {
			model = "text-embedding-004"
		}
		embedder = gc.Embedder(model)
		namespace += ":" + model
	default:
		embedder = llm.NewLexicalEmbedder(0)
	}
	log.Printf("📚 Document embeddings: %s", choice)

	if a.Config.Redis.Addr == "" || choice == config.EmbeddingLexical {
		return embedder, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: a.Config.Redis.Addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("⚠️  Redis at %s unreachable (%v); embeddings will not be cached.", a.Config.Redis.Addr, err)
		_ = rdb.Close()
		return embedder, nil
	}
	a.closers = append(a.closers, rdb.Close)
	log.Printf("✅ Embedding cache connected to Redis at %s.", a.Config.Redis.Addr)
	return llm.NewCachedEmbedder(embedder, rdb, namespace), nil
}

func (a *App) newToolManager() *tools.ToolManager {
	cfg := a.Config
	manager := tools.NewToolManager()
	manager.Register(tools.NewWebSearchTool(tools.WebSearchConfig{
		APIKey:         cfg.Keys.Serper,
		URL:            cfg.Search.URL,
		Timeout:        cfg.Search.Timeout,
		MaxResults:     cfg.Search.MaxResults,
		MaxQueryLength: cfg.Search.MaxQueryLength,
	}))
	manager.Register(tools.NewCalculatorTool())
	manager.Register(tools.NewMathSolverTool(a.LLM, cfg.LLM.SolverModel, cfg.LLM.MaxTokens))
	manager.Register(tools.NewDocumentQATool(a.RAG, a.LLM, cfg.LLM.Model, cfg.LLM.MaxTokens))
	log.Printf("✅ Tool Manager initialized with %d tools.", manager.ToolCount())
	return manager
}

// Close releases every backend connection. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
