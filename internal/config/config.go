// In file: internal/config/config.go

// Package config loads gateway settings from defaults, config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dileep-u-k/agent-gateway/internal/agent"
	"github.com/dileep-u-k/agent-gateway/internal/llm"
)

// Config holds all configuration for the gateway and the CLI.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Agent     AgentConfig     `yaml:"agent"`
	Search    SearchConfig    `yaml:"search"`
	Documents DocumentsConfig `yaml:"documents"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`

	// Keys come from the environment only, never from config.yaml.
	Keys APIKeys `yaml:"-"`
}

type ServerConfig struct {
	Port           string  `yaml:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type LLMConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	SolverModel string `yaml:"solver_model"`
	MaxTokens   int    `yaml:"max_tokens"`
	BaseURL     string `yaml:"base_url"`
}

type AgentConfig struct {
	MaxIterations int `yaml:"max_iterations"`
	CacheSize     int `yaml:"cache_size"`
}

type SearchConfig struct {
	URL            string        `yaml:"url"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxResults     int           `yaml:"max_results"`
	MaxQueryLength int           `yaml:"max_query_length"`
}

type DocumentsConfig struct {
	Dir               string `yaml:"dir"`
	ChunkSize         int    `yaml:"chunk_size"`
	ChunkOverlap      int    `yaml:"chunk_overlap"`
	TopK              int    `yaml:"top_k"`
	EmbeddingProvider string `yaml:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

// APIKeys holds provider credentials.
type APIKeys struct {
	Groq      string
	OpenAI    string
	Mistral   string
	Anthropic string
	Gemini    string
	Serper    string
}

// ForProvider returns the key for an LLM provider name.
func (k APIKeys) ForProvider(provider string) string {
	switch provider {
	case llm.ProviderGroq:
		return k.Groq
	case llm.ProviderOpenAI:
		return k.OpenAI
	case llm.ProviderMistral:
		return k.Mistral
	case llm.ProviderAnthropic:
		return k.Anthropic
	case llm.ProviderGemini:
		return k.Gemini
	}
	return ""
}

// Embedding providers accepted in documents.embedding_provider.
const (
	EmbeddingAuto    = "auto"
	EmbeddingOpenAI  = "openai"
	EmbeddingGemini  = "gemini"
	EmbeddingLexical = "lexical"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", RateLimitRPS: 5, RateLimitBurst: 10},
		LLM: LLMConfig{
			Provider:    llm.ProviderGroq,
			Model:       "llama3-8b-8192",
			SolverModel: "llama3-70b-8192",
			MaxTokens:   1024,
		},
		Agent: AgentConfig{MaxIterations: 5, CacheSize: 100},
		Search: SearchConfig{
			URL:            "https://google.serper.dev/search",
			Timeout:        10 * time.Second,
			MaxResults:     3,
			MaxQueryLength: 100,
		},
		Documents: DocumentsConfig{
			Dir:               "data/documents",
			ChunkSize:         1000,
			ChunkOverlap:      200,
			TopK:              3,
			EmbeddingProvider: EmbeddingAuto,
		},
		Store: StoreConfig{Path: "data/answers.db"},
	}
}

// Load builds the configuration: .env (outside release mode), defaults, the YAML
// file at path if it exists, then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	// In Docker (GIN_MODE=release) configuration arrives as real environment variables.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("No %s found; using built-in defaults.", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Keys = APIKeys{
		Groq:      os.Getenv("GROQ_API_KEY"),
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Mistral:   os.Getenv("MISTRAL_API_KEY"),
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
		Gemini:    os.Getenv("GEMINI_API_KEY"),
		Serper:    os.Getenv("SERPER_API_KEY"),
	}
	overrideString(&c.Server.Port, "PORT")
	overrideString(&c.Redis.Addr, "REDIS_ADDR")
	overrideString(&c.Documents.Dir, "DOCUMENTS_DIR")
	overrideString(&c.LLM.Provider, "LLM_PROVIDER")
	overrideString(&c.LLM.Model, "LLM_MODEL")
	overrideString(&c.Store.Path, "STORE_PATH")
	if v := os.Getenv("AGENT_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Agent.MaxIterations = n
		} else {
			log.Printf("⚠️  Ignoring invalid AGENT_MAX_ITERATIONS=%q", v)
		}
	}
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate rejects settings the agent cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if !isKnownProvider(c.LLM.Provider) {
		errs = append(errs, fmt.Errorf("llm.provider %q must be one of %v", c.LLM.Provider, llm.Providers))
	}
	if c.Agent.MaxIterations <= 0 || c.Agent.MaxIterations > agent.DefaultMaxIterations {
		errs = append(errs, fmt.Errorf("agent.max_iterations must be between 1 and %d", agent.DefaultMaxIterations))
	}
	if c.Agent.CacheSize <= 0 {
		errs = append(errs, errors.New("agent.cache_size must be positive"))
	}
	if c.Documents.TopK <= 0 {
		errs = append(errs, errors.New("documents.top_k must be positive"))
	}
	if c.Documents.ChunkSize <= 0 || c.Documents.ChunkOverlap < 0 || c.Documents.ChunkOverlap >= c.Documents.ChunkSize {
		errs = append(errs, errors.New("documents.chunk_overlap must be non-negative and smaller than documents.chunk_size"))
	}
	switch c.Documents.EmbeddingProvider {
	case EmbeddingAuto, EmbeddingOpenAI, EmbeddingGemini, EmbeddingLexical:
	default:
		errs = append(errs, fmt.Errorf("documents.embedding_provider %q is not supported", c.Documents.EmbeddingProvider))
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("server rate limits must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func isKnownProvider(p string) bool {
	for _, known := range llm.Providers {
		if p == known {
			return true
		}
	}
	return false
}
