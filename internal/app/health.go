// In file: internal/app/health.go
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dileep-u-k/agent-gateway/internal/llm"
)

const healthCheckPrompt = "What is the capital of India?"

// BackendHealth is the outcome of the latest backend check.
type BackendHealth struct {
	Configured bool          `json:"configured"`
	Healthy    bool          `json:"healthy"`
	CheckedAt  time.Time     `json:"checked_at,omitempty"`
	Latency    time.Duration `json:"latency_ns,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// HealthChecker checks the language model backend with a tiny prompt.
type HealthChecker struct {
	client llm.LLMClient
	model  string

	mu   sync.RWMutex
	last BackendHealth
}

func NewHealthChecker(client llm.LLMClient, model string) *HealthChecker {
	return &HealthChecker{
		client: client,
		model:  model,
		last:   BackendHealth{Configured: client != nil},
	}
}

// Status returns the latest check result.
func (h *HealthChecker) Status() BackendHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Check runs one check and records the result.
func (h *HealthChecker) Check(ctx context.Context) BackendHealth {
	status := BackendHealth{Configured: h.client != nil, CheckedAt: time.Now()}
	if h.client != nil {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		start := time.Now()
		_, err := h.client.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: healthCheckPrompt}}, &llm.GenerationConfig{
			Model:     h.model,
			MaxTokens: 5,
		})
		cancel()
		status.Latency = time.Since(start)
		status.Healthy = err == nil
		if err != nil {
			status.Error = err.Error()
		}
	}

	h.mu.Lock()
	h.last = status
	h.mu.Unlock()
	log.Printf("🩺 Health check for %s: Healthy = %v", h.model, status.Healthy)
	return status
}

// Run checks immediately and then every interval until ctx is done.
func (h *HealthChecker) Run(ctx context.Context, interval time.Duration) {
	if h.client == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Println("🩺 Health checker started.")
	h.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
