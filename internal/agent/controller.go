// In file: internal/agent/controller.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dileep-u-k/agent-gateway/internal/llm"
	"github.com/dileep-u-k/agent-gateway/internal/tools"
)

// Provenance labels for answers that did not come from a single tool.
const (
	SourceDirect = "Direct Answer"
	SourceError  = "Error"
	chainPrefix  = "Chained Tools: "
)

var errNoBackend = errors.New("language model backend is not configured (API key not set)")

// Response is the controller's answer: always non-empty text plus its provenance.
type Response struct {
	Text      string       `json:"response"`
	Source    string       `json:"source"`
	Verdict   Verdict      `json:"verdict,omitempty"`
	ToolOrder []tools.Name `json:"tool_order,omitempty"`
	// Err holds the failure behind an "Error" response, or a tool's typed error.
	Err error `json:"-"`
}

// ControllerConfig carries the direct-answer settings.
type ControllerConfig struct {
	Model     string
	MaxTokens int
}

// Controller is the single entry point for answering a query.
type Controller struct {
	client     llm.LLMClient
	classifier *IntentClassifier
	cache      *ResultCache
	loop       *ReasoningLoop
	config     ControllerConfig
}

func NewController(client llm.LLMClient, classifier *IntentClassifier, cache *ResultCache, loop *ReasoningLoop, cfg ControllerConfig) *Controller {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &Controller{
		client:     client,
		classifier: classifier,
		cache:      cache,
		loop:       loop,
		config:     cfg,
	}
}

// Cache exposes the result cache, e.g. to purge document answers after a corpus rebuild.
func (c *Controller) Cache() *ResultCache {
	return c.cache
}

// Answer classifies query and dispatches it. It never returns an error or panics:
// every failure becomes a Response with Source "Error" and text "Error: <message>".
func (c *Controller) Answer(ctx context.Context, query string) (resp Response) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Recovered from panic while answering: %v", r)
			resp = errorResponse(fmt.Errorf("unexpected failure: %v", r))
		}
		answerDuration.WithLabelValues(sourceLabel(resp)).Observe(time.Since(start).Seconds())
	}()

	if c.client == nil {
		return errorResponse(errNoBackend)
	}

	decision, _, err := c.classifier.Classify(ctx, query)
	if err != nil {
		return errorResponse(err)
	}
	queriesTotal.WithLabelValues(string(decision.Verdict)).Inc()

	resp = c.dispatch(ctx, query, decision)
	resp.Verdict = decision.Verdict
	return resp
}

func (c *Controller) dispatch(ctx context.Context, query string, decision Decision) Response {
	if decision.Verdict == VerdictChain {
		result, err := c.loop.Run(ctx, query, decision.ToolOrder)
		if err != nil {
			return errorResponse(err)
		}
		return Response{
			Text:      result.Answer,
			Source:    chainPrefix + decision.RawToolOrder,
			ToolOrder: decision.ToolOrder,
		}
	}

	if name, ok := decision.Verdict.Tool(); ok {
		res := c.cache.Invoke(ctx, name, query)
		return Response{Text: res.Text, Source: tools.Label(name), ToolOrder: []tools.Name{name}, Err: res.Err}
	}

	text, err := llm.Complete(ctx, c.client, query, &llm.GenerationConfig{
		Model:       c.config.Model,
		Temperature: llm.Float32(0),
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return errorResponse(fmt.Errorf("direct answer failed: %w", err))
	}
	return Response{Text: text, Source: SourceDirect}
}

func errorResponse(err error) Response {
	log.Printf("❌ Answer failed: %v", err)
	return Response{Text: "Error: " + err.Error(), Source: SourceError, Err: err}
}
