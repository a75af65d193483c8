// In file: internal/agent/cache.go
package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/dileep-u-k/agent-gateway/internal/tools"
)

const (
	DefaultCacheSize = 100
	// sharedCallTimeout bounds a tool call that no single caller can cancel.
	sharedCallTimeout = 2 * time.Minute
)

type cacheKey struct {
	Tool  tools.Name
	Query string
}

// ResultCache memoizes successful tool results by exact (tool, query) match.
// It is bounded with least-recently-used eviction and safe for concurrent use.
// Concurrent misses on the same key share one tool call.
type ResultCache struct {
	registry *tools.ToolManager
	entries  *lru.Cache[cacheKey, string]
	inflight singleflight.Group
}

func NewResultCache(registry *tools.ToolManager, size int) (*ResultCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[cacheKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	return &ResultCache{registry: registry, entries: entries}, nil
}

// Invoke returns the cached result for (name, query), running the tool on a miss.
// Failed results are returned but not stored, so the next call retries the tool.
//
// The shared call is detached from the caller's cancellation: a caller whose ctx
// ends gets a cancellation error, while the others keep waiting for the result.
func (c *ResultCache) Invoke(ctx context.Context, name tools.Name, query string) tools.Result {
	key := cacheKey{Tool: name, Query: query}
	if text, ok := c.entries.Get(key); ok {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		log.Printf("✅ Cache hit for %s", name)
		return tools.Result{Text: text}
	}
	cacheLookupsTotal.WithLabelValues("miss").Inc()

	flight := c.inflight.DoChan(string(name)+"\x00"+query, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		res := c.registry.Invoke(callCtx, name, query)
		toolInvocationsTotal.WithLabelValues(string(name), outcomeLabel(res.OK())).Inc()
		if res.OK() {
			c.entries.Add(key, res.Text)
		}
		return res, nil
	})

	select {
	case r := <-flight:
		return r.Val.(tools.Result)
	case <-ctx.Done():
		err := &tools.ToolError{Tool: name, Kind: tools.KindBackendCallFailure, Err: ctx.Err()}
		return tools.Result{Text: err.Error(), Err: err}
	}
}

// PurgeTool drops every entry for one tool, e.g. document answers after the corpus changes.
func (c *ResultCache) PurgeTool(name tools.Name) int {
	removed := 0
	for _, key := range c.entries.Keys() {
		if key.Tool == name && c.entries.Remove(key) {
			removed++
		}
	}
	return removed
}

// Len reports the number of cached results.
func (c *ResultCache) Len() int {
	return c.entries.Len()
}
