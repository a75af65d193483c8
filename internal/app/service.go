// In file: internal/app/service.go
package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dileep-u-k/agent-gateway/internal/agent"
	"github.com/dileep-u-k/agent-gateway/internal/benchmark"
	"github.com/dileep-u-k/agent-gateway/internal/store"
	"github.com/dileep-u-k/agent-gateway/internal/tools"
)

// Answered is a controller response plus its answer-log record.
type Answered struct {
	agent.Response
	ID      string
	Latency time.Duration
}

// Ask answers query and records it in the answer log under testType.
// Logging failures are reported but never change the answer.
func (a *App) Ask(ctx context.Context, query, testType string) Answered {
	start := time.Now()
	resp := a.Controller.Answer(ctx, query)
	out := Answered{Response: resp, Latency: time.Since(start)}

	if a.Store != nil {
		rec, err := a.Store.SaveAnswer(ctx, store.Answer{
			Query:    query,
			Response: resp.Text,
			Source:   resp.Source,
			TestType: testType,
		})
		if err != nil {
			log.Printf("⚠️  Could not record answer: %v", err)
		}
		out.ID = rec.ID
	}
	return out
}

// RunBenchmark runs the named suite through Ask and persists the run.
func (a *App) RunBenchmark(ctx context.Context, suiteName string) (*benchmark.Report, error) {
	suite, ok := benchmark.Lookup(suiteName)
	if !ok {
		return nil, fmt.Errorf("unknown benchmark suite %q (available: %s)", suiteName, strings.Join(benchmark.Names(), ", "))
	}

	report := benchmark.Run(ctx, suite, func(ctx context.Context, query string) (string, string) {
		ans := a.Ask(ctx, query, suite.Name)
		return ans.Text, ans.Source
	})

	if a.Store != nil {
		if _, err := a.Store.SaveRun(ctx, store.BenchmarkRun{
			Suite:    report.Suite,
			Correct:  report.Correct,
			Total:    report.Total,
			Accuracy: report.Accuracy,
			Report:   report.Text(),
		}); err != nil {
			log.Printf("⚠️  Could not record benchmark run: %v", err)
		}
	}
	return report, nil
}

// Reindex rebuilds the document corpus and drops cached document answers.
func (a *App) Reindex(ctx context.Context) (int, error) {
	chunks, err := a.RAG.Rebuild(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild document index: %w", err)
	}
	if purged := a.Controller.Cache().PurgeTool(tools.DocumentQA); purged > 0 {
		log.Printf("🧹 Purged %d cached document answers.", purged)
	}
	return chunks, nil
}
