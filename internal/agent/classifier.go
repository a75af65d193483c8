// In file: internal/agent/classifier.go
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dileep-u-k/agent-gateway/internal/llm"
	"github.com/dileep-u-k/agent-gateway/internal/tools"
)

// routingHints extend each tool's short description with what the classifier
// should look for in the query.
var routingHints = map[tools.Name]string{
	tools.WebSearch:  "Recent information, current events, news, or facts that change over time (weather, stock prices).",
	tools.Calculator: "Direct arithmetic or math expressions with no story around them ('2+2', 'sqrt(16)', '15% of 80', 'sin(30)').",
	tools.MathSolver: "Word problems with a story, people, objects, units, or multi-step reasoning ('A car travels 60 mph for 2 hours, how far?'). If there is a narrative, prefer this over CALCULATOR.",
	tools.DocumentQA: "Questions about the local knowledge base: uploaded PDF, Word or text files such as handbooks, profiles, prospectuses, or policies.",
}

const classifierGuidelines = `- DIRECT: General knowledge or simple facts that need no tool.

Guidelines:
1. Time-sensitive or external data ('latest news', 'weather today') -> WEB_SEARCH.
2. A bare expression ('5 * 3', '25 minus 7', '20 * 3.5') -> CALCULATOR. A story ('a bakery has cookies', 'a tank holds liters') -> MATH_SOLVER, even when the arithmetic is simple.
3. Anything that refers to uploaded, private, personal, or company documents -> DOCUMENT_QA.
4. Hybrid requests that need more than one tool ('Search for today's temperature and convert it to Fahrenheit') -> CHAIN, and list the tools in order, e.g. 'WEB_SEARCH → CALCULATOR'.
5. Do not use tools unnecessarily; DIRECT is preferred for simple, known facts.`

const classifierOutputFormat = `Output Format:
Decision: [WEB_SEARCH | CALCULATOR | MATH_SOLVER | DOCUMENT_QA | DIRECT | CHAIN]
Tool Order (if CHAIN): [tools in order, e.g. 'WEB_SEARCH → CALCULATOR']
Reasoning: [one sentence explaining the choice]`

// IntentClassifier makes one deterministic completion call per query and parses
// the routing decision out of the reply.
type IntentClassifier struct {
	client   llm.LLMClient
	model    string
	registry *tools.ToolManager
}

func NewIntentClassifier(client llm.LLMClient, model string, registry *tools.ToolManager) *IntentClassifier {
	return &IntentClassifier{client: client, model: model, registry: registry}
}

// Prompt renders the decision prompt for query.
func (c *IntentClassifier) Prompt(query string) string {
	var b strings.Builder
	b.WriteString("You are a controller that analyzes a user query and selects the most appropriate tool, or combination of tools, to answer it. ")
	b.WriteString("Understand the query's intent, then decide. Give a short reason for your choice.\n\n")
	b.WriteString("Available Tools:\n")
	for _, def := range c.registry.Definitions() {
		fmt.Fprintf(&b, "- %s: %s %s\n", def.Name, def.Description, routingHints[def.Name])
	}
	b.WriteString(classifierGuidelines)
	fmt.Fprintf(&b, "\n\nUser query: %s\n\n", query)
	b.WriteString(classifierOutputFormat)
	return b.String()
}

// Classify returns the routing decision for query. A malformed reply degrades to
// DIRECT; a failed completion call is returned as an error.
func (c *IntentClassifier) Classify(ctx context.Context, query string) (Decision, string, error) {
	result, err := c.client.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: c.Prompt(query)}}, &llm.GenerationConfig{
		Model:       c.model,
		Temperature: llm.Float32(0),
	})
	if err != nil {
		return Decision{}, "", fmt.Errorf("intent classification failed: %w", err)
	}

	decision := ParseDecision(result.Content)
	if !decision.Recognized {
		log.Printf("⚠️  No recognizable decision in classifier output; answering directly.")
	}
	log.Printf("🔍 Controller decision: %s (tool order: %q)", decision.Verdict, decision.RawToolOrder)
	return decision, result.Content, nil
}
