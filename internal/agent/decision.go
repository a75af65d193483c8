// In file: internal/agent/decision.go

// Package agent routes a user query to the right capability: it asks the model
// for a routing decision, then calls one tool, runs a short multi-tool
// reasoning loop, or answers directly.
package agent

import (
	"regexp"
	"strings"

	"github.com/dileep-u-k/agent-gateway/internal/tools"
)

// Verdict is the classifier's routing choice.
type Verdict string

const (
	VerdictWebSearch  = Verdict(tools.WebSearch)
	VerdictCalculator = Verdict(tools.Calculator)
	VerdictMathSolver = Verdict(tools.MathSolver)
	VerdictDocumentQA = Verdict(tools.DocumentQA)
	VerdictDirect     = Verdict("DIRECT")
	VerdictChain      = Verdict("CHAIN")
)

var knownVerdicts = map[Verdict]bool{
	VerdictWebSearch:  true,
	VerdictCalculator: true,
	VerdictMathSolver: true,
	VerdictDocumentQA: true,
	VerdictDirect:     true,
	VerdictChain:      true,
}

// Tool returns the tool a single-tool verdict dispatches to.
func (v Verdict) Tool() (tools.Name, bool) {
	return tools.ParseName(string(v))
}

// Decision is the parsed classifier output.
type Decision struct {
	Verdict Verdict
	// ToolOrder holds the recognized tool names of a CHAIN, in order.
	ToolOrder []tools.Name
	// RawToolOrder is the "Tool Order:" text exactly as the model wrote it.
	RawToolOrder string
	Reasoning    string
	// Recognized is false when the verdict was missing or unknown and DIRECT was assumed.
	Recognized bool
}

const (
	decisionPrefix  = "Decision:"
	toolOrderPrefix = "Tool Order"
	reasoningPrefix = "Reasoning:"
)

var toolOrderSeparators = regexp.MustCompile(`\s*(?:→|->|,)\s*`)

// ParseDecision extracts a Decision from free model text. It never fails: a
// missing or unrecognized verdict yields DIRECT. Verdicts match case-sensitively.
func ParseDecision(text string) Decision {
	var verdictText string
	d := Decision{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, decisionPrefix):
			verdictText = strings.TrimSpace(strings.TrimPrefix(line, decisionPrefix))
		case strings.HasPrefix(line, toolOrderPrefix):
			// Models sometimes echo the template's "Tool Order (if CHAIN):" label.
			if i := strings.Index(line, ":"); i >= 0 {
				d.RawToolOrder = strings.TrimSpace(line[i+1:])
			}
		case strings.HasPrefix(line, reasoningPrefix):
			d.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, reasoningPrefix))
		}
	}

	d.Verdict = VerdictDirect
	if v := Verdict(verdictText); knownVerdicts[v] {
		d.Verdict = v
		d.Recognized = true
	}
	if d.Verdict == VerdictChain {
		d.ToolOrder = parseToolOrder(d.RawToolOrder)
	}
	return d
}

// parseToolOrder keeps the known tool names of "WEB_SEARCH → CALCULATOR" and
// drops anything else.
func parseToolOrder(raw string) []tools.Name {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	var order []tools.Name
	for _, part := range toolOrderSeparators.Split(raw, -1) {
		part = strings.Trim(strings.TrimSpace(part), `'"`+"`[]")
		if name, ok := tools.ParseName(part); ok {
			order = append(order, name)
		}
	}
	return order
}
