// In file: internal/tools/calculator_tool.go
package tools

import (
	"context"
	"log"

	"github.com/dileep-u-k/agent-gateway/internal/calculator"
)

// --- Calculator Tool Implementation ---

// CalculatorTool normalizes a natural-language arithmetic phrase and evaluates it.
type CalculatorTool struct{}

// Statically verify that CalculatorTool implements the ToolExecutor interface.
var _ ToolExecutor = (*CalculatorTool)(nil)

func NewCalculatorTool() *CalculatorTool {
	return &CalculatorTool{}
}

// Definition needs no credentials, so the calculator is always available.
func (ct *CalculatorTool) Definition() Descriptor {
	return NewDescriptor(Calculator, true)
}

// Execute returns the evaluated result, e.g. "360" for "Calculate 15 * 24".
func (ct *CalculatorTool) Execute(_ context.Context, query string) (string, error) {
	expr := calculator.Normalize(query)
	log.Printf("🧮 Normalized %q to %q", query, expr)

	result, err := calculator.Evaluate(expr)
	if err != nil {
		return "", &ToolError{Tool: Calculator, Kind: KindEvaluationFailure, Err: err}
	}
	return result, nil
}
