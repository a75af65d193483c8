// In file: internal/tools/math_solver_tool.go
package tools

import (
	"context"
	"fmt"

	"github.com/dileep-u-k/agent-gateway/internal/llm"
)

const mathSolverPrompt = "Solve the following math problem step by step. Show your reasoning and provide the final answer. Problem: %s\nFormat the final answer as: \\boxed{answer}"

// MathSolverTool hands word problems to a larger model with a step-by-step prompt.
type MathSolverTool struct {
	client    llm.LLMClient
	model     string
	maxTokens int
}

var _ ToolExecutor = (*MathSolverTool)(nil)

// NewMathSolverTool creates the solver. client may be nil when no credentials are
// configured; Execute then reports the backend as unavailable.
func NewMathSolverTool(client llm.LLMClient, model string, maxTokens int) *MathSolverTool {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &MathSolverTool{client: client, model: model, maxTokens: maxTokens}
}

func (mt *MathSolverTool) Definition() Descriptor {
	return NewDescriptor(MathSolver, mt.client != nil)
}

// Execute returns "Math Solution (via <model>):" followed by the model's worked answer.
func (mt *MathSolverTool) Execute(ctx context.Context, problem string) (string, error) {
	if mt.client == nil {
		return "", &ToolError{Tool: MathSolver, Kind: KindBackendUnavailable, Err: errAPIKeyNotSet}
	}

	text, err := llm.Complete(ctx, mt.client, fmt.Sprintf(mathSolverPrompt, problem), &llm.GenerationConfig{
		Model:       mt.model,
		Temperature: llm.Float32(0),
		MaxTokens:   mt.maxTokens,
	})
	if err != nil {
		return "", &ToolError{Tool: MathSolver, Kind: KindBackendCallFailure, Err: err}
	}
	return fmt.Sprintf("Math Solution (via %s):\n\n%s", mt.model, text), nil
}
