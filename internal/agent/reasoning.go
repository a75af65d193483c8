// In file: internal/agent/reasoning.go
package agent

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/dileep-u-k/agent-gateway/internal/llm"
	"github.com/dileep-u-k/agent-gateway/internal/tools"
)

const (
	// DefaultMaxIterations is also the ceiling: a loop never runs more steps.
	DefaultMaxIterations = 5

	directAnswerAction = "Direct Answer"
	finalAnswerMarker  = "Final Answer:"
	observationStop    = "\nObservation:"

	iterationLimitMessage = "Agent stopped due to iteration limit."
	invalidFormatMessage  = "Invalid Format: Missing 'Action:' and 'Action Input:', or 'Final Answer:'. Reply with an Action and its Action Input, or with a Final Answer."
)

var actionPattern = regexp.MustCompile(`(?s)Action\s*\d*\s*:(.*?)\n\s*Action\s*\d*\s*Input\s*\d*\s*:(.*)`)

// Invoker runs a tool by name. Both *ResultCache and *tools.ToolManager satisfy it.
type Invoker interface {
	Invoke(ctx context.Context, name tools.Name, query string) tools.Result
}

// Step is one Thought/Action/Observation round of the loop.
type Step struct {
	Output      string
	Action      string
	ActionInput string
	Observation string
}

// LoopResult is the outcome of one reasoning run.
type LoopResult struct {
	Answer     string
	Iterations int
	// Exhausted is true when the iteration bound ended the run before a final answer.
	Exhausted bool
	Steps     []Step
	Usage     llm.Usage
}

// ReasoningLoop answers compound queries by letting the model pick tools one
// step at a time, feeding each observation back, for at most maxIterations calls.
type ReasoningLoop struct {
	client        llm.LLMClient
	model         string
	registry      *tools.ToolManager
	invoker       Invoker
	maxIterations int
}

func NewReasoningLoop(client llm.LLMClient, model string, registry *tools.ToolManager, invoker Invoker, maxIterations int) *ReasoningLoop {
	if maxIterations <= 0 || maxIterations > DefaultMaxIterations {
		maxIterations = DefaultMaxIterations
	}
	if invoker == nil {
		invoker = registry
	}
	return &ReasoningLoop{
		client:        client,
		model:         model,
		registry:      registry,
		invoker:       invoker,
		maxIterations: maxIterations,
	}
}

// prompt renders the instructions, the question and the scratchpad so far.
func (l *ReasoningLoop) prompt(query string, order []tools.Name, scratchpad string) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI assistant with access to the following tools:\n\n")
	for _, def := range l.registry.Definitions() {
		fmt.Fprintf(&b, "%s: %s\n", def.DisplayName, def.Description)
	}
	fmt.Fprintf(&b, `
Answer the question as best you can. Think step by step and chain tools when the question needs more than one.
Use the following format:

Question: the input question you must answer
Thought: what you should do next
Action: the action to take, one of %s or %s
Action Input: the input to the action
Observation: the result of the action
... (Thought/Action/Action Input/Observation can repeat)
Thought: I now know the final answer
Final Answer: the final answer to the original question
`, l.registry.String(), directAnswerAction)

	if suggested := l.displayOrder(order); len(suggested) > 0 {
		fmt.Fprintf(&b, "\nSuggested tool order: %s\n", strings.Join(suggested, " → "))
	}
	fmt.Fprintf(&b, "\nBegin!\n\nQuestion: %s\nThought:%s", query, scratchpad)
	return b.String()
}

// displayOrder maps a decision's tool order to display names, skipping unregistered tools.
func (l *ReasoningLoop) displayOrder(order []tools.Name) []string {
	var out []string
	for _, name := range order {
		if tool, ok := l.registry.Lookup(name); ok {
			out = append(out, tool.Definition().DisplayName)
		}
	}
	return out
}

// Run executes the loop. Malformed model output becomes an observation for the
// next step; only a failed completion call is returned as an error.
func (l *ReasoningLoop) Run(ctx context.Context, query string, order []tools.Name) (*LoopResult, error) {
	result := &LoopResult{}
	var scratchpad strings.Builder
	var lastObservation, lastOutput string

	for result.Iterations < l.maxIterations {
		result.Iterations++
		gen, err := l.client.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: l.prompt(query, order, scratchpad.String())}}, &llm.GenerationConfig{
			Model:       l.model,
			Temperature: llm.Float32(0),
			Stop:        []string{observationStop},
		})
		if err != nil {
			return nil, fmt.Errorf("reasoning step %d failed: %w", result.Iterations, err)
		}
		result.Usage.Add(gen.Usage)

		output := strings.TrimRight(gen.Content, " \n")
		if strings.TrimSpace(output) != "" {
			lastOutput = strings.TrimSpace(output)
		}

		step := Step{Output: output}
		action, input, hasAction := parseAction(output)
		finalIdx := strings.Index(output, finalAnswerMarker)

		switch {
		case finalIdx >= 0 && (!hasAction || finalIdx < strings.Index(output, "Action")):
			result.Answer = strings.TrimSpace(output[finalIdx+len(finalAnswerMarker):])
			result.Steps = append(result.Steps, step)
			l.finish(result)
			return result, nil

		case hasAction && strings.EqualFold(action, directAnswerAction):
			result.Answer = input
			if result.Answer == "" {
				result.Answer = lastOutput
			}
			step.Action, step.ActionInput = action, input
			result.Steps = append(result.Steps, step)
			l.finish(result)
			return result, nil

		case hasAction:
			step.Action, step.ActionInput = action, input
			if name, ok := l.registry.LookupDisplay(action); ok {
				log.Printf("🔗 Step %d: %s(%q)", result.Iterations, name, input)
				res := l.invoker.Invoke(ctx, name, input)
				step.Observation = res.Text
				if res.OK() {
					lastObservation = res.Text
				}
			} else {
				step.Observation = fmt.Sprintf("%s is not a valid tool, try one of %s.", action, l.registry.String())
			}

		default:
			log.Printf("⚠️  Step %d: could not parse model output", result.Iterations)
			step.Observation = invalidFormatMessage
		}

		result.Steps = append(result.Steps, step)
		fmt.Fprintf(&scratchpad, " %s\nObservation: %s\nThought:", strings.TrimSpace(output), step.Observation)
	}

	result.Exhausted = true
	switch {
	case lastObservation != "":
		result.Answer = lastObservation
	case lastOutput != "":
		result.Answer = lastOutput
	default:
		result.Answer = iterationLimitMessage
	}
	log.Printf("⚠️  Reasoning loop hit the %d-iteration limit; returning best answer so far.", l.maxIterations)
	l.finish(result)
	return result, nil
}

func (l *ReasoningLoop) finish(result *LoopResult) {
	reasoningIterations.Observe(float64(result.Iterations))
	if result.Answer == "" {
		result.Answer = iterationLimitMessage
	}
}

// parseAction finds the Action and Action Input of one model step.
func parseAction(output string) (action, input string, ok bool) {
	m := actionPattern.FindStringSubmatch(output)
	if m == nil {
		return "", "", false
	}
	action = strings.Trim(strings.TrimSpace(m[1]), "[]")
	input = strings.TrimSpace(m[2])
	if i := strings.Index(input, "\n"+finalAnswerMarker); i >= 0 {
		input = strings.TrimSpace(input[:i])
	}
	input = strings.Trim(input, `"`)
	if action == "" {
		return "", "", false
	}
	return action, input, true
}
