// In file: internal/tools/executor.go
package tools

import "context"

// ToolExecutor defines the standard interface for any tool the agent can dispatch to.
type ToolExecutor interface {
	// Definition returns the tool's descriptor, shown to the classifier and the reasoning loop.
	Definition() Descriptor

	// Execute answers query. Failures should be *ToolError values; the manager
	// wraps anything else as a backend call failure.
	Execute(ctx context.Context, query string) (string, error)
}
