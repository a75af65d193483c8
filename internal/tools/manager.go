// In file: internal/tools/manager.go
package tools

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// ToolManager holds a registry of all available tools, in registration order.
type ToolManager struct {
	mu    sync.RWMutex
	order []Name
	tools map[Name]ToolExecutor
}

func NewToolManager() *ToolManager {
	return &ToolManager{
		tools: make(map[Name]ToolExecutor),
	}
}

// Register adds a tool to the registry. Registering a name twice replaces the
// earlier tool but keeps its position.
func (tm *ToolManager) Register(tool ToolExecutor) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	name := tool.Definition().Name
	if _, exists := tm.tools[name]; !exists {
		tm.order = append(tm.order, name)
	}
	tm.tools[name] = tool
}

// Lookup returns the tool registered under the canonical name.
func (tm *ToolManager) Lookup(name Name) (ToolExecutor, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	tool, ok := tm.tools[name]
	return tool, ok
}

// LookupDisplay resolves a name as the reasoning loop writes it: the display
// name or the canonical name, case-insensitively.
func (tm *ToolManager) LookupDisplay(s string) (Name, bool) {
	s = strings.TrimSpace(s)
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	for _, name := range tm.order {
		def := tm.tools[name].Definition()
		if strings.EqualFold(s, def.DisplayName) || strings.EqualFold(s, string(name)) {
			return name, true
		}
	}
	return "", false
}

// Definitions returns the descriptors of all registered tools, in order.
func (tm *ToolManager) Definitions() []Descriptor {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	defs := make([]Descriptor, 0, len(tm.order))
	for _, name := range tm.order {
		defs = append(defs, tm.tools[name].Definition())
	}
	return defs
}

// Invoke runs a tool by name. It never panics and never returns empty text:
// failures come back as a Result whose Text is the prefixed error string.
func (tm *ToolManager) Invoke(ctx context.Context, name Name, query string) (res Result) {
	tool, ok := tm.Lookup(name)
	if !ok {
		err := newToolError(name, KindBackendUnavailable, "tool %q is not registered", name)
		return Result{Text: err.Error(), Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Tool %s panicked: %v", name, r)
			err := newToolError(name, KindBackendCallFailure, "unexpected failure: %v", r)
			res = Result{Text: err.Error(), Err: err}
		}
	}()

	log.Printf("🛠️ Executing tool %s", name)
	out, err := tool.Execute(ctx, query)
	if err != nil {
		if _, typed := KindOf(err); !typed {
			err = &ToolError{Tool: name, Kind: KindBackendCallFailure, Err: err}
		}
		log.Printf("⚠️  Tool %s failed: %v", name, err)
		return Result{Text: err.Error(), Err: err}
	}
	if strings.TrimSpace(out) == "" {
		err := newToolError(name, KindEmptyResult, "%s returned no output.", tool.Definition().DisplayName)
		return Result{Text: err.Error(), Err: err}
	}
	return Result{Text: out}
}

// ToolCount returns the number of registered tools.
func (tm *ToolManager) ToolCount() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.tools)
}

// String lists the registered display names, e.g. "[Web Search, Calculator]".
func (tm *ToolManager) String() string {
	defs := tm.Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.DisplayName
	}
	return fmt.Sprintf("[%s]", strings.Join(names, ", "))
}
