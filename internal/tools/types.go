// In file: internal/tools/types.go

// Package tools holds the closed set of capabilities the agent can dispatch to.
// Every tool takes a free-text query and produces text; failures are typed
// ToolErrors that still render to a readable, prefixed string.
package tools

import "strings"

// Name identifies a registered tool. The set is closed.
type Name string

const (
	WebSearch  Name = "WEB_SEARCH"
	Calculator Name = "CALCULATOR"
	MathSolver Name = "MATH_SOLVER"
	DocumentQA Name = "DOCUMENT_QA"
)

// Names lists every tool in registration and prompt order.
var Names = []Name{WebSearch, Calculator, MathSolver, DocumentQA}

// ParseName matches s against the canonical tool names, exactly.
func ParseName(s string) (Name, bool) {
	for _, n := range Names {
		if string(n) == s {
			return n, true
		}
	}
	return "", false
}

// Descriptor describes a tool to the classifier, the reasoning loop and API clients.
type Descriptor struct {
	// Name is the canonical identifier used in classifier decisions.
	Name Name `json:"name"`
	// DisplayName is the human name the reasoning loop uses in Action lines.
	DisplayName string `json:"display_name"`
	// Description tells the model when the tool is the right choice.
	Description string `json:"description"`
	// Label is the provenance tag attached to answers the tool produced.
	Label string `json:"label"`
	// Available reports whether the tool's backend credentials are configured.
	Available bool `json:"available"`
}

var descriptors = map[Name]Descriptor{
	WebSearch: {
		Name:        WebSearch,
		DisplayName: "Web Search",
		Description: "For up-to-date information, current events, or facts that may change over time.",
		Label:       "Web Search Tool",
	},
	Calculator: {
		Name:        Calculator,
		DisplayName: "Calculator",
		Description: "For simple mathematical calculations and arithmetic problems.",
		Label:       "Calculator Tool",
	},
	MathSolver: {
		Name:        MathSolver,
		DisplayName: "Math Solver",
		Description: "For complex math word problems requiring step-by-step reasoning.",
		Label:       "Math Solver Tool",
	},
	DocumentQA: {
		Name:        DocumentQA,
		DisplayName: "Document QA",
		Description: "For answering questions based on local documents and knowledge base.",
		Label:       "Document QA Tool",
	},
}

// NewDescriptor returns the fixed descriptor for name with the availability flag set.
func NewDescriptor(name Name, available bool) Descriptor {
	d := descriptors[name]
	d.Available = available
	return d
}

// Label returns the provenance tag for name, or the name itself if unknown.
func Label(name Name) string {
	if d, ok := descriptors[name]; ok {
		return d.Label
	}
	return string(name)
}

// errorPrefix is the "<Tool> Error: " marker that starts every failure string.
func errorPrefix(name Name) string {
	switch name {
	case WebSearch:
		return "WebSearch Error: "
	case "":
		return "Error: "
	}
	if d, ok := descriptors[name]; ok {
		return d.DisplayName + " Error: "
	}
	return strings.TrimSpace(string(name)) + " Error: "
}
