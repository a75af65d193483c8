// In file: internal/tools/errors.go
package tools

import (
	"errors"
	"fmt"
)

// Kind classifies why a tool failed.
type Kind string

const (
	KindBackendUnavailable Kind = "backend_unavailable" // missing credentials or client
	KindBackendCallFailure Kind = "backend_call_failure"
	KindParseFailure       Kind = "parse_failure"
	KindEvaluationFailure  Kind = "evaluation_failure"
	KindEmptyResult        Kind = "empty_result"
)

// ToolError is the typed failure every tool returns. Its Error text is exactly
// what the end user sees, so callers can inspect Kind without losing parity.
type ToolError struct {
	Tool Name
	Kind Kind
	Err  error
}

func (e *ToolError) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Kind == KindEmptyResult {
		return msg
	}
	return errorPrefix(e.Tool) + msg
}

func (e *ToolError) Unwrap() error { return e.Err }

func newToolError(tool Name, kind Kind, format string, args ...any) *ToolError {
	return &ToolError{Tool: tool, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// errAPIKeyNotSet is the message for tools whose backend has no credentials.
var errAPIKeyNotSet = errors.New("API key not set.")

// KindOf reports the ToolError kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}

// Result is what crosses the tool boundary: rendered text plus the typed error.
// Text is never empty. Err is nil on success.
type Result struct {
	Text string
	Err  error
}

// OK reports whether the tool succeeded.
func (r Result) OK() bool { return r.Err == nil }
