// In file: internal/llm/transport.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// jsonEndpoint is one provider URL plus the headers every call to it carries.
// All provider clients in this package share it, so they fail the same way:
// one attempt, and the status code plus a clipped body on non-2xx replies.
type jsonEndpoint struct {
	api     string // used in error messages, e.g. "chat completion"
	url     string
	headers http.Header
	client  *http.Client
}

// post marshals in, sends it, and decodes a 2xx reply into out.
func (e *jsonEndpoint) post(ctx context.Context, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", e.api, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", e.api, err)
	}
	for k, vs := range e.headers {
		req.Header[k] = vs
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", e.api, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", e.api, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s API error: status %d, body: %s", e.api, resp.StatusCode, truncate(body, errorBodyLimit))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", e.api, err)
	}
	return nil
}

func bearer(key string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+key)
	return h
}

// maxTokensOr returns the configured completion budget or the package default.
func maxTokensOr(config *GenerationConfig) int {
	if config != nil && config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return defaultMaxTokens
}
