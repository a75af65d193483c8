// In file: internal/tools/web_search_tool.go
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// --- Web Search Tool Implementation ---

const (
	DefaultSearchURL         = "https://google.serper.dev/search"
	defaultSearchTimeout     = 10 * time.Second
	defaultMaxResults        = 3
	defaultMaxQueryLength    = 100
	noRelevantResultsMessage = "No relevant results found."
)

// WebSearchConfig configures the search provider call.
type WebSearchConfig struct {
	APIKey         string
	URL            string
	Timeout        time.Duration
	MaxResults     int
	MaxQueryLength int
}

// WebSearchTool queries a Serper-compatible search API and formats the top organic results.
// To use this tool, you need an API key from https://serper.dev
type WebSearchTool struct {
	config     WebSearchConfig
	httpClient *http.Client
}

// Statically verify that WebSearchTool implements the ToolExecutor interface.
var _ ToolExecutor = (*WebSearchTool)(nil)

// NewWebSearchTool creates the tool. A missing API key is not an error here;
// Execute reports it so the tool can stay registered and visible.
func NewWebSearchTool(cfg WebSearchConfig) *WebSearchTool {
	if cfg.URL == "" {
		cfg.URL = DefaultSearchURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSearchTimeout
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.MaxQueryLength <= 0 {
		cfg.MaxQueryLength = defaultMaxQueryLength
	}
	return &WebSearchTool{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (wt *WebSearchTool) Definition() Descriptor {
	return NewDescriptor(WebSearch, wt.config.APIKey != "")
}

type searchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Execute sends one POST to the provider, with no retry.
func (wt *WebSearchTool) Execute(ctx context.Context, query string) (string, error) {
	if wt.config.APIKey == "" {
		return "", &ToolError{Tool: WebSearch, Kind: KindBackendUnavailable, Err: errAPIKeyNotSet}
	}

	// 1. Build the request body from the truncated query.
	payload, err := json.Marshal(map[string]string{"q": truncateRunes(strings.TrimSpace(query), wt.config.MaxQueryLength)})
	if err != nil {
		return "", newToolError(WebSearch, KindParseFailure, "failed to encode query: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wt.config.URL, bytes.NewReader(payload))
	if err != nil {
		return "", newToolError(WebSearch, KindBackendCallFailure, "failed to create search request: %v", err)
	}
	req.Header.Set("X-API-KEY", wt.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	// 2. Make the external API call.
	resp, err := wt.httpClient.Do(req)
	if err != nil {
		return "", newToolError(WebSearch, KindBackendCallFailure, "search request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newToolError(WebSearch, KindBackendCallFailure, "search API returned status %d", resp.StatusCode)
	}

	// 3. Parse the JSON response.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newToolError(WebSearch, KindBackendCallFailure, "failed to read search response: %v", err)
	}
	var apiResp searchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", newToolError(WebSearch, KindParseFailure, "failed to parse search response: %v", err)
	}

	// 4. Format the top results.
	if len(apiResp.Organic) == 0 {
		return noRelevantResultsMessage, nil
	}

	var resultBuilder strings.Builder
	resultBuilder.WriteString("Web Results:\n")
	for i, r := range apiResp.Organic {
		if i >= wt.config.MaxResults {
			break
		}
		fmt.Fprintf(&resultBuilder, "%d. %s\n   %s\n   %s\n\n", i+1,
			orPlaceholder(r.Title, "No title"),
			orPlaceholder(r.Link, "No link"),
			orPlaceholder(r.Snippet, "No snippet"))
	}
	return resultBuilder.String(), nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
