package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dileep-u-k/agent-gateway/internal/app"
	"github.com/dileep-u-k/agent-gateway/internal/config"
	"github.com/dileep-u-k/agent-gateway/internal/llm"
)

// stubLLM classifies every query as decision and answers everything else with reply.
type stubLLM struct {
	decision string
	reply    string
}

func (s *stubLLM) Generate(_ context.Context, messages []llm.Message, _ *llm.GenerationConfig) (*llm.GenerationResult, error) {
	if strings.Contains(messages[len(messages)-1].Content, "User query:") {
		return &llm.GenerationResult{Content: s.decision}, nil
	}
	return &llm.GenerationResult{Content: s.reply}, nil
}

func newTestServer(t *testing.T, client llm.LLMClient) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Documents.Dir = filepath.Join(dir, "documents")
	cfg.Documents.EmbeddingProvider = config.EmbeddingLexical
	cfg.Store.Path = filepath.Join(dir, "answers.db")

	a, err := app.New(context.Background(), cfg, app.Options{LLM: client})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	return newRouter(NewGatewayHandler(a), cfg), cfg
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHandleAskCalculator(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{decision: "Decision: CALCULATOR"})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ask", AskRequest{Query: "Calculate 15 * 24"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "360", resp.Response)
	assert.Equal(t, "Calculator Tool", resp.Source)
	assert.Equal(t, "CALCULATOR", string(resp.Verdict))
	assert.NotEmpty(t, resp.RequestID)
	assert.NotEmpty(t, resp.AnswerID)
	assert.Equal(t, resp.RequestID, w.Header().Get(requestIDHeader))
}

func TestHandleAskRejectsBlankQuery(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{decision: "Decision: DIRECT"})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ask", AskRequest{Query: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/ask", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAskReportsToolErrorsWithOK(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{decision: "Decision: WEB_SEARCH"})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ask", AskRequest{Query: "latest news"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "WebSearch Error: API key not set.", resp.Response)
	assert.Equal(t, "backend_unavailable", string(resp.ErrorKind))
}

func TestHandleAskReusesCallerRequestID(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{decision: "Decision: DIRECT", reply: "Hi!"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"query":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
	assert.Contains(t, w.Body.String(), `"request_id":"req-42"`)
}

func TestHandleTools(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{})

	w := doJSON(t, engine, http.MethodGet, "/api/v1/tools", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Tools []struct {
			Name      string `json:"name"`
			Available bool   `json:"available"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Tools, 4)
	assert.Equal(t, "WEB_SEARCH", body.Tools[0].Name)
	assert.False(t, body.Tools[0].Available)
	assert.Equal(t, "CALCULATOR", body.Tools[1].Name)
	assert.True(t, body.Tools[1].Available)
}

func TestHandleUploadReindexes(t *testing.T) {
	engine, cfg := newTestServer(t, &stubLLM{decision: "Decision: DOCUMENT_QA", reply: "Founded in 1987."})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "../acme.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Acme Corporation was founded in 1987."))
	require.NoError(t, err)
	part, err = mw.CreateFormFile("files", "slides.pptx")
	require.NoError(t, err)
	_, err = part.Write([]byte("binary"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Successfully uploaded 1 files and reloaded vector store.")
	assert.Contains(t, w.Body.String(), "slides.pptx")
	assert.FileExists(t, filepath.Join(cfg.Documents.Dir, "acme.txt"))

	w = doJSON(t, engine, http.MethodGet, "/api/v1/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"acme.txt"`)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/ask", AskRequest{Query: "When was Acme founded?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Founded in 1987.")
}

func TestHandleAnswersListAndClear(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{decision: "Decision: CALCULATOR"})

	doJSON(t, engine, http.MethodPost, "/api/v1/ask", AskRequest{Query: "2 plus 2"})
	doJSON(t, engine, http.MethodPost, "/api/v1/ask", AskRequest{Query: "3 times 3"})

	w := doJSON(t, engine, http.MethodGet, "/api/v1/answers?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Answers []map[string]any `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Answers, 1)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/answers?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/answers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":2}`, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/api/v1/answers", nil)
	assert.JSONEq(t, `{"answers":[]}`, w.Body.String())
}

func TestHandleBenchmarkUnknownSuite(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/benchmarks/mmlu", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "gsm8k")
}

func TestHandleBenchmarkGSM8K(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{decision: "Decision: DIRECT", reply: "The answer is 72."})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/benchmarks/gsm8k", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "GSM8K Accuracy: 20.0%")
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{})

	w := doJSON(t, engine, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "build")
	assert.Contains(t, body, "corpus")
}

func TestMetricsEndpoint(t *testing.T) {
	engine, _ := newTestServer(t, &stubLLM{decision: "Decision: CALCULATOR"})
	doJSON(t, engine, http.MethodPost, "/api/v1/ask", AskRequest{Query: "1 plus 1"})

	w := doJSON(t, engine, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agent_queries_total")
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Documents.Dir = filepath.Join(dir, "documents")
	cfg.Documents.EmbeddingProvider = config.EmbeddingLexical
	cfg.Server.RateLimitRPS = 0.001
	cfg.Server.RateLimitBurst = 1

	a, err := app.New(context.Background(), cfg, app.Options{LLM: &stubLLM{}, SkipStore: true})
	require.NoError(t, err)
	defer a.Close()
	engine := newRouter(NewGatewayHandler(a), cfg)

	assert.Equal(t, http.StatusOK, doJSON(t, engine, http.MethodGet, "/api/v1/tools", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(t, engine, http.MethodGet, "/api/v1/tools", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, engine, http.MethodGet, "/healthz", nil).Code)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/answers", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
