package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dileep-u-k/agent-gateway/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLLM records prompts and replies with a fixed completion.
type fakeLLM struct {
	reply   string
	err     error
	prompts []string
	configs []*llm.GenerationConfig
}

func (f *fakeLLM) Generate(_ context.Context, messages []llm.Message, cfg *llm.GenerationConfig) (*llm.GenerationResult, error) {
	f.prompts = append(f.prompts, messages[len(messages)-1].Content)
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerationResult{Content: f.reply}, nil
}

func TestCalculatorTool(t *testing.T) {
	manager := NewToolManager()
	manager.Register(NewCalculatorTool())

	res := manager.Invoke(context.Background(), Calculator, "Calculate 15 * 24")
	require.True(t, res.OK())
	assert.Equal(t, "360", res.Text)

	res = manager.Invoke(context.Background(), Calculator, "what is 15% of 80")
	require.True(t, res.OK())
	assert.Equal(t, "12", res.Text)

	res = manager.Invoke(context.Background(), Calculator, "10 / 0")
	require.False(t, res.OK())
	assert.True(t, strings.HasPrefix(res.Text, "Calculator Error: "), res.Text)
	kind, ok := KindOf(res.Err)
	require.True(t, ok)
	assert.Equal(t, KindEvaluationFailure, kind)
}

func TestWebSearchToolWithoutKey(t *testing.T) {
	manager := NewToolManager()
	manager.Register(NewWebSearchTool(WebSearchConfig{}))

	res := manager.Invoke(context.Background(), WebSearch, "latest news")
	assert.Equal(t, "WebSearch Error: API key not set.", res.Text)
	kind, _ := KindOf(res.Err)
	assert.Equal(t, KindBackendUnavailable, kind)
	assert.False(t, manager.Definitions()[0].Available)
}

func TestWebSearchToolFormatsResults(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotQuery = body["q"]
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"Go","link":"https://go.dev","snippet":"The Go language"},
			{"title":"","link":"https://example.com","snippet":""},
			{"title":"Third","link":"https://third.example","snippet":"three"},
			{"title":"Fourth","link":"https://fourth.example","snippet":"four"}
		]}`))
	}))
	defer server.Close()

	tool := NewWebSearchTool(WebSearchConfig{APIKey: "secret", URL: server.URL})
	long := strings.Repeat("é", 150)
	_, err := tool.Execute(context.Background(), "  "+long+"  ")
	require.NoError(t, err)
	assert.Equal(t, 100, len([]rune(gotQuery)))

	out, err := tool.Execute(context.Background(), "golang")
	require.NoError(t, err)
	want := "Web Results:\n" +
		"1. Go\n   https://go.dev\n   The Go language\n\n" +
		"2. No title\n   https://example.com\n   No snippet\n\n" +
		"3. Third\n   https://third.example\n   three\n\n"
	assert.Equal(t, want, out)
}

func TestWebSearchToolNoResultsAndFailures(t *testing.T) {
	status := http.StatusOK
	reply := `{"organic":[]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	defer server.Close()

	manager := NewToolManager()
	manager.Register(NewWebSearchTool(WebSearchConfig{APIKey: "k", URL: server.URL}))

	res := manager.Invoke(context.Background(), WebSearch, "nothing")
	assert.True(t, res.OK())
	assert.Equal(t, "No relevant results found.", res.Text)

	reply = `not json`
	res = manager.Invoke(context.Background(), WebSearch, "broken")
	assert.True(t, strings.HasPrefix(res.Text, "WebSearch Error: "), res.Text)
	kind, _ := KindOf(res.Err)
	assert.Equal(t, KindParseFailure, kind)

	status = http.StatusForbidden
	res = manager.Invoke(context.Background(), WebSearch, "forbidden")
	assert.Equal(t, "WebSearch Error: search API returned status 403", res.Text)
}

func TestMathSolverTool(t *testing.T) {
	fake := &fakeLLM{reply: "Distance = 60 * 2 = 120 miles.\n\\boxed{120}"}
	tool := NewMathSolverTool(fake, "llama3-70b-8192", 0)

	out, err := tool.Execute(context.Background(), "A car travels 60 mph for 2 hours, how far?")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Math Solution (via llama3-70b-8192):\n\n"))
	assert.Contains(t, out, `\boxed{120}`)

	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Problem: A car travels 60 mph for 2 hours, how far?\nFormat the final answer as: \\boxed{answer}")
	assert.Equal(t, "llama3-70b-8192", fake.configs[0].Model)
	assert.Zero(t, *fake.configs[0].Temperature)
	assert.Equal(t, 1024, fake.configs[0].MaxTokens)
}

func TestMathSolverToolFailures(t *testing.T) {
	manager := NewToolManager()
	manager.Register(NewMathSolverTool(nil, "m", 0))
	res := manager.Invoke(context.Background(), MathSolver, "2+2")
	assert.Equal(t, "Math Solver Error: API key not set.", res.Text)

	manager.Register(NewMathSolverTool(&fakeLLM{err: errors.New("connection refused")}, "m", 0))
	res = manager.Invoke(context.Background(), MathSolver, "2+2")
	assert.Equal(t, "Math Solver Error: connection refused", res.Text)
	assert.Equal(t, 1, manager.ToolCount())
}

func TestDocumentQATool(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "facts.txt"), []byte("The office wifi password is hunter2."), 0o644))

	rag := llm.NewRAGService(llm.RAGConfig{DocumentsDir: dir}, llm.NewLexicalEmbedder(64))
	fake := &fakeLLM{reply: "The password is hunter2."}
	tool := NewDocumentQATool(rag, fake, "llama3-8b-8192", 0)

	out, err := tool.Execute(context.Background(), "What is the wifi password?")
	require.NoError(t, err)
	assert.Equal(t, "The password is hunter2.", out)
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "The office wifi password is hunter2.")
	assert.True(t, strings.HasSuffix(fake.prompts[0], "Question: What is the wifi password?\nHelpful Answer:"))
}

func TestDocumentQAToolEmptyCorpus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "documents")
	rag := llm.NewRAGService(llm.RAGConfig{DocumentsDir: dir}, llm.NewLexicalEmbedder(64))

	manager := NewToolManager()
	manager.Register(NewDocumentQATool(rag, &fakeLLM{reply: "unused"}, "m", 0))

	res := manager.Invoke(context.Background(), DocumentQA, "anything")
	assert.Equal(t, "No documents found in "+dir+"/. Please add files.", res.Text)
	kind, _ := KindOf(res.Err)
	assert.Equal(t, KindEmptyResult, kind)
}

type stubTool struct {
	name  Name
	out   string
	err   error
	panic bool
	calls int32
}

func (s *stubTool) Definition() Descriptor { return NewDescriptor(s.name, true) }

func (s *stubTool) Execute(context.Context, string) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.panic {
		panic("boom")
	}
	return s.out, s.err
}

func TestToolManagerInvokeBoundary(t *testing.T) {
	manager := NewToolManager()

	res := manager.Invoke(context.Background(), WebSearch, "q")
	assert.False(t, res.OK())
	assert.NotEmpty(t, res.Text)

	manager.Register(&stubTool{name: WebSearch, panic: true})
	res = manager.Invoke(context.Background(), WebSearch, "q")
	assert.Equal(t, "WebSearch Error: unexpected failure: boom", res.Text)

	manager.Register(&stubTool{name: Calculator, out: "   "})
	res = manager.Invoke(context.Background(), Calculator, "q")
	assert.Equal(t, "Calculator returned no output.", res.Text)

	manager.Register(&stubTool{name: MathSolver, err: errors.New("plain failure")})
	res = manager.Invoke(context.Background(), MathSolver, "q")
	assert.Equal(t, "Math Solver Error: plain failure", res.Text)
	kind, _ := KindOf(res.Err)
	assert.Equal(t, KindBackendCallFailure, kind)
}

func TestToolManagerLookupDisplay(t *testing.T) {
	manager := NewToolManager()
	manager.Register(NewWebSearchTool(WebSearchConfig{}))
	manager.Register(NewCalculatorTool())
	manager.Register(NewMathSolverTool(nil, "m", 0))

	for input, want := range map[string]Name{
		"Web Search":  WebSearch,
		"web search":  WebSearch,
		" Calculator": Calculator,
		"MATH_SOLVER": MathSolver,
	} {
		got, ok := manager.LookupDisplay(input)
		require.True(t, ok, input)
		assert.Equal(t, want, got)
	}
	_, ok := manager.LookupDisplay("Document QA")
	assert.False(t, ok)

	assert.Equal(t, "[Web Search, Calculator, Math Solver]", manager.String())
	defs := manager.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "Calculator Tool", defs[1].Label)
}

func TestParseNameAndLabel(t *testing.T) {
	name, ok := ParseName("DOCUMENT_QA")
	assert.True(t, ok)
	assert.Equal(t, DocumentQA, name)

	_, ok = ParseName("document_qa")
	assert.False(t, ok)

	assert.Equal(t, "Web Search Tool", Label(WebSearch))
	assert.Equal(t, "SOMETHING", Label("SOMETHING"))
}
