// In file: internal/tools/document_qa_tool.go
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dileep-u-k/agent-gateway/internal/llm"
)

const documentQAPrompt = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`

// DocumentQATool answers questions from the local document corpus: retrieve the
// closest chunks, stuff them into one prompt, and ask the model.
type DocumentQATool struct {
	rag       *llm.RAGService
	client    llm.LLMClient
	model     string
	maxTokens int
}

var _ ToolExecutor = (*DocumentQATool)(nil)

func NewDocumentQATool(rag *llm.RAGService, client llm.LLMClient, model string, maxTokens int) *DocumentQATool {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &DocumentQATool{rag: rag, client: client, model: model, maxTokens: maxTokens}
}

func (dt *DocumentQATool) Definition() Descriptor {
	return NewDescriptor(DocumentQA, dt.client != nil && dt.rag != nil)
}

func (dt *DocumentQATool) Execute(ctx context.Context, question string) (string, error) {
	if dt.client == nil || dt.rag == nil {
		return "", &ToolError{Tool: DocumentQA, Kind: KindBackendUnavailable, Err: errAPIKeyNotSet}
	}

	matches, err := dt.rag.Retrieve(ctx, question, dt.rag.TopK())
	if errors.Is(err, llm.ErrEmptyCorpus) {
		dir := strings.TrimRight(dt.rag.DocumentsDir(), "/")
		return "", newToolError(DocumentQA, KindEmptyResult, "No documents found in %s/. Please add files.", dir)
	}
	if err != nil {
		return "", &ToolError{Tool: DocumentQA, Kind: KindBackendCallFailure, Err: err}
	}

	pieces := make([]string, len(matches))
	for i, m := range matches {
		pieces[i] = m.Text
	}
	prompt := fmt.Sprintf(documentQAPrompt, strings.Join(pieces, "\n\n"), question)

	answer, err := llm.Complete(ctx, dt.client, prompt, &llm.GenerationConfig{
		Model:       dt.model,
		Temperature: llm.Float32(0),
		MaxTokens:   dt.maxTokens,
	})
	if err != nil {
		return "", &ToolError{Tool: DocumentQA, Kind: KindBackendCallFailure, Err: err}
	}
	return answer, nil
}
