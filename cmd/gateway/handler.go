// In file: cmd/gateway/handler.go
package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dileep-u-k/agent-gateway/internal/agent"
	"github.com/dileep-u-k/agent-gateway/internal/app"
	"github.com/dileep-u-k/agent-gateway/internal/llm"
	"github.com/dileep-u-k/agent-gateway/internal/store"
	"github.com/dileep-u-k/agent-gateway/internal/tools"
)

// =================================================================================
// Gateway Handler
// =================================================================================
// Thin HTTP layer over app.App. Every decision lives in the agent; handlers
// only bind input, call the app, and shape JSON.
// =================================================================================

type GatewayHandler struct {
	app *app.App
}

func NewGatewayHandler(a *app.App) *GatewayHandler {
	return &GatewayHandler{app: a}
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Query string `json:"query" binding:"required"`
}

// AskResponse always carries text, even when Source is "Error".
type AskResponse struct {
	RequestID string        `json:"request_id"`
	AnswerID  string        `json:"answer_id,omitempty"`
	Response  string        `json:"response"`
	Source    string        `json:"source"`
	Verdict   agent.Verdict `json:"verdict,omitempty"`
	ToolOrder []tools.Name  `json:"tool_order,omitempty"`
	ErrorKind tools.Kind    `json:"error_kind,omitempty"`
	LatencyMS int64         `json:"latency_ms"`
}

func (h *GatewayHandler) HandleAsk(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: query must not be blank"})
		return
	}

	log.Printf("--- New Query (Request: %s, Query: '%.40s') ---", requestID(c), query)
	ans := h.app.Ask(c.Request.Context(), query, store.TestTypeChat)

	resp := AskResponse{
		RequestID: requestID(c),
		AnswerID:  ans.ID,
		Response:  ans.Text,
		Source:    ans.Source,
		Verdict:   ans.Verdict,
		ToolOrder: ans.ToolOrder,
		LatencyMS: ans.Latency.Milliseconds(),
	}
	if kind, ok := tools.KindOf(ans.Err); ok {
		resp.ErrorKind = kind
	}
	c.JSON(http.StatusOK, resp)
}

// HandleUpload stores uploaded files in the documents directory and rebuilds the corpus.
func (h *GatewayHandler) HandleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload: " + err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload: no files in field 'files'"})
		return
	}

	dir := h.app.RAG.DocumentsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("could not create documents dir: %v", err)})
		return
	}

	var skipped []string
	saved := 0
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if name == "." || name == string(filepath.Separator) {
			continue
		}
		if !llm.SupportedExtensions[strings.ToLower(filepath.Ext(name))] {
			skipped = append(skipped, name)
			continue
		}
		if err := c.SaveUploadedFile(fh, filepath.Join(dir, name)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("could not save %s: %v", name, err)})
			return
		}
		saved++
	}

	chunks, err := h.app.Reindex(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully uploaded %d files and reloaded vector store.", saved),
		"chunks":  chunks,
		"skipped": skipped,
	})
}

func (h *GatewayHandler) HandleListDocuments(c *gin.Context) {
	built, docs, chunks := h.app.RAG.Stats()
	c.JSON(http.StatusOK, gin.H{
		"dir":       h.app.RAG.DocumentsDir(),
		"built":     built,
		"count":     docs,
		"chunks":    chunks,
		"documents": h.app.RAG.Documents(),
	})
}

func (h *GatewayHandler) HandleBenchmark(c *gin.Context) {
	report, err := h.app.RunBenchmark(c.Request.Context(), c.Param("suite"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": report.Summary(),
		"report":  report,
	})
}

func (h *GatewayHandler) HandleTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": h.app.Tools.Definitions()})
}

func (h *GatewayHandler) HandleListAnswers(c *gin.Context) {
	if h.app.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "answer log is disabled"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	answers, err := h.app.Store.RecentAnswers(c.Request.Context(), limit, c.Query("test_type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if answers == nil {
		answers = []store.Answer{}
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

func (h *GatewayHandler) HandleClearAnswers(c *gin.Context) {
	if h.app.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "answer log is disabled"})
		return
	}
	n, err := h.app.Store.ClearAnswers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (h *GatewayHandler) HandleHealth(c *gin.Context) {
	built, docs, chunks := h.app.RAG.Stats()
	status := "ok"
	backend := h.app.Health.Status()
	if !backend.Configured || (!backend.CheckedAt.IsZero() && !backend.Healthy) {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"build":   GetBuildInfo(),
		"backend": backend,
		"corpus": gin.H{
			"built":     built,
			"documents": docs,
			"chunks":    chunks,
		},
		"time": time.Now().UTC(),
	})
}

// errorFromPanic keeps gin's recovery output in the same shape as handler errors.
func errorFromPanic(c *gin.Context, recovered any) {
	err, ok := recovered.(error)
	if !ok {
		err = errors.New(fmt.Sprint(recovered))
	}
	log.Printf("❌ Handler panic: %v", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
