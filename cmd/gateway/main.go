// In file: cmd/gateway/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/dileep-u-k/agent-gateway/internal/app"
	"github.com/dileep-u-k/agent-gateway/internal/config"
)

const (
	configPath          = "config.yaml"
	healthCheckInterval = 5 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

// main is the composition root for the HTTP gateway: it loads configuration,
// builds the agent, and serves it until SIGINT or SIGTERM.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting Agent Gateway | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	path := configPath
	if p := os.Getenv("AGENT_CONFIG"); p != "" {
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Println("✅ Configuration loaded.")

	// 2. INITIALIZE SERVICES
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}
	defer a.Close()

	if chunks, err := a.Reindex(ctx); err != nil {
		log.Printf("⚠️  Initial document index failed: %v", err)
	} else {
		log.Printf("📚 Indexed %d chunks from %s.", chunks, cfg.Documents.Dir)
	}
	log.Println("✅ All services initialized.")

	// 3. START BACKGROUND PROCESSES
	go a.Health.Run(ctx, healthCheckInterval)

	// 4. SETUP AND RUN THE WEB SERVER
	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := newRouter(NewGatewayHandler(a), cfg)

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Server.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// newRouter wires middleware and routes. Health and metrics bypass the rate limiter.
func newRouter(h *GatewayHandler, cfg *config.Config) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.CustomRecovery(errorFromPanic), requestIDMiddleware())

	engine.GET("/healthz", h.HandleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst)
	v1 := engine.Group("/api/v1", rateLimitMiddleware(limiter))
	{
		v1.POST("/ask", h.HandleAsk)
		v1.GET("/tools", h.HandleTools)
		v1.GET("/documents", h.HandleListDocuments)
		v1.POST("/documents", h.HandleUpload)
		v1.POST("/benchmarks/:suite", h.HandleBenchmark)
		v1.GET("/answers", h.HandleListAnswers)
		v1.DELETE("/answers", h.HandleClearAnswers)
	}
	return engine
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Gateway is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown failed: %v", err)
		return
	}

	log.Println("👋 Server exited gracefully.")
}
