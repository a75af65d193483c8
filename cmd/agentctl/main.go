// In file: cmd/agentctl/main.go

// Package main implements agentctl, the offline companion to the gateway.
// It drives the same agent from the terminal: one-off questions, benchmark
// suites, document re-indexing and answer-log maintenance.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dileep-u-k/agent-gateway/internal/app"
	"github.com/dileep-u-k/agent-gateway/internal/config"
)

// =================================================================================
// Root Command
// =================================================================================

type globalOptions struct {
	ConfigPath string
	NoStore    bool
	Verbose    bool
}

var globals globalOptions

// buildApp is swapped in tests to inject a fake language model.
var buildApp = func(ctx context.Context, cfg *config.Config, opts app.Options) (*app.App, error) {
	return app.New(ctx, cfg, opts)
}

var rootCmd = &cobra.Command{
	Use:           "agentctl",
	Short:         "Ask the tool-routing agent, run benchmarks and manage its documents",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		log.SetFlags(log.LstdFlags)
		if !globals.Verbose {
			log.SetOutput(io.Discard)
		} else {
			log.SetOutput(cmd.ErrOrStderr())
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&globals.NoStore, "no-store", false, "do not record answers in the answer log")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "print service logs to stderr")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(answersCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// openApp loads configuration and builds the agent for one command run.
// The document index is built lazily on the first document question.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(globals.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return buildApp(cmd.Context(), cfg, app.Options{SkipStore: globals.NoStore})
}
