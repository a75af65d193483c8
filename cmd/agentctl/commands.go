// In file: cmd/agentctl/commands.go
package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dileep-u-k/agent-gateway/internal/app"
	"github.com/dileep-u-k/agent-gateway/internal/benchmark"
	"github.com/dileep-u-k/agent-gateway/internal/config"
	"github.com/dileep-u-k/agent-gateway/internal/store"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question, or read questions from stdin one per line",
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) > 0 {
		printAnswer(cmd, a.Ask(cmd.Context(), strings.Join(args, " "), store.TestTypeChat))
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			fmt.Fprintln(cmd.OutOrStdout())
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			return nil
		}
		printAnswer(cmd, a.Ask(cmd.Context(), query, store.TestTypeChat))
		if cmd.Context().Err() != nil {
			return nil
		}
	}
}

func printAnswer(cmd *cobra.Command, ans app.Answered) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ans.Text)
	fmt.Fprintf(out, "  (source: %s, %dms)\n", ans.Source, ans.Latency.Milliseconds())
}

var benchCmd = &cobra.Command{
	Use:       "bench <suite>",
	Short:     "Run a benchmark suite (" + strings.Join(benchmark.Names(), ", ") + ")",
	Args:      cobra.ExactArgs(1),
	ValidArgs: benchmark.Names(),
	RunE:      runBench,
}

var benchVerbose bool

func init() {
	benchCmd.Flags().BoolVar(&benchVerbose, "details", false, "print every question and answer")
}

func runBench(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.RunBenchmark(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if benchVerbose {
		fmt.Fprintln(out, report.Text())
	}
	fmt.Fprintln(out, report.Summary())
	if report.Incomplete {
		return errors.New("benchmark interrupted before every item ran")
	}
	return nil
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the document index and list what was indexed",
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	chunks, err := a.Reindex(cmd.Context())
	if err != nil {
		return err
	}
	docs := a.RAG.Documents()
	out := cmd.OutOrStdout()
	if len(docs) == 0 {
		fmt.Fprintf(out, "No documents found in %s/.\n", a.RAG.DocumentsDir())
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tCHUNKS")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%d\n", d.Name, d.Chunks)
	}
	tw.Flush()
	fmt.Fprintf(out, "Indexed %d documents into %d chunks.\n", len(docs), chunks)
	return nil
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools and whether their backends are configured",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TOOL\tNAME\tAVAILABLE")
		for _, d := range a.Tools.Definitions() {
			fmt.Fprintf(tw, "%s\t%s\t%v\n", d.Name, d.DisplayName, d.Available)
		}
		return tw.Flush()
	},
}

// =================================================================================
// Answer Log
// =================================================================================

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Inspect or clear the answer log",
}

var (
	answersLimit    int
	answersTestType string
)

var answersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		answers, err := st.RecentAnswers(cmd.Context(), answersLimit, answersTestType)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tTYPE\tSOURCE\tQUERY\tRESPONSE")
		for _, ans := range answers {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				ans.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				ans.TestType, ans.Source, clip(ans.Query, 40), clip(ans.Response, 60))
		}
		return tw.Flush()
	},
}

var answersClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded answer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.ClearAnswers(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d answers.\n", n)
		return nil
	},
}

func init() {
	answersListCmd.Flags().IntVarP(&answersLimit, "limit", "n", 20, "number of answers to show")
	answersListCmd.Flags().StringVar(&answersTestType, "type", "", "only show answers of this type (chat, lama, gsm8k)")
	answersCmd.AddCommand(answersListCmd, answersClearCmd)
}

// openStore opens only the answer log; no model backend is needed.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := config.Load(globals.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return store.Open(cmd.Context(), cfg.Store.Path)
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
