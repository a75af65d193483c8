// In file: internal/benchmark/benchmark.go

// Package benchmark runs the fixed LAMA and GSM8K question sets through an
// answering function and scores the replies.
package benchmark

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Item is one benchmark question and the answers that count as correct.
type Item struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// Suite is a named, fixed set of items.
type Suite struct {
	Name  string
	Title string
	// Prepare rewrites an item's question into the query actually asked.
	Prepare func(question string) string
	Items   []Item
}

// Query returns the text sent for item.
func (s Suite) Query(item Item) string {
	if s.Prepare == nil {
		return item.Question
	}
	return s.Prepare(item.Question)
}

var suites = map[string]Suite{
	"lama":  LAMA,
	"gsm8k": GSM8K,
}

// Lookup finds a suite by name, case-insensitively.
func Lookup(name string) (Suite, bool) {
	s, ok := suites[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Names lists the available suite names.
func Names() []string {
	names := make([]string, 0, len(suites))
	for name := range suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Score reports whether any accepted answer occurs in response, ignoring case.
func Score(response string, answers []string) bool {
	lower := strings.ToLower(response)
	for _, ans := range answers {
		if strings.Contains(lower, strings.ToLower(ans)) {
			return true
		}
	}
	return false
}

// AnswerFunc answers one query, returning the response text and its provenance.
type AnswerFunc func(ctx context.Context, query string) (text, source string)

// ItemResult is the outcome for one item.
type ItemResult struct {
	Question string   `json:"question"`
	Query    string   `json:"query"`
	Response string   `json:"response"`
	Source   string   `json:"source"`
	Expected []string `json:"expected"`
	Correct  bool     `json:"correct"`
}

// Report is the result of one suite run.
type Report struct {
	Suite      string        `json:"suite"`
	Correct    int           `json:"correct"`
	Total      int           `json:"total"`
	Accuracy   float64       `json:"accuracy"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Items      []ItemResult  `json:"items"`
	Incomplete bool          `json:"incomplete,omitempty"`
}

// Summary is the one-line headline, e.g. "LAMA Accuracy: 90.0%".
func (r *Report) Summary() string {
	return fmt.Sprintf("%s Accuracy: %.1f%%", strings.ToUpper(r.Suite), r.Accuracy)
}

// Text renders the headline followed by every question, answer and accepted answers.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString(r.Summary())
	b.WriteString("\n\n")
	for _, item := range r.Items {
		fmt.Fprintf(&b, "Q: %s\nA: %s\nCorrect: %s\n\n", item.Question, item.Response, strings.Join(item.Expected, ", "))
	}
	return b.String()
}

// Run asks every item of suite, in order, and scores the answers. Items are
// asked sequentially. A cancelled context stops the run early and marks it incomplete;
// accuracy is still computed over the whole suite.
func Run(ctx context.Context, suite Suite, answer AnswerFunc) *Report {
	report := &Report{
		Suite:     suite.Name,
		Total:     len(suite.Items),
		StartedAt: time.Now(),
	}
	log.Printf("📊 Running %s benchmark (%d items)", suite.Title, len(suite.Items))

	for _, item := range suite.Items {
		if ctx.Err() != nil {
			report.Incomplete = true
			break
		}
		query := suite.Query(item)
		text, source := answer(ctx, query)
		correct := Score(text, item.Answers)
		if correct {
			report.Correct++
		}
		report.Items = append(report.Items, ItemResult{
			Question: item.Question,
			Query:    query,
			Response: text,
			Source:   source,
			Expected: item.Answers,
			Correct:  correct,
		})
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total) * 100
	}
	report.Duration = time.Since(report.StartedAt)
	log.Printf("✅ %s (%d/%d) in %s", report.Summary(), report.Correct, report.Total, report.Duration.Round(time.Millisecond))
	return report
}
