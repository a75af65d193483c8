package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "answers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListAnswers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	first, err := s.SaveAnswer(ctx, Answer{Query: "2+2", Response: "4", Source: "Calculator Tool", CreatedAt: base})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, TestTypeChat, first.TestType)

	_, err = s.SaveAnswer(ctx, Answer{Query: "capital of France", Response: "Paris", Source: "Direct Answer", TestType: TestTypeLAMA, CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	all, err := s.RecentAnswers(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "capital of France", all[0].Query, "newest first")
	assert.Equal(t, base, all[1].CreatedAt)

	lama, err := s.RecentAnswers(ctx, 10, TestTypeLAMA)
	require.NoError(t, err)
	require.Len(t, lama, 1)
	assert.Equal(t, "Paris", lama[0].Response)

	limited, err := s.RecentAnswers(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	n, err := s.ClearAnswers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	all, err = s.RecentAnswers(ctx, 10, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSaveRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run, err := s.SaveRun(ctx, BenchmarkRun{Suite: "gsm8k", Correct: 4, Total: 5, Accuracy: 80, Report: "GSM8K Accuracy: 80.0%"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	runs, err := s.RecentRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "gsm8k", runs[0].Suite)
	assert.InDelta(t, 80.0, runs[0].Accuracy, 1e-9)
	assert.Equal(t, 4, runs[0].Correct)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
