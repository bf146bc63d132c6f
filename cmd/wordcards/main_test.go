package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/wordcards/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WORDCARDS_LLM_PROVIDER", "mock")
	t.Setenv("WORDCARDS_EXPORT_OUTPUT_DIR", dir)
	t.Setenv("WORDCARDS_LOG_LEVEL", "error")
	return dir
}

func TestRun_WritesCSV(t *testing.T) {
	dir := mockEnv(t)
	out := filepath.Join(dir, "deck.csv")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-words", "apple, banana,apple", "-format", "csv", "-out", out, "-deck", "CLI"},
		&stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Generating cards for 2 words")
	assert.Contains(t, stdout.String(), "ok     apple (mock)")
	assert.Contains(t, stdout.String(), "Requested 3, succeeded 3 (model 0, mock 3), failed 0, cache hits 1")
	assert.Contains(t, stdout.String(), "Wrote 2 cards to "+out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := export.DecodeCSV(f, ',')
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRun_InputFileAndDefaultName(t *testing.T) {
	dir := mockEnv(t)
	input := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(input, []byte("# list\ncherry\nplum\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-input", input, "-format", "markdown", "apple"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	matches, err := filepath.Glob(filepath.Join(dir, "wordcards_*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	for _, word := range []string{"apple", "cherry", "plum"} {
		assert.Contains(t, string(data), "## "+word)
	}
}

func TestRun_AllWordsFail(t *testing.T) {
	dir := mockEnv(t)
	out := filepath.Join(dir, "deck.apkg")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-words", "r2d2,4x4", "-out", out}, &stdout, &stderr)

	assert.Equal(t, exitAllFailed, code)
	assert.Contains(t, stdout.String(), "invalid_word: 2")
	assert.NoFileExists(t, out)

	code = run(context.Background(), []string{"-words", "r2d2", "-out", out, "-allow-empty"}, &stdout, &stderr)
	assert.Equal(t, exitAllFailed, code)
	assert.FileExists(t, out)
}

func TestRun_Errors(t *testing.T) {
	mockEnv(t)
	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitUsageError, run(context.Background(), []string{"-nope"}, &stdout, &stderr))
	assert.Equal(t, exitUsageError, run(context.Background(), nil, &stdout, &stderr))
	assert.Equal(t, exitError, run(context.Background(), []string{"-words", "apple", "-format", "pdf"}, &stdout, &stderr))
	assert.Equal(t, exitError, run(context.Background(), []string{"-words", "apple", "-config", "missing.yaml"}, &stdout, &stderr))

	t.Setenv("WORDCARDS_BATCH_WORKERS", "0")
	assert.Equal(t, exitError, run(context.Background(), []string{"-words", "apple"}, &stdout, &stderr))
}
