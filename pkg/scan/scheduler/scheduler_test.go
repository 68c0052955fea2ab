package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/complyscan/complyscan/pkg/scan/fileset"
	"github.com/complyscan/complyscan/pkg/scanner/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCandidate(t *testing.T, root string, rel string, content string) fileset.FileCandidate {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return fileset.FileCandidate{Path: path, Ext: filepath.Ext(rel), Size: int64(len(content))}
}

func TestRunSequentialSmallSet(t *testing.T) {
	root := t.TempDir()
	files := []fileset.FileCandidate{
		writeCandidate(t, root, "a.go", "contact jan@example.nl\n"),
		writeCandidate(t, root, "b.go", "package b\n"),
	}

	result := Run(context.Background(), root, files, DefaultOptions())

	require.Len(t, result.Files, 2)
	assert.Equal(t, "a.go", result.Files[0].Path)
	assert.NotEmpty(t, result.Files[0].Findings)
	assert.Empty(t, result.Files[1].Findings)
	assert.False(t, result.BudgetExhausted)
	assert.Empty(t, result.Fallback)
}

func TestRunConcurrentLargeSet(t *testing.T) {
	root := t.TempDir()
	files := []fileset.FileCandidate{}
	for i := 0; i < 60; i++ {
		files = append(files, writeCandidate(t, root, fmt.Sprintf("f%02d.go", i), "contact jan@example.nl\n"))
	}

	result := Run(context.Background(), root, files, DefaultOptions())

	require.Len(t, result.Files, 60)
	for _, file := range result.Files {
		assert.NotEmpty(t, file.Findings, "file %s has no findings", file.Path)
		assert.False(t, file.Skipped)
	}
}

func TestRunUltraLargeStaysSequential(t *testing.T) {
	root := t.TempDir()
	files := []fileset.FileCandidate{}
	for i := 0; i < 60; i++ {
		files = append(files, writeCandidate(t, root, fmt.Sprintf("f%02d.go", i), "package f\n"))
	}

	opts := DefaultOptions()
	opts.UltraLarge = true
	opts.EmptyReportFallback = false

	result := Run(context.Background(), root, files, opts)

	require.Len(t, result.Files, 60)
	for i, file := range result.Files {
		assert.Equal(t, fmt.Sprintf("f%02d.go", i), file.Path)
	}
}

func TestRunSkipsUnreadableFile(t *testing.T) {
	root := t.TempDir()
	files := []fileset.FileCandidate{
		writeCandidate(t, root, "ok.go", "package ok\n"),
		{Path: filepath.Join(root, "missing.go"), Ext: ".go"},
	}

	opts := DefaultOptions()
	opts.EmptyReportFallback = false

	result := Run(context.Background(), root, files, opts)

	require.Len(t, result.Files, 2)
	assert.False(t, result.Files[0].Skipped)
	assert.True(t, result.Files[1].Skipped)
	assert.Empty(t, result.Files[1].Findings)
}

func TestRunGlobalBudgetExhausted(t *testing.T) {
	root := t.TempDir()
	files := []fileset.FileCandidate{
		writeCandidate(t, root, "a.go", "package a\n"),
		writeCandidate(t, root, "b.go", "package b\n"),
	}

	opts := DefaultOptions()
	opts.GlobalTimeout = -1 * time.Second
	opts.EmptyReportFallback = false

	result := Run(context.Background(), root, files, opts)

	assert.True(t, result.BudgetExhausted)
	assert.Empty(t, result.Files)
}

func TestRunEmptyReportFallback(t *testing.T) {
	root := t.TempDir()
	files := []fileset.FileCandidate{
		writeCandidate(t, root, "main.go", "package main\n"),
		writeCandidate(t, root, "conf/app.env", "PORT=8080\n"),
	}

	result := Run(context.Background(), root, files, DefaultOptions())

	require.NotEmpty(t, result.Fallback)
	assert.Equal(t, types.FindingSensitiveConfig, result.Fallback[0].Type)
	assert.Equal(t, "conf/app.env", result.Fallback[0].File)
}

func TestRunFallbackDisabled(t *testing.T) {
	root := t.TempDir()
	files := []fileset.FileCandidate{
		writeCandidate(t, root, "main.go", "package main\n"),
	}

	opts := DefaultOptions()
	opts.EmptyReportFallback = false

	result := Run(context.Background(), root, files, opts)
	assert.Empty(t, result.Fallback)
}

func TestRunProgressNotifications(t *testing.T) {
	root := t.TempDir()
	files := []fileset.FileCandidate{
		writeCandidate(t, root, "a.go", "package a\n"),
		writeCandidate(t, root, "b.go", "package b\n"),
		writeCandidate(t, root, "c.go", "package c\n"),
	}

	var mu sync.Mutex
	calls := 0
	var wg sync.WaitGroup
	wg.Add(len(files))

	opts := DefaultOptions()
	opts.EmptyReportFallback = false
	opts.Progress = func(done int, total int, path string) {
		mu.Lock()
		calls++
		mu.Unlock()
		assert.Equal(t, 3, total)
		assert.NotEmpty(t, path)
		wg.Done()
	}

	Run(context.Background(), root, files, opts)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls)
}

func TestRunConcurrentProgressCoversAllFiles(t *testing.T) {
	root := t.TempDir()
	files := []fileset.FileCandidate{}
	for i := 0; i < 60; i++ {
		files = append(files, writeCandidate(t, root, fmt.Sprintf("f%02d.go", i), "package f\n"))
	}

	var mu sync.Mutex
	maxDone := 0
	calls := 0
	var wg sync.WaitGroup
	wg.Add(len(files))

	opts := DefaultOptions()
	opts.EmptyReportFallback = false
	opts.Progress = func(done int, total int, path string) {
		mu.Lock()
		calls++
		if done > maxDone {
			maxDone = done
		}
		mu.Unlock()
		assert.Equal(t, 60, total)
		wg.Done()
	}

	result := Run(context.Background(), root, files, opts)
	wg.Wait()

	require.Len(t, result.Files, 60)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 60, calls)
	assert.Equal(t, 60, maxDone)
}

func TestTruncatedFindingsRespectCap(t *testing.T) {
	root := t.TempDir()

	content := ""
	for i := 0; i < 10; i++ {
		content += fmt.Sprintf("user%d@example.nl\n", i)
	}
	file := writeCandidate(t, root, "emails.txt", content)

	opts := DefaultOptions()
	opts.FileTimeout = 1 * time.Nanosecond

	result := scanOne(context.Background(), root, file, opts)

	if result.Truncated {
		assert.LessOrEqual(t, len(result.Findings), opts.TruncatedFindingCap)
	}
}

func TestPoolSize(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{name: "default", opts: Options{MaxGoRoutines: 4}, want: 4},
		{name: "zero clamps to one", opts: Options{MaxGoRoutines: 0}, want: 1},
		{name: "ultra large reduces pool", opts: Options{MaxGoRoutines: 8, UltraLarge: true}, want: 2},
		{name: "ultra large keeps small pool", opts: Options{MaxGoRoutines: 1, UltraLarge: true}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, poolSize(tt.opts))
		})
	}
}
