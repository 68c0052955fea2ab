// Package scheduler drives the detector over a sampled file set under global
// and per-file time budgets, choosing between sequential and concurrent
// execution.
package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/complyscan/complyscan/pkg/scan/fileset"
	"github.com/complyscan/complyscan/pkg/scanner/engine"
	"github.com/complyscan/complyscan/pkg/scanner/types"
	"github.com/rs/zerolog/log"
	"github.com/wandb/parallel"
)

// ProgressFunc is invoked after each file completes. The scheduler treats it
// as fire-and-forget; a slow callback never stalls scanning.
type ProgressFunc func(done int, total int, path string)

// Options configure one scheduling run.
type Options struct {
	// MaxGoRoutines bounds the worker pool in concurrent mode
	MaxGoRoutines int
	// UltraLarge forces sequential execution and a reduced pool
	UltraLarge bool
	// BatchSize is the number of files dispatched between budget checks
	BatchSize int
	// GlobalTimeout is the budget for the whole run
	GlobalTimeout time.Duration
	// FileTimeout is the per-file detection budget
	FileTimeout time.Duration
	// ConcurrentThreshold is the file count above which execution goes concurrent
	ConcurrentThreshold int
	// TruncatedFindingCap caps findings kept for a file that overran its budget
	TruncatedFindingCap int
	// EmptyReportFallback enables heuristic findings when a scan found nothing
	EmptyReportFallback bool
	// Progress receives per-file completion notifications, may be nil
	Progress ProgressFunc
	// Detect is passed through to the detection engine
	Detect engine.Options
}

// DefaultOptions returns the standard scheduling configuration.
func DefaultOptions() Options {
	return Options{
		MaxGoRoutines:       4,
		BatchSize:           20,
		GlobalTimeout:       120 * time.Second,
		FileTimeout:         10 * time.Second,
		ConcurrentThreshold: 50,
		TruncatedFindingCap: 3,
		EmptyReportFallback: true,
		Detect:              engine.DefaultOptions(),
	}
}

// FileResult is the detection outcome for one file.
type FileResult struct {
	// Path is relative to the snapshot root
	Path      string
	Findings  []types.Finding
	Skipped   bool
	Truncated bool
}

// Result is the outcome of one scheduling run. Files only contains entries
// for files that were reached before the global budget ran out.
type Result struct {
	Files           []FileResult
	Fallback        []types.Finding
	BudgetExhausted bool
}

// Run scans the sampled file set. Per-file failures are absorbed and marked
// skipped; budget exhaustion stops early and keeps collected results.
func Run(ctx context.Context, root string, files []fileset.FileCandidate, opts Options) Result {
	start := time.Now()

	var result Result
	if len(files) > opts.ConcurrentThreshold && !opts.UltraLarge {
		result = runConcurrent(ctx, root, files, opts, start)
	} else {
		result = runSequential(ctx, root, files, opts, start)
	}

	if opts.EmptyReportFallback && countFindings(result.Files) == 0 {
		paths := make([]string, 0, len(files))
		for _, f := range files {
			paths = append(paths, relPath(root, f.Path))
		}
		result.Fallback = engine.DefaultFindings(paths, opts.Detect.Impacts)
		log.Info().Int("fallback", len(result.Fallback)).Msg("No findings detected, generating heuristic defaults")
	}

	return result
}

func runConcurrent(ctx context.Context, root string, files []fileset.FileCandidate, opts Options, start time.Time) Result {
	result := Result{Files: make([]FileResult, 0, len(files))}
	pool := poolSize(opts)
	done := 0

	for offset := 0; offset < len(files); offset += opts.BatchSize {
		end := min(offset+opts.BatchSize, len(files))
		batch := files[offset:end]

		group := parallel.Collect[FileResult](parallel.Limited(ctx, pool))
		for _, file := range batch {
			group.Go(func(ctx context.Context) (FileResult, error) {
				return scanOne(ctx, root, file, opts), nil
			})
		}

		batchResults, err := group.Wait()
		if err != nil {
			log.Error().Stack().Err(err).Msg("Failed waiting for scan batch")
		}

		// Notifications fire after the batch joins, so a completion can be
		// reported up to BatchSize files late.
		for _, fileResult := range batchResults {
			result.Files = append(result.Files, fileResult)
			done++
			notifyProgress(opts.Progress, done, len(files), fileResult.Path)
		}

		if time.Since(start) > opts.GlobalTimeout {
			log.Warn().Dur("elapsed", time.Since(start)).Int("scanned", done).Int("total", len(files)).
				Msg("Global scan budget exhausted, keeping partial results")
			result.BudgetExhausted = true
			break
		}
	}

	return result
}

func runSequential(ctx context.Context, root string, files []fileset.FileCandidate, opts Options, start time.Time) Result {
	result := Result{Files: make([]FileResult, 0, len(files))}

	for i, file := range files {
		if time.Since(start) > opts.GlobalTimeout {
			log.Warn().Dur("elapsed", time.Since(start)).Int("scanned", i).Int("total", len(files)).
				Msg("Global scan budget exhausted, keeping partial results")
			result.BudgetExhausted = true
			break
		}

		fileResult := scanOne(ctx, root, file, opts)
		result.Files = append(result.Files, fileResult)
		notifyProgress(opts.Progress, i+1, len(files), fileResult.Path)
	}

	return result
}

// scanOne reads and scans a single file. It never lets a failure escape: any
// error or panic marks the file skipped and the scan moves on.
func scanOne(ctx context.Context, root string, file fileset.FileCandidate, opts Options) (result FileResult) {
	rel := relPath(root, file.Path)
	result = FileResult{Path: rel}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("file", rel).Msg("Detector panicked, skipping file")
			result = FileResult{Path: rel, Skipped: true}
		}
	}()

	content, err := os.ReadFile(file.Path)
	if err != nil {
		log.Debug().Err(err).Str("file", rel).Msg("Failed reading file, skipping")
		result.Skipped = true
		return result
	}

	findings, err := engine.DetectHits(ctx, content, rel, opts.FileTimeout, opts.Detect)
	if errors.Is(err, engine.ErrDetectionTimeout) {
		if len(findings) > opts.TruncatedFindingCap {
			findings = findings[:opts.TruncatedFindingCap]
		}
		log.Debug().Str("file", rel).Int("kept", len(findings)).Msg("Per-file budget exhausted, truncating findings")
		result.Findings = findings
		result.Truncated = true
		return result
	}
	if err != nil {
		log.Error().Err(err).Str("file", rel).Msg("Detector failed, skipping file")
		result.Skipped = true
		return result
	}

	result.Findings = findings
	return result
}

func poolSize(opts Options) int {
	pool := opts.MaxGoRoutines
	if pool < 1 {
		pool = 1
	}
	if opts.UltraLarge && pool > 2 {
		pool = 2
	}
	return pool
}

func notifyProgress(progress ProgressFunc, done int, total int, path string) {
	if progress == nil {
		return
	}
	go progress(done, total, path)
}

func countFindings(files []FileResult) int {
	total := 0
	for _, file := range files {
		total += len(file.Findings)
	}
	return total
}

func relPath(root string, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
