// Package runner orchestrates the full scanning pipeline: acquire, select,
// sample, schedule, aggregate, score. It always returns a well-formed
// ScanResult; failures are communicated through the result status, never by
// panicking or returning a bare error to the caller.
package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/complyscan/complyscan/pkg/config"
	"github.com/complyscan/complyscan/pkg/logging"
	"github.com/complyscan/complyscan/pkg/repo"
	"github.com/complyscan/complyscan/pkg/scan/fileset"
	"github.com/complyscan/complyscan/pkg/scan/result"
	"github.com/complyscan/complyscan/pkg/scan/scheduler"
	"github.com/complyscan/complyscan/pkg/scanner/engine"
	"github.com/complyscan/complyscan/pkg/scanner/rules"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Request describes one scan. Immutable once submitted.
type Request struct {
	// RepoURL is the clone URL of the repository to scan
	RepoURL string
	// Branch optionally selects a branch; empty means the default branch
	Branch string
	// Token is an optional access credential
	Token string
	// Progress optionally receives per-file completion notifications
	Progress scheduler.ProgressFunc
}

// Runner executes scan requests with a fixed configuration.
type Runner struct {
	opts config.ScanOptions
}

// New creates a Runner. When opts.RulesFile is set the rule catalog is
// overridden before the first scan.
func New(opts config.ScanOptions) (*Runner, error) {
	if opts.RulesFile != "" {
		impacts, err := rules.LoadOverrides(opts.RulesFile, opts.Impacts)
		if err != nil {
			return nil, err
		}
		opts.Impacts = impacts
	}
	return &Runner{opts: opts}, nil
}

// Run executes one scan request end to end. The repository snapshot is
// removed on every exit path, including panics.
func (r *Runner) Run(ctx context.Context, req Request) (res result.ScanResult) {
	start := time.Now()
	res = result.ScanResult{
		ScanID:        uuid.NewString(),
		Status:        result.StatusInProgress,
		RepositoryURL: req.RepoURL,
		Branch:        req.Branch,
	}

	defer func() {
		res.ExecutionTimeSeconds = time.Since(start).Seconds()
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("scanId", res.ScanID).Msg("Scan panicked")
			res.Status = result.StatusFailed
			res.Error = fmt.Sprintf("internal error: %v", rec)
			res.Findings = nil
		}
	}()

	log.Info().Str("scanId", res.ScanID).Str("url", req.RepoURL).Str("branch", req.Branch).Msg("Scan started")

	snapshot, err := repo.Acquire(ctx, req.RepoURL, req.Branch, repo.Options{
		Token:         req.Token,
		LargeRepoSize: r.opts.LargeRepoSize,
		CloneTimeout:  r.opts.CloneTimeout,
	})
	if err != nil {
		log.Error().Err(err).Str("url", req.RepoURL).Msg("Repository acquisition failed")
		res.Status = result.StatusFailed
		res.Error = err.Error()
		return res
	}
	defer snapshot.Cleanup()

	res.Branch = snapshot.Branch

	candidates, totalFiles, err := fileset.Build(snapshot.Path, fileset.BuilderOptions{
		MaxFileSize: r.opts.MaxFileSize,
	})
	if err != nil {
		res.Status = result.StatusFailed
		res.Error = fmt.Sprintf("failed enumerating repository files: %v", err)
		return res
	}

	ultraLarge := len(candidates) >= r.opts.UltraRepoFiles

	sampled := fileset.Sample(candidates, fileset.SamplerOptions{
		LargeThreshold: r.opts.LargeRepoFiles,
		UltraThreshold: r.opts.UltraRepoFiles,
		MaxFiles:       r.opts.MaxSampledFiles,
		UltraMaxFiles:  r.opts.UltraMaxSampledFiles,
		PriorityBudget: 40,
		DefaultBudget:  10,
		ForceLarge:     snapshot.Large,
	})

	var done atomic.Int64
	logging.RegisterStatusHook(func() *zerolog.Event {
		return log.Info().
			Str("scanId", res.ScanID).
			Int64("scanned", done.Load()).
			Int("total", len(sampled))
	})
	progress := func(d int, total int, path string) {
		done.Store(int64(d))
		if req.Progress != nil {
			req.Progress(d, total, path)
		}
	}

	run := scheduler.Run(ctx, snapshot.Path, sampled, scheduler.Options{
		MaxGoRoutines:       r.opts.MaxScanGoRoutines,
		UltraLarge:          ultraLarge,
		BatchSize:           r.opts.BatchSize,
		GlobalTimeout:       r.opts.GlobalTimeout,
		FileTimeout:         r.opts.FileTimeout,
		ConcurrentThreshold: r.opts.ConcurrentThreshold,
		TruncatedFindingCap: r.opts.TruncatedFindingCap,
		EmptyReportFallback: r.opts.EmptyReportFallback,
		Progress:            progress,
		Detect: engine.Options{
			MaxGoRoutines:       r.opts.MaxScanGoRoutines,
			ExtensionHeuristics: r.opts.ExtensionHeuristics,
			Impacts:             r.opts.Impacts,
		},
	})

	findings, summary := result.Aggregate(run, totalFiles, result.AggregateOptions{
		PerFileCap:     r.opts.PerFileFindingCap,
		SkipRatioLimit: r.opts.SkipRatioLimit,
		Impacts:        r.opts.Impacts,
	})
	summary.OverallComplianceScore = result.Score(summary, r.opts.Impacts)

	res.Findings = findings
	res.Summary = summary
	res.Status = result.StatusCompleted

	for _, file := range run.Files {
		result.ReportFindings(file.Findings, result.ReportOptions{
			RepositoryURL: req.RepoURL,
			Source:        logging.SourceFile,
		})
	}
	result.ReportFindings(run.Fallback, result.ReportOptions{
		RepositoryURL: req.RepoURL,
		Source:        logging.SourceFallback,
	})

	log.Info().
		Str("scanId", res.ScanID).
		Int("findings", len(findings)).
		Int("scanned", summary.ScannedFiles).
		Int("skipped", summary.SkippedFiles).
		Int("score", summary.OverallComplianceScore).
		Bool("budgetExhausted", run.BudgetExhausted).
		Msg("Scan completed")

	return res
}
