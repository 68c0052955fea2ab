package fileset

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// SamplerOptions bound how many candidates survive sampling per repository
// size tier.
type SamplerOptions struct {
	// LargeThreshold is the candidate count above which sampling kicks in
	LargeThreshold int
	// UltraThreshold is the candidate count that marks a repository ultra-large
	UltraThreshold int
	// MaxFiles caps sampler output for large repositories
	MaxFiles int
	// UltraMaxFiles caps sampler output for ultra-large repositories
	UltraMaxFiles int
	// PriorityBudget is the per-extension budget for priority extensions
	PriorityBudget int
	// DefaultBudget is the per-extension budget for all other extensions
	DefaultBudget int
	// ForceLarge applies large-tier sampling regardless of candidate count,
	// set for repositories flagged large by byte size
	ForceLarge bool
}

// DefaultSamplerOptions returns the standard sampling tiers.
func DefaultSamplerOptions() SamplerOptions {
	return SamplerOptions{
		LargeThreshold: 1000,
		UltraThreshold: 5000,
		MaxFiles:       500,
		UltraMaxFiles:  100,
		PriorityBudget: 40,
		DefaultBudget:  10,
	}
}

// priorityExtensions are most likely to carry GDPR-relevant content and get
// the larger per-extension budget. Order sets allocation order.
var priorityExtensions = []string{
	".go", ".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".php", ".rb", ".cs",
	".sql",
	".yaml", ".yml", ".json", ".env", ".ini", ".toml", ".properties", ".config", ".xml",
	".html", ".md", ".txt",
}

// Sample bounds the candidate set while keeping it representative. For a
// fixed input and fixed options the output is stable, keeping scans
// reproducible. Returns the candidate set unchanged when it is below the
// large-repository threshold and ForceLarge is not set.
func Sample(candidates []FileCandidate, opts SamplerOptions) []FileCandidate {
	if len(candidates) < opts.LargeThreshold && !opts.ForceLarge {
		return candidates
	}

	maxFiles := opts.MaxFiles
	if len(candidates) >= opts.UltraThreshold {
		maxFiles = opts.UltraMaxFiles
	}

	groups := map[string][]FileCandidate{}
	for _, candidate := range candidates {
		groups[candidate.Ext] = append(groups[candidate.Ext], candidate)
	}
	for ext := range groups {
		group := groups[ext]
		sort.Slice(group, func(i, j int) bool { return group[i].Path < group[j].Path })
	}

	priority := map[string]bool{}
	sampled := []FileCandidate{}
	for _, ext := range priorityExtensions {
		priority[ext] = true
		group, ok := groups[ext]
		if !ok {
			continue
		}
		sampled = append(sampled, strideSample(group, opts.PriorityBudget)...)
	}

	remaining := maxFiles - len(sampled)
	if remaining > 0 {
		others := make([]string, 0, len(groups))
		for ext := range groups {
			if !priority[ext] {
				others = append(others, ext)
			}
		}
		sort.Strings(others)

		for _, ext := range others {
			if remaining <= 0 {
				break
			}
			budget := min(opts.DefaultBudget, remaining)
			picked := strideSample(groups[ext], budget)
			sampled = append(sampled, picked...)
			remaining -= len(picked)
		}
	}

	if len(sampled) > maxFiles {
		sampled = strideSample(sampled, maxFiles)
	}

	log.Debug().
		Int("candidates", len(candidates)).
		Int("sampled", len(sampled)).
		Int("cap", maxFiles).
		Msg("Sampled large repository")

	return sampled
}

// strideSample picks n files at a fixed stride so coverage spreads across
// the file tree instead of clustering at the start.
func strideSample(files []FileCandidate, n int) []FileCandidate {
	if n <= 0 {
		return nil
	}
	if len(files) <= n {
		return files
	}

	step := len(files) / n
	out := make([]FileCandidate, 0, n)
	for i := 0; i < len(files) && len(out) < n; i += step {
		out = append(out, files[i])
	}
	return out
}
