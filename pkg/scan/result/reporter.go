package result

import (
	"os"
	"path/filepath"

	"github.com/complyscan/complyscan/pkg/format"
	"github.com/complyscan/complyscan/pkg/logging"
	"github.com/complyscan/complyscan/pkg/scanner/types"
	"github.com/rs/zerolog/log"
)

// ReportOptions carry context fields attached to every reported finding.
type ReportOptions struct {
	RepositoryURL string
	Source        logging.FindingSource
}

// ReportFindings logs each finding at hit level.
func ReportFindings(findings []types.Finding, opts ReportOptions) {
	for _, finding := range findings {
		ReportFinding(finding, opts)
	}
}

// ReportFinding logs one finding at hit level.
func ReportFinding(finding types.Finding, opts ReportOptions) {
	source := opts.Source
	if source == "" {
		source = logging.SourceFile
	}

	event := logging.Hit().
		Str("source", string(source)).
		Str("type", string(finding.Type)).
		Str("risk", string(finding.Risk)).
		Str("principle", finding.Principle).
		Str("value", finding.Value).
		Str("file", finding.File).
		Int("line", finding.Line)

	if opts.RepositoryURL != "" {
		event = event.Str("url", opts.RepositoryURL)
	}

	event.Msg("FINDING")
}

// WriteJSON serializes the scan result to path for external consumers,
// creating parent directories as needed.
func WriteJSON(result ScanResult, path string) error {
	raw, err := result.ToJSON()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, format.DirUserGroupRead); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, raw, format.FileUserReadWrite); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Report written")
	return nil
}
