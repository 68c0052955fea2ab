package scan

import (
	"context"
	"os"

	"github.com/complyscan/complyscan/pkg/config"
	"github.com/complyscan/complyscan/pkg/scan/result"
	"github.com/complyscan/complyscan/pkg/scan/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var options = config.DefaultScanOptions()

var (
	repoURL     string
	branch      string
	accessToken string
	maxFileSize string
	outputPath  string
)

func NewScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan [no options!]",
		Short: "Scan a repository for GDPR and privacy compliance issues",
		Long: `Scan a git repository for personal data, credentials and other GDPR-relevant
content. The repository is cloned shallowly, a representative file set is
selected and scanned under a time budget, and the findings are aggregated
into a compliance report with a 0-100 score.`,
		Example: `
# Scan a public repository
complyscan scan --repository https://github.com/example/shop

# Scan a private repository on a specific branch and save the report
complyscan scan --repository https://github.com/example/shop --branch develop --token xxxxxxxxxxx --output report.json

# Faster scan with more workers and a tighter budget
complyscan scan -r https://gitlab.com/example/api --threads 8 --global-timeout 60s
		`,
		Run: Scan,
	}

	scanCmd.Flags().StringVarP(&repoURL, "repository", "r", "", "HTTPS clone URL of the repository to scan")
	err := scanCmd.MarkFlagRequired("repository")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking repository required")
	}
	scanCmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch to scan, defaults to the remote default branch")
	scanCmd.Flags().StringVarP(&accessToken, "token", "t", "", "Access token for private repositories")
	scanCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the JSON report to this file instead of stdout")

	scanCmd.Flags().IntVarP(&options.MaxScanGoRoutines, "threads", "n", options.MaxScanGoRoutines, "Number of concurrent scanning workers")
	scanCmd.Flags().DurationVar(&options.GlobalTimeout, "global-timeout", options.GlobalTimeout, "Time budget for scanning the whole file set")
	scanCmd.Flags().DurationVar(&options.FileTimeout, "file-timeout", options.FileTimeout, "Per-file detection budget")
	scanCmd.Flags().DurationVar(&options.CloneTimeout, "clone-timeout", options.CloneTimeout, "Time budget for cloning the repository")
	scanCmd.Flags().StringVar(&maxFileSize, "max-file-size", "5MB", "Max file size to scan e.g. 50KB, 5MB")
	scanCmd.Flags().IntVar(&options.MaxSampledFiles, "max-files", options.MaxSampledFiles, "Max number of files scanned in large repositories")
	scanCmd.Flags().IntVar(&options.UltraMaxSampledFiles, "ultra-max-files", options.UltraMaxSampledFiles, "Max number of files scanned in ultra-large repositories")
	scanCmd.Flags().BoolVar(&options.ExtensionHeuristics, "heuristics", options.ExtensionHeuristics, "Enable file-type heuristics for files without pattern hits")
	scanCmd.Flags().BoolVar(&options.EmptyReportFallback, "fallback-findings", options.EmptyReportFallback, "Inject heuristic default findings when a scan produced none")
	scanCmd.Flags().StringVar(&options.RulesFile, "rules", "", "YAML file overriding finding type metadata")

	return scanCmd
}

func Scan(cmd *cobra.Command, args []string) {
	if err := config.ValidateURL(repoURL, "Repository URL"); err != nil {
		log.Fatal().Err(err).Msg("Invalid repository URL")
	}
	if err := config.ValidateThreadCount(options.MaxScanGoRoutines); err != nil {
		log.Fatal().Err(err).Msg("Invalid thread count")
	}

	sizeBytes, err := config.ParseMaxFileSize(maxFileSize)
	if err != nil {
		log.Fatal().Err(err).Str("size", maxFileSize).Msg("Failed parsing max-file-size flag")
	}
	options.MaxFileSize = sizeBytes

	scanRunner, err := runner.New(options)
	if err != nil {
		log.Fatal().Err(err).Str("rules", options.RulesFile).Msg("Failed loading rule overrides")
	}

	res := scanRunner.Run(context.Background(), runner.Request{
		RepoURL: repoURL,
		Branch:  branch,
		Token:   accessToken,
		Progress: func(done, total int, path string) {
			log.Debug().Int("done", done).Int("total", total).Str("file", path).Msg("Scan progress")
		},
	})

	if outputPath != "" {
		if err := result.WriteJSON(res, outputPath); err != nil {
			log.Fatal().Err(err).Str("path", outputPath).Msg("Failed writing report")
		}
	} else {
		out, err := res.ToJSON()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed encoding report")
		}
		_, _ = os.Stdout.Write(append(out, '\n'))
	}

	if res.Status == result.StatusFailed {
		log.Fatal().Str("scanId", res.ScanID).Str("error", res.Error).Msg("Scan failed")
	}
}
