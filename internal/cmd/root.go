// Package cmd assembles the complyscan command tree.
package cmd

import (
	"github.com/complyscan/complyscan/internal/cmd/common"
	"github.com/complyscan/complyscan/internal/cmd/rules"
	"github.com/complyscan/complyscan/internal/cmd/scan"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "complyscan [command]",
		Short:   "Scan git repositories for GDPR and privacy compliance issues",
		Long:    `Complyscan clones a repository, scans a representative sample of its files for personal data, credentials and other GDPR-relevant content, and produces a compliance report with a 0-100 score.`,
		Version: common.Version,
	}

	common.SetupPersistentPreRun(rootCmd)
	common.AddCommonFlags(rootCmd)

	rootCmd.AddCommand(scan.NewScanCmd())
	rootCmd.AddCommand(rules.NewRulesCmd())

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	return rootCmd
}
