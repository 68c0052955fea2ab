package rules

import (
	"github.com/complyscan/complyscan/pkg/scanner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rulesFile string

func NewRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:     "rules",
		Short:   "List the finding types and their GDPR metadata",
		Long:    "List every finding type the scanner can report, with its risk level, the GDPR principle it maps to and its score impact.",
		Example: `complyscan rules --rules custom-rules.yml`,
		Run:     List,
	}

	rulesCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file overriding finding type metadata")

	return rulesCmd
}

func List(cmd *cobra.Command, args []string) {
	impacts := scanner.DefaultImpacts()
	if rulesFile != "" {
		loaded, err := scanner.LoadRuleOverrides(rulesFile, impacts)
		if err != nil {
			log.Fatal().Err(err).Str("rules", rulesFile).Msg("Failed loading rule overrides")
		}
		impacts = loaded
	}

	for _, findingType := range scanner.FindingTypes() {
		meta := scanner.LookupMetadata(findingType)
		log.Info().
			Str("type", string(findingType)).
			Str("risk", string(meta.Risk)).
			Str("principle", meta.Principle).
			Int("impact", impacts.For(meta.Risk)).
			Msg(meta.Description)
	}
}
