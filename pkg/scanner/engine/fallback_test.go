package engine

import (
	"testing"

	"github.com/complyscan/complyscan/pkg/scanner/rules"
	"github.com/complyscan/complyscan/pkg/scanner/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFindingsConfigAndSQL(t *testing.T) {
	paths := []string{"src/main.go", "deploy/values.yaml", "db/schema.sql", "app.env"}

	findings := DefaultFindings(paths, rules.DefaultImpacts())
	require.Len(t, findings, 2)

	assert.Equal(t, types.FindingSensitiveConfig, findings[0].Type)
	assert.Equal(t, "app.env", findings[0].File)
	assert.Equal(t, types.FindingSQLPersonalData, findings[1].Type)
	assert.Equal(t, "db/schema.sql", findings[1].File)
}

func TestDefaultFindingsDocumentationOnly(t *testing.T) {
	findings := DefaultFindings([]string{"main.go", "util.go"}, rules.DefaultImpacts())
	require.Len(t, findings, 1)
	assert.Equal(t, types.FindingDocumentation, findings[0].Type)
	assert.Equal(t, types.RiskLow, findings[0].Risk)
}

func TestDefaultFindingsEmptyFileSet(t *testing.T) {
	findings := DefaultFindings(nil, rules.DefaultImpacts())
	require.Len(t, findings, 1)
	assert.Equal(t, types.FindingDocumentation, findings[0].Type)
}

func TestDefaultFindingsDeterministic(t *testing.T) {
	a := []string{"b.yaml", "a.yaml", "z.sql"}
	b := []string{"z.sql", "a.yaml", "b.yaml"}

	assert.Equal(t,
		DefaultFindings(a, rules.DefaultImpacts()),
		DefaultFindings(b, rules.DefaultImpacts()))
}
