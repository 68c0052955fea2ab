package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/complyscan/complyscan/pkg/config"
	"github.com/complyscan/complyscan/pkg/scan/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewWithoutRulesFile(t *testing.T) {
	r, err := New(config.DefaultScanOptions())
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestNewWithRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte("impacts:\n  high: -25\n  medium: -7\n  low: -3\n"), 0600))

	opts := config.DefaultScanOptions()
	opts.RulesFile = path

	r, err := New(opts)
	require.NoError(t, err)
	assert.Equal(t, -25, r.opts.Impacts.High)
}

func TestNewWithMissingRulesFile(t *testing.T) {
	opts := config.DefaultScanOptions()
	opts.RulesFile = filepath.Join(t.TempDir(), "missing.yml")

	_, err := New(opts)
	assert.Error(t, err)
}

func TestRunCloneFailureYieldsFailedResult(t *testing.T) {
	r, err := New(config.DefaultScanOptions())
	require.NoError(t, err)

	repoURL := filepath.Join(t.TempDir(), "does-not-exist")
	res := r.Run(context.Background(), Request{RepoURL: repoURL})

	assert.Equal(t, result.StatusFailed, res.Status)
	assert.NotEmpty(t, res.ScanID)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, repoURL, res.RepositoryURL)
	assert.GreaterOrEqual(t, res.ExecutionTimeSeconds, 0.0)

	raw, err := res.ToJSON()
	require.NoError(t, err)
	body := string(raw)
	assert.Equal(t, "failed", gjson.Get(body, "status").String())
	assert.True(t, gjson.Get(body, "error").Exists())
	assert.NotEmpty(t, gjson.Get(body, "scan_id").String())
}
