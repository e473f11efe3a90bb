package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadSettings(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.RepoRoot())
	assert.Equal(t, "generated-examples", cfg.OutputDir())
	assert.Equal(t, "claude-cli", cfg.Model())
	assert.Equal(t, "claude", cfg.OracleBin())
	assert.Equal(t, 10*time.Minute, cfg.OracleTimeout())
	assert.Equal(t, 3, cfg.MaxIterations())
	assert.Equal(t, 0.20, cfg.ReviewThreshold())
	assert.Equal(t, 4, cfg.Workers())
	assert.Equal(t, 0, cfg.Limit())
	assert.Equal(t, []string{"."}, cfg.ScanPaths())
	assert.Contains(t, cfg.Patterns(), "*_test.go")
	assert.Equal(t, "local", cfg.StorageBackend())
	assert.Equal(t, "info", cfg.LogLevel())
	assert.Equal(t, "default", cfg.ConfigSource())
	assert.Empty(t, cfg.SettingPath())
}

func TestLoadSettings_FromYAML(t *testing.T) {
	dir := t.TempDir()
	content := `
output_dir: out/examples
model: mock
oracle_timeout_sec: 120
max_iterations: 2
review_threshold: 0.1
workers: 8
limit: 10
scan_paths:
  - src
  - tests
patterns:
  - "*_test.go"
storage:
  backend: s3
  bucket: my-bucket
  prefix: published
  region: us-west-2
log_level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingFile), []byte(content), 0o644))

	cfg, err := LoadSettings(dir)
	require.NoError(t, err)

	assert.Equal(t, "out/examples", cfg.OutputDir())
	assert.Equal(t, "mock", cfg.Model())
	assert.Equal(t, 2*time.Minute, cfg.OracleTimeout())
	assert.Equal(t, 2, cfg.MaxIterations())
	assert.Equal(t, 0.1, cfg.ReviewThreshold())
	assert.Equal(t, 8, cfg.Workers())
	assert.Equal(t, 10, cfg.Limit())
	assert.Equal(t, []string{"src", "tests"}, cfg.ScanPaths())
	assert.Equal(t, []string{"*_test.go"}, cfg.Patterns())
	assert.Equal(t, "s3", cfg.StorageBackend())
	assert.Equal(t, "my-bucket", cfg.S3Bucket())
	assert.Equal(t, "published", cfg.S3Prefix())
	assert.Equal(t, "us-west-2", cfg.S3Region())
	assert.Equal(t, "debug", cfg.LogLevel())
	assert.Equal(t, "yaml", cfg.ConfigSource())
	assert.Equal(t, filepath.Join(dir, SettingFile), cfg.SettingPath())
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingFile), []byte("model: mock\n"), 0o644))

	cfg, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.Model())
	assert.Equal(t, 3, cfg.MaxIterations())
	assert.Equal(t, "generated-examples", cfg.OutputDir())
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "model: [unclosed"},
		{"zero iterations", "max_iterations: 0"},
		{"threshold out of range", "review_threshold: 1.5"},
		{"unknown backend", "storage:\n  backend: ftp"},
		{"s3 without bucket", "storage:\n  backend: s3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, SettingFile), []byte(tt.content), 0o644))
			_, err := LoadSettings(dir)
			assert.Error(t, err)
		})
	}
}
