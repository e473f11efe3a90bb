// Package config loads settings from exemplar.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/koetsu-dev/exemplar/internal/app/config"
)

// RawSettings mirrors the structure of exemplar.yaml.
// Pointer fields distinguish "absent" from zero values so defaults
// only fill what the file left unset.
type RawSettings struct {
	// Core settings. RepoRoot comes from the CLI, not the file.
	RepoRoot         string  `yaml:"-"`
	OutputDir        *string `yaml:"output_dir"`
	Model            *string `yaml:"model"`
	OracleBin        *string `yaml:"oracle_bin"`
	OracleTimeoutSec *int    `yaml:"oracle_timeout_sec"`

	// Pipeline tuning
	MaxIterations   *int     `yaml:"max_iterations"`
	ReviewThreshold *float64 `yaml:"review_threshold"`
	Workers         *int     `yaml:"workers"`
	Limit           *int     `yaml:"limit"`

	// Discovery
	ScanPaths []string `yaml:"scan_paths"`
	Patterns  []string `yaml:"patterns"`

	// Publishing
	Storage struct {
		Backend *string `yaml:"backend"`
		Bucket  *string `yaml:"bucket"`
		Prefix  *string `yaml:"prefix"`
		Region  *string `yaml:"region"`
	} `yaml:"storage"`

	// Logging
	LogLevel *string `yaml:"log_level"`
}

// SettingFile is the configuration file name looked up in the repo root.
const SettingFile = "exemplar.yaml"

// LoadSettings loads configuration from exemplar.yaml under repoRoot.
// Priority: exemplar.yaml > defaults. A missing file is not an error.
func LoadSettings(repoRoot string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	yamlPath := filepath.Join(repoRoot, SettingFile)
	if data, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
		}
		configSource = "yaml"
		settingPath = yamlPath
	}

	applyDefaults(settings)

	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", yamlPath, err)
	}

	settings.RepoRoot = repoRoot
	return buildAppConfig(settings, configSource, settingPath), nil
}

// applyDefaults fills in default values for any nil fields.
func applyDefaults(s *RawSettings) {
	if s.OutputDir == nil {
		v := "generated-examples"
		s.OutputDir = &v
	}
	if s.Model == nil {
		v := "claude-cli"
		s.Model = &v
	}
	if s.OracleBin == nil {
		v := "claude"
		s.OracleBin = &v
	}
	if s.OracleTimeoutSec == nil {
		v := 600 // generation calls can run long
		s.OracleTimeoutSec = &v
	}

	if s.MaxIterations == nil {
		v := 3
		s.MaxIterations = &v
	}
	if s.ReviewThreshold == nil {
		v := 0.20
		s.ReviewThreshold = &v
	}
	if s.Workers == nil {
		v := 4
		s.Workers = &v
	}
	if s.Limit == nil {
		v := 0
		s.Limit = &v
	}

	if len(s.ScanPaths) == 0 {
		s.ScanPaths = []string{"."}
	}
	if len(s.Patterns) == 0 {
		s.Patterns = []string{"*_test.go", "test_*.py", "*_test.py", "*.test.ts", "*.spec.ts"}
	}

	if s.Storage.Backend == nil {
		v := "local"
		s.Storage.Backend = &v
	}
	if s.Storage.Bucket == nil {
		v := ""
		s.Storage.Bucket = &v
	}
	if s.Storage.Prefix == nil {
		v := ""
		s.Storage.Prefix = &v
	}
	if s.Storage.Region == nil {
		v := ""
		s.Storage.Region = &v
	}

	if s.LogLevel == nil {
		v := "info"
		s.LogLevel = &v
	}
}

func validate(s *RawSettings) error {
	if *s.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", *s.MaxIterations)
	}
	if *s.ReviewThreshold < 0 || *s.ReviewThreshold > 1 {
		return fmt.Errorf("review_threshold must be in [0,1], got %g", *s.ReviewThreshold)
	}
	if *s.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", *s.Workers)
	}
	switch *s.Storage.Backend {
	case "local", "s3":
	default:
		return fmt.Errorf("storage backend must be local or s3, got %q", *s.Storage.Backend)
	}
	if *s.Storage.Backend == "s3" && *s.Storage.Bucket == "" {
		return fmt.Errorf("storage backend s3 requires a bucket")
	}
	return nil
}

// buildAppConfig converts RawSettings to AppConfig.
func buildAppConfig(s *RawSettings, configSource, settingPath string) *config.AppConfig {
	return config.NewAppConfig(config.Params{
		RepoRoot:        s.RepoRoot,
		OutputDir:       *s.OutputDir,
		Model:           *s.Model,
		OracleBin:       *s.OracleBin,
		OracleTimeout:   time.Duration(*s.OracleTimeoutSec) * time.Second,
		MaxIterations:   *s.MaxIterations,
		ReviewThreshold: *s.ReviewThreshold,
		Workers:         *s.Workers,
		Limit:           *s.Limit,
		ScanPaths:       s.ScanPaths,
		Patterns:        s.Patterns,
		StorageBackend:  *s.Storage.Backend,
		S3Bucket:        *s.Storage.Bucket,
		S3Prefix:        *s.Storage.Prefix,
		S3Region:        *s.Storage.Region,
		LogLevel:        *s.LogLevel,
		ConfigSource:    configSource,
		SettingPath:     settingPath,
	})
}
