// Package config defines read-only application configuration.
package config

import "time"

// Config provides read-only access to application configuration.
// The interface hides the configuration source (YAML file, flags,
// defaults) from the layers that consume it.
type Config interface {
	// Core settings
	RepoRoot() string      // Repository to scan for test files
	OutputDir() string     // Pipeline output directory
	Model() string         // Oracle selector: claude-cli or mock
	OracleBin() string     // Oracle binary path
	OracleTimeout() time.Duration

	// Pipeline tuning
	MaxIterations() int       // Validation/repair iteration cap
	ReviewThreshold() float64 // Max needs_review fraction for convergence
	Workers() int             // Concurrent oracle calls per stage
	Limit() int               // Cap on discovered files (0 = unlimited)

	// Discovery
	ScanPaths() []string // Subtrees to scan, relative to RepoRoot
	Patterns() []string  // Test-file glob patterns

	// Publishing
	StorageBackend() string // "local" or "s3"
	S3Bucket() string
	S3Prefix() string
	S3Region() string

	// Logging
	LogLevel() string

	// Metadata
	ConfigSource() string // "yaml" or "default"
	SettingPath() string  // Path to exemplar.yaml if loaded
}

// AppConfig is the concrete implementation of Config.
type AppConfig struct {
	repoRoot      string
	outputDir     string
	model         string
	oracleBin     string
	oracleTimeout time.Duration

	maxIterations   int
	reviewThreshold float64
	workers         int
	limit           int

	scanPaths []string
	patterns  []string

	storageBackend string
	s3Bucket       string
	s3Prefix       string
	s3Region       string

	logLevel string

	configSource string
	settingPath  string
}

// Params bundles the values needed to build an AppConfig.
type Params struct {
	RepoRoot      string
	OutputDir     string
	Model         string
	OracleBin     string
	OracleTimeout time.Duration

	MaxIterations   int
	ReviewThreshold float64
	Workers         int
	Limit           int

	ScanPaths []string
	Patterns  []string

	StorageBackend string
	S3Bucket       string
	S3Prefix       string
	S3Region       string

	LogLevel string

	ConfigSource string
	SettingPath  string
}

// NewAppConfig creates an AppConfig from resolved parameters.
func NewAppConfig(p Params) *AppConfig {
	return &AppConfig{
		repoRoot:        p.RepoRoot,
		outputDir:       p.OutputDir,
		model:           p.Model,
		oracleBin:       p.OracleBin,
		oracleTimeout:   p.OracleTimeout,
		maxIterations:   p.MaxIterations,
		reviewThreshold: p.ReviewThreshold,
		workers:         p.Workers,
		limit:           p.Limit,
		scanPaths:       p.ScanPaths,
		patterns:        p.Patterns,
		storageBackend:  p.StorageBackend,
		s3Bucket:        p.S3Bucket,
		s3Prefix:        p.S3Prefix,
		s3Region:        p.S3Region,
		logLevel:        p.LogLevel,
		configSource:    p.ConfigSource,
		settingPath:     p.SettingPath,
	}
}

func (c *AppConfig) RepoRoot() string             { return c.repoRoot }
func (c *AppConfig) OutputDir() string            { return c.outputDir }
func (c *AppConfig) Model() string                { return c.model }
func (c *AppConfig) OracleBin() string            { return c.oracleBin }
func (c *AppConfig) OracleTimeout() time.Duration { return c.oracleTimeout }
func (c *AppConfig) MaxIterations() int           { return c.maxIterations }
func (c *AppConfig) ReviewThreshold() float64     { return c.reviewThreshold }
func (c *AppConfig) Workers() int                 { return c.workers }
func (c *AppConfig) Limit() int                   { return c.limit }
func (c *AppConfig) ScanPaths() []string          { return c.scanPaths }
func (c *AppConfig) Patterns() []string           { return c.patterns }
func (c *AppConfig) StorageBackend() string       { return c.storageBackend }
func (c *AppConfig) S3Bucket() string             { return c.s3Bucket }
func (c *AppConfig) S3Prefix() string             { return c.s3Prefix }
func (c *AppConfig) S3Region() string             { return c.s3Region }
func (c *AppConfig) LogLevel() string             { return c.logLevel }
func (c *AppConfig) ConfigSource() string         { return c.configSource }
func (c *AppConfig) SettingPath() string          { return c.settingPath }

// Compile-time check
var _ Config = (*AppConfig)(nil)
