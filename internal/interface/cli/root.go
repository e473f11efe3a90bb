// Package cli implements the exemplar command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/koetsu-dev/exemplar/internal/app/config"
	infraConfig "github.com/koetsu-dev/exemplar/internal/infra/config"
)

// globalConfig holds the loaded configuration for all commands
var globalConfig config.Config

// rootFlags are persistent flags that override exemplar.yaml values.
type rootFlags struct {
	repoRoot  string
	outputDir string
	model     string
	limit     int
	logLevel  string
}

func NewRoot() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "exemplar",
		Short: "Generate usage examples from a repository's test suite",
		Long: `exemplar mines a repository's tests for user-facing behavior and
maintains a set of runnable usage examples, regenerating only what the
tests' changes require.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration before any command runs.
			// Priority: positional repo > flags > exemplar.yaml > defaults
			cfg, err := infraConfig.LoadSettings(repoRootArg(cmd, args, flags.repoRoot))
			if err != nil {
				return err
			}
			globalConfig = applyFlagOverrides(cfg, flags, cmd)

			logger := newDefaultLogger(globalConfig.LogLevel())
			InitializeLoggers(logger)
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.repoRoot, "repo", "r", ".", "repository root to scan")
	pf.StringVarP(&flags.outputDir, "output", "o", "", "output directory (default from exemplar.yaml)")
	pf.StringVarP(&flags.model, "model", "m", "", "oracle selector: claude-cli or mock")
	pf.IntVarP(&flags.limit, "limit", "n", 0, "cap on scanned test files (0 = unlimited)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// repoRootArg resolves the repository root: `run` takes it as an optional
// positional argument, which wins over the --repo flag.
func repoRootArg(cmd *cobra.Command, args []string, fallback string) string {
	if cmd.Name() == "run" && len(args) > 0 {
		return args[0]
	}
	return fallback
}

// applyFlagOverrides layers explicitly set flags over the file-based config.
func applyFlagOverrides(cfg *config.AppConfig, flags *rootFlags, cmd *cobra.Command) *config.AppConfig {
	p := config.Params{
		RepoRoot:        cfg.RepoRoot(),
		OutputDir:       cfg.OutputDir(),
		Model:           cfg.Model(),
		OracleBin:       cfg.OracleBin(),
		OracleTimeout:   cfg.OracleTimeout(),
		MaxIterations:   cfg.MaxIterations(),
		ReviewThreshold: cfg.ReviewThreshold(),
		Workers:         cfg.Workers(),
		Limit:           cfg.Limit(),
		ScanPaths:       cfg.ScanPaths(),
		Patterns:        cfg.Patterns(),
		StorageBackend:  cfg.StorageBackend(),
		S3Bucket:        cfg.S3Bucket(),
		S3Prefix:        cfg.S3Prefix(),
		S3Region:        cfg.S3Region(),
		LogLevel:        cfg.LogLevel(),
		ConfigSource:    cfg.ConfigSource(),
		SettingPath:     cfg.SettingPath(),
	}
	if cmd.Flags().Changed("output") {
		p.OutputDir = flags.outputDir
	}
	if cmd.Flags().Changed("model") {
		p.Model = flags.model
	}
	if cmd.Flags().Changed("limit") {
		p.Limit = flags.limit
	}
	if cmd.Flags().Changed("log-level") {
		p.LogLevel = flags.logLevel
	}
	return config.NewAppConfig(p)
}
