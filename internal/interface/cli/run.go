package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/koetsu-dev/exemplar/internal/adapter/gateway/oracle"
	"github.com/koetsu-dev/exemplar/internal/adapter/gateway/storage"
	"github.com/koetsu-dev/exemplar/internal/application/pipeline"
	"github.com/koetsu-dev/exemplar/internal/application/port/output"
	"github.com/koetsu-dev/exemplar/internal/domain/model"
	"github.com/koetsu-dev/exemplar/internal/domain/model/lock"
	"github.com/koetsu-dev/exemplar/internal/infrastructure/persistence/sqlite"
)

// runLockTTL bounds how long a crashed run can block the next one.
const runLockTTL = time.Hour

func newRunCmd() *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "run [repo]",
		Short: "Run the example-generation pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, publish)
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "publish results to the configured storage backend")
	return cmd
}

func runPipeline(cmd *cobra.Command, publish bool) error {
	cfg := globalConfig
	fs := afero.NewOsFs()

	outDir := cfg.OutputDir()
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(cfg.RepoRoot(), outDir)
	}
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One run per repository at a time; the lock lives with the repository
	// so runs with different output directories still contend for it.
	absRepo, err := filepath.Abs(cfg.RepoRoot())
	if err != nil {
		return fmt.Errorf("resolve repository root: %w", err)
	}
	lockDir := filepath.Join(absRepo, ".exemplar")
	if err := fs.MkdirAll(lockDir, 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	db, err := sqlite.Open(filepath.Join(lockDir, "run.lock.db"))
	if err != nil {
		return fmt.Errorf("open lock database: %w", err)
	}
	defer db.Close()

	lockID, err := newRunLockID(cfg.RepoRoot())
	if err != nil {
		return err
	}
	locks := sqlite.NewRunLockRepository(db)
	held, err := locks.Acquire(cmd.Context(), lockID, runLockTTL)
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if held == nil {
		return fmt.Errorf("another run is already in progress for %s", absRepo)
	}
	defer func() {
		if err := locks.Release(cmd.Context(), lockID); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "WARN: release run lock: %v\n", err)
		}
	}()

	oracleGW, err := oracle.NewOracleGateway(cfg.Model(), cfg.OracleBin(), cfg.OracleTimeout())
	if err != nil {
		return err
	}

	var storageGW output.StorageGateway
	if publish {
		storageGW, err = newStorageGateway(fs, outDir)
		if err != nil {
			return err
		}
	}

	driver := pipeline.NewDriver(fs, cfg, oracleGW, storageGW)
	outcome, err := driver.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %s after %d iteration(s)\n", outcome.RunID, outcome.Phase, outcome.Iterations)
	fmt.Fprintf(out, "  generated: %d  kept: %d  needs review: %d  deleted: %d  errors: %d\n",
		outcome.Generated, outcome.Kept, outcome.NeedsReview, outcome.Deleted, outcome.Errors)

	var generation model.GenerationRecord
	if found, err := driver.Store().ReadOptional(model.RecordGeneration, &generation); err == nil && found {
		var quality *model.QualityRecord
		var q model.QualityRecord
		if found, err := driver.Store().ReadOptional(model.RecordQuality, &q); err == nil && found {
			quality = &q
		}
		printRunReport(out, &generation, quality)
	}

	if outcome.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "WARN: %s\n", outcome.Warning)
	}
	return nil
}

// newRunLockID keys the run lock by the repository's absolute path.
func newRunLockID(repoRoot string) (lock.LockID, error) {
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return "", fmt.Errorf("resolve repository root: %w", err)
	}
	return lock.NewLockID(abs)
}

// printRunReport lists every example's final status; items needing manual
// review carry their unresolved issues.
func printRunReport(w io.Writer, generation *model.GenerationRecord, quality *model.QualityRecord) {
	issues := map[string][]model.Issue{}
	if quality != nil {
		for _, ei := range quality.IssuesByExample {
			issues[ei.ExampleID] = ei.Issues
		}
	}
	for _, res := range generation.Results {
		status := string(res.Status)
		if res.Status == model.ResultDelete {
			status = "deleted"
		}
		fmt.Fprintf(w, "  %-24s %s\n", res.ExampleID, status)
		if res.Status == model.ResultNeedsReview {
			for _, is := range issues[res.ExampleID] {
				fmt.Fprintf(w, "    - [%s] %s\n", is.Severity, is.Description)
			}
		}
		if res.Status == model.ResultError && res.Notes != "" {
			fmt.Fprintf(w, "    - %s\n", res.Notes)
		}
	}
}

// newStorageGateway builds the publish target from the configured backend.
func newStorageGateway(fs afero.Fs, outDir string) (output.StorageGateway, error) {
	cfg := globalConfig
	switch cfg.StorageBackend() {
	case "s3":
		return storage.NewS3StorageGateway(storage.S3Config{
			BucketName: cfg.S3Bucket(),
			Prefix:     cfg.S3Prefix(),
			Region:     cfg.S3Region(),
		})
	default:
		return storage.NewLocalStorageGateway(fs, filepath.Join(outDir, "published")), nil
	}
}
