package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
	"github.com/koetsu-dev/exemplar/internal/infra/store"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize the last run's stage records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := globalConfig
			outDir := cfg.OutputDir()
			if !filepath.IsAbs(outDir) {
				outDir = filepath.Join(cfg.RepoRoot(), outDir)
			}
			return printStatus(cmd, store.New(afero.NewOsFs(), outDir))
		},
	}
}

func printStatus(cmd *cobra.Command, st *store.Store) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "output: %s\n", st.Dir())

	var discovery model.DiscoveryRecord
	if err := st.ReadRecord(model.RecordDiscovery, &discovery); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			fmt.Fprintln(out, "no runs recorded yet")
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "discovery    %s  tracked=%d created=%d updated=%d unchanged=%d deleted=%d\n",
		discovery.Timestamp.Format("2006-01-02 15:04:05"),
		discovery.Summary.TotalTracked, discovery.Summary.Created,
		discovery.Summary.Updated, discovery.Summary.Unchanged, discovery.Summary.Deleted)

	var extraction model.ExtractionRecord
	if ok, err := st.ReadOptional(model.RecordExtraction, &extraction); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(out, "extraction   %s  blocks=%d errors=%d\n",
			extraction.Timestamp.Format("2006-01-02 15:04:05"),
			extraction.Summary.TotalBlocks, extraction.Summary.Errors)
	}

	var distillation model.DistillationRecord
	if ok, err := st.ReadOptional(model.RecordDistillation, &distillation); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(out, "distillation %s  examples=%d planned=%d keep=%d delete=%d\n",
			distillation.Timestamp.Format("2006-01-02 15:04:05"),
			distillation.Summary.TotalExamples, distillation.Summary.Planned,
			distillation.Summary.Keep, distillation.Summary.Delete)
	}

	var generation model.GenerationRecord
	if ok, err := st.ReadOptional(model.RecordGeneration, &generation); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(out, "generation   %s  generated=%d kept=%d review=%d deleted=%d errors=%d\n",
			generation.Timestamp.Format("2006-01-02 15:04:05"),
			generation.Summary.Generated, generation.Summary.Kept,
			generation.Summary.NeedsReview, generation.Summary.Deleted, generation.Summary.Errors)
	}

	var quality model.QualityRecord
	if ok, err := st.ReadOptional(model.RecordQuality, &quality); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(out, "quality      %s  iteration=%d passed=%d failed=%d critical=%d high=%d\n",
			quality.Timestamp.Format("2006-01-02 15:04:05"),
			quality.Iteration, quality.Passed, quality.Failed,
			quality.Severity.Critical, quality.Severity.High)
		if quality.ShouldRepair {
			fmt.Fprintf(out, "             pending: %s\n", quality.Reason)
		}
	}
	return nil
}
