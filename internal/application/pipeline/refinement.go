package pipeline

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

// refinementResult is one example's repair outcome.
type refinementResult struct {
	exampleID string
	applied   int
	resolved  []string
}

// runRefinement asks the oracle to repair every example the quality pass
// flagged, one call per example. Repairs rewrite files in place; the next
// validation pass decides whether the issues are actually resolved. The
// iteration is appended to the distillation record's refinement history.
func (d *Driver) runRefinement(ctx context.Context, distillation *model.DistillationRecord, generation *model.GenerationRecord, quality *model.QualityRecord, iteration int) error {
	targets := quality.IssuesByExample
	outcomes := make([]refinementResult, len(targets))
	forEach(ctx, d.cfg.Workers(), len(targets), func(ctx context.Context, i int) {
		outcomes[i] = d.refineExample(ctx, generation, targets[i])
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := model.RefinementHistoryEntry{
		Iteration:    iteration,
		Timestamp:    time.Now().UTC(),
		RunID:        d.state.RunID,
		IssuesBefore: quality.Severity.Total,
	}
	for _, o := range outcomes {
		if o.applied == 0 {
			continue
		}
		entry.ChangesApplied += o.applied
		entry.ExamplesUpdated = append(entry.ExamplesUpdated, o.exampleID)
		entry.IssuesResolved = append(entry.IssuesResolved, o.resolved...)
	}
	sort.Strings(entry.ExamplesUpdated)

	distillation.RefinementHistory = append(distillation.RefinementHistory, entry)
	if err := d.store.WriteRecord(model.RecordDistillation, distillation); err != nil {
		return err
	}
	if err := d.store.WriteRecord(model.RecordGeneration, generation); err != nil {
		return err
	}

	d.log.Info("refinement: iteration %d repaired %d example(s), %d file change(s)",
		iteration, len(entry.ExamplesUpdated), entry.ChangesApplied)
	return nil
}

// refineExample runs one oracle repair call and applies the returned files.
func (d *Driver) refineExample(ctx context.Context, generation *model.GenerationRecord, target model.ExampleIssues) refinementResult {
	outcome := refinementResult{exampleID: target.ExampleID}

	var res *model.GenerationResult
	for i := range generation.Results {
		if generation.Results[i].ExampleID == target.ExampleID {
			res = &generation.Results[i]
			break
		}
	}
	if res == nil {
		return outcome
	}

	issuesJSON, err := json.MarshalIndent(target.Issues, "", "  ")
	if err != nil {
		d.log.Warn("refinement: %s: %v", target.ExampleID, err)
		return outcome
	}

	reqContext := map[string]string{"issues": string(issuesJSON)}
	dir := filepath.Join(d.examplesDir(), res.Folder)
	for _, name := range res.Files {
		content, err := afero.ReadFile(d.fs, filepath.Join(dir, name))
		if err != nil {
			continue
		}
		reqContext["file: "+name] = string(content)
	}

	result, err := d.oracle.Transform(ctx, output.TransformRequest{
		Stage:      output.StageRefinement,
		Repository: d.cfg.RepoRoot(),
		Subject:    target.ExampleID,
		Prompt:     refinementPrompt,
		Context:    reqContext,
		Timeout:    d.cfg.OracleTimeout(),
	})
	if err != nil {
		d.log.Warn("refinement: %s: %v", target.ExampleID, err)
		return outcome
	}

	var payload refinementPayload
	if err := decodePayload(result.Output, &payload); err != nil {
		d.log.Warn("refinement: %s: %v", target.ExampleID, err)
		return outcome
	}

	names := make([]string, 0, len(payload.Files))
	for name := range payload.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	known := make(map[string]bool, len(res.Files))
	for _, f := range res.Files {
		known[f] = true
	}
	for _, name := range names {
		if name == "" || filepath.IsAbs(name) || strings.Contains(name, "..") {
			d.log.Warn("refinement: %s: ignoring unsafe path %q", target.ExampleID, name)
			continue
		}
		path := filepath.Join(dir, name)
		if err := d.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			d.log.Warn("refinement: %s: %v", target.ExampleID, err)
			continue
		}
		if err := afero.WriteFile(d.fs, path, []byte(payload.Files[name]), 0o644); err != nil {
			d.log.Warn("refinement: %s: %v", target.ExampleID, err)
			continue
		}
		outcome.applied++
		if !known[name] {
			known[name] = true
			res.Files = append(res.Files, name)
		}
	}
	sort.Strings(res.Files)

	outcome.resolved = payload.Resolved
	return outcome
}
