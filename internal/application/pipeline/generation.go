package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

// runGeneration materializes the candidate set into example folders.
//
// Planned candidates cost one oracle call each; keep candidates carry their
// previous result, renaming the folder when renumbering moved it; delete
// candidates have their folders removed. A failed call or write marks only
// that candidate's result as error.
func (d *Driver) runGeneration(ctx context.Context, distillation *model.DistillationRecord) (*model.GenerationRecord, error) {
	var prior model.GenerationRecord
	if _, err := d.store.ReadOptional(model.RecordGeneration, &prior); err != nil {
		return nil, err
	}

	results := make([]model.GenerationResult, len(distillation.Candidates))
	var pending []int
	for i, c := range distillation.Candidates {
		switch c.Status {
		case model.CandidateDelete:
			results[i] = d.deleteExample(c, prior.Result(c.StableKey))
		case model.CandidateKeep:
			res, ok := d.keepExample(c, prior.Result(c.StableKey))
			if ok {
				results[i] = res
				continue
			}
			// Nothing usable to keep; regenerate.
			pending = append(pending, i)
		default:
			pending = append(pending, i)
		}
	}

	forEach(ctx, d.cfg.Workers(), len(pending), func(ctx context.Context, pi int) {
		i := pending[pi]
		c := distillation.Candidates[i]
		results[i] = d.generateExample(ctx, c, prior.Result(c.StableKey))
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		di, dj := results[i].Status == model.ResultDelete, results[j].Status == model.ResultDelete
		if di != dj {
			return dj
		}
		return results[i].ExampleID < results[j].ExampleID
	})

	record := &model.GenerationRecord{
		Timestamp:  time.Now().UTC(),
		Repository: d.cfg.RepoRoot(),
		Results:    results,
	}
	record.Recount()
	if err := d.store.WriteRecord(model.RecordGeneration, record); err != nil {
		return nil, err
	}

	d.log.Info("generation: %d examples (generated=%d kept=%d deleted=%d errors=%d)",
		record.Summary.TotalExamples, record.Summary.Generated,
		record.Summary.Kept, record.Summary.Deleted, record.Summary.Errors)
	return record, nil
}

// deleteExample removes the candidate's folder and records the deletion.
func (d *Driver) deleteExample(c model.ExampleCandidate, prev *model.GenerationResult) model.GenerationResult {
	folder := c.Folder
	if prev != nil && prev.Folder != "" {
		folder = prev.Folder
	}
	if folder != "" {
		if err := d.fs.RemoveAll(filepath.Join(d.examplesDir(), folder)); err != nil {
			d.log.Warn("generation: remove %s: %v", folder, err)
		}
	}
	return model.GenerationResult{
		ExampleID: c.ExampleID,
		StableKey: c.StableKey,
		Title:     c.Title,
		Folder:    folder,
		Status:    model.ResultDelete,
		Notes:     "source files deleted",
	}
}

// keepExample carries a previous result verbatim, renaming the folder if
// renumbering moved it. It reports false when there is nothing to carry.
func (d *Driver) keepExample(c model.ExampleCandidate, prev *model.GenerationResult) (model.GenerationResult, bool) {
	if prev == nil || prev.Status == model.ResultError || prev.Status == model.ResultDelete {
		return model.GenerationResult{}, false
	}

	if prev.Folder != c.Folder {
		oldPath := filepath.Join(d.examplesDir(), prev.Folder)
		newPath := filepath.Join(d.examplesDir(), c.Folder)
		if ok, _ := afero.DirExists(d.fs, oldPath); ok {
			if err := d.fs.Rename(oldPath, newPath); err != nil {
				d.log.Warn("generation: rename %s -> %s: %v", prev.Folder, c.Folder, err)
				return model.GenerationResult{}, false
			}
		}
	}
	if ok, _ := afero.DirExists(d.fs, filepath.Join(d.examplesDir(), c.Folder)); !ok {
		return model.GenerationResult{}, false
	}

	res := *prev
	res.ExampleID = c.ExampleID
	res.Folder = c.Folder
	res.Title = c.Title
	if res.Status == model.ResultGenerated || res.Status == model.ResultNeedsReview {
		res.Status = model.ResultKeep
	}
	return res, true
}

// generateExample runs one oracle generation call and writes the files.
func (d *Driver) generateExample(ctx context.Context, c model.ExampleCandidate, prev *model.GenerationResult) model.GenerationResult {
	res := model.GenerationResult{
		ExampleID:   c.ExampleID,
		StableKey:   c.StableKey,
		Title:       c.Title,
		Folder:      c.Folder,
		Status:      model.ResultPlanned,
		SourceRefs:  c.SourceRefs,
		SourceTests: c.SourceTests,
	}

	// A stale folder from a previous numbering is removed first.
	if prev != nil && prev.Folder != "" && prev.Folder != c.Folder {
		if err := d.fs.RemoveAll(filepath.Join(d.examplesDir(), prev.Folder)); err != nil {
			d.log.Warn("generation: remove stale %s: %v", prev.Folder, err)
		}
	}

	reqContext, err := d.generationContext(c)
	if err != nil {
		res.Status = model.ResultError
		res.Notes = err.Error()
		return res
	}

	result, err := d.oracle.Transform(ctx, output.TransformRequest{
		Stage:      output.StageGeneration,
		Repository: d.cfg.RepoRoot(),
		Subject:    c.ExampleID,
		Prompt:     generationPrompt,
		Context:    reqContext,
		Timeout:    d.cfg.OracleTimeout(),
	})
	if err != nil {
		d.log.Warn("generation: %s: %v", c.ExampleID, err)
		res.Status = model.ResultError
		res.Notes = err.Error()
		return res
	}

	var payload generationPayload
	if err := decodePayload(result.Output, &payload); err != nil {
		d.log.Warn("generation: %s: %v", c.ExampleID, err)
		res.Status = model.ResultError
		res.Notes = err.Error()
		return res
	}
	if len(payload.Files) == 0 {
		res.Status = model.ResultError
		res.Notes = "oracle returned no files"
		return res
	}

	files, err := d.writeExampleFiles(c.Folder, payload.Files)
	if err != nil {
		res.Status = model.ResultError
		res.Notes = err.Error()
		return res
	}
	res.Files = files
	res.Status = model.ResultGenerated
	return res
}

// generationContext assembles the plan and source test contents for the
// oracle call.
func (d *Driver) generationContext(c model.ExampleCandidate) (map[string]string, error) {
	plan, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	reqContext := map[string]string{"plan": string(plan)}
	for _, ref := range c.SourceRefs {
		content, err := afero.ReadFile(d.fs, filepath.Join(d.cfg.RepoRoot(), ref))
		if err != nil {
			// The source may have been deleted since discovery; the plan
			// alone still describes the example.
			continue
		}
		reqContext["source: "+ref] = string(content)
	}
	return reqContext, nil
}

// writeExampleFiles replaces the example folder with the given files.
func (d *Driver) writeExampleFiles(folder string, files map[string]string) ([]string, error) {
	dir := filepath.Join(d.examplesDir(), folder)
	if err := d.fs.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear folder %s: %w", folder, err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		if name == "" || strings.Contains(name, "..") || filepath.IsAbs(name) {
			return nil, fmt.Errorf("unsafe file path %q in oracle response", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := d.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create dirs for %s: %w", name, err)
		}
		if err := afero.WriteFile(d.fs, path, []byte(files[name]), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return names, nil
}
