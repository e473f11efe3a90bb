package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
	"github.com/koetsu-dev/exemplar/internal/domain/assign"
	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

// runDistillation plans the example set for this run.
//
// Prior candidates are carried, deleted, or re-planned based on their source
// files' statuses: all sources deleted means delete; all unchanged means
// keep; any change (including partial deletion) re-plans the candidate from
// a fresh oracle call. Files never seen before are planned from scratch.
// Identifier assignment runs over the final live set, so numbering is a pure
// function of that set regardless of how each candidate got there.
func (d *Driver) runDistillation(ctx context.Context, discovery *model.DiscoveryRecord, extraction *model.ExtractionRecord) (*model.DistillationRecord, error) {
	var prior model.DistillationRecord
	if _, err := d.store.ReadOptional(model.RecordDistillation, &prior); err != nil {
		return nil, err
	}

	unitStatus := make(map[string]model.UnitStatus, len(discovery.Units))
	for _, u := range discovery.Units {
		unitStatus[u.Path] = u.Status
	}

	// Decide the fate of each prior candidate and collect the paths whose
	// blocks must be re-distilled.
	distillPaths := make(map[string]bool)
	for _, u := range discovery.Units {
		if u.Status.Changed() {
			distillPaths[u.Path] = true
		}
	}

	var kept, deleted []model.ExampleCandidate
	for _, c := range prior.Candidates {
		if c.Status == model.CandidateDelete {
			// Already recorded as deleted; no longer tracked.
			continue
		}
		switch candidateFate(c, unitStatus) {
		case model.CandidateDelete:
			c.Status = model.CandidateDelete
			deleted = append(deleted, c)
		case model.CandidateKeep:
			c.Status = model.CandidateKeep
			kept = append(kept, c)
		default:
			// Re-planned: the surviving source files go back to the oracle.
			for _, ref := range c.SourceRefs {
				if unitStatus[ref] != model.UnitDeleted {
					distillPaths[ref] = true
				}
			}
		}
	}

	fresh, err := d.distillPaths(ctx, extraction, distillPaths)
	if err != nil {
		return nil, err
	}

	// Fresh plans supersede kept ones with the same stable key.
	byKey := make(map[string]bool, len(fresh))
	live := make([]model.ExampleCandidate, 0, len(fresh)+len(kept))
	for _, c := range fresh {
		if !byKey[c.StableKey] {
			byKey[c.StableKey] = true
			live = append(live, c)
		}
	}
	for _, c := range kept {
		if !byKey[c.StableKey] {
			byKey[c.StableKey] = true
			live = append(live, c)
		}
	}

	live = assign.Assign(live)

	record := &model.DistillationRecord{
		Timestamp:         time.Now().UTC(),
		Repository:        d.cfg.RepoRoot(),
		Candidates:        append(live, deleted...),
		RefinementHistory: prior.RefinementHistory,
	}
	summarizeDistillation(record)
	if err := d.store.WriteRecord(model.RecordDistillation, record); err != nil {
		return nil, err
	}

	d.log.Info("distillation: %d candidates (planned=%d keep=%d delete=%d)",
		record.Summary.TotalExamples, record.Summary.Planned,
		record.Summary.Keep, record.Summary.Delete)
	return record, nil
}

// candidateFate classifies a prior candidate by its sources' unit statuses.
// The zero return (CandidatePlanned) means the candidate must be re-planned.
func candidateFate(c model.ExampleCandidate, unitStatus map[string]model.UnitStatus) model.CandidateStatus {
	if len(c.SourceRefs) == 0 {
		return model.CandidatePlanned
	}
	allDeleted, allUnchanged := true, true
	for _, ref := range c.SourceRefs {
		status, tracked := unitStatus[ref]
		if !tracked {
			status = model.UnitDeleted
		}
		if status != model.UnitDeleted {
			allDeleted = false
		}
		if status != model.UnitUnchanged {
			allUnchanged = false
		}
	}
	switch {
	case allDeleted:
		return model.CandidateDelete
	case allUnchanged:
		return model.CandidateKeep
	default:
		return model.CandidatePlanned
	}
}

// distillPaths runs one oracle call per path and parses the planned examples.
// A failed call drops only that path's plans; other paths are unaffected.
func (d *Driver) distillPaths(ctx context.Context, extraction *model.ExtractionRecord, paths map[string]bool) ([]model.ExampleCandidate, error) {
	ordered := make([]string, 0, len(paths))
	for p := range paths {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	perPath := make([][]model.ExampleCandidate, len(ordered))
	forEach(ctx, d.cfg.Workers(), len(ordered), func(ctx context.Context, i int) {
		perPath[i] = d.distillOne(ctx, extraction, ordered[i])
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []model.ExampleCandidate
	for _, cs := range perPath {
		out = append(out, cs...)
	}
	return out, nil
}

func (d *Driver) distillOne(ctx context.Context, extraction *model.ExtractionRecord, path string) []model.ExampleCandidate {
	analysis := extraction.Analysis(path)
	if analysis == nil || analysis.Error != "" {
		return nil
	}

	// Only example-worthy, selectable blocks are offered to the planner.
	blocks := make([]model.TestBlock, 0, len(analysis.Blocks))
	for _, b := range analysis.Blocks {
		if b.Classification.ExampleWorthy() && b.Potential.Selectable() {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) == 0 {
		return nil
	}

	blocksJSON, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		d.log.Warn("distillation: %s: %v", path, err)
		return nil
	}

	result, err := d.oracle.Transform(ctx, output.TransformRequest{
		Stage:      output.StageDistillation,
		Repository: d.cfg.RepoRoot(),
		Subject:    path,
		Prompt:     distillationPrompt,
		Context:    map[string]string{"test blocks from " + path: string(blocksJSON)},
		Timeout:    d.cfg.OracleTimeout(),
	})
	if err != nil {
		d.log.Warn("distillation: %s: %v", path, err)
		return nil
	}

	var payload distillationPayload
	if err := decodePayload(result.Output, &payload); err != nil {
		d.log.Warn("distillation: %s: %v", path, err)
		return nil
	}

	var out []model.ExampleCandidate
	for _, ex := range payload.Examples {
		if !ex.Classification.ExampleWorthy() || !ex.Potential.Selectable() {
			continue
		}
		c := model.ExampleCandidate{
			StableKey:      stableKey(ex, path),
			Title:          ex.Title,
			Summary:        ex.Summary,
			Complexity:     ex.Complexity,
			Potential:      ex.Potential,
			Classification: ex.Classification,
			SourceTests:    ex.SourceTests,
			Status:         model.CandidatePlanned,
			Notes:          ex.Notes,
		}
		c.SourceRefs = sourceRefs(ex.SourceTests, path)
		out = append(out, c)
	}
	return out
}

// stableKey derives a candidate's permanent pairing key from its primary
// source test. The key never changes once assigned, so folders can be
// renamed across renumbering instead of orphaned.
func stableKey(ex distilledExample, path string) string {
	seed := path + "::" + ex.Title
	if len(ex.SourceTests) > 0 {
		seed = ex.SourceTests[0].File + "::" + ex.SourceTests[0].TestName
	}
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:12]
}

// sourceRefs lists the distinct files a candidate derives from.
func sourceRefs(tests []model.SourceTest, fallback string) []string {
	seen := map[string]bool{}
	var refs []string
	for _, t := range tests {
		if t.File != "" && !seen[t.File] {
			seen[t.File] = true
			refs = append(refs, t.File)
		}
	}
	if len(refs) == 0 {
		refs = []string{fallback}
	}
	sort.Strings(refs)
	return refs
}

func summarizeDistillation(record *model.DistillationRecord) {
	sum := model.DistillationSummary{
		TotalExamples: len(record.Candidates),
		Complexity:    map[string]int{},
	}
	for _, c := range record.Candidates {
		switch c.Status {
		case model.CandidatePlanned:
			sum.Planned++
		case model.CandidateKeep:
			sum.Keep++
		case model.CandidateDelete:
			sum.Delete++
		}
		if c.Status != model.CandidateDelete {
			sum.Complexity[string(c.Complexity)]++
		}
	}
	record.Summary = sum
}
