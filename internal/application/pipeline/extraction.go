package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

// runExtraction produces one FileAnalysis per tracked unit.
//
// Created and updated units go to the oracle, at most once each. Unchanged
// units carry their previous analysis verbatim; units without one (first run
// after an interrupted record, say) are re-analyzed. Deleted units keep an
// empty analysis so downstream stages see the deletion. A failed oracle call
// marks only that unit's analysis with an error.
func (d *Driver) runExtraction(ctx context.Context, discovery *model.DiscoveryRecord) (*model.ExtractionRecord, error) {
	var prior model.ExtractionRecord
	if _, err := d.store.ReadOptional(model.RecordExtraction, &prior); err != nil {
		return nil, err
	}

	analyses := make([]model.FileAnalysis, len(discovery.Units))
	var pending []int
	for i, unit := range discovery.Units {
		switch {
		case unit.Status == model.UnitDeleted:
			analyses[i] = model.FileAnalysis{Path: unit.Path, Status: model.UnitDeleted}
		case unit.Status == model.UnitUnchanged:
			if prev := prior.Analysis(unit.Path); prev != nil && prev.Error == "" {
				carried := *prev
				carried.Status = model.UnitUnchanged
				analyses[i] = carried
				continue
			}
			// No usable previous analysis; treat as changed.
			pending = append(pending, i)
		default:
			pending = append(pending, i)
		}
	}

	forEach(ctx, d.cfg.Workers(), len(pending), func(ctx context.Context, pi int) {
		i := pending[pi]
		unit := discovery.Units[i]
		analyses[i] = d.analyzeUnit(ctx, unit)
	})
	// A cancelled fan-out leaves zero-value entries; abort rather than
	// persist a record that does not cover every unit.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record := &model.ExtractionRecord{
		Timestamp:  time.Now().UTC(),
		Repository: d.cfg.RepoRoot(),
		Files:      analyses,
	}
	summarizeExtraction(record)
	if err := d.store.WriteRecord(model.RecordExtraction, record); err != nil {
		return nil, err
	}

	d.log.Info("extraction: %d blocks from %d files (%d analyzed, %d errors)",
		record.Summary.TotalBlocks, len(analyses), len(pending), record.Summary.Errors)
	return record, nil
}

// analyzeUnit runs one oracle extraction call for a single file.
func (d *Driver) analyzeUnit(ctx context.Context, unit model.InputUnit) model.FileAnalysis {
	analysis := model.FileAnalysis{Path: unit.Path, Status: unit.Status}

	content, err := afero.ReadFile(d.fs, filepath.Join(d.cfg.RepoRoot(), unit.Path))
	if err != nil {
		analysis.Error = fmt.Sprintf("read file: %v", err)
		return analysis
	}

	result, err := d.oracle.Transform(ctx, output.TransformRequest{
		Stage:      output.StageExtraction,
		Repository: d.cfg.RepoRoot(),
		Subject:    unit.Path,
		Prompt:     extractionPrompt,
		Context:    map[string]string{"file: " + unit.Path: string(content)},
		Timeout:    d.cfg.OracleTimeout(),
	})
	if err != nil {
		d.log.Warn("extraction: %s: %v", unit.Path, err)
		analysis.Error = err.Error()
		return analysis
	}

	var payload extractionPayload
	if err := decodePayload(result.Output, &payload); err != nil {
		d.log.Warn("extraction: %s: %v", unit.Path, err)
		analysis.Error = err.Error()
		return analysis
	}

	sort.Slice(payload.Blocks, func(i, j int) bool {
		return payload.Blocks[i].TestName < payload.Blocks[j].TestName
	})
	analysis.Blocks = payload.Blocks
	return analysis
}

func summarizeExtraction(record *model.ExtractionRecord) {
	var sum model.ExtractionSummary
	for _, fa := range record.Files {
		if fa.Error != "" {
			sum.Errors++
		}
		n := len(fa.Blocks)
		sum.TotalBlocks += n
		switch fa.Status {
		case model.UnitCreated:
			sum.FromCreated += n
		case model.UnitUpdated:
			sum.FromUpdated += n
		case model.UnitUnchanged:
			sum.FromUnchanged += n
		case model.UnitDeleted:
			sum.FromDeleted += n
		}
	}
	record.Summary = sum
}
