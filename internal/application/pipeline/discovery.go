package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
	"github.com/koetsu-dev/exemplar/internal/domain/tracker"
	"github.com/koetsu-dev/exemplar/internal/scanner"
)

// runDiscovery scans the repository, fingerprints every matching file, and
// classifies each against the previous run's record. Rerunning without input
// changes reclassifies everything as unchanged.
func (d *Driver) runDiscovery(ctx context.Context, sc *scanner.Scanner) (*model.DiscoveryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scanned, err := sc.Scan()
	if err != nil {
		return nil, fmt.Errorf("scan repository: %w", err)
	}

	units, unitErrs := tracker.Snapshot(d.fs, d.cfg.RepoRoot(), scanned)
	for _, ue := range unitErrs {
		d.log.Warn("discovery: skipping unreadable file %s: %s", ue.Path, ue.Message)
	}

	var prior model.DiscoveryRecord
	found, err := d.store.ReadOptional(model.RecordDiscovery, &prior)
	if err != nil {
		return nil, err
	}
	var previous []model.InputUnit
	if found {
		previous = prior.Units
	}

	classified := tracker.Classify(units, previous)

	record := &model.DiscoveryRecord{
		Timestamp:  time.Now().UTC(),
		Repository: d.cfg.RepoRoot(),
		Summary:    tracker.Summarize(classified, len(scanned)),
		Units:      classified,
		Errors:     unitErrs,
	}
	if err := d.store.WriteRecord(model.RecordDiscovery, record); err != nil {
		return nil, err
	}

	d.log.Info("discovery: %d tracked (created=%d updated=%d unchanged=%d deleted=%d)",
		record.Summary.TotalTracked, record.Summary.Created, record.Summary.Updated,
		record.Summary.Unchanged, record.Summary.Deleted)
	return record, nil
}
