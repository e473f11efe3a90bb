// Package tracker fingerprints input units and classifies them against the
// previous run's recorded set.
package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

// Fingerprint returns the hex-encoded sha256 digest of content.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Scanned is one listed input unit before fingerprinting.
type Scanned struct {
	Path         string
	LastModified time.Time
}

// Snapshot reads and fingerprints every scanned unit under root.
// A unit that cannot be read is reported in errs and excluded from the
// snapshot; the failure does not affect other units.
func Snapshot(fs afero.Fs, root string, scanned []Scanned) (units []model.InputUnit, errs []model.UnitError) {
	for _, s := range scanned {
		content, err := afero.ReadFile(fs, filepath.Join(root, s.Path))
		if err != nil {
			errs = append(errs, model.UnitError{Path: s.Path, Message: err.Error()})
			continue
		}
		units = append(units, model.InputUnit{
			Path:         s.Path,
			Fingerprint:  Fingerprint(content),
			LastModified: s.LastModified.UTC(),
		})
	}
	return units, errs
}

// Classify diffs the current snapshot against the previously recorded set.
//
// Every current path not previously seen is created; a previously seen path
// with a different fingerprint is updated; a matching fingerprint is
// unchanged; a previously seen path absent now is deleted. The result is
// sorted by path and carries every classified unit exactly once. Classify is
// a pure function of its inputs; persisting the result is the caller's job.
func Classify(current []model.InputUnit, previous []model.InputUnit) []model.InputUnit {
	prevByPath := make(map[string]model.InputUnit, len(previous))
	for _, u := range previous {
		if u.Status == model.UnitDeleted {
			// A unit already recorded as deleted is no longer tracked.
			continue
		}
		prevByPath[u.Path] = u
	}

	seen := make(map[string]bool, len(current))
	out := make([]model.InputUnit, 0, len(current))
	for _, u := range current {
		seen[u.Path] = true
		prev, ok := prevByPath[u.Path]
		switch {
		case !ok:
			u.Status = model.UnitCreated
		case prev.Fingerprint != u.Fingerprint:
			u.Status = model.UnitUpdated
		default:
			u.Status = model.UnitUnchanged
		}
		out = append(out, u)
	}

	for _, u := range previous {
		if u.Status == model.UnitDeleted || seen[u.Path] {
			continue
		}
		u.Status = model.UnitDeleted
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Summarize counts classified units per status.
func Summarize(units []model.InputUnit, discovered int) model.DiscoverySummary {
	sum := model.DiscoverySummary{
		TotalDiscovered: discovered,
		TotalTracked:    len(units),
	}
	for _, u := range units {
		switch u.Status {
		case model.UnitCreated:
			sum.Created++
		case model.UnitUpdated:
			sum.Updated++
		case model.UnitUnchanged:
			sum.Unchanged++
		case model.UnitDeleted:
			sum.Deleted++
		}
	}
	return sum
}
