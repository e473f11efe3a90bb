package pipeline

import (
	"context"
	"strings"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

// Phase is the state of the quality/refinement loop.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseRepairing  Phase = "repairing"
	PhaseConverged  Phase = "converged"
	PhaseExhausted  Phase = "exhausted"
)

// convergence drives the bounded validate/repair loop.
//
// Each iteration validates, then either converges, exhausts, or repairs and
// goes around again. The loop is bounded three ways: the iteration cap, the
// no-progress guard (two consecutive passes without a net issue reduction),
// and convergence itself. Exhaustion is a partial success, not a failure.
type convergence struct {
	d             *Driver
	maxIterations int
	threshold     float64
	phase         Phase
}

func newConvergence(d *Driver, maxIterations int, threshold float64) *convergence {
	return &convergence{
		d:             d,
		maxIterations: maxIterations,
		threshold:     threshold,
		phase:         PhaseValidating,
	}
}

// Run executes the loop and returns the terminal phase and the number of
// validation iterations performed.
func (c *convergence) Run(ctx context.Context, distillation *model.DistillationRecord, generation *model.GenerationRecord) (Phase, int, error) {
	iteration := 0
	var quality *model.QualityRecord
	for iteration < c.maxIterations {
		iteration++
		c.phase = PhaseValidating

		var err error
		quality, err = c.d.runQuality(ctx, generation, iteration)
		if err != nil {
			return c.phase, iteration, err
		}
		c.d.state.Iteration = iteration
		c.d.state.RecordIssueTotal(quality.Severity.Total)

		// Close out the previous iteration's history entry now that the
		// re-validation has measured its effect.
		if n := len(distillation.RefinementHistory); n > 0 {
			last := &distillation.RefinementHistory[n-1]
			if last.RunID == c.d.state.RunID && last.Iteration == iteration-1 {
				last.IssuesAfter = quality.Severity.Total
				if err := c.d.store.WriteRecord(model.RecordDistillation, distillation); err != nil {
					return c.phase, iteration, err
				}
			}
		}

		if !quality.ShouldRepair {
			c.phase = PhaseConverged
			c.d.log.Info("quality loop converged after %d iteration(s)", iteration)
			return c.phase, iteration, nil
		}
		if iteration >= c.maxIterations {
			break
		}
		if c.d.state.Stalled() {
			c.d.log.Warn("quality loop stalled at %d issue(s); stopping repairs", quality.Severity.Total)
			break
		}

		c.phase = PhaseRepairing
		c.d.log.Info("quality loop iteration %d: repairing (%s)", iteration, quality.Reason)
		if err := c.d.runRefinement(ctx, distillation, generation, quality, iteration); err != nil {
			return c.phase, iteration, err
		}
	}

	// Exhausted: whatever the last validation left open goes onto the
	// affected results themselves, so the generation record alone tells a
	// reader what still needs manual follow-up.
	c.phase = PhaseExhausted
	if quality != nil {
		annotateUnresolved(generation, quality)
		if err := c.d.store.WriteRecord(model.RecordGeneration, generation); err != nil {
			return c.phase, iteration, err
		}
	}
	return c.phase, iteration, nil
}

// annotateUnresolved appends the open issues from the last validation pass to
// each affected result's notes.
func annotateUnresolved(generation *model.GenerationRecord, quality *model.QualityRecord) {
	for _, ei := range quality.IssuesByExample {
		for i := range generation.Results {
			res := &generation.Results[i]
			if res.ExampleID != ei.ExampleID {
				continue
			}
			lines := make([]string, 0, len(ei.Issues))
			for _, is := range ei.Issues {
				lines = append(lines, is.Type+": "+is.Description)
			}
			note := "unresolved: " + strings.Join(lines, "; ")
			if res.Notes != "" {
				res.Notes += "; " + note
			} else {
				res.Notes = note
			}
		}
	}
}
