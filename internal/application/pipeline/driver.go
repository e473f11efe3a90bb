// Package pipeline orchestrates the staged example-generation run.
//
// Stages run in a fixed order, each consuming the complete persisted record
// of its predecessor: discovery -> extraction -> distillation -> generation,
// then a bounded quality/refinement loop. Every stage rewrites its record
// atomically, so the output directory always holds a coherent set.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/koetsu-dev/exemplar/internal/app"
	"github.com/koetsu-dev/exemplar/internal/app/config"
	"github.com/koetsu-dev/exemplar/internal/application/port/output"
	"github.com/koetsu-dev/exemplar/internal/domain/model"
	"github.com/koetsu-dev/exemplar/internal/infra/store"
	"github.com/koetsu-dev/exemplar/internal/scanner"
)

// Driver runs the full pipeline for one invocation.
type Driver struct {
	fs      afero.Fs
	cfg     config.Config
	store   *store.Store
	oracle  output.OracleGateway
	storage output.StorageGateway // nil disables publishing
	log     app.Logger
	state   *model.RunState
}

// Outcome summarizes a completed run for the caller. An Exhausted phase is a
// partial success: records are written, but Warning explains what remains.
type Outcome struct {
	RunID       string
	Phase       Phase
	Iterations  int
	Generated   int
	NeedsReview int
	Kept        int
	Deleted     int
	Errors      int
	Warning     string
}

// NewDriver wires a pipeline driver. storage may be nil.
func NewDriver(fs afero.Fs, cfg config.Config, oracle output.OracleGateway, storage output.StorageGateway) *Driver {
	outDir := cfg.OutputDir()
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(cfg.RepoRoot(), outDir)
	}
	return &Driver{
		fs:      fs,
		cfg:     cfg,
		store:   store.New(fs, outDir),
		oracle:  oracle,
		storage: storage,
		log:     app.GetLogger(),
		state:   model.NewRunState(cfg.RepoRoot()),
	}
}

// Store exposes the record store, mainly for status reporting.
func (d *Driver) Store() *store.Store { return d.store }

// Run executes the pipeline. A stage-level failure aborts the run and leaves
// the previous records in place; per-item failures are isolated inside each
// stage and never abort the run.
func (d *Driver) Run(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	d.log.Info("run %s starting (repo=%s)", d.state.RunID, d.cfg.RepoRoot())

	sc := scanner.New(d.fs, d.cfg.RepoRoot(), d.cfg.ScanPaths(), d.cfg.Patterns(), d.cfg.Limit())

	discovery, err := d.runDiscovery(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	extraction, err := d.runExtraction(ctx, discovery)
	if err != nil {
		return nil, fmt.Errorf("extraction: %w", err)
	}

	distillation, err := d.runDistillation(ctx, discovery, extraction)
	if err != nil {
		return nil, fmt.Errorf("distillation: %w", err)
	}

	generation, err := d.runGeneration(ctx, distillation)
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}

	conv := newConvergence(d, d.cfg.MaxIterations(), d.cfg.ReviewThreshold())
	phase, iterations, err := conv.Run(ctx, distillation, generation)
	if err != nil {
		return nil, fmt.Errorf("quality loop: %w", err)
	}

	if d.storage != nil {
		if err := d.publish(ctx, generation); err != nil {
			// Publishing is best-effort; the local records are authoritative.
			d.log.Warn("publish failed: %v", err)
		}
	}

	outcome := &Outcome{
		RunID:       d.state.RunID,
		Phase:       phase,
		Iterations:  iterations,
		Generated:   generation.Summary.Generated,
		NeedsReview: generation.Summary.NeedsReview,
		Kept:        generation.Summary.Kept,
		Deleted:     generation.Summary.Deleted,
		Errors:      generation.Summary.Errors,
	}
	if phase == PhaseExhausted {
		outcome.Warning = fmt.Sprintf(
			"quality loop exhausted after %d iteration(s); %d example(s) still need review",
			iterations, generation.Summary.NeedsReview)
	}

	d.log.Info("run %s finished in %s: %s (generated=%d review=%d kept=%d deleted=%d errors=%d)",
		d.state.RunID, time.Since(start).Round(time.Millisecond), phase,
		outcome.Generated, outcome.NeedsReview, outcome.Kept, outcome.Deleted, outcome.Errors)
	return outcome, nil
}

// examplesDir is where generated example folders live, next to the records.
func (d *Driver) examplesDir() string {
	return filepath.Join(d.store.Dir(), "examples")
}
