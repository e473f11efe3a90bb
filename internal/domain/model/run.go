package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// RunState is process-wide state for a single invocation. It is initialized
// at run start and discarded at run end; only the stage records it writes
// outlive the process.
type RunState struct {
	RunID        string
	Repository   string
	StartedAt    time.Time
	Iteration    int
	IssueHistory []int
}

// NewRunState initializes run state with a fresh ULID run identifier.
func NewRunState(repository string) *RunState {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return &RunState{
		RunID:      id.String(),
		Repository: repository,
		StartedAt:  time.Now().UTC(),
		Iteration:  0,
	}
}

// RecordIssueTotal appends one validation pass's total issue count.
func (r *RunState) RecordIssueTotal(total int) {
	r.IssueHistory = append(r.IssueHistory, total)
}

// Stalled reports whether the last two recorded passes show no net
// reduction in total issues (the no-progress guard).
func (r *RunState) Stalled() bool {
	n := len(r.IssueHistory)
	if n < 2 {
		return false
	}
	return r.IssueHistory[n-1] >= r.IssueHistory[n-2]
}
