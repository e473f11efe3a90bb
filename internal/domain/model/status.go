package model

import "fmt"

// UnitStatus classifies an input unit relative to the previous run.
type UnitStatus string

const (
	UnitCreated   UnitStatus = "created"
	UnitUpdated   UnitStatus = "updated"
	UnitUnchanged UnitStatus = "unchanged"
	UnitDeleted   UnitStatus = "deleted"
)

// Valid reports whether s is one of the closed set of unit statuses.
func (s UnitStatus) Valid() bool {
	switch s {
	case UnitCreated, UnitUpdated, UnitUnchanged, UnitDeleted:
		return true
	}
	return false
}

// Changed reports whether the unit requires downstream reprocessing.
func (s UnitStatus) Changed() bool {
	return s == UnitCreated || s == UnitUpdated
}

// CandidateStatus is the planning status of an example candidate.
type CandidateStatus string

const (
	CandidatePlanned CandidateStatus = "planned"
	CandidateKeep    CandidateStatus = "keep"
	CandidateDelete  CandidateStatus = "delete"
)

func (s CandidateStatus) Valid() bool {
	switch s {
	case CandidatePlanned, CandidateKeep, CandidateDelete:
		return true
	}
	return false
}

// ResultStatus is the materialization status of a generation result.
//
// Within one run a status only moves forward through
// planned -> generated | needs_review | error, or is forced to delete.
type ResultStatus string

const (
	ResultPlanned     ResultStatus = "planned"
	ResultGenerated   ResultStatus = "generated"
	ResultNeedsReview ResultStatus = "needs_review"
	ResultError       ResultStatus = "error"
	ResultKeep        ResultStatus = "keep"
	ResultDelete      ResultStatus = "delete"
)

func (s ResultStatus) Valid() bool {
	switch s {
	case ResultPlanned, ResultGenerated, ResultNeedsReview, ResultError, ResultKeep, ResultDelete:
		return true
	}
	return false
}

// Terminal reports whether the status is a per-run terminal state.
func (s ResultStatus) Terminal() bool {
	return s != ResultPlanned
}

// CanTransition validates the monotonic status policy for one run.
func (s ResultStatus) CanTransition(to ResultStatus) bool {
	if to == ResultDelete {
		return true
	}
	switch s {
	case ResultPlanned:
		return to == ResultGenerated || to == ResultNeedsReview || to == ResultError
	case ResultGenerated:
		return to == ResultNeedsReview
	case ResultNeedsReview:
		return to == ResultGenerated
	default:
		return false
	}
}

// Transition moves s to the requested status or reports why it cannot.
func (s ResultStatus) Transition(to ResultStatus) (ResultStatus, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("disallowed result transition: %s -> %s", s, to)
	}
	return to, nil
}

// Severity classifies a validation issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Blocking reports whether the severity gates convergence.
func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// Classification describes who a test block serves.
type Classification string

const (
	ClassUserFacing Classification = "user-facing"
	ClassInternal   Classification = "internal"
	ClassMixed      Classification = "mixed"
)

// ExampleWorthy reports whether blocks of this classification may become examples.
func (c Classification) ExampleWorthy() bool {
	return c == ClassUserFacing || c == ClassMixed
}

// Complexity tiers an example candidate.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Rank orders complexity tiers for identifier assignment. Unknown tiers sort last.
func (c Complexity) Rank() int {
	switch c {
	case ComplexitySimple:
		return 0
	case ComplexityModerate:
		return 1
	case ComplexityComplex:
		return 2
	default:
		return 3
	}
}

// Potential rates how useful a block is as a user-facing example.
type Potential string

const (
	PotentialHigh   Potential = "high"
	PotentialMedium Potential = "medium"
	PotentialLow    Potential = "low"
)

// Selectable reports whether the potential qualifies a block for planning.
func (p Potential) Selectable() bool {
	return p == PotentialHigh || p == PotentialMedium
}
