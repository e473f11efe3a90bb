package model

import "time"

// Stage record file names. The two-digit prefix fixes the dependency order.
const (
	RecordDiscovery    = "01-discovery.json"
	RecordExtraction   = "02-extraction.json"
	RecordDistillation = "03-distillation.json"
	RecordGeneration   = "04-generation.json"
	RecordQuality      = "05-quality.json"
)

// DiscoverySummary counts the tracked units per status.
type DiscoverySummary struct {
	TotalDiscovered int `json:"total_files_discovered"`
	TotalTracked    int `json:"total_files_tracked"`
	Created         int `json:"created"`
	Updated         int `json:"updated"`
	Unchanged       int `json:"unchanged"`
	Deleted         int `json:"deleted"`
}

// DiscoveryRecord is the persisted output of the discovery stage.
type DiscoveryRecord struct {
	Timestamp  time.Time        `json:"timestamp"`
	Repository string           `json:"repository"`
	Summary    DiscoverySummary `json:"summary"`
	Units      []InputUnit      `json:"test_files"`
	Errors     []UnitError      `json:"errors,omitempty"`
}

// Unit returns the tracked unit for path, or nil.
func (r *DiscoveryRecord) Unit(path string) *InputUnit {
	for i := range r.Units {
		if r.Units[i].Path == path {
			return &r.Units[i]
		}
	}
	return nil
}

// ExtractionSummary counts blocks by originating unit status.
type ExtractionSummary struct {
	TotalBlocks   int `json:"total_test_blocks"`
	FromCreated   int `json:"from_created_files"`
	FromUpdated   int `json:"from_updated_files"`
	FromUnchanged int `json:"from_unchanged_files"`
	FromDeleted   int `json:"from_deleted_files"`
	Errors        int `json:"errors"`
}

// ExtractionRecord is the persisted output of the extraction stage.
type ExtractionRecord struct {
	Timestamp  time.Time         `json:"timestamp"`
	Repository string            `json:"repository"`
	Summary    ExtractionSummary `json:"summary"`
	Files      []FileAnalysis    `json:"test_analysis"`
}

// Analysis returns the analysis for path, or nil.
func (r *ExtractionRecord) Analysis(path string) *FileAnalysis {
	for i := range r.Files {
		if r.Files[i].Path == path {
			return &r.Files[i]
		}
	}
	return nil
}

// DistillationSummary counts candidates per status and complexity tier.
type DistillationSummary struct {
	TotalExamples int            `json:"total_examples"`
	Planned       int            `json:"planned"`
	Keep          int            `json:"keep"`
	Delete        int            `json:"delete"`
	Complexity    map[string]int `json:"complexity_breakdown"`
}

// RefinementHistoryEntry records one repair iteration.
type RefinementHistoryEntry struct {
	Iteration       int       `json:"iteration"`
	Timestamp       time.Time `json:"timestamp"`
	RunID           string    `json:"run_id"`
	ChangesApplied  int       `json:"changes_applied"`
	IssuesResolved  []string  `json:"issues_resolved"`
	ExamplesUpdated []string  `json:"examples_updated"`
	IssuesBefore    int       `json:"issues_before"`
	IssuesAfter     int       `json:"issues_after"`
}

// DistillationRecord is the persisted output of the distillation stage.
type DistillationRecord struct {
	Timestamp         time.Time                `json:"timestamp"`
	Repository        string                   `json:"repository"`
	Summary           DistillationSummary      `json:"summary"`
	Candidates        []ExampleCandidate       `json:"examples"`
	RefinementHistory []RefinementHistoryEntry `json:"refinement_history"`
}

// Candidate returns the candidate with the given stable key, or nil.
func (r *DistillationRecord) Candidate(stableKey string) *ExampleCandidate {
	for i := range r.Candidates {
		if r.Candidates[i].StableKey == stableKey {
			return &r.Candidates[i]
		}
	}
	return nil
}

// GenerationSummary counts results per status.
type GenerationSummary struct {
	TotalExamples int `json:"total_examples"`
	Generated     int `json:"generated"`
	NeedsReview   int `json:"needs_review"`
	Errors        int `json:"error"`
	Kept          int `json:"kept_unchanged"`
	Deleted       int `json:"deleted"`
}

// GenerationRecord is the persisted output of the generation stage.
type GenerationRecord struct {
	Timestamp  time.Time          `json:"timestamp"`
	Repository string             `json:"repository"`
	Summary    GenerationSummary  `json:"summary"`
	Results    []GenerationResult `json:"examples"`
}

// Result returns the result with the given stable key, or nil.
func (r *GenerationRecord) Result(stableKey string) *GenerationResult {
	for i := range r.Results {
		if r.Results[i].StableKey == stableKey {
			return &r.Results[i]
		}
	}
	return nil
}

// Recount rebuilds the summary from the result entries.
func (r *GenerationRecord) Recount() {
	sum := GenerationSummary{TotalExamples: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case ResultGenerated:
			sum.Generated++
		case ResultNeedsReview:
			sum.NeedsReview++
		case ResultError:
			sum.Errors++
		case ResultKeep:
			sum.Kept++
		case ResultDelete:
			sum.Deleted++
		}
	}
	r.Summary = sum
}

// QualityRecord is the persisted output of one validation pass.
type QualityRecord struct {
	Timestamp       time.Time       `json:"timestamp"`
	Repository      string          `json:"repository"`
	Iteration       int             `json:"iteration"`
	Validated       int             `json:"examples_validated"`
	Passed          int             `json:"passed"`
	Failed          int             `json:"failed"`
	IssuesByExample []ExampleIssues `json:"issues_by_example"`
	Severity        SeveritySummary `json:"severity_summary"`
	ShouldRepair    bool            `json:"should_trigger_refinement"`
	Reason          string          `json:"refinement_reason"`
}

// IssuesFor returns the issues recorded for one example.
func (r *QualityRecord) IssuesFor(exampleID string) []Issue {
	for _, ei := range r.IssuesByExample {
		if ei.ExampleID == exampleID {
			return ei.Issues
		}
	}
	return nil
}

// BlockingIssues returns all critical/high issues across examples.
func (r *QualityRecord) BlockingIssues() []ExampleIssues {
	var out []ExampleIssues
	for _, ei := range r.IssuesByExample {
		var blocking []Issue
		for _, is := range ei.Issues {
			if is.Severity.Blocking() {
				blocking = append(blocking, is)
			}
		}
		if len(blocking) > 0 {
			out = append(out, ExampleIssues{ExampleID: ei.ExampleID, Issues: blocking})
		}
	}
	return out
}
