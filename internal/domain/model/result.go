package model

// GenerationResult is one candidate's materialized output for a run.
type GenerationResult struct {
	ExampleID   string       `json:"example_id"`
	StableKey   string       `json:"stable_key"`
	Title       string       `json:"title"`
	Folder      string       `json:"folder"`
	Status      ResultStatus `json:"status"`
	Files       []string     `json:"generated_files"`
	SourceRefs  []string     `json:"source_refs,omitempty"`
	SourceTests []SourceTest `json:"source_tests,omitempty"`
	Notes       string       `json:"notes,omitempty"`
}

// Issue is a quality finding against one generation result.
// Issues are produced fresh each validation pass and never carried over
// implicitly; repair must re-validate to confirm resolution.
type Issue struct {
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation,omitempty"`
	Check          string   `json:"check,omitempty"`
}

// ExampleIssues groups the issues found for one example.
type ExampleIssues struct {
	ExampleID string  `json:"example_id"`
	Issues    []Issue `json:"issues"`
}

// SeveritySummary counts issues per severity across one validation pass.
type SeveritySummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Add tallies one issue.
func (s *SeveritySummary) Add(sev Severity) {
	switch sev {
	case SeverityCritical:
		s.Critical++
	case SeverityHigh:
		s.High++
	case SeverityMedium:
		s.Medium++
	case SeverityLow:
		s.Low++
	}
	s.Total++
}

// Blocking reports whether any convergence-gating issue was counted.
func (s SeveritySummary) Blocking() bool {
	return s.Critical > 0 || s.High > 0
}
