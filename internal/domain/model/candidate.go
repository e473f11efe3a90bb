package model

// TestBlock is one analyzed test extracted from an input unit.
type TestBlock struct {
	TestName       string         `json:"test_name"`
	FeaturesTested []string       `json:"features_tested,omitempty"`
	Classification Classification `json:"classification"`
	UseCase        string         `json:"use_case,omitempty"`
	TargetUsers    []string       `json:"target_users,omitempty"`
	Complexity     Complexity     `json:"complexity"`
	Potential      Potential      `json:"potential"`
	KeyConcepts    []string       `json:"key_concepts,omitempty"`
	UserValue      string         `json:"user_value,omitempty"`
}

// FileAnalysis is the extraction output for one input unit.
// Every tracked unit maps to exactly one analysis per run.
type FileAnalysis struct {
	Path   string      `json:"path"`
	Status UnitStatus  `json:"status"`
	Blocks []TestBlock `json:"test_blocks"`
	Error  string      `json:"error,omitempty"`
}

// SourceTest references the test a candidate derives from.
type SourceTest struct {
	File     string `json:"file"`
	TestName string `json:"test_name"`
}

// ExampleCandidate is a planned example threaded through the later stages.
//
// StableKey is assigned once when the candidate is first planned and never
// changes; ExampleID is the user-visible NN-slug identifier which may be
// renumbered between runs while remaining paired to the same StableKey.
type ExampleCandidate struct {
	ExampleID      string          `json:"example_id"`
	StableKey      string          `json:"stable_key"`
	Title          string          `json:"title"`
	Summary        string          `json:"summary,omitempty"`
	Complexity     Complexity      `json:"complexity"`
	Potential      Potential       `json:"potential"`
	Classification Classification  `json:"classification"`
	SourceRefs     []string        `json:"source_refs"`
	SourceTests    []SourceTest    `json:"source_tests,omitempty"`
	Folder         string          `json:"folder"`
	Status         CandidateStatus `json:"status"`
	Notes          string          `json:"notes,omitempty"`
}
