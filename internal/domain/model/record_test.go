package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRecord_Recount(t *testing.T) {
	r := GenerationRecord{Results: []GenerationResult{
		{ExampleID: "01-a", Status: ResultGenerated},
		{ExampleID: "02-b", Status: ResultGenerated},
		{ExampleID: "03-c", Status: ResultNeedsReview},
		{ExampleID: "04-d", Status: ResultKeep},
		{ExampleID: "05-e", Status: ResultError},
		{ExampleID: "06-f", Status: ResultDelete},
	}}
	r.Recount()
	assert.Equal(t, 6, r.Summary.TotalExamples)
	assert.Equal(t, 2, r.Summary.Generated)
	assert.Equal(t, 1, r.Summary.NeedsReview)
	assert.Equal(t, 1, r.Summary.Kept)
	assert.Equal(t, 1, r.Summary.Errors)
	assert.Equal(t, 1, r.Summary.Deleted)
}

func TestQualityRecord_BlockingIssues(t *testing.T) {
	r := QualityRecord{IssuesByExample: []ExampleIssues{
		{ExampleID: "01-a", Issues: []Issue{
			{Type: "missing_readme", Severity: SeverityHigh},
			{Type: "empty_file", Severity: SeverityMedium},
		}},
		{ExampleID: "02-b", Issues: []Issue{
			{Type: "style", Severity: SeverityLow},
		}},
	}}

	blocking := r.BlockingIssues()
	require.Len(t, blocking, 1)
	assert.Equal(t, "01-a", blocking[0].ExampleID)
	require.Len(t, blocking[0].Issues, 1)
	assert.Equal(t, "missing_readme", blocking[0].Issues[0].Type)
}

func TestSeveritySummary_Add(t *testing.T) {
	var s SeveritySummary
	s.Add(SeverityCritical)
	s.Add(SeverityHigh)
	s.Add(SeverityMedium)
	s.Add(SeverityLow)
	s.Add(SeverityLow)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Low)
	assert.True(t, s.Blocking())
}

func TestRecordLookups(t *testing.T) {
	d := DiscoveryRecord{Units: []InputUnit{{Path: "a.go"}, {Path: "b.go"}}}
	require.NotNil(t, d.Unit("b.go"))
	assert.Nil(t, d.Unit("c.go"))

	e := ExtractionRecord{Files: []FileAnalysis{{Path: "a.go"}}}
	require.NotNil(t, e.Analysis("a.go"))
	assert.Nil(t, e.Analysis("z.go"))

	dist := DistillationRecord{Candidates: []ExampleCandidate{{StableKey: "k1"}}}
	require.NotNil(t, dist.Candidate("k1"))
	assert.Nil(t, dist.Candidate("k2"))

	g := GenerationRecord{Results: []GenerationResult{{StableKey: "k1"}}}
	require.NotNil(t, g.Result("k1"))
	assert.Nil(t, g.Result("k2"))
}
