package cli

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
	"github.com/koetsu-dev/exemplar/internal/infra/store"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LogLevelError, ParseLogLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("bogus"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogLevelWarn, &buf)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown %d", 1)
	logger.Error("also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN: shown 1")
	assert.Contains(t, out, "ERROR: also shown")
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)
	assert.Contains(t, buf.String(), "exemplar")
}

func TestPrintStatus_NoRecords(t *testing.T) {
	st := store.New(afero.NewMemMapFs(), "/out")
	cmd := newStatusCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, printStatus(cmd, st))
	assert.Contains(t, buf.String(), "no runs recorded yet")
}

func TestPrintStatus_WithRecords(t *testing.T) {
	fs := afero.NewMemMapFs()
	st := store.New(fs, "/out")
	require.NoError(t, st.WriteRecord(model.RecordDiscovery, &model.DiscoveryRecord{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Summary:   model.DiscoverySummary{TotalTracked: 3, Created: 1, Unchanged: 2},
	}))
	require.NoError(t, st.WriteRecord(model.RecordQuality, &model.QualityRecord{
		Iteration:    2,
		Passed:       2,
		Failed:       1,
		ShouldRepair: true,
		Reason:       "1 critical and 0 high severity issue(s) open",
	}))

	cmd := newStatusCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, printStatus(cmd, st))
	out := buf.String()
	assert.Contains(t, out, "tracked=3")
	assert.Contains(t, out, "iteration=2")
	assert.Contains(t, out, "pending: 1 critical")
}

func TestPrintRunReport(t *testing.T) {
	generation := &model.GenerationRecord{Results: []model.GenerationResult{
		{ExampleID: "01-basic-client", Status: model.ResultGenerated},
		{ExampleID: "02-streaming", Status: model.ResultNeedsReview},
		{ExampleID: "03-retired", Status: model.ResultDelete},
	}}
	quality := &model.QualityRecord{IssuesByExample: []model.ExampleIssues{
		{ExampleID: "02-streaming", Issues: []model.Issue{
			{Type: "incomplete_code", Severity: model.SeverityHigh,
				Description: "file main.go contains unfinished markers"},
		}},
	}}

	var buf bytes.Buffer
	printRunReport(&buf, generation, quality)
	out := buf.String()
	assert.Contains(t, out, "01-basic-client")
	assert.Contains(t, out, "02-streaming")
	assert.Contains(t, out, "contains unfinished markers")
	assert.Contains(t, out, "03-retired")
	assert.Contains(t, out, "deleted")
}

func TestPrintRunReport_NoQualityRecord(t *testing.T) {
	generation := &model.GenerationRecord{Results: []model.GenerationResult{
		{ExampleID: "01-basic-client", Status: model.ResultError, Notes: "oracle returned no files"},
	}}
	var buf bytes.Buffer
	printRunReport(&buf, generation, nil)
	assert.Contains(t, buf.String(), "oracle returned no files")
}

func TestNewRunLockID(t *testing.T) {
	id, err := newRunLockID(".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(id.String()), "lock is keyed by the absolute repository path")
}

func TestRepoRootArg(t *testing.T) {
	run := newRunCmd()
	assert.Equal(t, "/work/repo", repoRootArg(run, []string{"/work/repo"}, "."))
	assert.Equal(t, ".", repoRootArg(run, nil, "."))
	assert.Equal(t, ".", repoRootArg(newStatusCmd(), []string{"/work/repo"}, "."))
}

func TestRootCommandTree(t *testing.T) {
	root := NewRoot()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["status"])
	assert.True(t, names["version"])
}
