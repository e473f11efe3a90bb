package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

// runQuality validates every example produced this run with deterministic
// local checks and rewrites both the quality record and the generation
// record's statuses. Kept examples passed validation in the run that
// produced them and are not re-validated.
func (d *Driver) runQuality(ctx context.Context, generation *model.GenerationRecord, iteration int) (*model.QualityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record := &model.QualityRecord{
		Timestamp:  time.Now().UTC(),
		Repository: d.cfg.RepoRoot(),
		Iteration:  iteration,
	}

	live := 0
	for i := range generation.Results {
		res := &generation.Results[i]
		switch res.Status {
		case model.ResultGenerated, model.ResultNeedsReview:
		default:
			continue
		}
		live++

		issues := d.validateExample(res)
		record.Validated++
		if len(issues) == 0 {
			record.Passed++
			// A clean re-validation promotes the example back.
			if res.Status == model.ResultNeedsReview {
				res.Status = model.ResultGenerated
			}
			continue
		}

		record.Failed++
		record.IssuesByExample = append(record.IssuesByExample, model.ExampleIssues{
			ExampleID: res.ExampleID,
			Issues:    issues,
		})
		for _, is := range issues {
			record.Severity.Add(is.Severity)
			if is.Severity.Blocking() && res.Status == model.ResultGenerated {
				res.Status = model.ResultNeedsReview
			}
		}
	}

	reviewCount := 0
	for _, res := range generation.Results {
		if res.Status == model.ResultNeedsReview {
			reviewCount++
		}
	}
	fraction := 0.0
	if live > 0 {
		fraction = float64(reviewCount) / float64(live)
	}

	switch {
	case record.Severity.Blocking():
		record.ShouldRepair = true
		record.Reason = fmt.Sprintf("%d critical and %d high severity issue(s) open",
			record.Severity.Critical, record.Severity.High)
	case fraction >= d.cfg.ReviewThreshold():
		record.ShouldRepair = true
		record.Reason = fmt.Sprintf("%.0f%% of examples need review (threshold %.0f%%)",
			fraction*100, d.cfg.ReviewThreshold()*100)
	default:
		record.Reason = "all examples within quality gates"
	}

	generation.Recount()
	if err := d.store.WriteRecord(model.RecordGeneration, generation); err != nil {
		return nil, err
	}
	if err := d.store.WriteRecord(model.RecordQuality, record); err != nil {
		return nil, err
	}

	d.log.Info("quality: iteration %d validated=%d passed=%d failed=%d (critical=%d high=%d)",
		iteration, record.Validated, record.Passed, record.Failed,
		record.Severity.Critical, record.Severity.High)
	return record, nil
}

// validateExample runs the local checks against one example folder.
func (d *Driver) validateExample(res *model.GenerationResult) []model.Issue {
	var issues []model.Issue
	dir := filepath.Join(d.examplesDir(), res.Folder)

	hasReadme := false
	hasCode := false
	hasEntry := false
	for _, name := range res.Files {
		path := filepath.Join(dir, name)
		content, err := afero.ReadFile(d.fs, path)
		if err != nil {
			issues = append(issues, model.Issue{
				Type:           "missing_file",
				Severity:       model.SeverityCritical,
				Description:    fmt.Sprintf("listed file %s is absent from the example folder", name),
				Recommendation: "regenerate the example",
				Check:          "files_on_disk",
			})
			continue
		}

		base := filepath.Base(name)
		if strings.EqualFold(base, "README.md") {
			hasReadme = true
		} else {
			hasCode = true
			if isEntryPoint(name, string(content)) {
				hasEntry = true
			}
		}

		if len(strings.TrimSpace(string(content))) == 0 {
			issues = append(issues, model.Issue{
				Type:        "empty_file",
				Severity:    model.SeverityMedium,
				Description: fmt.Sprintf("file %s is empty", name),
				Check:       "non_empty_files",
			})
		}
		if strings.Contains(string(content), "TODO") || strings.Contains(string(content), "FIXME") {
			issues = append(issues, model.Issue{
				Type:        "incomplete_code",
				Severity:    model.SeverityHigh,
				Description: fmt.Sprintf("file %s contains unfinished markers", name),
				Check:       "no_placeholders",
			})
		}
		if !strings.EqualFold(base, "README.md") && leaksTestScaffolding(string(content)) {
			issues = append(issues, model.Issue{
				Type:           "test_scaffolding",
				Severity:       model.SeverityHigh,
				Description:    fmt.Sprintf("file %s still contains test-suite scaffolding", name),
				Recommendation: "rewrite as a standalone runnable example",
				Check:          "no_test_scaffolding",
			})
		}
	}

	if !hasReadme {
		issues = append(issues, model.Issue{
			Type:           "missing_readme",
			Severity:       model.SeverityHigh,
			Description:    "example has no README.md",
			Recommendation: "add a README.md describing the example",
			Check:          "readme_present",
		})
	}
	if !hasCode {
		issues = append(issues, model.Issue{
			Type:        "no_code_files",
			Severity:    model.SeverityCritical,
			Description: "example contains no code files",
			Check:       "code_present",
		})
	} else if !hasEntry {
		issues = append(issues, model.Issue{
			Type:           "no_entry_point",
			Severity:       model.SeverityHigh,
			Description:    "example has no runnable entry point",
			Recommendation: "add a main file the reader can run directly",
			Check:          "runnable_entry_point",
		})
	}
	return issues
}

// isEntryPoint reports whether a file is something a reader could run
// directly to start the example.
func isEntryPoint(name, content string) bool {
	base := strings.ToLower(filepath.Base(name))
	switch filepath.Ext(base) {
	case ".go":
		return strings.Contains(content, "package main") &&
			strings.Contains(content, "func main(")
	case ".py":
		return base == "main.py" || base == "app.py" ||
			strings.Contains(content, "__main__")
	case ".js", ".mjs", ".ts":
		return base == "index.js" || base == "main.js" ||
			base == "index.mjs" || base == "index.ts" || base == "main.ts"
	case ".sh":
		return true
	}
	return false
}

// leaksTestScaffolding reports whether generated code still looks like a
// test rather than a standalone example.
func leaksTestScaffolding(content string) bool {
	markers := []string{
		"*testing.T",
		"func Test",
		"def test_",
		"@pytest.",
		"describe(",
	}
	for _, m := range markers {
		if strings.Contains(content, m) {
			return true
		}
	}
	return false
}
