package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
)

// MockGateway is a deterministic offline oracle. It produces schema-valid
// JSON for every stage kind, derived only from the request subject, so full
// pipeline runs are reproducible without a model backend.
type MockGateway struct{}

// NewMockGateway creates the deterministic mock oracle.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Transform returns a canned, subject-derived payload for the stage.
func (g *MockGateway) Transform(ctx context.Context, req output.TransformRequest) (*output.TransformResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload any
	switch req.Stage {
	case output.StageExtraction:
		payload = mockExtraction(req.Subject)
	case output.StageDistillation:
		payload = mockDistillation(req.Subject)
	case output.StageGeneration:
		payload = mockGeneration(req.Subject)
	case output.StageRefinement:
		payload = mockRefinement(req.Context)
	default:
		return nil, fmt.Errorf("mock oracle: unknown stage kind %q", req.Stage)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("mock oracle: marshal payload: %w", err)
	}
	return &output.TransformResult{Output: string(data), Duration: time.Millisecond}, nil
}

// HealthCheck always succeeds.
func (g *MockGateway) HealthCheck(ctx context.Context) error { return nil }

func mockExtraction(subject string) map[string]any {
	name := subjectName(subject)
	return map[string]any{
		"test_blocks": []map[string]any{
			{
				"test_name":       fmt.Sprintf("%s basic usage", name),
				"features_tested": []string{name},
				"classification":  "user-facing",
				"use_case":        fmt.Sprintf("using %s", name),
				"complexity":      "simple",
				"potential":       "high",
				"key_concepts":    []string{name},
			},
		},
	}
}

func mockDistillation(subject string) map[string]any {
	name := subjectName(subject)
	return map[string]any{
		"examples": []map[string]any{
			{
				"title":          fmt.Sprintf("Basic %s usage", name),
				"summary":        fmt.Sprintf("Demonstrates %s.", name),
				"complexity":     "simple",
				"potential":      "high",
				"classification": "user-facing",
				"source_tests": []map[string]string{
					{"file": subject, "test_name": fmt.Sprintf("%s basic usage", name)},
				},
			},
		},
	}
}

func mockGeneration(subject string) map[string]any {
	return map[string]any{
		"files": map[string]string{
			"main.go":   fmt.Sprintf("package main\n\nfunc main() {\n\t// example %s\n}\n", subject),
			"README.md": fmt.Sprintf("# %s\n\nGenerated example.\n", subject),
		},
	}
}

func mockRefinement(context map[string]string) map[string]any {
	resolved := []string{}
	for key := range context {
		if strings.HasPrefix(key, "issue:") {
			resolved = append(resolved, strings.TrimPrefix(key, "issue:"))
		}
	}
	return map[string]any{
		"files":    map[string]string{},
		"resolved": resolved,
	}
}

func subjectName(subject string) string {
	base := filepath.Base(subject)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, "_test")
	base = strings.TrimPrefix(base, "test_")
	if base == "" {
		return "feature"
	}
	return base
}
