// Package output defines the outbound ports the pipeline depends on.
package output

import (
	"context"
	"time"
)

// StageKind names the transformation a stage requests from the oracle.
type StageKind string

const (
	StageExtraction   StageKind = "extraction"
	StageDistillation StageKind = "distillation"
	StageGeneration   StageKind = "generation"
	StageRefinement   StageKind = "refinement"
)

// TransformRequest is a structured prompt/context for one oracle invocation.
type TransformRequest struct {
	Stage      StageKind
	Repository string
	// Subject identifies the item being transformed (unit path or example ID).
	Subject string
	Prompt  string
	// Context carries named content blobs (file contents, issue lists, plans).
	Context map[string]string
	Timeout time.Duration
}

// TransformResult is the oracle's structured response. Output is expected to
// be a JSON document; the requesting stage owns its schema.
type TransformResult struct {
	Output   string
	Duration time.Duration
}

// OracleGateway is the external transformation oracle: an opaque, potentially
// slow, potentially fallible capability. Implementations do not retry; a
// failed or timed-out call surfaces as an error the caller isolates per item.
type OracleGateway interface {
	Transform(ctx context.Context, req TransformRequest) (*TransformResult, error)
	HealthCheck(ctx context.Context) error
}
