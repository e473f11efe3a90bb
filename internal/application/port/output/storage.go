package output

import (
	"context"
	"time"
)

// ArtifactType classifies a published artifact.
type ArtifactType string

const (
	ArtifactExampleFile ArtifactType = "example_file"
	ArtifactStageRecord ArtifactType = "stage_record"
	ArtifactReport      ArtifactType = "report"
)

// SaveArtifactRequest asks a storage gateway to persist one content blob.
type SaveArtifactRequest struct {
	ExampleID    string
	ArtifactType ArtifactType
	// RelPath is the artifact's path relative to the example folder.
	RelPath     string
	Content     []byte
	ContentType string
	Metadata    map[string]string
}

// ArtifactMetadata describes a stored artifact.
type ArtifactMetadata struct {
	ID          string            `json:"id"`
	ExampleID   string            `json:"example_id"`
	Type        ArtifactType      `json:"type"`
	StoragePath string            `json:"storage_path"`
	ContentType string            `json:"content_type"`
	Size        int64             `json:"size"`
	UploadedAt  time.Time         `json:"uploaded_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// StorageGateway publishes generated examples and final records to durable
// storage (local directory or S3).
type StorageGateway interface {
	SaveArtifact(ctx context.Context, req SaveArtifactRequest) (*ArtifactMetadata, error)
}
