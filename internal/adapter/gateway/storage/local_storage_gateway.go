package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
)

// LocalStorageGateway implements StorageGateway on the local filesystem.
// Layout: <baseDir>/examples/<exampleID>/<relPath> plus a sidecar
// <relPath>.metadata.json per artifact.
type LocalStorageGateway struct {
	fs      afero.Fs
	baseDir string
}

// NewLocalStorageGateway creates a filesystem-backed publish gateway.
func NewLocalStorageGateway(fs afero.Fs, baseDir string) *LocalStorageGateway {
	return &LocalStorageGateway{fs: fs, baseDir: baseDir}
}

// SaveArtifact writes the artifact content and its metadata sidecar.
func (g *LocalStorageGateway) SaveArtifact(ctx context.Context, req output.SaveArtifactRequest) (*output.ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contentPath := filepath.Join(g.baseDir, "examples", req.ExampleID, req.RelPath)
	if err := g.fs.MkdirAll(filepath.Dir(contentPath), 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	if err := afero.WriteFile(g.fs, contentPath, req.Content, 0o644); err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	metadata := output.ArtifactMetadata{
		ID:          artifactID(req.Content),
		ExampleID:   req.ExampleID,
		Type:        req.ArtifactType,
		StoragePath: contentPath,
		ContentType: req.ContentType,
		Size:        int64(len(req.Content)),
		UploadedAt:  time.Now().UTC(),
		Metadata:    req.Metadata,
	}

	metadataJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if err := afero.WriteFile(g.fs, contentPath+".metadata.json", metadataJSON, 0o644); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	return &metadata, nil
}
