package pipeline

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

// publish uploads every live example's files and the stage records to the
// configured storage backend. Publishing runs after the quality loop; the
// local output directory remains the source of truth.
func (d *Driver) publish(ctx context.Context, generation *model.GenerationRecord) error {
	published := 0
	for _, res := range generation.Results {
		switch res.Status {
		case model.ResultGenerated, model.ResultNeedsReview, model.ResultKeep:
		default:
			continue
		}
		dir := filepath.Join(d.examplesDir(), res.Folder)
		for _, name := range res.Files {
			content, err := afero.ReadFile(d.fs, filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("read %s/%s: %w", res.Folder, name, err)
			}
			_, err = d.storage.SaveArtifact(ctx, output.SaveArtifactRequest{
				ExampleID:    res.ExampleID,
				ArtifactType: output.ArtifactExampleFile,
				RelPath:      name,
				Content:      content,
				ContentType:  contentTypeFor(name),
				Metadata:     map[string]string{"run_id": d.state.RunID, "status": string(res.Status)},
			})
			if err != nil {
				return fmt.Errorf("publish %s/%s: %w", res.ExampleID, name, err)
			}
			published++
		}
	}

	for _, name := range []string{
		model.RecordDiscovery, model.RecordExtraction, model.RecordDistillation,
		model.RecordGeneration, model.RecordQuality,
	} {
		content, err := afero.ReadFile(d.fs, filepath.Join(d.store.Dir(), name))
		if err != nil {
			continue
		}
		_, err = d.storage.SaveArtifact(ctx, output.SaveArtifactRequest{
			ExampleID:    "records",
			ArtifactType: output.ArtifactStageRecord,
			RelPath:      name,
			Content:      content,
			ContentType:  "application/json",
			Metadata:     map[string]string{"run_id": d.state.RunID},
		})
		if err != nil {
			return fmt.Errorf("publish record %s: %w", name, err)
		}
		published++
	}

	d.log.Info("published %d artifact(s)", published)
	return nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	switch filepath.Ext(name) {
	case ".go":
		return "text/x-go"
	case ".md":
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}
