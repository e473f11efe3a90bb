package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
)

func TestS3StorageGateway_SaveArtifact(t *testing.T) {
	client := NewMockS3Client()
	g := NewS3StorageGatewayWithClient(client, "test-bucket", "published")

	meta, err := g.SaveArtifact(context.Background(), output.SaveArtifactRequest{
		ExampleID:    "01-basic-usage",
		ArtifactType: output.ArtifactExampleFile,
		RelPath:      "main.go",
		Content:      []byte("package main\n"),
		ContentType:  "text/x-go",
		Metadata:     map[string]string{"run-id": "01ABC"},
	})
	require.NoError(t, err)

	assert.Equal(t, "01-basic-usage", meta.ExampleID)
	assert.Equal(t, int64(len("package main\n")), meta.Size)
	assert.Equal(t, "s3://test-bucket/published/examples/01-basic-usage/main.go", meta.StoragePath)

	key := "published/examples/01-basic-usage/main.go"
	assert.Equal(t, []byte("package main\n"), client.Object(key))
	assert.Equal(t, "01-basic-usage", client.ObjectMetadata(key)["example-id"])
	assert.Equal(t, "01ABC", client.ObjectMetadata(key)["run-id"])

	// content object plus metadata sidecar
	assert.Equal(t, 2, client.Len())

	var stored output.ArtifactMetadata
	require.NoError(t, json.Unmarshal(client.Object(key+".metadata.json"), &stored))
	assert.Equal(t, meta.ID, stored.ID)
}

func TestS3StorageGateway_NoPrefix(t *testing.T) {
	client := NewMockS3Client()
	g := NewS3StorageGatewayWithClient(client, "test-bucket", "")

	_, err := g.SaveArtifact(context.Background(), output.SaveArtifactRequest{
		ExampleID:    "02-advanced",
		ArtifactType: output.ArtifactReport,
		RelPath:      "report.json",
		Content:      []byte("{}"),
		ContentType:  "application/json",
	})
	require.NoError(t, err)
	assert.NotNil(t, client.Object("examples/02-advanced/report.json"))
}

func TestLocalStorageGateway_SaveArtifact(t *testing.T) {
	fs := afero.NewMemMapFs()
	g := NewLocalStorageGateway(fs, "/out/published")

	meta, err := g.SaveArtifact(context.Background(), output.SaveArtifactRequest{
		ExampleID:    "01-basic-usage",
		ArtifactType: output.ArtifactExampleFile,
		RelPath:      "README.md",
		Content:      []byte("# Example\n"),
		ContentType:  "text/markdown",
	})
	require.NoError(t, err)
	assert.Equal(t, "/out/published/examples/01-basic-usage/README.md", meta.StoragePath)

	got, err := afero.ReadFile(fs, "/out/published/examples/01-basic-usage/README.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("# Example\n"), got)

	sidecar, err := afero.ReadFile(fs, "/out/published/examples/01-basic-usage/README.md.metadata.json")
	require.NoError(t, err)
	var stored output.ArtifactMetadata
	require.NoError(t, json.Unmarshal(sidecar, &stored))
	assert.Equal(t, output.ArtifactExampleFile, stored.Type)
}

func TestArtifactID_Stable(t *testing.T) {
	a := artifactID([]byte("same content"))
	b := artifactID([]byte("same content"))
	c := artifactID([]byte("other content"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}
