// Package storage publishes generated examples to durable storage.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/koetsu-dev/exemplar/internal/application/port/output"
)

// S3StorageGateway implements StorageGateway using AWS S3.
// Key layout: s3://<bucket>/<prefix>/examples/<exampleID>/<relPath>
// plus a metadata.json object per artifact.
type S3StorageGateway struct {
	client     S3API
	bucketName string
	prefix     string
}

// S3Config holds S3 storage gateway configuration.
type S3Config struct {
	BucketName string
	Prefix     string
	Region     string
}

// NewS3StorageGateway creates an S3-backed publish gateway.
func NewS3StorageGateway(cfg S3Config) (*S3StorageGateway, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	}
	return &S3StorageGateway{
		client:     s3.NewFromConfig(awsCfg),
		bucketName: cfg.BucketName,
		prefix:     cfg.Prefix,
	}, nil
}

// NewS3StorageGatewayWithClient creates a gateway with a custom S3 client.
// Used for testing with mock clients.
func NewS3StorageGatewayWithClient(client S3API, bucketName, prefix string) *S3StorageGateway {
	return &S3StorageGateway{client: client, bucketName: bucketName, prefix: prefix}
}

// SaveArtifact uploads one artifact and its metadata object.
func (g *S3StorageGateway) SaveArtifact(ctx context.Context, req output.SaveArtifactRequest) (*output.ArtifactMetadata, error) {
	artifactID := artifactID(req.Content)
	contentKey := g.buildKey("examples", req.ExampleID, req.RelPath)

	s3Metadata := map[string]string{
		"artifact-id":   artifactID,
		"example-id":    req.ExampleID,
		"artifact-type": string(req.ArtifactType),
		"uploaded-at":   time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range req.Metadata {
		s3Metadata[k] = v
	}

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucketName),
		Key:         aws.String(contentKey),
		Body:        bytes.NewReader(req.Content),
		ContentType: aws.String(req.ContentType),
		Metadata:    s3Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to S3: %w", err)
	}

	metadata := output.ArtifactMetadata{
		ID:          artifactID,
		ExampleID:   req.ExampleID,
		Type:        req.ArtifactType,
		StoragePath: fmt.Sprintf("s3://%s/%s", g.bucketName, contentKey),
		ContentType: req.ContentType,
		Size:        int64(len(req.Content)),
		UploadedAt:  time.Now().UTC(),
		Metadata:    req.Metadata,
	}

	metadataKey := contentKey + ".metadata.json"
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucketName),
		Key:         aws.String(metadataKey),
		Body:        bytes.NewReader(metadataJSON),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("upload metadata to S3: %w", err)
	}

	return &metadata, nil
}

func (g *S3StorageGateway) buildKey(parts ...string) string {
	all := parts
	if g.prefix != "" {
		all = append([]string{g.prefix}, parts...)
	}
	return strings.Join(all, "/")
}

// artifactID derives a stable ID from the content hash.
func artifactID(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:16]
}
