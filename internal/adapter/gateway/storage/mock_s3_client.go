package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockS3Client is an in-memory S3API implementation for tests.
type MockS3Client struct {
	mu      sync.RWMutex
	objects map[string]*mockS3Object
}

type mockS3Object struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

// NewMockS3Client creates an empty in-memory S3 client.
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{objects: make(map[string]*mockS3Object)}
}

// PutObject stores the object body in memory.
func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	obj := &mockS3Object{body: body, metadata: params.Metadata}
	if params.ContentType != nil {
		obj.contentType = *params.ContentType
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*params.Key] = obj
	return &s3.PutObjectOutput{}, nil
}

// Object returns the stored body for a key, or nil if absent.
func (m *MockS3Client) Object(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil
	}
	return bytes.Clone(obj.body)
}

// ObjectMetadata returns the stored S3 metadata for a key.
func (m *MockS3Client) ObjectMetadata(key string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil
	}
	return obj.metadata
}

// Len reports the number of stored objects.
func (m *MockS3Client) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
