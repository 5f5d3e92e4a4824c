// Package memory provides an in-memory implementation of
// filestore.BlobStore, used primarily for testing.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/stashbin/filestore/pkg/filestore"
)

// Backend is an in-memory implementation of the filestore.BlobStore interface
type Backend struct {
	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
	updatedAt    map[string]time.Time
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
		updatedAt:    make(map[string]time.Time),
	}
}

func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return &filestore.StorageError{Backend: "memory", Op: "upload", Key: objectKey, Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	b.contentTypes[objectKey] = contentType
	b.updatedAt[objectKey] = time.Now().UTC()
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, &filestore.StorageError{Backend: "memory", Op: "download", Key: objectKey, Err: filestore.ErrObjectNotFound}
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return &filestore.StorageError{Backend: "memory", Op: "delete", Key: objectKey, Err: filestore.ErrObjectNotFound}
	}

	delete(b.objects, objectKey)
	delete(b.contentTypes, objectKey)
	delete(b.updatedAt, objectKey)
	return nil
}

func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*filestore.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, &filestore.StorageError{Backend: "memory", Op: "stat", Key: objectKey, Err: filestore.ErrObjectNotFound}
	}

	return &filestore.ObjectMeta{
		Key:         objectKey,
		Size:        int64(len(data)),
		ContentType: b.contentTypes[objectKey],
		UpdatedAt:   b.updatedAt[objectKey],
	}, nil
}

func (b *Backend) ListKeys(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.objects))
	for key := range b.objects {
		keys = append(keys, key)
	}
	return keys, nil
}
