package filestore

import (
	"context"
	"errors"
	"io"

	"github.com/stashbin/filestore/pkg/filestore/objectkey"
)

// Service defines the main interface for the file lifecycle coordinator.
type Service interface {
	// Upload stores the file's bytes in the blob store, then records its
	// metadata, and returns the new record.
	Upload(ctx context.Context, req UploadRequest) (*FileRecord, error)

	// List returns all file records, newest first.
	List(ctx context.Context) ([]*FileRecord, error)

	// Download returns a stream of the file's bytes plus its record. A
	// missing row is ErrFileNotFound; a row whose blob is gone is
	// ErrObjectNotFound.
	Download(ctx context.Context, id int64) (io.ReadCloser, *FileRecord, error)

	// Delete removes the blob, then the metadata row.
	Delete(ctx context.Context, id int64) error
}

// Option configures a Service during construction.
type Option func(*service)

// WithRepository sets the metadata repository (required).
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithBlobStore sets the object storage backend (required).
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithKeyGenerator overrides the default object key generator.
func WithKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keys = gen
	}
}

// New creates a Service with the given options. A repository and a blob
// store are required.
func New(opts ...Option) (Service, error) {
	s := &service{
		keys: objectkey.NewUUIDGenerator(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		return nil, errors.New("repository is required")
	}
	if s.store == nil {
		return nil, errors.New("blob store is required")
	}

	return s, nil
}
