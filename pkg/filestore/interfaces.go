package filestore

import (
	"context"
	"io"
)

// BlobStore defines the interface for object storage backends.
type BlobStore interface {
	// Upload stores the reader's bytes under objectKey. The coordinator
	// guarantees key uniqueness by generation; backends do not check first.
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error

	// Download opens a streaming handle to the blob. The caller must close it.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the blob. Backends may or may not report a missing key
	// as ErrObjectNotFound; callers must not assume either.
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves blob metadata without downloading content.
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// ListKeys returns every object key in the bucket.
	ListKeys(ctx context.Context) ([]string, error)
}

// Repository defines the interface for file record persistence.
type Repository interface {
	// Init creates the files table if it does not exist. Idempotent.
	Init(ctx context.Context) error

	// Insert stores a new record and fills in its ID and CreatedAt.
	// An object key collision is surfaced as ErrDuplicateKey.
	Insert(ctx context.Context, record *FileRecord) error

	// Get returns the record for id, or ErrFileNotFound.
	Get(ctx context.Context, id int64) (*FileRecord, error)

	// List returns all records ordered by creation time, newest first.
	List(ctx context.Context) ([]*FileRecord, error)

	// Delete removes the record for id and reports whether a row was
	// actually removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
