package filestore

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrFileNotFound indicates no metadata row exists for the given id
	ErrFileNotFound = errors.New("file not found")

	// ErrObjectNotFound indicates the blob is missing from the object store
	ErrObjectNotFound = errors.New("object not found")

	// ErrDuplicateKey indicates a metadata uniqueness violation on object key
	ErrDuplicateKey = errors.New("duplicate object key")

	// ErrStoreUnavailable indicates a transport or connectivity failure to either store
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrStoreRejected indicates a provider-side refusal, e.g. a malformed request
	ErrStoreRejected = errors.New("store rejected request")
)

// StorageError represents an error related to an object store operation.
// Err carries one of the sentinel errors above so callers can branch on
// cause with errors.Is without inspecting message strings.
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RepositoryError represents an error related to a metadata store operation.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository operation %s failed: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
