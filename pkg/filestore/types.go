package filestore

import (
	"io"
	"time"
)

// FileRecord is the metadata row describing one stored file.
type FileRecord struct {
	ID          int64     `json:"id"`
	FileName    string    `json:"file_name"`
	ObjectKey   string    `json:"minio_object_key"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadRequest carries an inbound file to Service.Upload.
type UploadRequest struct {
	FileName    string
	ContentType string // optional; empty means application/octet-stream
	Reader      io.Reader
}

// ObjectMeta holds blob metadata reported by a storage backend.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
}

// DefaultContentType is used when the caller did not supply a MIME type.
const DefaultContentType = "application/octet-stream"
