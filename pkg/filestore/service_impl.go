package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/stashbin/filestore/pkg/filestore/objectkey"
)

// service is the default Service implementation. It holds no state of its
// own beyond the injected collaborators; every call stands alone.
type service struct {
	repo  Repository
	store BlobStore
	keys  objectkey.Generator
}

func (s *service) Upload(ctx context.Context, req UploadRequest) (*FileRecord, error) {
	if req.Reader == nil {
		return nil, fmt.Errorf("upload requires a reader")
	}

	objectKey := s.keys.GenerateKey(req.FileName)

	contentType := req.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	// Buffer the body to measure its exact size before the blob write.
	data, err := io.ReadAll(req.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload body: %w", err)
	}

	// Object write always precedes the metadata insert. Never record a blob
	// that was not confirmed written.
	if err := s.store.Upload(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, err
	}

	record := &FileRecord{
		FileName:    req.FileName,
		ObjectKey:   objectKey,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		// The blob written above is now orphaned. No compensating delete;
		// the admin reconciler sweeps these up out of band.
		return nil, err
	}

	return record, nil
}

func (s *service) List(ctx context.Context) ([]*FileRecord, error) {
	return s.repo.List(ctx)
}

func (s *service) Download(ctx context.Context, id int64) (io.ReadCloser, *FileRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Download(ctx, record.ObjectKey)
	if err != nil {
		return nil, nil, err
	}

	return rc, record, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	// Blob removal is attempted before the row removal, mirroring upload's
	// object-first ordering. A blob that is already gone is the desired end
	// state; a transport failure aborts before metadata is touched.
	if err := s.store.Delete(ctx, record.ObjectKey); err != nil && !errors.Is(err, ErrObjectNotFound) {
		return err
	}

	// A concurrent delete may have removed the row already. The blob is
	// gone either way, so that outcome counts as success.
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	return nil
}
