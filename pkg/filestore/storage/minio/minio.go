// Package minio provides a MinIO implementation of filestore.BlobStore.
package minio

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/stashbin/filestore/pkg/filestore"
)

// Config options for the MinIO backend
type Config struct {
	Endpoint  string // host:port of the MinIO server
	AccessKey string // access key ID
	SecretKey string // secret access key
	Bucket    string // bucket name
	UseSSL    bool   // use TLS for the connection

	// InsecureSkipVerify disables TLS certificate verification. Intended
	// for self-signed certificates in development deployments.
	InsecureSkipVerify bool
}

// Backend is a MinIO implementation of the filestore.BlobStore interface.
// It is safe for concurrent use by multiple goroutines.
type Backend struct {
	client *miniogo.Client
	bucket string
}

// New creates a new MinIO storage backend
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	opts := &miniogo.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	}
	if config.InsecureSkipVerify {
		opts.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	client, err := miniogo.New(config.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Backend{client: client, bucket: config.Bucket}, nil
}

// EnsureBucket checks that the configured bucket exists and creates it if
// absent. Idempotent; meant to run once at process startup.
func (b *Backend) EnsureBucket(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return b.wrap("ensure_bucket", "", err)
	}
	if exists {
		return nil
	}

	if err := b.client.MakeBucket(ctx, b.bucket, miniogo.MakeBucketOptions{}); err != nil {
		return b.wrap("ensure_bucket", "", err)
	}
	return nil
}

func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	_, err := b.client.PutObject(ctx, b.bucket, objectKey, reader, size, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return b.wrap("upload", objectKey, err)
	}
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, objectKey, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, b.wrap("download", objectKey, err)
	}

	// GetObject is lazy; Stat forces the first round trip so a missing key
	// surfaces here instead of on the first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, b.wrap("download", objectKey, err)
	}

	return obj, nil
}

func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	if err := b.client.RemoveObject(ctx, b.bucket, objectKey, miniogo.RemoveObjectOptions{}); err != nil {
		return b.wrap("delete", objectKey, err)
	}
	return nil
}

func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*filestore.ObjectMeta, error) {
	stat, err := b.client.StatObject(ctx, b.bucket, objectKey, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, b.wrap("stat", objectKey, err)
	}

	return &filestore.ObjectMeta{
		Key:         stat.Key,
		Size:        stat.Size,
		ContentType: stat.ContentType,
		UpdatedAt:   stat.LastModified,
	}, nil
}

func (b *Backend) ListKeys(ctx context.Context) ([]string, error) {
	var keys []string
	for obj := range b.client.ListObjects(ctx, b.bucket, miniogo.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, b.wrap("list", "", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (b *Backend) wrap(op, key string, err error) error {
	return &filestore.StorageError{Backend: "minio", Op: op, Key: key, Err: classify(err)}
}

// classify maps MinIO SDK errors to the typed error set.
func classify(err error) error {
	resp := miniogo.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket":
		return fmt.Errorf("%w: %v", filestore.ErrObjectNotFound, err)
	case resp.Code == "":
		// Not an S3 error response at all: the transport failed.
		return fmt.Errorf("%w: %v", filestore.ErrStoreUnavailable, err)
	case resp.StatusCode >= 500 || resp.Code == "SlowDown" || resp.Code == "ServiceUnavailable":
		return fmt.Errorf("%w: %v", filestore.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", filestore.ErrStoreRejected, err)
	}
}
