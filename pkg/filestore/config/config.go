// Package config loads service configuration from the environment and
// assembles the configured stores into a ready-to-serve Service.
package config

import (
	"context"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/stashbin/filestore/pkg/filestore"
	"github.com/stashbin/filestore/pkg/filestore/repo/memory"
	"github.com/stashbin/filestore/pkg/filestore/repo/postgres"
	"github.com/stashbin/filestore/pkg/filestore/repo/sqlite"
	memorystorage "github.com/stashbin/filestore/pkg/filestore/storage/memory"
	miniostorage "github.com/stashbin/filestore/pkg/filestore/storage/minio"
	s3storage "github.com/stashbin/filestore/pkg/filestore/storage/s3"
)

// Config is the full environment-driven configuration surface. All values
// are consumed at startup; there is no hot reload.
type Config struct {
	Port        string `env:"PORT" env-default:"8000"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// DatabaseType selects the metadata store: sqlite, postgres, or memory.
	DatabaseType string `env:"DATABASE_TYPE" env-default:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" env-default:"files.db"`
	DatabaseURL  string `env:"DATABASE_URL" env-default:""`

	// StorageBackend selects the object store: minio, s3, or memory.
	StorageBackend string `env:"STORAGE_BACKEND" env-default:"minio"`

	Minio MinioConfig
	S3    S3Config
}

type MinioConfig struct {
	Endpoint    string `env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey   string `env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey   string `env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket      string `env:"MINIO_BUCKET" env-default:"files"`
	UseSSL      bool   `env:"MINIO_SECURE" env-default:"false"`
	InsecureTLS bool   `env:"MINIO_INSECURE_TLS" env-default:"false"`
}

type S3Config struct {
	Endpoint        string `env:"S3_ENDPOINT" env-default:""`
	Region          string `env:"S3_REGION" env-default:"us-east-1"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" env-default:""`
	Bucket          string `env:"S3_BUCKET" env-default:"files"`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"true"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return &cfg, nil
}

// Build constructs the configured repository and blob store, runs their
// one-time startup steps (schema creation, bucket ensure), and returns
// them. Either store failing means the process should not serve traffic.
func (c *Config) Build(ctx context.Context) (filestore.Repository, filestore.BlobStore, error) {
	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.Init(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize metadata store: %w", err)
	}

	store, err := c.buildBlobStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	return repo, store, nil
}

// BuildService assembles a Service from the configured stores.
func (c *Config) BuildService(ctx context.Context) (filestore.Service, error) {
	repo, store, err := c.Build(ctx)
	if err != nil {
		return nil, err
	}

	return filestore.New(
		filestore.WithRepository(repo),
		filestore.WithBlobStore(store),
	)
}

func (c *Config) buildRepository(ctx context.Context) (filestore.Repository, error) {
	switch c.DatabaseType {
	case "sqlite":
		return sqlite.New(c.DatabasePath)
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres")
		}
		return postgres.Connect(ctx, c.DatabaseURL)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *Config) buildBlobStore(ctx context.Context) (filestore.BlobStore, error) {
	switch c.StorageBackend {
	case "minio":
		backend, err := miniostorage.New(miniostorage.Config{
			Endpoint:           c.Minio.Endpoint,
			AccessKey:          c.Minio.AccessKey,
			SecretKey:          c.Minio.SecretKey,
			Bucket:             c.Minio.Bucket,
			UseSSL:             c.Minio.UseSSL,
			InsecureSkipVerify: c.Minio.InsecureTLS,
		})
		if err != nil {
			return nil, err
		}
		if err := backend.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket %s: %w", c.Minio.Bucket, err)
		}
		return backend, nil
	case "s3":
		return s3storage.New(s3storage.Config{
			Endpoint:               c.S3.Endpoint,
			Region:                 c.S3.Region,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Bucket:                 c.S3.Bucket,
			UsePathStyle:           c.S3.UsePathStyle,
			CreateBucketIfNotExist: true,
		})
	case "memory":
		return memorystorage.New(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.StorageBackend)
	}
}
