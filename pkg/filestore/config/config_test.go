package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "files.db", cfg.DatabasePath)
	assert.Equal(t, "minio", cfg.StorageBackend)
	assert.Equal(t, "localhost:9000", cfg.Minio.Endpoint)
	assert.Equal(t, "files", cfg.Minio.Bucket)
	assert.False(t, cfg.Minio.UseSSL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATABASE_TYPE", "memory")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("MINIO_BUCKET", "other-bucket")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "other-bucket", cfg.Minio.Bucket)
}

func TestBuildService_MemoryStores(t *testing.T) {
	cfg := &Config{
		DatabaseType:   "memory",
		StorageBackend: "memory",
	}

	svc, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildService_Sqlite(t *testing.T) {
	cfg := &Config{
		DatabaseType:   "sqlite",
		DatabasePath:   filepath.Join(t.TempDir(), "files.db"),
		StorageBackend: "memory",
	}

	svc, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuild_UnsupportedSelectors(t *testing.T) {
	_, _, err := (&Config{DatabaseType: "oracle"}).Build(context.Background())
	assert.ErrorContains(t, err, "unsupported database type")

	_, _, err = (&Config{DatabaseType: "memory", StorageBackend: "tape"}).Build(context.Background())
	assert.ErrorContains(t, err, "unsupported storage backend")
}

func TestBuild_PostgresRequiresURL(t *testing.T) {
	_, _, err := (&Config{DatabaseType: "postgres"}).Build(context.Background())
	assert.ErrorContains(t, err, "DATABASE_URL is required")
}
