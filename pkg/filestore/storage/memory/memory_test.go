package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashbin/filestore/pkg/filestore"
)

func TestBackend_UploadDownloadRoundTrip(t *testing.T) {
	backend := New()
	ctx := context.Background()

	content := "hello, storage"
	err := backend.Upload(ctx, "key-1", strings.NewReader(content), int64(len(content)), "text/plain")
	require.NoError(t, err)

	rc, err := backend.Download(ctx, "key-1")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestBackend_Download_NotFound(t *testing.T) {
	backend := New()

	_, err := backend.Download(context.Background(), "missing")
	assert.ErrorIs(t, err, filestore.ErrObjectNotFound)

	var storageErr *filestore.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "memory", storageErr.Backend)
	assert.Equal(t, "missing", storageErr.Key)
}

func TestBackend_Delete(t *testing.T) {
	backend := New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "key-1", strings.NewReader("x"), 1, "text/plain"))

	require.NoError(t, backend.Delete(ctx, "key-1"))

	err := backend.Delete(ctx, "key-1")
	assert.ErrorIs(t, err, filestore.ErrObjectNotFound)
}

func TestBackend_GetObjectMeta(t *testing.T) {
	backend := New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "key-1", strings.NewReader("12345"), 5, "application/json"))

	meta, err := backend.GetObjectMeta(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), meta.Size)
	assert.Equal(t, "application/json", meta.ContentType)
	assert.False(t, meta.UpdatedAt.IsZero())
}

func TestBackend_ListKeys(t *testing.T) {
	backend := New()
	ctx := context.Background()

	keys, err := backend.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, backend.Upload(ctx, "a", strings.NewReader("1"), 1, ""))
	require.NoError(t, backend.Upload(ctx, "b", strings.NewReader("2"), 1, ""))

	keys, err = backend.ListKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}
