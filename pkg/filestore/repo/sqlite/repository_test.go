package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashbin/filestore/pkg/filestore"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := New(filepath.Join(t.TempDir(), "files.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestRepository_Init_Idempotent(t *testing.T) {
	repo := setupRepo(t)
	assert.NoError(t, repo.Init(context.Background()))
}

func TestRepository_InsertAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	record := &filestore.FileRecord{
		FileName:    "hello.txt",
		ObjectKey:   "abc_file.txt",
		ContentType: "text/plain",
		Size:        2,
	}
	require.NoError(t, repo.Insert(ctx, record))
	assert.Equal(t, int64(1), record.ID)
	assert.False(t, record.CreatedAt.IsZero())

	got, err := repo.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", got.FileName)
	assert.Equal(t, "abc_file.txt", got.ObjectKey)
	assert.Equal(t, "text/plain", got.ContentType)
	assert.Equal(t, int64(2), got.Size)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, filestore.ErrFileNotFound)
}

func TestRepository_Insert_DuplicateKey(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &filestore.FileRecord{FileName: "a.txt", ObjectKey: "same-key"}))

	err := repo.Insert(ctx, &filestore.FileRecord{FileName: "b.txt", ObjectKey: "same-key"})
	assert.ErrorIs(t, err, filestore.ErrDuplicateKey)
}

func TestRepository_List_NewestFirst(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for _, name := range []string{"first.txt", "second.txt", "third.txt"} {
		require.NoError(t, repo.Insert(ctx, &filestore.FileRecord{
			FileName:  name,
			ObjectKey: "key-" + name,
		}))
	}

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third.txt", records[0].FileName)
	assert.Equal(t, "first.txt", records[2].FileName)
}

func TestRepository_List_Empty(t *testing.T) {
	repo := setupRepo(t)

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRepository_Delete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	record := &filestore.FileRecord{FileName: "a.txt", ObjectKey: "key-a"}
	require.NoError(t, repo.Insert(ctx, record))

	removed, err := repo.Delete(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepository_IDsNeverReused(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first := &filestore.FileRecord{FileName: "a.txt", ObjectKey: "key-a"}
	require.NoError(t, repo.Insert(ctx, first))

	removed, err := repo.Delete(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, removed)

	second := &filestore.FileRecord{FileName: "b.txt", ObjectKey: "key-b"}
	require.NoError(t, repo.Insert(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}
