package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashbin/filestore/pkg/filestore"
	"github.com/stashbin/filestore/pkg/filestore/repo/memory"
	memorystorage "github.com/stashbin/filestore/pkg/filestore/storage/memory"
)

// setupFilesHandlerTest mounts a FilesHandler over in-memory stores
func setupFilesHandlerTest(t *testing.T) (http.Handler, *memorystorage.Backend) {
	t.Helper()

	repo := memory.New()
	store := memorystorage.New()

	svc, err := filestore.New(
		filestore.WithRepository(repo),
		filestore.WithBlobStore(store),
	)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Mount("/files", NewFilesHandler(svc).Routes())
	return router, store
}

// multipartBody builds a multipart body with a single file part
func multipartBody(t *testing.T, fileName, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func uploadFile(t *testing.T, router http.Handler, fileName, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()

	body, formContentType := multipartBody(t, fileName, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/files/", body)
	req.Header.Set("Content-Type", formContentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFilesHandler_Upload_Success(t *testing.T) {
	router, _ := setupFilesHandlerTest(t)

	w := uploadFile(t, router, "hello.txt", "text/plain", "hi")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "hello.txt", resp.FileName)
	assert.True(t, strings.HasSuffix(resp.MinioObjectKey, ".txt"))
	assert.Equal(t, "File uploaded successfully", resp.Message)
}

func TestFilesHandler_Upload_MissingFilePart(t *testing.T) {
	router, _ := setupFilesHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/files/", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilesHandler_List(t *testing.T) {
	router, _ := setupFilesHandlerTest(t)

	t.Run("empty list is an empty array", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/files/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("newest first", func(t *testing.T) {
		uploadFile(t, router, "first.txt", "text/plain", "1")
		uploadFile(t, router, "second.txt", "text/plain", "22")

		req := httptest.NewRequest(http.MethodGet, "/files/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var files []FileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
		require.Len(t, files, 2)
		assert.Equal(t, "second.txt", files[0].FileName)
		assert.Equal(t, int64(2), files[0].Size)
		assert.Equal(t, "first.txt", files[1].FileName)
	})
}

func TestFilesHandler_Download(t *testing.T) {
	router, store := setupFilesHandlerTest(t)

	w := uploadFile(t, router, "hello.txt", "text/plain", "hi")
	require.Equal(t, http.StatusCreated, w.Code)

	var uploaded UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))

	t.Run("streams bytes back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/files/%d", uploaded.ID), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hi", rec.Body.String())
		assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="hello.txt"`, rec.Header().Get("Content-Disposition"))
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/files/999", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/files/abc", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing blob is 500", func(t *testing.T) {
		require.NoError(t, store.Delete(context.Background(), uploaded.MinioObjectKey))

		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/files/%d", uploaded.ID), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestFilesHandler_Delete(t *testing.T) {
	router, _ := setupFilesHandlerTest(t)

	w := uploadFile(t, router, "bye.txt", "text/plain", "bye")
	require.Equal(t, http.StatusCreated, w.Code)

	var uploaded UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/files/%d", uploaded.ID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "deleted successfully")

	// Deleting again reports the record gone.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/files/%d", uploaded.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestFilesHandler_EndToEnd walks the full lifecycle of one small file.
func TestFilesHandler_EndToEnd(t *testing.T) {
	router, _ := setupFilesHandlerTest(t)

	// Upload two bytes.
	w := uploadFile(t, router, "hello.txt", "text/plain", "hi")
	require.Equal(t, http.StatusCreated, w.Code)

	var uploaded UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	assert.Equal(t, int64(1), uploaded.ID)
	assert.True(t, strings.HasSuffix(uploaded.MinioObjectKey, ".txt"))

	// The listing has exactly one matching entry.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var files []FileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	require.Len(t, files, 1)
	assert.Equal(t, "hello.txt", files[0].FileName)
	assert.Equal(t, int64(2), files[0].Size)
	assert.Equal(t, uploaded.MinioObjectKey, files[0].MinioObjectKey)

	// Download returns the exact bytes with the original name attached.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), body)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "hello.txt")

	// Delete, then the record is gone.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/files/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
