package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/stashbin/filestore/pkg/filestore"
)

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to a temp file.
const maxUploadMemory = 32 << 20

// FilesHandler handles the file upload and management API endpoints
type FilesHandler struct {
	service filestore.Service
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(service filestore.Service) *FilesHandler {
	return &FilesHandler{service: service}
}

// Routes returns the router for files endpoints
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.UploadFile)
	r.Get("/", h.ListFiles)
	r.Get("/{id}", h.DownloadFile)
	r.Delete("/{id}", h.DeleteFile)
	return r
}

// UploadResponse represents the response after uploading a file
type UploadResponse struct {
	ID             int64  `json:"id"`
	FileName       string `json:"file_name"`
	MinioObjectKey string `json:"minio_object_key"`
	Message        string `json:"message"`
}

// FileResponse represents one file record in list responses
type FileResponse struct {
	ID             int64     `json:"id"`
	FileName       string    `json:"file_name"`
	MinioObjectKey string    `json:"minio_object_key"`
	ContentType    string    `json:"content_type,omitempty"`
	Size           int64     `json:"size"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageResponse carries a human-readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries an error detail body
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// UploadFile stores the multipart "file" part and records its metadata
func (h *FilesHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		renderError(w, r, http.StatusBadRequest, "multipart form with a file part is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Missing file part", "error", err)
		renderError(w, r, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	record, err := h.service.Upload(r.Context(), filestore.UploadRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	})
	if err != nil {
		slog.Error("Upload failed", "file_name", header.Filename, "error", err)
		renderServiceError(w, r, err)
		return
	}
	slog.Info("File uploaded", "id", record.ID, "object_key", record.ObjectKey, "size", record.Size)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadResponse{
		ID:             record.ID,
		FileName:       record.FileName,
		MinioObjectKey: record.ObjectKey,
		Message:        "File uploaded successfully",
	})
}

// ListFiles returns all file records, newest first
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("List failed", "error", err)
		renderServiceError(w, r, err)
		return
	}

	files := make([]FileResponse, 0, len(records))
	for _, record := range records {
		files = append(files, FileResponse{
			ID:             record.ID,
			FileName:       record.FileName,
			MinioObjectKey: record.ObjectKey,
			ContentType:    record.ContentType,
			Size:           record.Size,
			CreatedAt:      record.CreatedAt,
		})
	}

	render.JSON(w, r, files)
}

// DownloadFile streams the file's bytes back as an attachment
func (h *FilesHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.fileID(w, r)
	if !ok {
		return
	}

	rc, record, err := h.service.Download(r.Context(), id)
	if err != nil {
		slog.Error("Download failed", "id", id, "error", err)
		renderServiceError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := record.ContentType
	if contentType == "" {
		contentType = filestore.DefaultContentType
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName))
	if record.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(record.Size, 10))
	}

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; all we can do is log the broken stream.
		slog.Error("Streaming download failed", "id", id, "error", err)
	}
}

// DeleteFile removes the file's blob and metadata row
func (h *FilesHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.fileID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		slog.Error("Delete failed", "id", id, "error", err)
		renderServiceError(w, r, err)
		return
	}
	slog.Info("File deleted", "id", id)

	render.JSON(w, r, MessageResponse{
		Message: fmt.Sprintf("File %d deleted successfully", id),
	})
}

// fileID parses the {id} path parameter, responding 404 on garbage ids so
// /files/abc behaves the same as a missing record.
func (h *FilesHandler) fileID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		slog.Warn("Invalid file ID", "id", idStr)
		renderError(w, r, http.StatusNotFound, "File not found")
		return 0, false
	}
	return id, true
}

// renderServiceError maps coordinator failures to HTTP statuses: a missing
// record is 404, everything else (divergence, transport, provider refusal)
// is 500.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, filestore.ErrFileNotFound) {
		renderError(w, r, http.StatusNotFound, "File not found")
		return
	}
	renderError(w, r, http.StatusInternalServerError, err.Error())
}

func renderError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Detail: detail})
}
