package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zgjun/noto-backend/internal/service"
)

// FileHandler serves upload, listing, download, and deletion of note files.
type FileHandler struct {
	files  *service.FileService
	logger *slog.Logger
}

func NewFileHandler(files *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{files: files, logger: logger}
}

// HandleUpload stores a new file.
//
// HTTP: POST /upload (multipart/form-data, field name "file")
// RESPONSE: {"message": "File uploaded successfully", "id": "..."}
func (h *FileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	// ParseMultipartForm buffers up to maxMemory in RAM and spills larger
	// parts to temp files. The service enforces the real size limit.
	if err := r.ParseMultipartForm(service.MaxFileSize); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "bad_request", Message: "invalid multipart form",
		})
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "bad_request", Message: "no file uploaded",
		})
		return
	}
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, service.MaxFileSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "bad_request", Message: "could not read uploaded file",
		})
		return
	}

	file, err := h.files.Upload(r.Context(), user.ID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "File uploaded successfully",
		"id":      file.ID,
	})
}

// HandleList returns metadata for all of the caller's files.
//
// HTTP: GET /files
func (h *FileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	files, err := h.files.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

// HandleGet returns one file, payload included (base64 in the JSON).
//
// HTTP: GET /files/{id}
func (h *FileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	file, err := h.files.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

// HandleDelete removes one of the caller's files.
//
// HTTP: DELETE /files/{id}
func (h *FileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	file, err := h.files.Delete(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "'" + file.Name + "' was deleted successfully",
	})
}
