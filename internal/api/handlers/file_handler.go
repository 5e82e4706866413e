package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	appMiddleware "github.com/calebds/vaultive/internal/api/middlewares"
	"github.com/calebds/vaultive/internal/services"
)

type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload handles multipart file upload, S3 put and DB insert.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {

	r.ParseMultipartForm(52 << 20) // 52 MB

	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload", http.StatusBadRequest)
		return
	}

	// Sanitize filename to prevent path traversal or invalid characters
	cleanFilename := filepath.Base(header.Filename)
	contentType := header.Header.Get("Content-Type")
	departmentID := r.FormValue("department_id")

	rec, err := h.files.UploadAndCreate(r.Context(), userID, departmentID, cleanFilename, contentType, data)
	if err != nil {
		log.Printf("upload failed for user %s: %v", userID, err)
		http.Error(w, fmt.Sprintf("upload failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rec)
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		http.Error(w, "user_id not found in context", http.StatusUnauthorized)
		return
	}

	files, err := h.files.ListByOwner(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, _ := appMiddleware.UserID(r.Context())
	fileID := chi.URLParam(r, "id")

	rec, data, err := h.files.Download(r.Context(), userID, fileID)
	if err != nil {
		writeFileErr(w, err)
		return
	}

	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.FileName))
	w.Write(data)
}

func (h *FileHandler) Trash(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.files.Trash)
}

func (h *FileHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.files.Restore)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.files.DeletePermanently)
}

func (h *FileHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	userID, _ := appMiddleware.UserID(r.Context())

	files, err := h.files.ListTrash(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

type shareRequest struct {
	GranteeID string `json:"grantee_id"`
}

func (h *FileHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, _ := appMiddleware.UserID(r.Context())
	fileID := chi.URLParam(r, "id")

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GranteeID == "" {
		http.Error(w, "grantee_id required", http.StatusBadRequest)
		return
	}

	if err := h.files.Share(r.Context(), userID, fileID, req.GranteeID); err != nil {
		writeFileErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FileHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	userID, _ := appMiddleware.UserID(r.Context())
	fileID := chi.URLParam(r, "id")
	granteeID := chi.URLParam(r, "granteeID")

	if err := h.files.Unshare(r.Context(), userID, fileID, granteeID); err != nil {
		writeFileErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FileHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	userID, _ := appMiddleware.UserID(r.Context())

	files, err := h.files.ListSharedWith(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

func (h *FileHandler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, fileID string) error) {
	userID, _ := appMiddleware.UserID(r.Context())
	fileID := chi.URLParam(r, "id")

	if err := op(r.Context(), userID, fileID); err != nil {
		writeFileErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeFileErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrFileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrNotOwner), errors.Is(err, services.ErrNoAccess):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
