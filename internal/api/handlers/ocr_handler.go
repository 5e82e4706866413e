package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calebds/vaultive/internal/core/extraction"
)

type OCRHandler struct {
	dispatcher *extraction.Dispatcher
}

func NewOCRHandler(dispatcher *extraction.Dispatcher) *OCRHandler {
	return &OCRHandler{dispatcher: dispatcher}
}

type submitRequest struct {
	Language string `json:"language"`
}

// Submit kicks off (or re-runs) text extraction for a file. The job id
// is returned immediately; clients poll for the result.
func (h *OCRHandler) Submit(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")

	var req submitRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}

	jobID, err := h.dispatcher.Submit(r.Context(), fileID, req.Language)
	if err != nil {
		if errors.Is(err, extraction.ErrFileNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"job_id": jobID,
		"status": "processing",
	})
}

// Status returns the job by job id.
func (h *OCRHandler) Status(w http.ResponseWriter, r *http.Request) {
	job, err := h.dispatcher.Status(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// StatusByFile returns the current job for a file.
func (h *OCRHandler) StatusByFile(w http.ResponseWriter, r *http.Request) {
	job, err := h.dispatcher.StatusByFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "no extraction job for file", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}
