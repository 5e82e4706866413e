package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/calebds/vaultive/internal/services"
)

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.admin.Summary(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

type createDepartmentRequest struct {
	Name string `json:"name"`
}

func (h *AdminHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req createDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	dep, err := h.admin.CreateDepartment(r.Context(), req.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(dep)
}

func (h *AdminHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	deps, err := h.admin.ListDepartments(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deps)
}

func (h *AdminHandler) Usage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.admin.Usage(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(usage)
}

// UsageExport streams the usage report as an XLSX download.
func (h *AdminHandler) UsageExport(w http.ResponseWriter, r *http.Request) {
	wb, err := h.admin.BuildUsageWorkbook(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer wb.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="usage.xlsx"`)
	if err := wb.Write(w); err != nil {
		log.Printf("usage export write failed: %v", err)
	}
}
