package handler

import (
	"net/http"

	"github.com/freeeve/hexmarch/internal/middleware"
	"github.com/freeeve/hexmarch/internal/service"
)

// AdminHandler handles gamemaster endpoints.
type AdminHandler struct {
	adminSvc *service.AdminService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(adminSvc *service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !middleware.IsAdminFromContext(r.Context()) {
		writeError(w, http.StatusForbidden, "gamemaster only")
		return false
	}
	return true
}

// Pause handles POST /api/v1/admin/pause
func (h *AdminHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.adminSvc.Pause(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"game_status": "Paused"})
}

// Unpause handles POST /api/v1/admin/unpause
func (h *AdminHandler) Unpause(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.adminSvc.Unpause(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"game_status": "Unpaused"})
}

// GetStatus handles GET /api/v1/admin/status
func (h *AdminHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	paused, err := h.adminSvc.Paused(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	status := "Unpaused"
	if paused {
		status = "Paused"
	}
	writeJSON(w, http.StatusOK, map[string]string{"game_status": status})
}

// Backup handles POST /api/v1/admin/backup
func (h *AdminHandler) Backup(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.adminSvc.Backup(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "backed up"})
}
