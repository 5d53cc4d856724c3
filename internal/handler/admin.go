package handler

import (
	"encoding/json"
	"net/http"

	"github.com/saurab2057/Filetool/internal/model"
	"github.com/saurab2057/Filetool/internal/service"
)

type adminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *adminHandler {
	return &adminHandler{adminService: adminService}
}

type updateUserRequest struct {
	Status string `json:"status"`
	Role   string `json:"role"`
}

type updateUserResponse struct {
	Message string                 `json:"message"`
	User    *model.AccountOverview `json:"user"`
}

type configResponse struct {
	Message string                `json:"message"`
	Config  *model.SystemSettings `json:"config"`
}

func (h *adminHandler) Config(w http.ResponseWriter, r *http.Request) {
	settings, err := h.adminService.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *adminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch == nil {
		patch = map[string]json.RawMessage{}
	}

	settings, err := h.adminService.UpdateSettings(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configResponse{Message: "Configuration saved successfully.", Config: settings})
}

func (h *adminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.Users(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *adminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in updateUserRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), r.PathValue("id"), in.Status, in.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updateUserResponse{Message: "User updated successfully.", User: user})
}

func (h *adminHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.adminService.Jobs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}
