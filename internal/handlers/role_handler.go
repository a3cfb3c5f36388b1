package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/services"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RoleHandler handles HTTP requests for role administration.
type RoleHandler struct {
	Service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{Service: service}
}

// CreateRoleHandler creates a new custom role.
func (h *RoleHandler) CreateRoleHandler(w http.ResponseWriter, r *http.Request) {
	var role models.Role
	if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
		logrus.WithError(err).Warn("Invalid role payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateRole(r.Context(), &role)
	if err != nil {
		logrus.WithError(err).Warn("Failed to create role")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

// GetRoleHandler fetches one role with its derived user count.
func (h *RoleHandler) GetRoleHandler(w http.ResponseWriter, r *http.Request) {
	role, err := h.Service.GetRole(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "Role not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, role)
}

// GetRolesHandler lists roles with paging.
func (h *RoleHandler) GetRolesHandler(w http.ResponseWriter, r *http.Request) {
	params := httputil.ParsePageParams(r)
	roles, total, err := h.Service.GetRoles(r.Context(), params)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch roles")
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to fetch roles")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPagedResponse(roles, total, params))
}

// UpdateRoleHandler applies a partial update. The role name is immutable
// and is not part of the update shape at all.
func (h *RoleHandler) UpdateRoleHandler(w http.ResponseWriter, r *http.Request) {
	var update services.RoleUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logrus.WithError(err).Warn("Invalid role update payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateRole(r.Context(), mux.Vars(r)["id"], update)
	if err != nil {
		logrus.WithError(err).Warn("Failed to update role")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

// DeactivateRoleHandler soft-deactivates a role. Rejected for system roles
// and for any role that still has users assigned.
func (h *RoleHandler) DeactivateRoleHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Service.DeactivateRole(r.Context(), id); err != nil {
		logrus.WithError(err).WithField("roleID", id).Warn("Failed to deactivate role")
		httputil.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Role deactivated"})
}
