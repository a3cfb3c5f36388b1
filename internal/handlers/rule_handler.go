package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/services"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RuleHandler handles HTTP requests for escalation rules.
type RuleHandler struct {
	Service *services.RuleService
}

func NewRuleHandler(service *services.RuleService) *RuleHandler {
	return &RuleHandler{Service: service}
}

// writeRuleError maps a validation failure to the per-field error envelope
// and everything else to a plain error response.
func writeRuleError(w http.ResponseWriter, err error) {
	var verr *services.RuleValidationError
	if errors.As(err, &verr) {
		httputil.WriteValidationError(w, "Rule validation failed", verr.Validation.Errors)
		return
	}
	httputil.WriteError(w, http.StatusBadRequest, err.Error())
}

// CreateRuleHandler creates a new escalation rule.
func (h *RuleHandler) CreateRuleHandler(w http.ResponseWriter, r *http.Request) {
	var rule models.EscalationRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		logrus.WithError(err).Warn("Invalid rule payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateRule(r.Context(), &rule)
	if err != nil {
		logrus.WithError(err).Warn("Failed to create escalation rule")
		writeRuleError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

// ValidateRuleHandler runs validation without persisting anything, so the
// client can surface field errors while the form is still being edited.
func (h *RuleHandler) ValidateRuleHandler(w http.ResponseWriter, r *http.Request) {
	var rule models.EscalationRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		logrus.WithError(err).Warn("Invalid rule payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	httputil.WriteJSON(w, http.StatusOK, models.ValidateEscalationRule(&rule))
}

// GetRuleHandler fetches one rule.
func (h *RuleHandler) GetRuleHandler(w http.ResponseWriter, r *http.Request) {
	rule, err := h.Service.GetRule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "Rule not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rule)
}

// GetRulesHandler lists rules with paging and search.
func (h *RuleHandler) GetRulesHandler(w http.ResponseWriter, r *http.Request) {
	params := httputil.ParsePageParams(r)
	rules, total, err := h.Service.GetRules(r.Context(), params)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch escalation rules")
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to fetch rules")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPagedResponse(rules, total, params))
}

// UpdateRuleHandler replaces a rule's configuration.
func (h *RuleHandler) UpdateRuleHandler(w http.ResponseWriter, r *http.Request) {
	var rule models.EscalationRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		logrus.WithError(err).Warn("Invalid rule payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateRule(r.Context(), mux.Vars(r)["id"], &rule)
	if err != nil {
		logrus.WithError(err).Warn("Failed to update escalation rule")
		writeRuleError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

// DeleteRuleHandler removes one rule.
func (h *RuleHandler) DeleteRuleHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Service.DeleteRule(r.Context(), id); err != nil {
		logrus.WithError(err).WithField("ruleID", id).Warn("Failed to delete escalation rule")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Rule deleted"})
}

// BulkToggleHandler enables or disables a set of rules. Every id is
// attempted and the outcome is reported per the bulk contract.
func (h *RuleHandler) BulkToggleHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs     []string `json:"ids"`
		Enabled bool     `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("Invalid bulk toggle payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if len(req.IDs) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "No rule IDs provided")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.Service.BulkToggle(r.Context(), req.IDs, req.Enabled))
}

// BulkDeleteHandler removes a set of rules with the same settle-all
// semantics as BulkToggleHandler.
func (h *RuleHandler) BulkDeleteHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("Invalid bulk delete payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if len(req.IDs) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "No rule IDs provided")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.Service.BulkDelete(r.Context(), req.IDs))
}
