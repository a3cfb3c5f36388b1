package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Aldiyar2201/Visitor_Manager/internal/guard"
	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/services"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	jwtutil "github.com/Aldiyar2201/Visitor_Manager/pkg/jwt"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VisitHandler handles HTTP requests for the visitor lifecycle.
type VisitHandler struct {
	Service *services.VisitService
}

func NewVisitHandler(service *services.VisitService) *VisitHandler {
	return &VisitHandler{Service: service}
}

// CreateVisitHandler registers an invitation. The caller becomes the host
// unless they hold the visits:manage permission and name another host.
func (h *VisitHandler) CreateVisitHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var visit models.Visit
	if err := json.NewDecoder(r.Body).Decode(&visit); err != nil {
		logrus.WithError(err).Warn("Invalid visit payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	callerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to convert user ID")
		httputil.WriteError(w, http.StatusInternalServerError, "Invalid user ID")
		return
	}
	if visit.HostID.IsZero() {
		visit.HostID = callerID
	} else if visit.HostID != callerID {
		decision := guard.Evaluate(subject(claims), guard.Check{
			AllowAdmin: true,
			Permission: "visits:manage",
		})
		if !decision.Allowed {
			httputil.WriteError(w, http.StatusForbidden, "Cannot invite on behalf of another host")
			return
		}
	}

	created, err := h.Service.CreateInvitation(r.Context(), &visit)
	if err != nil {
		logrus.WithError(err).Warn("Failed to create invitation")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

// GetVisitHandler fetches one visit.
func (h *VisitHandler) GetVisitHandler(w http.ResponseWriter, r *http.Request) {
	visit, err := h.Service.GetVisit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "Visit not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visit)
}

// GetVisitsHandler lists visits. Without visits:manage the listing is
// scoped to the caller's own hosted visits.
func (h *VisitHandler) GetVisitsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	hostID := r.URL.Query().Get("hostId")
	decision := guard.Evaluate(subject(claims), guard.Check{
		AllowAdmin: true,
		Permission: "visits:manage",
	})
	if !decision.Allowed {
		hostID = claims.UserID
	}

	params := httputil.ParsePageParams(r)
	visits, total, err := h.Service.GetVisits(r.Context(), hostID, params)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch visits")
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to fetch visits")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPagedResponse(visits, total, params))
}

// CheckInHandler marks the visitor as arrived.
func (h *VisitHandler) CheckInHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.CheckIn)
}

// CheckOutHandler marks the visitor as departed.
func (h *VisitHandler) CheckOutHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.CheckOut)
}

// CancelVisitHandler cancels a pending invitation.
func (h *VisitHandler) CancelVisitHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Cancel)
}

func (h *VisitHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (*models.Visit, error)) {
	id := mux.Vars(r)["id"]
	visit, err := fn(r.Context(), id)
	if err != nil {
		logrus.WithError(err).WithField("visitID", id).Warn("Visit transition rejected")
		httputil.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visit)
}

func subject(claims *jwtutil.Claims) guard.Subject {
	return guard.Subject{
		UserID:      claims.UserID,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}
}
