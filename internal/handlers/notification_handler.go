package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/services"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler handles HTTP requests for the notification center.
type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// notificationPage is a paged listing plus the unread counter the client
// renders on the bell badge.
type notificationPage struct {
	httputil.PagedResponse
	UnreadCount int64 `json:"unreadCount"`
}

// GetNotificationsHandler lists the caller's notifications, newest first.
func (h *NotificationHandler) GetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to convert user ID")
		httputil.WriteError(w, http.StatusInternalServerError, "Invalid user ID")
		return
	}

	params := httputil.ParsePageParams(r)
	items, total, unread, err := h.Service.GetUserNotifications(r.Context(), userID, params)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch notifications")
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, notificationPage{
		PagedResponse: httputil.NewPagedResponse(items, total, params),
		UnreadCount:   unread,
	})
}

// CreateNotificationHandler creates a notification for a target user. Only
// reachable behind the admin guard; regular notifications are produced by
// the visit flow and the escalation engine.
func (h *NotificationHandler) CreateNotificationHandler(w http.ResponseWriter, r *http.Request) {
	var notif models.Notification
	if err := json.NewDecoder(r.Body).Decode(&notif); err != nil {
		logrus.WithError(err).Warn("Invalid notification payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if notif.UserID.IsZero() {
		httputil.WriteError(w, http.StatusBadRequest, "Target user is required")
		return
	}
	if err := h.Service.CreateNotification(r.Context(), &notif); err != nil {
		logrus.WithError(err).Error("Failed to create notification")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, notif)
}

// MarkReadHandler marks a single notification as read.
func (h *NotificationHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.Service.MarkRead(r.Context(), claims.UserID, id); err != nil {
		logrus.WithError(err).WithField("notificationID", id).Warn("Failed to mark notification as read")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// BatchMarkReadHandler marks a set of notifications as read in one call.
func (h *NotificationHandler) BatchMarkReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("Invalid batch mark-read payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if len(req.IDs) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "No notification IDs provided")
		return
	}
	if err := h.Service.BatchMarkRead(r.Context(), claims.UserID, req.IDs); err != nil {
		logrus.WithError(err).Warn("Failed to batch mark notifications as read")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Notifications marked as read",
		"count":   len(req.IDs),
	})
}

// AcknowledgeHandler records acknowledgement notes against an alert and
// marks it read, which stops further escalation for it.
func (h *NotificationHandler) AcknowledgeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("Invalid acknowledge payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	id := mux.Vars(r)["id"]
	if err := h.Service.Acknowledge(r.Context(), claims.UserID, id, req.Notes); err != nil {
		logrus.WithError(err).WithField("notificationID", id).Warn("Failed to acknowledge notification")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notification acknowledged"})
}

// DeleteNotificationHandler removes one of the caller's notifications.
func (h *NotificationHandler) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.Service.Delete(r.Context(), claims.UserID, id); err != nil {
		logrus.WithError(err).WithField("notificationID", id).Warn("Failed to delete notification")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}
