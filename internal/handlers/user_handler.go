package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Aldiyar2201/Visitor_Manager/internal/config"
	"github.com/Aldiyar2201/Visitor_Manager/internal/guard"
	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/services"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	jwtutil "github.com/Aldiyar2201/Visitor_Manager/pkg/jwt"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user accounts.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterUserHandler handles staff account registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		models.User
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("Failed to decode registration request")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.Service.RegisterUser(r.Context(), &req.User, req.Password)
	if err != nil {
		logrus.WithError(err).Warn("Failed to register user")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

// LoginUserHandler authenticates a user and issues a JWT.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		logrus.WithError(err).Warn("Failed to decode login request")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		logrus.WithField("email", credentials.Email).WithError(err).Warn("Authentication failed")
		httputil.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, err := jwtutil.GenerateToken(jwtutil.Claims{
		UserID:              user.ID.Hex(),
		Email:               user.Email,
		Role:                user.Role,
		Permissions:         user.Permissions,
		NeedsPasswordChange: user.NeedsPasswordChange,
		NeedsTwoFactor:      user.NeedsTwoFactor,
	}, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate JWT token")
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetUserHandler fetches a user by ID. Callers may read their own account;
// anything else requires the admin role.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestedID := mux.Vars(r)["id"]
	decision := guard.Evaluate(guard.Subject{
		UserID:      claims.UserID,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}, guard.Check{
		AllowAdmin: true,
		AllowOwner: true,
		OwnerID:    requestedID,
	})
	if !decision.Allowed {
		logrus.WithFields(logrus.Fields{
			"userID":      claims.UserID,
			"requestedID": requestedID,
		}).Warn("Forbidden user lookup")
		httputil.WriteError(w, http.StatusForbidden, decision.Reason)
		return
	}

	user, err := h.Service.GetUser(r.Context(), requestedID)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// UpdateUserHandler applies a partial profile update to the caller's own
// account, or any account when the caller is an admin.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestedID := mux.Vars(r)["id"]
	decision := guard.Evaluate(guard.Subject{
		UserID:      claims.UserID,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}, guard.Check{
		AllowAdmin: true,
		AllowOwner: true,
		OwnerID:    requestedID,
	})
	if !decision.Allowed {
		httputil.WriteError(w, http.StatusForbidden, decision.Reason)
		return
	}

	var update map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logrus.WithError(err).Warn("Failed to decode user update request")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	user, err := h.Service.UpdateUser(r.Context(), requestedID, update)
	if err != nil {
		logrus.WithError(err).Error("Failed to update user")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// UpdateSettingsHandler replaces the caller's notification settings.
func (h *UserHandler) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var settings models.NotificationSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		logrus.WithError(err).Warn("Failed to decode settings payload")
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.Service.UpdateSettings(r.Context(), claims.UserID, settings); err != nil {
		logrus.WithError(err).Warn("Failed to update notification settings")
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

// GetSettingsHandler returns the caller's current notification settings.
func (h *UserHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.Settings)
}

// GetAllUsersHandler lists every account in public form. Admin only.
func (h *UserHandler) GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch users")
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	httputil.WriteJSON(w, http.StatusOK, public)
}
