package services

import (
	"context"
	"fmt"

	"github.com/Aldiyar2201/Visitor_Manager/internal/events"
	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/notify"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventPublisher pushes notification events onto the message bus so the
// realtime pipeline picks them up, decoupled from the producing request.
type EventPublisher interface {
	Publish(ctx context.Context, key string, ev events.Event) error
}

type NotificationService struct {
	repo      notificationStore
	userRepo  userLookup
	registry  *notify.Registry
	publisher EventPublisher
}

// notificationStore is the narrow repository view this service needs;
// tests substitute it without a database.
type notificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID, params httputil.PageParams) ([]models.Notification, int64, int64, error)
	GetLatest(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) error
	BatchMarkAsRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error
	Acknowledge(ctx context.Context, userID, id primitive.ObjectID, notes string) error
	DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error
	DeleteExpiredNotifications(ctx context.Context) error
}

type userLookup interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

func NewNotificationService(repo notificationStore, userRepo userLookup, registry *notify.Registry, publisher EventPublisher) *NotificationService {
	return &NotificationService{
		repo:      repo,
		userRepo:  userRepo,
		registry:  registry,
		publisher: publisher,
	}
}

// CreateNotification persists a notification and publishes it to the event
// bus. The realtime consumer merges it into the user's center from there.
func (s *NotificationService) CreateNotification(ctx context.Context, notif *models.Notification) error {
	if notif.Priority == "" {
		notif.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(notif.Priority) {
		return fmt.Errorf("invalid priority %q", notif.Priority)
	}

	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		return err
	}

	if s.publisher != nil {
		ev := events.Event{Type: events.KeyNotificationCreated, Notification: *notif}
		if err := s.publisher.Publish(ctx, events.KeyNotificationCreated, ev); err != nil {
			// The write already succeeded; the client will pick the entry
			// up on its next fetch or reconnect resync.
			logrus.WithError(err).Warn("Failed to publish notification event")
		}
	}
	return nil
}

// GetUserNotifications returns a page of notifications plus total and
// unread counts.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, params httputil.PageParams) ([]models.Notification, int64, int64, error) {
	return s.repo.GetUserNotifications(ctx, userID, params)
}

// FetchLatest rebuilds a user's in-memory view from storage. Wired as the
// realtime channel's resync fetcher.
func (s *NotificationService) FetchLatest(ctx context.Context, userID string) ([]models.Notification, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}
	return s.repo.GetLatest(ctx, objID, notify.MaxEntries)
}

// MarkRead flips one notification to read, storage first, then the live
// center so the unread counter transitions atomically with the flip.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	uID, nID, err := parseIDs(userID, notificationID)
	if err != nil {
		return err
	}
	if err := s.repo.MarkAsRead(ctx, uID, nID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %v", err)
	}
	s.registry.Center(userID).MarkAsRead(nID)
	return nil
}

// BatchMarkRead marks several notifications read in one pass.
func (s *NotificationService) BatchMarkRead(ctx context.Context, userID string, notificationIDs []string) error {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID: %v", err)
	}
	ids := make([]primitive.ObjectID, 0, len(notificationIDs))
	for _, raw := range notificationIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return fmt.Errorf("invalid notification ID %q: %v", raw, err)
		}
		ids = append(ids, id)
	}

	if err := s.repo.BatchMarkAsRead(ctx, uID, ids); err != nil {
		return fmt.Errorf("failed to batch mark as read: %v", err)
	}
	s.registry.Center(userID).BatchMarkAsRead(ids)
	return nil
}

// Acknowledge records acknowledgement notes against a notification and
// marks it read.
func (s *NotificationService) Acknowledge(ctx context.Context, userID, notificationID, notes string) error {
	uID, nID, err := parseIDs(userID, notificationID)
	if err != nil {
		return err
	}
	if err := s.repo.Acknowledge(ctx, uID, nID, notes); err != nil {
		return err
	}
	s.registry.Center(userID).MarkAsRead(nID)
	return nil
}

// Delete removes a notification from storage and the live center.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	uID, nID, err := parseIDs(userID, notificationID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteNotification(ctx, uID, nID); err != nil {
		return fmt.Errorf("failed to delete notification: %v", err)
	}
	s.registry.Center(userID).Remove(nID)
	return nil
}

// GetSettings resolves the user's notification settings, falling back to
// defaults when the user cannot be loaded. Wired as the realtime channel's
// settings lookup.
func (s *NotificationService) GetSettings(ctx context.Context, userID string) models.NotificationSettings {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.DefaultSettings()
	}
	user, err := s.userRepo.GetUserByID(ctx, objID)
	if err != nil {
		return models.DefaultSettings()
	}
	return user.Settings
}

// CleanupExpired is run by cron to purge entries past their expiry.
func (s *NotificationService) CleanupExpired(ctx context.Context) error {
	return s.repo.DeleteExpiredNotifications(ctx)
}

func parseIDs(userID, notificationID string) (primitive.ObjectID, primitive.ObjectID, error) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("invalid user ID: %v", err)
	}
	nID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, fmt.Errorf("invalid notification ID: %v", err)
	}
	return uID, nID, nil
}
