package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// CreateNotification inserts a new notification with a 7-day expiry.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(7 * 24 * time.Hour)

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return fmt.Errorf("failed to create notification: %v", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		notif.ID = id
	}
	return nil
}

// GetUserNotifications returns a page of live notifications for a user,
// newest first, along with the total count and the unread count.
func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, params httputil.PageParams) ([]models.Notification, int64, int64, error) {
	filter := bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}
	if params.SearchTerm != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": params.SearchTerm, "$options": "i"}},
			{"message": bson.M{"$regex": params.SearchTerm, "$options": "i"}},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count notifications: %v", err)
	}

	unreadFilter := bson.M{"user_id": userID, "read": false, "expires_at": bson.M{"$gt": time.Now()}}
	unread, err := r.collection.CountDocuments(ctx, unreadFilter)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to count unread notifications: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(params.PageIndex * params.PageSize)).
		SetLimit(int64(params.PageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, total, unread, nil
}

// GetLatest returns the most recent live notifications for a user, capped.
// Used by the resync path.
func (r *NotificationRepository) GetLatest(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	filter := bson.M{
		"user_id":    userID,
		"expires_at": bson.M{"$gt": time.Now()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// MarkAsRead sets a notification's Read flag. The filter includes the user
// so one user can never flip another's notifications.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	return err
}

// BatchMarkAsRead flips several notifications in one update.
func (r *NotificationRepository) BatchMarkAsRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}})
	return err
}

// Acknowledge records the acknowledgement notes and marks the entry read.
func (r *NotificationRepository) Acknowledge(ctx context.Context, userID, id primitive.ObjectID, notes string) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true, "notes": notes, "acked_at": now}})
	if err != nil {
		return fmt.Errorf("failed to acknowledge notification: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// DeleteNotification deletes a notification.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	return err
}

// GetUnacknowledgedAlerts returns unread alert notifications older than the
// given cutoff. The escalation evaluator scans these.
func (r *NotificationRepository) GetUnacknowledgedAlerts(ctx context.Context, cutoff time.Time) ([]models.Notification, error) {
	filter := bson.M{
		"type":       models.NotificationTypeAlert,
		"read":       false,
		"created_at": bson.M{"$lte": cutoff},
		"expires_at": bson.M{"$gt": time.Now()},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unacknowledged alerts: %v", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.Notification
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %v", err)
	}
	return alerts, nil
}

// RecordEscalationAttempt bumps the attempt counter on an alert.
func (r *NotificationRepository) RecordEscalationAttempt(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"escalation_attempts": 1},
			"$set": bson.M{"last_escalated_at": time.Now()},
		})
	if err != nil {
		return fmt.Errorf("failed to record escalation attempt: %v", err)
	}
	return nil
}

// DeleteExpiredNotifications removes entries past their expiry.
func (r *NotificationRepository) DeleteExpiredNotifications(ctx context.Context) error {
	filter := bson.M{"expires_at": bson.M{"$lte": time.Now()}}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete expired notifications: %v", err)
	}
	if result.DeletedCount > 0 {
		logrus.Infof("Deleted %d expired notifications", result.DeletedCount)
	}
	return nil
}
