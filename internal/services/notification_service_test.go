package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/events"
	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/notify"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeNotificationStore struct {
	byID       map[primitive.ObjectID]*models.Notification
	createErr  error
	markErr    error
	ackedNotes map[primitive.ObjectID]string
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{
		byID:       make(map[primitive.ObjectID]*models.Notification),
		ackedNotes: make(map[primitive.ObjectID]string),
	}
}

func (f *fakeNotificationStore) CreateNotification(ctx context.Context, notif *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	if notif.ID.IsZero() {
		notif.ID = primitive.NewObjectID()
	}
	f.byID[notif.ID] = notif
	return nil
}

func (f *fakeNotificationStore) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, params httputil.PageParams) ([]models.Notification, int64, int64, error) {
	return nil, 0, 0, nil
}

func (f *fakeNotificationStore) GetLatest(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.byID {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) error {
	if f.markErr != nil {
		return f.markErr
	}
	n, ok := f.byID[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification not found")
	}
	n.Read = true
	return nil
}

func (f *fakeNotificationStore) BatchMarkAsRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	for _, id := range ids {
		if err := f.MarkAsRead(ctx, userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeNotificationStore) Acknowledge(ctx context.Context, userID, id primitive.ObjectID, notes string) error {
	if err := f.MarkAsRead(ctx, userID, id); err != nil {
		return err
	}
	f.ackedNotes[id] = notes
	return nil
}

func (f *fakeNotificationStore) DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error {
	n, ok := f.byID[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification not found")
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeNotificationStore) DeleteExpiredNotifications(ctx context.Context) error {
	return nil
}

type fakeUserLookup struct{}

func (fakeUserLookup) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return nil, fmt.Errorf("user not found")
}

type fakePublisher struct {
	published []events.Event
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, key string, ev events.Event) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, ev)
	return nil
}

func notificationFixture(userID primitive.ObjectID) *models.Notification {
	return &models.Notification{
		UserID:    userID,
		Type:      models.NotificationTypeAlert,
		Title:     "Tailgating detected",
		Message:   "Two people entered on one badge at the north gate.",
		Priority:  models.PriorityCritical,
		CreatedAt: time.Now(),
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	store := newFakeNotificationStore()
	publisher := &fakePublisher{}
	svc := NewNotificationService(store, fakeUserLookup{}, notify.NewRegistry(), publisher)

	n := notificationFixture(primitive.NewObjectID())
	require.NoError(t, svc.CreateNotification(context.Background(), n))

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.KeyNotificationCreated, publisher.published[0].Type)
	assert.Equal(t, n.ID, publisher.published[0].Notification.ID)
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	store := newFakeNotificationStore()
	publisher := &fakePublisher{err: fmt.Errorf("broker down")}
	svc := NewNotificationService(store, fakeUserLookup{}, notify.NewRegistry(), publisher)

	n := notificationFixture(primitive.NewObjectID())
	require.NoError(t, svc.CreateNotification(context.Background(), n),
		"a broker outage must not fail the write; clients resync on reconnect")
	assert.Len(t, store.byID, 1)
}

func TestCreateDefaultsAndValidatesPriority(t *testing.T) {
	store := newFakeNotificationStore()
	svc := NewNotificationService(store, fakeUserLookup{}, notify.NewRegistry(), nil)

	n := notificationFixture(primitive.NewObjectID())
	n.Priority = ""
	require.NoError(t, svc.CreateNotification(context.Background(), n))
	assert.Equal(t, models.PriorityMedium, n.Priority)

	bad := notificationFixture(primitive.NewObjectID())
	bad.Priority = "red-alert"
	assert.Error(t, svc.CreateNotification(context.Background(), bad))
	assert.Len(t, store.byID, 1)
}

func TestMarkReadUpdatesStoreThenCenter(t *testing.T) {
	store := newFakeNotificationStore()
	registry := notify.NewRegistry()
	svc := NewNotificationService(store, fakeUserLookup{}, registry, nil)

	userID := primitive.NewObjectID()
	n := notificationFixture(userID)
	require.NoError(t, svc.CreateNotification(context.Background(), n))

	center := registry.Center(userID.Hex())
	center.Add(*n)
	require.Equal(t, 1, center.Unread())

	require.NoError(t, svc.MarkRead(context.Background(), userID.Hex(), n.ID.Hex()))
	assert.True(t, store.byID[n.ID].Read)
	assert.Equal(t, 0, center.Unread())
}

func TestMarkReadStorageFailureLeavesCenterUntouched(t *testing.T) {
	store := newFakeNotificationStore()
	registry := notify.NewRegistry()
	svc := NewNotificationService(store, fakeUserLookup{}, registry, nil)

	userID := primitive.NewObjectID()
	n := notificationFixture(userID)
	require.NoError(t, svc.CreateNotification(context.Background(), n))

	center := registry.Center(userID.Hex())
	center.Add(*n)
	store.markErr = fmt.Errorf("write failed")

	assert.Error(t, svc.MarkRead(context.Background(), userID.Hex(), n.ID.Hex()))
	assert.Equal(t, 1, center.Unread(), "the counter only moves once storage accepted the flip")
}

func TestAcknowledgeRecordsNotesAndMarksRead(t *testing.T) {
	store := newFakeNotificationStore()
	registry := notify.NewRegistry()
	svc := NewNotificationService(store, fakeUserLookup{}, registry, nil)

	userID := primitive.NewObjectID()
	n := notificationFixture(userID)
	require.NoError(t, svc.CreateNotification(context.Background(), n))
	registry.Center(userID.Hex()).Add(*n)

	require.NoError(t, svc.Acknowledge(context.Background(), userID.Hex(), n.ID.Hex(), "security dispatched"))
	assert.Equal(t, "security dispatched", store.ackedNotes[n.ID])
	assert.Equal(t, 0, registry.Center(userID.Hex()).Unread())
}

func TestGetSettingsFallsBackToDefaults(t *testing.T) {
	svc := NewNotificationService(newFakeNotificationStore(), fakeUserLookup{}, notify.NewRegistry(), nil)

	settings := svc.GetSettings(context.Background(), primitive.NewObjectID().Hex())
	assert.Equal(t, models.DefaultSettings(), settings)

	settings = svc.GetSettings(context.Background(), "not-a-hex-id")
	assert.Equal(t, models.DefaultSettings(), settings)
}
