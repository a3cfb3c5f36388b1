package realtime

import (
	"context"
	"testing"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/notify"
	"github.com/Aldiyar2201/Visitor_Manager/internal/toast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func pushed(priority string) models.Notification {
	return models.Notification{
		ID:       primitive.NewObjectID(),
		UserID:   primitive.NewObjectID(),
		Type:     models.NotificationTypeAlert,
		Title:    "Tailgating detected",
		Message:  "Door 3",
		Priority: priority,
	}
}

func newTestChannel(q *toast.Queue, fetch Fetcher) (*Channel, *notify.Registry) {
	registry := notify.NewRegistry()
	queues := func(string) *toast.Queue { return q }
	return NewChannel(registry, queues, nil, nil, fetch), registry
}

func TestServerEventLandsInCenter(t *testing.T) {
	q := toast.NewQueue(5)
	ch, registry := newTestChannel(q, nil)

	n := pushed(models.PriorityLow)
	ch.OnServerEvent(context.Background(), n)

	snap := registry.Center(n.UserID.Hex()).Snapshot()
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, n.ID, snap.Notifications[0].ID)
	assert.Equal(t, 1, snap.Unread)
	assert.Empty(t, q.Snapshot(), "low priority must not raise a toast")
}

func TestEmergencyDualPath(t *testing.T) {
	q := toast.NewQueue(5)
	ch, registry := newTestChannel(q, nil)

	n := pushed(models.PriorityEmergency)
	ch.OnServerEvent(context.Background(), n)

	// Exactly one store entry and exactly one persistent error toast.
	assert.Len(t, registry.Center(n.UserID.Hex()).Snapshot().Notifications, 1)
	toasts := q.Snapshot()
	require.Len(t, toasts, 1)
	assert.Equal(t, models.NotificationTypeError, toasts[0].Type)
	assert.True(t, toasts[0].Persistent)
}

func TestPriorityToastMapping(t *testing.T) {
	cases := []struct {
		priority   string
		toastType  string
		persistent bool
	}{
		{models.PriorityHigh, models.NotificationTypeWarning, false},
		{models.PriorityCritical, models.NotificationTypeError, true},
		{models.PriorityEmergency, models.NotificationTypeError, true},
	}
	for _, tc := range cases {
		q := toast.NewQueue(5)
		ch, _ := newTestChannel(q, nil)
		ch.OnServerEvent(context.Background(), pushed(tc.priority))

		toasts := q.Snapshot()
		require.Len(t, toasts, 1, "priority %s", tc.priority)
		assert.Equal(t, tc.toastType, toasts[0].Type, "priority %s", tc.priority)
		assert.Equal(t, tc.persistent, toasts[0].Persistent, "priority %s", tc.priority)
	}
}

func TestMediumPriorityStoreOnly(t *testing.T) {
	q := toast.NewQueue(5)
	ch, registry := newTestChannel(q, nil)

	n := pushed(models.PriorityMedium)
	ch.OnServerEvent(context.Background(), n)

	assert.Len(t, registry.Center(n.UserID.Hex()).Snapshot().Notifications, 1)
	assert.Empty(t, q.Snapshot())
}

func TestDisconnectedUserStillGetsStoreEntry(t *testing.T) {
	ch, registry := newTestChannel(nil, nil)

	n := pushed(models.PriorityEmergency)
	ch.OnServerEvent(context.Background(), n)

	assert.Len(t, registry.Center(n.UserID.Hex()).Snapshot().Notifications, 1)
}

func TestReconnectTriggersFullResync(t *testing.T) {
	fetched := []models.Notification{
		{ID: primitive.NewObjectID(), Title: "from server", Read: false},
		{ID: primitive.NewObjectID(), Title: "older", Read: true},
	}
	var fetchedFor string
	fetch := func(ctx context.Context, userID string) ([]models.Notification, error) {
		fetchedFor = userID
		return fetched, nil
	}
	ch, registry := newTestChannel(nil, fetch)

	// State accumulated while "disconnected" is replaced wholesale.
	registry.Center("u1").Add(models.Notification{ID: primitive.NewObjectID(), Title: "stale"})

	ch.OnConnectionChange(context.Background(), "u1", true)

	assert.Equal(t, "u1", fetchedFor)
	snap := registry.Center("u1").Snapshot()
	require.Len(t, snap.Notifications, 2)
	assert.Equal(t, "from server", snap.Notifications[0].Title)
	assert.Equal(t, 1, snap.Unread)
}

func TestDisconnectDoesNotFetch(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, userID string) ([]models.Notification, error) {
		calls++
		return nil, nil
	}
	ch, _ := newTestChannel(nil, fetch)

	ch.OnConnectionChange(context.Background(), "u1", false)
	assert.Zero(t, calls)
}
