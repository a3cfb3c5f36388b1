package realtime

import (
	"context"

	"github.com/Aldiyar2201/Visitor_Manager/internal/desktop"
	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/internal/notify"
	"github.com/Aldiyar2201/Visitor_Manager/internal/toast"
	"github.com/sirupsen/logrus"
)

// Fetcher loads a user's notifications from persistent storage. Used for
// the full resync on reconnect; the server copy always wins.
type Fetcher func(ctx context.Context, userID string) ([]models.Notification, error)

// SettingsLookup resolves a user's notification settings.
type SettingsLookup func(ctx context.Context, userID string) models.NotificationSettings

// ToastQueues resolves the toast queue for a connected user. May return nil
// when the user has no live connection.
type ToastQueues func(userID string) *toast.Queue

// Channel reconciles server-side events into per-user notification state.
// Every pushed event takes the same path as a local add; urgent priorities
// additionally raise a toast. The store entry is the durable record, the
// toast the transient attention-getter.
type Channel struct {
	registry *notify.Registry
	queues   ToastQueues
	bridge   *desktop.Bridge
	settings SettingsLookup
	fetch    Fetcher
}

func NewChannel(registry *notify.Registry, queues ToastQueues, bridge *desktop.Bridge, settings SettingsLookup, fetch Fetcher) *Channel {
	return &Channel{
		registry: registry,
		queues:   queues,
		bridge:   bridge,
		settings: settings,
		fetch:    fetch,
	}
}

// OnServerEvent merges a pushed notification into the user's center, hands
// it to the desktop bridge, and raises a toast for urgent priorities.
func (ch *Channel) OnServerEvent(ctx context.Context, n models.Notification) {
	userID := n.UserID.Hex()
	ch.registry.Center(userID).Add(n)

	if ch.bridge != nil && ch.settings != nil {
		ch.bridge.Deliver(n, ch.settings(ctx, userID))
	}

	if !models.IsUrgent(n.Priority) {
		return
	}
	q := ch.queues(userID)
	if q == nil {
		return
	}
	q.Add(toastFor(n))
}

// toastFor maps a pushed notification's priority onto toast styling: high
// becomes a warning, critical and emergency become errors. Emergency is
// forced persistent independent of the error default.
func toastFor(n models.Notification) toast.Toast {
	switch n.Priority {
	case models.PriorityHigh:
		return toast.Warning(n.Title, n.Message)
	case models.PriorityEmergency:
		t := toast.Error(n.Title, n.Message)
		t.Persistent = true
		return t
	default: // critical
		return toast.Error(n.Title, n.Message)
	}
}

// OnConnectionChange handles a user's connection-state transition. On
// reconnect the center is rebuilt from storage in full; events missed while
// disconnected are not replayed individually.
func (ch *Channel) OnConnectionChange(ctx context.Context, userID string, connected bool) {
	if !connected || ch.fetch == nil {
		return
	}

	list, err := ch.fetch(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("userID", userID).Error("Failed to resync notifications after reconnect")
		return
	}
	ch.registry.Center(userID).Replace(list)
}
