package hub

import (
	"context"
	"net/http"
	"sync"

	"github.com/Aldiyar2201/Visitor_Manager/internal/notify"
	"github.com/Aldiyar2201/Visitor_Manager/internal/toast"
	jwtutil "github.com/Aldiyar2201/Visitor_Manager/pkg/jwt"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Frame types pushed to clients.
const (
	FrameSnapshot      = "snapshot"
	FrameNotifications = "notifications"
	FrameToastAdded    = "toast_added"
	FrameToastRemoved  = "toast_removed"
)

// Frame is one message on the sync socket, in either direction.
type Frame struct {
	Type         string           `json:"type"`
	Notification *notify.Snapshot `json:"notifications,omitempty"`
	Toast        *toast.Toast     `json:"toast,omitempty"`
	Toasts       []toast.Toast    `json:"toasts,omitempty"`
	ToastID      string           `json:"toast_id,omitempty"`
	Expired      bool             `json:"expired,omitempty"`

	// Client-originated fields.
	ID  string   `json:"id,omitempty"`
	IDs []string `json:"ids,omitempty"`
}

// Actions are the durable mutations a client can request over the socket.
// They hit storage first; the in-memory center is updated by the service.
type Actions interface {
	MarkRead(ctx context.Context, userID, notificationID string) error
	BatchMarkRead(ctx context.Context, userID string, notificationIDs []string) error
}

// ConnectionListener is told when a user's connection comes or goes. The
// realtime channel uses this to trigger a full resync on reconnect.
type ConnectionListener func(ctx context.Context, userID string, connected bool)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks one websocket connection per user and fans notification and
// toast state out to it.
type Hub struct {
	jwtSecret     string
	registry      *notify.Registry
	actions       Actions
	onConnection  ConnectionListener
	toastCapacity int

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	conn  *websocket.Conn
	send  chan Frame
	queue *toast.Queue
}

func New(jwtSecret string, registry *notify.Registry, actions Actions, toastCapacity int) *Hub {
	return &Hub{
		jwtSecret:     jwtSecret,
		registry:      registry,
		actions:       actions,
		toastCapacity: toastCapacity,
		clients:       make(map[string]*client),
	}
}

// SetConnectionListener wires the reconnect-resync callback. Must be called
// before ServeWS starts accepting connections.
func (h *Hub) SetConnectionListener(l ConnectionListener) {
	h.onConnection = l
}

// Queue returns the toast queue of a connected user, or nil.
func (h *Hub) Queue(userID string) *toast.Queue {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[userID]; ok {
		return c.queue
	}
	return nil
}

// ServeWS upgrades the connection after validating the token passed as a
// query parameter (browsers cannot set headers on websocket dials).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.jwtSecret)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn:  conn,
		send:  make(chan Frame, 64),
		queue: toast.NewQueue(h.toastCapacity),
	}
	c.queue.OnAdded = func(t toast.Toast) {
		h.push(userID, Frame{Type: FrameToastAdded, Toast: &t})
	}
	c.queue.OnRemoved = func(id string, expired bool) {
		h.push(userID, Frame{Type: FrameToastRemoved, ToastID: id, Expired: expired})
	}

	h.register(userID, c)
	defer h.unregister(userID, c)

	center := h.registry.Center(userID)
	center.SetOnChange(func(s notify.Snapshot) {
		h.push(userID, Frame{Type: FrameNotifications, Notification: &s})
	})

	if h.onConnection != nil {
		h.onConnection(r.Context(), userID, true)
	}

	// Initial snapshot so the client starts from the server's state.
	snap := center.Snapshot()
	c.send <- Frame{Type: FrameSnapshot, Notification: &snap, Toasts: c.queue.Snapshot()}

	go c.writeLoop(userID)
	h.readLoop(r.Context(), userID, c)
}

func (h *Hub) register(userID string, c *client) {
	h.mu.Lock()
	old, had := h.clients[userID]
	h.clients[userID] = c
	h.mu.Unlock()

	// A second tab replaces the first; close the stale socket.
	if had {
		old.conn.Close()
	}
	logrus.WithField("userID", userID).Info("WebSocket connected")
}

func (h *Hub) unregister(userID string, c *client) {
	h.mu.Lock()
	if h.clients[userID] == c {
		delete(h.clients, userID)
		// Detach the callback only while this connection is still the
		// registered one; a replacement connection has already installed
		// its own.
		h.registry.Center(userID).SetOnChange(nil)
	}
	// Closing under the lock pairs with push, which only touches the send
	// channel while the client is still in the map.
	close(c.send)
	h.mu.Unlock()

	c.queue.Clear()
	c.conn.Close()

	if h.onConnection != nil {
		h.onConnection(context.Background(), userID, false)
	}
	logrus.WithField("userID", userID).Info("WebSocket disconnected")
}

// push queues a frame for a user, dropping it when the user is gone or the
// send buffer is full. A closed connection must never block the caller.
func (h *Hub) push(userID string, f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[userID]
	if !ok {
		return
	}
	select {
	case c.send <- f:
	default:
		logrus.WithField("userID", userID).Warn("Dropping frame for slow websocket client")
	}
}

func (c *client) writeLoop(userID string) {
	for frame := range c.send {
		if err := c.conn.WriteJSON(frame); err != nil {
			logrus.WithError(err).WithField("userID", userID).Debug("WebSocket write failed")
			return
		}
	}
}

func (h *Hub) readLoop(ctx context.Context, userID string, c *client) {
	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			return // client went away
		}

		switch frame.Type {
		case "mark_read":
			if err := h.actions.MarkRead(ctx, userID, frame.ID); err != nil {
				logrus.WithError(err).Warn("mark_read over websocket failed")
			}
		case "batch_mark_read":
			if err := h.actions.BatchMarkRead(ctx, userID, frame.IDs); err != nil {
				logrus.WithError(err).Warn("batch_mark_read over websocket failed")
			}
		case "dismiss_toast":
			c.queue.Remove(frame.ToastID)
		}
	}
}
