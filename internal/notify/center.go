package notify

import (
	"sync"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxEntries caps how many notifications a center retains. Older entries
// are evicted from the tail.
const MaxEntries = 100

// Center holds one user's notification state: an ordered list (newest
// first) and the unread counter. Every mutation updates the counter in the
// same transition; it is never recomputed after the fact.
type Center struct {
	mu     sync.Mutex
	items  []models.Notification
	unread int

	// onChange, when set, receives a snapshot after every mutation. It is
	// called outside the center lock. Guarded by mu: centers outlive the
	// connections that install the callback, so the installer and the
	// mutators run on different goroutines.
	onChange func(Snapshot)
}

// Snapshot is a copied view of the center. Readers never observe in-place
// mutation.
type Snapshot struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

func NewCenter() *Center {
	return &Center{}
}

// Add prepends a notification, evicting from the tail past MaxEntries.
// Unread accounting covers both the insert and any eviction.
func (c *Center) Add(n models.Notification) {
	c.mu.Lock()
	c.items = append([]models.Notification{n}, c.items...)
	if !n.Read {
		c.unread++
	}
	if len(c.items) > MaxEntries {
		for _, evicted := range c.items[MaxEntries:] {
			if !evicted.Read {
				c.unread--
			}
		}
		c.items = c.items[:MaxEntries]
	}
	c.notifyLocked()
}

// MarkAsRead flips a single notification to read. Marking an already-read
// or unknown id is a no-op.
func (c *Center) MarkAsRead(id primitive.ObjectID) {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id && !c.items[i].Read {
			c.items[i].Read = true
			c.unread--
			break
		}
	}
	c.notifyLocked()
}

// BatchMarkAsRead marks several notifications read in one transition.
func (c *Center) BatchMarkAsRead(ids []primitive.ObjectID) {
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	c.mu.Lock()
	for i := range c.items {
		if want[c.items[i].ID] && !c.items[i].Read {
			c.items[i].Read = true
			c.unread--
		}
	}
	c.notifyLocked()
}

// Remove deletes a notification by id.
func (c *Center) Remove(id primitive.ObjectID) {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			if !c.items[i].Read {
				c.unread--
			}
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	c.notifyLocked()
}

// Clear drops everything.
func (c *Center) Clear() {
	c.mu.Lock()
	c.items = nil
	c.unread = 0
	c.notifyLocked()
}

// Replace swaps in a freshly fetched list, recomputing unread in the same
// transition. Used by the fetch/resync path; the server copy wins.
func (c *Center) Replace(list []models.Notification) {
	items := make([]models.Notification, len(list))
	copy(items, list)
	if len(items) > MaxEntries {
		items = items[:MaxEntries]
	}
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}

	c.mu.Lock()
	c.items = items
	c.unread = unread
	c.notifyLocked()
}

// Unread returns the current unread count.
func (c *Center) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Snapshot returns a copy of the current state.
func (c *Center) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Center) snapshotLocked() Snapshot {
	out := make([]models.Notification, len(c.items))
	copy(out, c.items)
	return Snapshot{Notifications: out, Unread: c.unread}
}

// SetOnChange installs (or, with nil, removes) the change callback.
func (c *Center) SetOnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// notifyLocked releases the lock and fires the change callback with a
// snapshot taken under it. Callers must hold the lock.
func (c *Center) notifyLocked() {
	snap := c.snapshotLocked()
	onChange := c.onChange
	c.mu.Unlock()
	if onChange != nil {
		onChange(snap)
	}
}
