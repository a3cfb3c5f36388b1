package toast

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
)

// Default durations. Errors get no duration at all: they stay until the
// user dismisses them.
const (
	DefaultDuration = 5 * time.Second
	WarningDuration = 7 * time.Second
)

// DefaultCapacity limits how many toasts are visible at once.
const DefaultCapacity = 5

// Toast is an ephemeral attention-getter. It is never persisted; it exists
// only between Add and its expiry or dismissal.
type Toast struct {
	ID         string                      `json:"id"`
	Type       string                      `json:"type"`
	Title      string                      `json:"title"`
	Message    string                      `json:"message"`
	Duration   time.Duration               `json:"duration"`
	Persistent bool                        `json:"persistent"`
	Actions    []models.NotificationAction `json:"actions,omitempty"`
	CreatedAt  time.Time                   `json:"created_at"`
}

// Progress returns the remaining lifetime of the toast as a 0..100 value.
// It is derived from the creation time on demand; the expiry timer is the
// only authoritative source of removal.
func (t Toast) Progress(now time.Time) float64 {
	if t.Persistent || t.Duration <= 0 {
		return 100
	}
	elapsed := now.Sub(t.CreatedAt)
	if elapsed >= t.Duration {
		return 0
	}
	return 100 * (1 - float64(elapsed)/float64(t.Duration))
}

// Queue holds the visible toasts for one user, newest first. Adding past
// capacity evicts the oldest. Each toast with a finite duration is removed
// by a single-shot timer when it expires.
type Queue struct {
	mu       sync.Mutex
	capacity int
	toasts   []Toast
	timers   map[string]*time.Timer

	// OnAdded and OnRemoved, when set, are invoked outside the queue lock
	// after each mutation. expired is true when the removal came from the
	// expiry timer rather than an explicit dismissal.
	OnAdded   func(t Toast)
	OnRemoved func(id string, expired bool)
}

// NewQueue creates a queue with the given capacity; zero or negative means
// DefaultCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		capacity: capacity,
		timers:   make(map[string]*time.Timer),
	}
}

// Add inserts a toast at the front of the queue, assigns it an id and
// starts its expiry timer. Returns the assigned id.
func (q *Queue) Add(t Toast) string {
	q.mu.Lock()

	t.ID = newID()
	t.CreatedAt = time.Now()
	if t.Persistent {
		t.Duration = 0
	}

	q.toasts = append([]Toast{t}, q.toasts...)

	// Evict oldest beyond capacity, cancelling their timers so a stale
	// expiry can't fire later.
	var evicted []string
	if len(q.toasts) > q.capacity {
		for _, old := range q.toasts[q.capacity:] {
			evicted = append(evicted, old.ID)
			q.cancelTimerLocked(old.ID)
		}
		q.toasts = q.toasts[:q.capacity]
	}

	if !t.Persistent && t.Duration > 0 {
		id := t.ID
		q.timers[id] = time.AfterFunc(t.Duration, func() {
			q.expire(id)
		})
	}

	added := t
	onAdded := q.OnAdded
	onRemoved := q.OnRemoved
	q.mu.Unlock()

	if onAdded != nil {
		onAdded(added)
	}
	if onRemoved != nil {
		for _, id := range evicted {
			onRemoved(id, false)
		}
	}
	return added.ID
}

// Remove dismisses a toast explicitly, cancelling its expiry timer.
func (q *Queue) Remove(id string) {
	q.remove(id, false)
}

func (q *Queue) expire(id string) {
	q.remove(id, true)
}

func (q *Queue) remove(id string, expired bool) {
	q.mu.Lock()
	found := false
	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			found = true
			break
		}
	}
	q.cancelTimerLocked(id)
	onRemoved := q.OnRemoved
	q.mu.Unlock()

	if found && onRemoved != nil {
		onRemoved(id, expired)
	}
}

// Clear drops every toast and cancels all timers.
func (q *Queue) Clear() {
	q.mu.Lock()
	for id := range q.timers {
		q.cancelTimerLocked(id)
	}
	q.toasts = nil
	q.mu.Unlock()
}

// Snapshot returns a copy of the visible toasts, newest first.
func (q *Queue) Snapshot() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

func (q *Queue) cancelTimerLocked(id string) {
	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
}

// newID combines the current time with a random suffix so two toasts added
// in the same millisecond still get distinct ids.
func newID() string {
	return fmt.Sprintf("%d-%06d", time.Now().UnixMilli(), rand.Intn(1000000))
}
