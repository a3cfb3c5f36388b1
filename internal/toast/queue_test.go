package toast

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsUniqueIDs(t *testing.T) {
	q := NewQueue(10)
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id := q.Add(Info("t", "m"))
		assert.False(t, seen[id], "duplicate toast id %s", id)
		seen[id] = true
	}
}

func TestNewestFirstOrdering(t *testing.T) {
	q := NewQueue(10)
	first := q.Add(Info("first", ""))
	second := q.Add(Info("second", ""))

	snap := q.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, second, snap[0].ID)
	assert.Equal(t, first, snap[1].ID)
}

func TestCapacityEvictsOldest(t *testing.T) {
	q := NewQueue(5)
	var ids []string
	for i := 0; i < 8; i++ {
		ids = append(ids, q.Add(Info(fmt.Sprintf("toast %d", i), "")))
	}

	snap := q.Snapshot()
	require.Len(t, snap, 5)

	// The visible set is exactly the 5 most recently added, newest first.
	for i, toast := range snap {
		assert.Equal(t, ids[7-i], toast.ID)
	}
}

func TestEvictionReportsRemoval(t *testing.T) {
	q := NewQueue(1)
	var removed []string
	q.OnRemoved = func(id string, expired bool) {
		assert.False(t, expired, "eviction is not an expiry")
		removed = append(removed, id)
	}

	first := q.Add(Error("one", ""))
	q.Add(Error("two", ""))

	require.Len(t, removed, 1)
	assert.Equal(t, first, removed[0])
}

func TestExpiryTimerRemovesToast(t *testing.T) {
	q := NewQueue(5)
	expired := make(chan string, 1)
	q.OnRemoved = func(id string, wasExpiry bool) {
		if wasExpiry {
			expired <- id
		}
	}

	id := q.Add(Toast{Type: "info", Title: "short", Duration: 20 * time.Millisecond})

	select {
	case got := <-expired:
		assert.Equal(t, id, got)
	case <-time.After(time.Second):
		t.Fatal("toast never expired")
	}
	assert.Empty(t, q.Snapshot())
}

func TestExplicitRemoveCancelsTimer(t *testing.T) {
	q := NewQueue(5)
	var expiries int
	q.OnRemoved = func(id string, wasExpiry bool) {
		if wasExpiry {
			expiries++
		}
	}

	id := q.Add(Toast{Type: "info", Title: "short", Duration: 30 * time.Millisecond})
	q.Remove(id)

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, expiries, "cancelled timer must not fire")
	assert.Empty(t, q.Snapshot())
}

func TestErrorToastsArePersistent(t *testing.T) {
	q := NewQueue(5)
	q.Add(Error("boom", "it broke"))

	snap := q.Snapshot()
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Persistent)
	assert.Zero(t, snap[0].Duration)
}

func TestWarningDefaultDuration(t *testing.T) {
	w := Warning("careful", "")
	assert.Equal(t, WarningDuration, w.Duration)
}

func TestProgressDerivedFromCreation(t *testing.T) {
	toast := Toast{Duration: 10 * time.Second, CreatedAt: time.Now()}

	assert.InDelta(t, 100, toast.Progress(toast.CreatedAt), 0.01)
	assert.InDelta(t, 50, toast.Progress(toast.CreatedAt.Add(5*time.Second)), 0.01)
	assert.Zero(t, toast.Progress(toast.CreatedAt.Add(11*time.Second)))

	persistent := Toast{Persistent: true, CreatedAt: time.Now()}
	assert.Equal(t, float64(100), persistent.Progress(time.Now().Add(time.Hour)))
}

func TestPromiseSuccess(t *testing.T) {
	q := NewQueue(5)
	err := Promise(q, PromiseMessages{Loading: "Saving...", Success: "Saved", Failure: "Save failed"}, func() error {
		// Loading toast is visible while the operation runs.
		snap := q.Snapshot()
		require.Len(t, snap, 1)
		assert.True(t, snap[0].Persistent)
		assert.Equal(t, "Saving...", snap[0].Title)
		return nil
	})
	require.NoError(t, err)

	snap := q.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "Saved", snap[0].Title)
	assert.Equal(t, "success", snap[0].Type)
}

func TestPromiseFailureReturnsOriginalError(t *testing.T) {
	q := NewQueue(5)
	boom := fmt.Errorf("connection refused")
	err := Promise(q, PromiseMessages{Loading: "Saving...", Success: "Saved", Failure: "Save failed"}, func() error {
		return boom
	})
	assert.Equal(t, boom, err)

	snap := q.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "Save failed", snap[0].Title)
	assert.Equal(t, "error", snap[0].Type)
	assert.True(t, snap[0].Persistent)
}

func TestClearCancelsEverything(t *testing.T) {
	q := NewQueue(5)
	var expiries int
	q.OnRemoved = func(id string, wasExpiry bool) {
		if wasExpiry {
			expiries++
		}
	}
	for i := 0; i < 3; i++ {
		q.Add(Toast{Type: "info", Duration: 30 * time.Millisecond})
	}
	q.Clear()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, q.Snapshot())
	assert.Zero(t, expiries)
}
