package desktop

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/sirupsen/logrus"
)

// AutoCloseAfter is attached to non-persistent deliveries so the client can
// dismiss them on its own.
const AutoCloseAfter = 5 * time.Second

// Delivery is the payload handed to the sink when every precondition holds.
type Delivery struct {
	Title     string
	Message   string
	Type      string
	URL       string        // optional navigation target on click
	AutoClose time.Duration // zero for persistent notifications
}

// Sink is the host notification capability. Absent (nil) means the host
// does not support desktop notifications at all.
type Sink interface {
	Show(d Delivery) error
}

// Bridge pushes notifications to the host's desktop capability. It is
// strictly best-effort: nothing here ever propagates an error to the
// notification pipeline.
type Bridge struct {
	sink Sink
	now  func() time.Time
}

func NewBridge(sink Sink) *Bridge {
	return &Bridge{sink: sink, now: time.Now}
}

// Deliver shows the notification on the desktop if every precondition
// holds: the capability exists, the user granted permission (the server
// never requests it — that must come from a user gesture on the client),
// desktop delivery is enabled, and the current time is outside quiet
// hours. Sink failures are logged and swallowed.
func (b *Bridge) Deliver(n models.Notification, settings models.NotificationSettings) {
	if b.sink == nil {
		return
	}
	if settings.DesktopPermission != models.PermissionGranted {
		return
	}
	if !settings.Desktop {
		return
	}
	if settings.QuietHours.Enabled && InQuietHours(settings.QuietHours, b.now()) {
		return
	}

	d := Delivery{
		Title:   n.Title,
		Message: n.Message,
		Type:    n.Type,
	}
	if !n.Persistent {
		d.AutoClose = AutoCloseAfter
	}
	if n.Data != nil {
		if u, ok := n.Data["url"].(string); ok {
			d.URL = u
		}
	}

	if err := b.sink.Show(d); err != nil {
		logrus.WithError(err).Debug("Desktop notification failed")
	}
}

// InQuietHours reports whether t falls inside the window. When the window
// wraps past midnight (start > end) the time is suppressed if it is at or
// after the start or at or before the end; otherwise a plain range check
// applies.
func InQuietHours(q models.QuietHours, t time.Time) bool {
	start, okS := parseClock(q.Start)
	end, okE := parseClock(q.End)
	if !okS || !okE {
		return false
	}

	current := t.Hour()*60 + t.Minute()
	if start > end {
		return current >= start || current <= end
	}
	return current >= start && current <= end
}

// parseClock converts "HH:MM" to minutes past midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// LogSink writes deliveries to the log. It stands in for a real desktop
// capability when the service runs headless.
type LogSink struct{}

func (LogSink) Show(d Delivery) error {
	logrus.WithField("title", d.Title).Info("Desktop notification delivered")
	return nil
}

var _ Sink = LogSink{}

// String implements a human-readable form used in debug logs.
func (d Delivery) String() string {
	return fmt.Sprintf("%s: %s", d.Title, d.Message)
}
