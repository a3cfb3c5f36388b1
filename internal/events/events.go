package events

import (
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
)

// Routing keys on the topic exchange.
const (
	KeyNotificationCreated = "notification.created"
	KeyEscalationTriggered = "escalation.triggered"
)

// Event is the wire envelope for server-pushed notification events.
type Event struct {
	ID           string              `json:"id"`
	Type         string              `json:"type"`
	OccurredAt   time.Time           `json:"occurred_at"`
	Notification models.Notification `json:"notification"`
}
