package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types delivered through the center.
const (
	NotificationTypeInfo       = "info"
	NotificationTypeSuccess    = "success"
	NotificationTypeWarning    = "warning"
	NotificationTypeError      = "error"
	NotificationTypeInvitation = "invitation"
	NotificationTypeCheckin    = "checkin"
	NotificationTypeAlert      = "alert"
	NotificationTypeSystem     = "system"
)

// Notification priorities, ordered from least to most urgent.
const (
	PriorityLow       = "low"
	PriorityMedium    = "medium"
	PriorityHigh      = "high"
	PriorityCritical  = "critical"
	PriorityEmergency = "emergency"
)

type Notification struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID     `bson:"user_id" json:"user_id"`
	Type       string                 `bson:"type" json:"type"`
	Title      string                 `bson:"title" json:"title"`
	Message    string                 `bson:"message" json:"message"`
	Priority   string                 `bson:"priority" json:"priority"`
	Read       bool                   `bson:"read" json:"read"`
	Persistent bool                   `bson:"persistent" json:"persistent"`
	Actions    []NotificationAction   `bson:"actions,omitempty" json:"actions,omitempty"`
	Data       map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	Notes      string                 `bson:"notes,omitempty" json:"notes,omitempty"` // acknowledgement notes
	AckedAt    *time.Time             `bson:"acked_at,omitempty" json:"acked_at,omitempty"`

	// Escalation bookkeeping, maintained by the evaluator.
	EscalationAttempts int        `bson:"escalation_attempts,omitempty" json:"-"`
	LastEscalatedAt    *time.Time `bson:"last_escalated_at,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // auto-deletion after 7 days
}

// NotificationAction is an optional follow-up the client can render as a button.
type NotificationAction struct {
	Label  string `bson:"label" json:"label"`
	Effect string `bson:"effect" json:"effect"` // e.g. "navigate:/visits/123", "acknowledge"
}

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical, PriorityEmergency:
		return true
	}
	return false
}

// IsUrgent reports whether a priority should additionally raise a toast
// when the notification arrives through the sync channel.
func IsUrgent(priority string) bool {
	switch priority {
	case PriorityHigh, PriorityCritical, PriorityEmergency:
		return true
	}
	return false
}
