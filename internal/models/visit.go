package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visit statuses.
const (
	VisitStatusInvited    = "invited"
	VisitStatusCheckedIn  = "checked_in"
	VisitStatusCheckedOut = "checked_out"
	VisitStatusCancelled  = "cancelled"
)

// Visit tracks one visitor's pass through the building: invited by a host,
// checked in at reception, checked out on leave.
type Visit struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HostID       primitive.ObjectID `bson:"host_id" json:"host_id"`
	VisitorName  string             `bson:"visitor_name" json:"visitor_name"`
	VisitorEmail string             `bson:"visitor_email" json:"visitor_email"`
	Company      string             `bson:"company,omitempty" json:"company,omitempty"`
	Purpose      string             `bson:"purpose,omitempty" json:"purpose,omitempty"`
	Status       string             `bson:"status" json:"status"`
	ScheduledAt  time.Time          `bson:"scheduled_at" json:"scheduled_at"`
	CheckedInAt  *time.Time         `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time         `bson:"checked_out_at,omitempty" json:"checked_out_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
