package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a named permission set. Name is immutable after creation; system
// roles additionally freeze their permission set and can never be
// deactivated.
type Role struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	DisplayName    string             `bson:"display_name" json:"display_name"`
	Description    string             `bson:"description" json:"description"`
	HierarchyLevel int                `bson:"hierarchy_level" json:"hierarchy_level"` // 1..10
	IsSystemRole   bool               `bson:"is_system_role" json:"is_system_role"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
	Permissions    []string           `bson:"permissions" json:"permissions"`
	UserCount      int64              `bson:"-" json:"user_count"` // derived, never stored
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidateRole checks the field-level invariants before a create or update.
func ValidateRole(r *Role) error {
	if r.Name == "" {
		return fmt.Errorf("role name is required")
	}
	if r.HierarchyLevel < 1 || r.HierarchyLevel > 10 {
		return fmt.Errorf("hierarchy level must be between 1 and 10")
	}
	return nil
}
