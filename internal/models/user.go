package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a staff account in the Visitor Manager system.
type User struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username            string               `bson:"username" json:"username"`
	Email               string               `bson:"email" json:"email"`
	HashedPassword      string               `bson:"hashed_password" json:"-"`
	Role                string               `bson:"role" json:"role"`
	RoleIDs             []primitive.ObjectID `bson:"role_ids,omitempty" json:"role_ids,omitempty"`
	Permissions         []string             `bson:"permissions,omitempty" json:"permissions,omitempty"`
	Department          string               `bson:"department,omitempty" json:"department,omitempty"`
	IsActive            bool                 `bson:"is_active" json:"is_active"`
	NeedsPasswordChange bool                 `bson:"needs_password_change" json:"needs_password_change"`
	NeedsTwoFactor      bool                 `bson:"needs_two_factor" json:"needs_two_factor"`
	Settings            NotificationSettings `bson:"settings" json:"settings"`
	CreatedAt           time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time            `bson:"updated_at" json:"updated_at"`
}

type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Role     string             `json:"role"`
}

// Public strips credentials and settings from a user for listing responses.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
