package services

import (
	"context"
	"fmt"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type roleStore interface {
	CreateRole(ctx context.Context, role *models.Role) (*models.Role, error)
	GetRoleByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	GetRoles(ctx context.Context, params httputil.PageParams) ([]models.Role, int64, error)
	CountUsersWithRole(ctx context.Context, roleID primitive.ObjectID) (int64, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.Role, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

// RoleService enforces the role invariants: immutable names, frozen system
// roles, and soft deactivation gated on the derived user count. Every check
// runs before a repository write is attempted.
type RoleService struct {
	repo roleStore
}

func NewRoleService(repo roleStore) *RoleService {
	return &RoleService{repo: repo}
}

// CreateRole validates and stores a new role.
func (s *RoleService) CreateRole(ctx context.Context, role *models.Role) (*models.Role, error) {
	if err := models.ValidateRole(role); err != nil {
		return nil, err
	}
	if existing, _ := s.repo.GetRoleByName(ctx, role.Name); existing != nil {
		return nil, fmt.Errorf("a role named %q already exists", role.Name)
	}
	// System roles ship with the platform; they are never created through
	// the API.
	role.IsSystemRole = false

	created, err := s.repo.CreateRole(ctx, role)
	if err != nil {
		return nil, err
	}
	logrus.WithField("roleID", created.ID.Hex()).Info("Role created")
	return created, nil
}

// GetRole fetches one role with its derived user count.
func (s *RoleService) GetRole(ctx context.Context, id string) (*models.Role, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role ID: %v", err)
	}
	role, err := s.repo.GetRoleByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountUsersWithRole(ctx, objID)
	if err != nil {
		return nil, err
	}
	role.UserCount = count
	return role, nil
}

// GetRoles lists roles with paging; user counts are filled per role.
func (s *RoleService) GetRoles(ctx context.Context, params httputil.PageParams) ([]models.Role, int64, error) {
	roles, total, err := s.repo.GetRoles(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	for i := range roles {
		count, err := s.repo.CountUsersWithRole(ctx, roles[i].ID)
		if err != nil {
			return nil, 0, err
		}
		roles[i].UserCount = count
	}
	return roles, total, nil
}

// RoleUpdate is the set of fields a caller may attempt to change.
type RoleUpdate struct {
	DisplayName    *string   `json:"display_name,omitempty"`
	Description    *string   `json:"description,omitempty"`
	HierarchyLevel *int      `json:"hierarchy_level,omitempty"`
	Permissions    *[]string `json:"permissions,omitempty"`
}

// UpdateRole applies an update, enforcing immutability rules. Name changes
// are not representable. System roles accept display metadata only.
func (s *RoleService) UpdateRole(ctx context.Context, id string, update RoleUpdate) (*models.Role, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role ID: %v", err)
	}
	role, err := s.repo.GetRoleByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if role.IsSystemRole {
		if update.Permissions != nil {
			return nil, fmt.Errorf("permissions of a system role cannot be changed")
		}
		if update.HierarchyLevel != nil {
			return nil, fmt.Errorf("hierarchy level of a system role cannot be changed")
		}
	}

	fields := map[string]interface{}{}
	if update.DisplayName != nil {
		fields["display_name"] = *update.DisplayName
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.HierarchyLevel != nil {
		if *update.HierarchyLevel < 1 || *update.HierarchyLevel > 10 {
			return nil, fmt.Errorf("hierarchy level must be between 1 and 10")
		}
		fields["hierarchy_level"] = *update.HierarchyLevel
	}
	if update.Permissions != nil {
		fields["permissions"] = *update.Permissions
	}
	if len(fields) == 0 {
		return role, nil
	}

	return s.repo.UpdateRole(ctx, objID, fields)
}

// DeactivateRole soft-deletes a role. System roles and roles that still
// have users are rejected before any write is issued.
func (s *RoleService) DeactivateRole(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid role ID: %v", err)
	}
	role, err := s.repo.GetRoleByID(ctx, objID)
	if err != nil {
		return err
	}

	if role.IsSystemRole {
		return fmt.Errorf("system role %q cannot be deactivated", role.Name)
	}
	count, err := s.repo.CountUsersWithRole(ctx, objID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("role %q still has %d user(s) assigned", role.Name, count)
	}

	if err := s.repo.Deactivate(ctx, objID); err != nil {
		return err
	}
	logrus.WithField("roleID", id).Info("Role deactivated")
	return nil
}
