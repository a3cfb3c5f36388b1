package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RoleRepository struct {
	collection *mongo.Collection
	users      *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		collection: db.Collection("roles"),
		users:      db.Collection("users"),
	}
}

// CreateRole inserts a new role.
func (r *RoleRepository) CreateRole(ctx context.Context, role *models.Role) (*models.Role, error) {
	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()
	role.IsActive = true

	result, err := r.collection.InsertOne(ctx, role)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert role")
		return nil, fmt.Errorf("failed to create role: %v", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		role.ID = id
	}
	return role, nil
}

// GetRoleByID fetches one role.
func (r *RoleRepository) GetRoleByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	var role models.Role
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err != nil {
		return nil, fmt.Errorf("failed to find role: %v", err)
	}
	return &role, nil
}

// GetRoleByName fetches a role by its immutable name.
func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetRoles returns a page of roles plus the total count.
func (r *RoleRepository) GetRoles(ctx context.Context, params httputil.PageParams) ([]models.Role, int64, error) {
	filter := bson.M{}
	if params.SearchTerm != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": params.SearchTerm, "$options": "i"}},
			{"display_name": bson.M{"$regex": params.SearchTerm, "$options": "i"}},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count roles: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "hierarchy_level", Value: 1}}).
		SetSkip(int64(params.PageIndex * params.PageSize)).
		SetLimit(int64(params.PageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch roles: %v", err)
	}
	defer cursor.Close(ctx)

	var roles []models.Role
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, 0, fmt.Errorf("failed to decode roles: %v", err)
	}
	return roles, total, nil
}

// CountUsersWithRole derives a role's user count from the users collection.
func (r *RoleRepository) CountUsersWithRole(ctx context.Context, roleID primitive.ObjectID) (int64, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{"role_ids": roleID})
	if err != nil {
		return 0, fmt.Errorf("failed to count users with role: %v", err)
	}
	return count, nil
}

// UpdateRole applies a partial update. Callers are responsible for keeping
// immutable fields out of the update map.
func (r *RoleRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.Role, error) {
	update["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logrus.WithError(err).Error("Failed to update role")
		return nil, fmt.Errorf("failed to update role: %v", err)
	}
	return r.GetRoleByID(ctx, id)
}

// Deactivate soft-deletes a role. Roles are never removed from the
// collection.
func (r *RoleRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to deactivate role: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("role not found")
	}
	return nil
}
