package services

import (
	"context"
	"testing"

	"github.com/Aldiyar2201/Visitor_Manager/internal/models"
	"github.com/Aldiyar2201/Visitor_Manager/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRoleStore records writes so tests can assert that rejected
// operations never reach storage.
type fakeRoleStore struct {
	roles       map[primitive.ObjectID]*models.Role
	userCounts  map[primitive.ObjectID]int64
	deactivated []primitive.ObjectID
	updates     []map[string]interface{}
}

func newFakeRoleStore() *fakeRoleStore {
	return &fakeRoleStore{
		roles:      make(map[primitive.ObjectID]*models.Role),
		userCounts: make(map[primitive.ObjectID]int64),
	}
}

func (f *fakeRoleStore) add(role *models.Role, users int64) *models.Role {
	if role.ID.IsZero() {
		role.ID = primitive.NewObjectID()
	}
	f.roles[role.ID] = role
	f.userCounts[role.ID] = users
	return role
}

func (f *fakeRoleStore) CreateRole(ctx context.Context, role *models.Role) (*models.Role, error) {
	return f.add(role, 0), nil
}

func (f *fakeRoleStore) GetRoleByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return nil, assert.AnError
	}
	copied := *role
	return &copied, nil
}

func (f *fakeRoleStore) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	for _, role := range f.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, assert.AnError
}

func (f *fakeRoleStore) GetRoles(ctx context.Context, params httputil.PageParams) ([]models.Role, int64, error) {
	var out []models.Role
	for _, role := range f.roles {
		out = append(out, *role)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRoleStore) CountUsersWithRole(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return f.userCounts[id], nil
}

func (f *fakeRoleStore) UpdateRole(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*models.Role, error) {
	f.updates = append(f.updates, update)
	return f.roles[id], nil
}

func (f *fakeRoleStore) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

func TestDeactivateRejectsSystemRole(t *testing.T) {
	store := newFakeRoleStore()
	role := store.add(&models.Role{Name: "administrator", IsSystemRole: true, HierarchyLevel: 1}, 0)
	svc := NewRoleService(store)

	err := svc.DeactivateRole(context.Background(), role.ID.Hex())
	require.Error(t, err)
	assert.Empty(t, store.deactivated, "no write may be issued for a rejected deactivation")
}

func TestDeactivateRejectsRoleInUse(t *testing.T) {
	store := newFakeRoleStore()
	role := store.add(&models.Role{Name: "guard", HierarchyLevel: 5}, 3)
	svc := NewRoleService(store)

	err := svc.DeactivateRole(context.Background(), role.ID.Hex())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 user(s)")
	assert.Empty(t, store.deactivated)
}

func TestDeactivateEmptyRole(t *testing.T) {
	store := newFakeRoleStore()
	role := store.add(&models.Role{Name: "contractor", HierarchyLevel: 8}, 0)
	svc := NewRoleService(store)

	require.NoError(t, svc.DeactivateRole(context.Background(), role.ID.Hex()))
	assert.Equal(t, []primitive.ObjectID{role.ID}, store.deactivated)
}

func TestSystemRolePermissionsFrozen(t *testing.T) {
	store := newFakeRoleStore()
	role := store.add(&models.Role{Name: "administrator", IsSystemRole: true, HierarchyLevel: 1}, 0)
	svc := NewRoleService(store)

	perms := []string{"everything"}
	_, err := svc.UpdateRole(context.Background(), role.ID.Hex(), RoleUpdate{Permissions: &perms})
	require.Error(t, err)
	assert.Empty(t, store.updates)
}

func TestSystemRoleDisplayMetadataEditable(t *testing.T) {
	store := newFakeRoleStore()
	role := store.add(&models.Role{Name: "administrator", IsSystemRole: true, HierarchyLevel: 1}, 0)
	svc := NewRoleService(store)

	name := "Administrator"
	desc := "Full platform access"
	_, err := svc.UpdateRole(context.Background(), role.ID.Hex(), RoleUpdate{DisplayName: &name, Description: &desc})
	require.NoError(t, err)
	require.Len(t, store.updates, 1)
	assert.Equal(t, "Administrator", store.updates[0]["display_name"])
}

func TestCreateRoleValidatesHierarchy(t *testing.T) {
	store := newFakeRoleStore()
	svc := NewRoleService(store)

	_, err := svc.CreateRole(context.Background(), &models.Role{Name: "x", HierarchyLevel: 11})
	require.Error(t, err)
	assert.Empty(t, store.roles)
}

func TestCreateRoleNeverSystem(t *testing.T) {
	store := newFakeRoleStore()
	svc := NewRoleService(store)

	created, err := svc.CreateRole(context.Background(), &models.Role{Name: "intern", HierarchyLevel: 9, IsSystemRole: true})
	require.NoError(t, err)
	assert.False(t, created.IsSystemRole, "API-created roles are never system roles")
}

func TestCreateRoleDuplicateName(t *testing.T) {
	store := newFakeRoleStore()
	store.add(&models.Role{Name: "guard", HierarchyLevel: 5}, 0)
	svc := NewRoleService(store)

	_, err := svc.CreateRole(context.Background(), &models.Role{Name: "guard", HierarchyLevel: 6})
	require.Error(t, err)
}

func TestGetRoleDerivesUserCount(t *testing.T) {
	store := newFakeRoleStore()
	role := store.add(&models.Role{Name: "guard", HierarchyLevel: 5}, 7)
	svc := NewRoleService(store)

	got, err := svc.GetRole(context.Background(), role.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserCount)
}
