package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminBypassPrecedesPermissionCheck(t *testing.T) {
	admin := Subject{UserID: "u1", Role: "admin"}

	d := Evaluate(admin, Check{AllowAdmin: true, Permission: "roles.manage"})
	assert.True(t, d.Allowed, "admin should bypass the permission lookup")

	d = Evaluate(admin, Check{AllowAdmin: false, Permission: "roles.manage"})
	assert.False(t, d.Allowed, "without the bypass an admin still needs the permission")
}

func TestOwnerBypassPrecedesPermissionCheck(t *testing.T) {
	owner := Subject{UserID: "u42", Role: "employee"}

	// Owner without the permission, bypass enabled: allowed.
	d := Evaluate(owner, Check{AllowOwner: true, OwnerID: "u42", Permission: "visits.read"})
	assert.True(t, d.Allowed)

	// Same subject, bypass disabled: denied.
	d = Evaluate(owner, Check{AllowOwner: false, OwnerID: "u42", Permission: "visits.read"})
	assert.False(t, d.Allowed)

	// Bypass enabled but not the owner: falls through to the permission check.
	d = Evaluate(owner, Check{AllowOwner: true, OwnerID: "u7", Permission: "visits.read"})
	assert.False(t, d.Allowed)
}

func TestOwnerBypassIgnoredWithoutOwnerID(t *testing.T) {
	s := Subject{UserID: ""}
	d := Evaluate(s, Check{AllowOwner: true, Permission: "visits.read"})
	assert.False(t, d.Allowed, "empty owner id must never match an empty user id")
}

func TestSinglePermission(t *testing.T) {
	s := Subject{UserID: "u1", Permissions: []string{"visits.read"}}

	assert.True(t, Evaluate(s, Check{Permission: "visits.read"}).Allowed)

	d := Evaluate(s, Check{Permission: "visits.write"})
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "visits.write")
}

func TestMultiPermissionRequireAll(t *testing.T) {
	s := Subject{UserID: "u1", Permissions: []string{"a", "b"}}

	assert.True(t, Evaluate(s, Check{Permissions: []string{"a", "b"}, RequireAll: true}).Allowed)
	assert.False(t, Evaluate(s, Check{Permissions: []string{"a", "c"}, RequireAll: true}).Allowed)
}

func TestMultiPermissionAny(t *testing.T) {
	s := Subject{UserID: "u1", Permissions: []string{"b"}}

	assert.True(t, Evaluate(s, Check{Permissions: []string{"a", "b"}}).Allowed)
	assert.False(t, Evaluate(s, Check{Permissions: []string{"a", "c"}}).Allowed)
}

func TestDefaultAllow(t *testing.T) {
	d := Evaluate(Subject{UserID: "u1"}, Check{})
	assert.True(t, d.Allowed, "a check with no requirements allows any authenticated subject")
}
