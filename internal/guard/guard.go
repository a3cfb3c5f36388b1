package guard

import "fmt"

// Decision is the result of one authorization evaluation. It is a value,
// not a side effect, so callers can log it, test it, or map it to an HTTP
// status as they see fit.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// Subject is the authenticated caller being checked.
type Subject struct {
	UserID      string
	Role        string
	Permissions []string
}

// Check describes what a guarded resource requires. Zero value allows
// everyone who is authenticated.
type Check struct {
	// AllowAdmin lets the admin role bypass every other check.
	AllowAdmin bool
	// AllowOwner lets the owner of the resource bypass permission checks.
	// OwnerID must be set by the caller for this to apply.
	AllowOwner bool
	OwnerID    string

	// Permission is a single required permission.
	Permission string
	// Permissions is a set of required permissions; RequireAll selects
	// AND vs OR semantics.
	Permissions []string
	RequireAll  bool
}

const adminRole = "admin"

// Evaluate runs the authorization checks in their significant order: admin
// bypass, then owner bypass, then the single-permission check, then the
// multi-permission check, then default allow. Bypasses short-circuit before
// any permission lookup. Decisions are never cached; permission sets can
// change between calls.
func Evaluate(s Subject, c Check) Decision {
	if c.AllowAdmin && s.Role == adminRole {
		return Allow()
	}
	if c.AllowOwner && c.OwnerID != "" && c.OwnerID == s.UserID {
		return Allow()
	}

	if c.Permission != "" && !hasPermission(s.Permissions, c.Permission) {
		return Deny(fmt.Sprintf("missing permission %q", c.Permission))
	}

	if len(c.Permissions) > 0 {
		if c.RequireAll {
			for _, p := range c.Permissions {
				if !hasPermission(s.Permissions, p) {
					return Deny(fmt.Sprintf("missing permission %q", p))
				}
			}
		} else {
			any := false
			for _, p := range c.Permissions {
				if hasPermission(s.Permissions, p) {
					any = true
					break
				}
			}
			if !any {
				return Deny("none of the required permissions are held")
			}
		}
	}

	return Allow()
}

func hasPermission(held []string, want string) bool {
	for _, p := range held {
		if p == want {
			return true
		}
	}
	return false
}
