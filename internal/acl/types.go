package acl

import "strings"

// Role represents an authorisation tier attached to an actor.
type Role string

const (
	// RoleAdmin has full control over every resource.
	RoleAdmin Role = "ADMIN"

	// RoleUser is a self-registered account. Registration always assigns
	// this role and nothing else.
	RoleUser Role = "USER"
)

// ValidRoles is the set of roles a user record may carry.
var ValidRoles = []Role{RoleAdmin, RoleUser}

// IsValidRole returns true if r is a known role.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseRoles splits a comma-separated role list, dropping empty entries.
func ParseRoles(s string) []Role {
	if s == "" {
		return []Role{}
	}
	parts := strings.Split(s, ",")
	roles := make([]Role, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		roles = append(roles, Role(p))
	}
	return roles
}

// JoinRoles is the inverse of ParseRoles.
func JoinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// Action is an operation subject to authorisation.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// ActionManage is a wildcard: a grant carrying it permits every action.
	ActionManage Action = "manage"
)

// Actor is the caller identity as seen by the policy engine.
// It is a read-only projection of a user record and never carries credentials.
type Actor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Roles    []Role `json:"roles"`
}

// HasRole returns true if the actor holds role r.
func (a Actor) HasRole(r Role) bool {
	for _, v := range a.Roles {
		if v == r {
			return true
		}
	}
	return false
}

// Predicate narrows a grant to resources for which it returns true.
type Predicate[R any] func(resource R, actor Actor) bool
