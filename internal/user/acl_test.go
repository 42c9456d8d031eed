package user

import (
	"testing"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
)

func TestNewACL(t *testing.T) {
	engine := NewACL()

	admin := acl.Actor{ID: "usr-admin", Username: "root", Roles: []acl.Role{acl.RoleAdmin}}
	alice := acl.Actor{ID: "usr-alice", Username: "alice", Roles: []acl.Role{acl.RoleUser}}
	nobody := acl.Actor{ID: "usr-none", Username: "none"}

	own := &Record{ID: "usr-alice"}
	other := &Record{ID: "usr-bob"}

	tests := []struct {
		name     string
		actor    acl.Actor
		action   acl.Action
		resource *Record
		want     bool
	}{
		{"admin deletes other", admin, acl.ActionDelete, other, true},
		{"admin creates", admin, acl.ActionCreate, nil, true},
		{"user reads other", alice, acl.ActionRead, other, true},
		{"user updates self", alice, acl.ActionUpdate, own, true},
		{"user updates other", alice, acl.ActionUpdate, other, false},
		{"user updates nil", alice, acl.ActionUpdate, nil, false},
		{"user deletes self", alice, acl.ActionDelete, own, false},
		{"user creates", alice, acl.ActionCreate, nil, false},
		{"no roles reads", nobody, acl.ActionRead, own, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.IsAllowed(tt.actor, tt.action, tt.resource); got != tt.want {
				t.Errorf("IsAllowed(%s, %s) = %v, want %v", tt.actor.Username, tt.action, got, tt.want)
			}
		})
	}
}
