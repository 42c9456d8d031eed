package user

import "github.com/nerrad567/gray-logic-authcore/internal/acl"

// NewACL builds the access policy for user accounts.
//
//   - ADMIN may do anything.
//   - USER may read any account.
//   - USER may update only their own account.
func NewACL() *acl.Engine[*Record] {
	return acl.NewPolicy[*Record]().
		RegisterGrant(acl.RoleAdmin, []acl.Action{acl.ActionManage}, nil).
		RegisterGrant(acl.RoleUser, []acl.Action{acl.ActionRead}, nil).
		RegisterGrant(acl.RoleUser, []acl.Action{acl.ActionUpdate}, isUserItself).
		Build()
}

func isUserItself(rec *Record, actor acl.Actor) bool {
	return rec != nil && rec.ID == actor.ID
}
