package audit

import "github.com/nerrad567/gray-logic-authcore/internal/acl"

// NewACL builds the access policy for audit events: ADMIN may do anything,
// USER may read only events about themselves.
func NewACL() *acl.Engine[*Event] {
	return acl.NewPolicy[*Event]().
		RegisterGrant(acl.RoleAdmin, []acl.Action{acl.ActionManage}, nil).
		RegisterGrant(acl.RoleUser, []acl.Action{acl.ActionRead}, isOwnEvent).
		Build()
}

func isOwnEvent(e *Event, actor acl.Actor) bool {
	return e != nil && e.ActorID != "" && e.ActorID == actor.ID
}
