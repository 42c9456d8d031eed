// Package acl provides the role-based access control engine for authcore.
//
// A policy is a list of grants: (role, actions, optional predicate). Grants
// are additive and there is no deny rule, so a decision is the logical OR of
// every grant whose role the actor holds. ActionManage on a grant implies
// every other action for that grant's scope.
//
// Policies are assembled once at startup with a Policy builder and frozen
// into an Engine. The Engine has no mutators, so it can be shared by every
// request goroutine without locking:
//
//	engine := acl.NewPolicy[*user.Record]().
//		RegisterGrant(acl.RoleAdmin, []acl.Action{acl.ActionManage}, nil).
//		RegisterGrant(acl.RoleUser, []acl.Action{acl.ActionRead}, nil).
//		Build()
//
//	if !engine.IsAllowed(actor, acl.ActionUpdate, record) { ... }
//
// Predicates are trusted code supplied at registration time. The engine does
// not recover from a predicate panic.
package acl
