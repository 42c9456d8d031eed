package acl

import "slices"

// rule is a single registered grant.
type rule[R any] struct {
	role      Role
	actions   []Action
	predicate Predicate[R]
}

// grants reports whether the rule permits action on resource for actor.
// The role match is checked by the caller.
func (r rule[R]) grants(actor Actor, action Action, resource R) bool {
	if !slices.Contains(r.actions, ActionManage) && !slices.Contains(r.actions, action) {
		return false
	}
	if r.predicate == nil {
		return true
	}
	return r.predicate(resource, actor)
}

// Policy collects grants for one resource type. It is not safe for
// concurrent use; build it during startup and call Build once.
type Policy[R any] struct {
	rules []rule[R]
}

// NewPolicy returns an empty policy for resources of type R.
func NewPolicy[R any]() *Policy[R] {
	return &Policy[R]{}
}

// RegisterGrant adds a grant. A nil predicate means the grant applies to
// every resource whenever the role matches. The actions slice is copied.
func (p *Policy[R]) RegisterGrant(role Role, actions []Action, predicate Predicate[R]) *Policy[R] {
	p.rules = append(p.rules, rule[R]{
		role:      role,
		actions:   slices.Clone(actions),
		predicate: predicate,
	})
	return p
}

// Build freezes the registered grants into an Engine. Later calls to
// RegisterGrant on the policy do not affect engines already built.
func (p *Policy[R]) Build() *Engine[R] {
	return &Engine[R]{rules: slices.Clone(p.rules)}
}

// Engine answers authorisation queries against an immutable set of grants.
//
// Thread Safety:
//   - All methods are safe for concurrent use; the engine is never mutated.
type Engine[R any] struct {
	rules []rule[R]
}

// IsAllowed reports whether actor may perform action on resource.
//
// Pass the zero value of R for actions that are not resource-scoped.
// An actor holding no matching role is always denied.
func (e *Engine[R]) IsAllowed(actor Actor, action Action, resource R) bool {
	for _, r := range e.rules {
		if !actor.HasRole(r.role) {
			continue
		}
		if r.grants(actor, action, resource) {
			return true
		}
	}
	return false
}

// ForActor binds an actor so repeated checks read naturally at call sites.
func (e *Engine[R]) ForActor(actor Actor) Checker[R] {
	return Checker[R]{engine: e, actor: actor}
}

// Len returns the number of registered grants.
func (e *Engine[R]) Len() int {
	return len(e.rules)
}

// Checker is an Engine bound to a single actor.
type Checker[R any] struct {
	engine *Engine[R]
	actor  Actor
}

// Can reports whether the bound actor may perform action on resource.
func (c Checker[R]) Can(action Action, resource R) bool {
	return c.engine.IsAllowed(c.actor, action, resource)
}
