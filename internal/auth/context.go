package auth

import (
	"context"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
)

type contextKey int

const actorKey contextKey = iota

// WithActor returns a copy of ctx carrying the authenticated actor.
func WithActor(ctx context.Context, actor acl.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the authenticated actor stored by WithActor.
func ActorFromContext(ctx context.Context) (acl.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(acl.Actor)
	return actor, ok
}

// Authorize returns ErrForbidden unless engine allows actor to perform action
// on resource.
func Authorize[R any](engine *acl.Engine[R], actor acl.Actor, action acl.Action, resource R) error {
	if !engine.IsAllowed(actor, action, resource) {
		return ErrForbidden
	}
	return nil
}
