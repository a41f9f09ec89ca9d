package identity

import (
	"context"

	"github.com/google/uuid"
)

var actorCtxKey = &contextKey{"actor"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// Actor is the resolved caller of an administrative operation. It travels in
// the request context; there is no process-wide current user.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Ref adapts the actor for activity events.
func (a Actor) Ref() ActorRef {
	return ActorRef{ID: a.ID.String(), Type: "user"}
}

// SystemActor identifies non-interactive callers (seed scripts, repair jobs).
func SystemActor() Actor {
	return Actor{Role: RoleSuperAdmin}
}

// WithActor sets the Actor in the given context
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// ActorFromContext finds the actor from the context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey).(Actor)
	return actor, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}
