package booking

import "context"

type contextKey string

const actorKey contextKey = "actor"

// NewContextWithActor records who is acting on bookings, for the audit log.
func NewContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(actorKey).(string)

	return actor, ok
}
