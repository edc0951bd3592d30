package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/pkg/enums"
)

type contextKey string

const (
	ctxActorID        contextKey = "actor_id"
	ctxActorClass     contextKey = "actor_class"
	ctxActorName      contextKey = "actor_name"
	ctxRestaurantSlug contextKey = "restaurant_slug"
)

func ActorIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxActorID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func ActorClassFromContext(ctx context.Context) enums.ActorClass {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorClass).(enums.ActorClass); ok {
		return v
	}
	return ""
}

func ActorNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorName).(string); ok {
		return v
	}
	return ""
}

func RestaurantSlugFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRestaurantSlug).(string); ok {
		return v
	}
	return ""
}

// WithActor seeds the context the way the auth middleware does, for tests and
// internal callers.
func WithActor(ctx context.Context, id uuid.UUID, class enums.ActorClass, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxActorID, id)
	ctx = context.WithValue(ctx, ctxActorClass, class)
	return context.WithValue(ctx, ctxActorName, name)
}

// WithRestaurantSlug injects the merchant scope for restaurant tokens.
func WithRestaurantSlug(ctx context.Context, slug string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRestaurantSlug, slug)
}
