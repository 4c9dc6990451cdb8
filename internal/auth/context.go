package auth

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// UserID returns the caller's id, or uuid.Nil for an anonymous context.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := FromContext(ctx)
	return id.UserID
}
