package shared

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ownerKey contextKey = "owner_id"

// ContextWithOwner stores the authenticated owner ID in the context.
func ContextWithOwner(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

// OwnerFromContext retrieves the authenticated owner ID, if any.
func OwnerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerKey).(uuid.UUID)
	return id, ok
}
