package session

import (
	"context"

	"familytravel/internal/models"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	sessionIDKey
)

// WithIdentity returns a context carrying the request's identity and session id
func WithIdentity(ctx context.Context, sessionID string, identity models.Identity) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the identity stored by WithIdentity, or an anonymous one
func IdentityFrom(ctx context.Context) models.Identity {
	identity, _ := ctx.Value(identityKey).(models.Identity)
	return identity
}

// SessionIDFrom returns the session id stored by WithIdentity
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
