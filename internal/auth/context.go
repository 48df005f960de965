package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type contextKey string

const identityKey contextKey = "auth.identity"

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the caller from ctx.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// CurrentIdentity extracts the caller from a gin request.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	if v, ok := c.Get(string(identityKey)); ok {
		if id, ok := v.(Identity); ok {
			return id, true
		}
	}
	return IdentityFromContext(c.Request.Context())
}
