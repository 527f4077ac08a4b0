package httpserver

import (
	"context"

	"github.com/and161185/notekeeper/internal/model"
)

type ctxKey string

const (
	identityKey  ctxKey = "nk.identity"
	requestIDKey ctxKey = "nk.requestID"
)

// WithIdentity stores the authenticated identity in context.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx fetches the authenticated identity from context.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return model.Identity{}, false
	}
	id, ok := v.(model.Identity)
	return id, ok && id.UserID > 0
}

// RequestIDFromCtx returns the request id assigned by the RequestID middleware.
func RequestIDFromCtx(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
