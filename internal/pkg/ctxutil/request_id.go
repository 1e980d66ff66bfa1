package ctxutil

import "context"

// requestIDKeyType private type so the key never collides with other packages
type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

// WithRequestID stores the request id in ctx.
// The RequestID middleware calls it for every inbound request:
//
//	ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
//	c.Request = c.Request.WithContext(ctx)
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID reads the request id from ctx.
// Returns:
//   - string: the request id
//   - bool  : whether a non-empty id was present
func GetRequestID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(requestIDKey)
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
