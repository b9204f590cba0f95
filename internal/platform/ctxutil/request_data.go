package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries the caller identity verified by the auth middleware.
// Identity is the opaque subject issued by the external identity provider.
type RequestData struct {
	Identity    string
	Email       string
	DisplayName string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	rd, ok := ctx.Value(requestDataKey{}).(*RequestData)
	if !ok {
		return nil
	}
	return rd
}

// Identity returns the authenticated identity, or "" for anonymous requests.
func Identity(ctx context.Context) string {
	rd := GetRequestData(ctx)
	if rd == nil {
		return ""
	}
	return rd.Identity
}
