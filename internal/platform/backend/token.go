package backend

import "context"

// TokenSource supplies the bearer token attached to backend calls. It is
// injected at construction; nothing in this package reads ambient storage.
type TokenSource interface {
	Token(ctx context.Context) string
}

// StaticToken is a TokenSource for a fixed service credential (possibly empty).
type StaticToken string

func (t StaticToken) Token(context.Context) string { return string(t) }

type bearerKey struct{}

// WithBearer overrides the token for calls made with the returned context,
// used to pass a caller's session token through per request.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFrom(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(bearerKey{}).(string)
	return tok, ok
}
