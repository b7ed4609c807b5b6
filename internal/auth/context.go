package auth

import "context"

type userCtxKey struct{}

func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userCtxKey{}, username)
}

func UserFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(userCtxKey{}).(string)
	return username, ok && username != ""
}
