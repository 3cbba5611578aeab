package auth

import (
	"context"

	"logistics-service/internal/domain"
)

type userKey struct{}

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey{}).(*domain.User)
	return u
}

type tokenKey struct{}

// WithTokenAuth marks ctx as authenticated by a bearer token rather than a
// session cookie. Token requests are exempt from CSRF checks.
func WithTokenAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, tokenKey{}, true)
}

// TokenAuthenticated reports whether WithTokenAuth marked ctx.
func TokenAuthenticated(ctx context.Context) bool {
	ok, _ := ctx.Value(tokenKey{}).(bool)
	return ok
}
