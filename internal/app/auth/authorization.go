package auth

import (
	"context"

	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
)

// Principal identifies the caller of a single request
type Principal struct {
	UserID   int64
	Username string
	Role     domain.Role
}

// IsAdmin reports whether the principal carries the admin role
func (p Principal) IsAdmin() bool {
	return p.Role.IsAdmin()
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by the auth middleware
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID <= 0 {
		return Principal{}, false
	}
	return p, true
}

// RequireAuthenticated returns ErrUnauthenticated for a missing principal
func RequireAuthenticated(p *Principal) error {
	if p == nil || p.UserID <= 0 {
		return apperrors.ErrUnauthenticated
	}
	return nil
}

// RequireAdmin checks that p is an authenticated admin
func RequireAdmin(p *Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperrors.NewForbiddenError("admin role required")
	}
	return nil
}
