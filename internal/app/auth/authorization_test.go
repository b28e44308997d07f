package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
)

func TestPrincipalRoundTrip(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: 3, Username: "carol", Role: domain.RoleStudent})
	p, ok := PrincipalFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "carol", p.Username)
}

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, RequireAdmin(nil), apperrors.ErrUnauthenticated)

	student := &Principal{UserID: 1, Username: "s", Role: domain.RoleStudent}
	assert.ErrorIs(t, RequireAdmin(student), apperrors.ErrPermissionDenied)
	assert.NoError(t, RequireAuthenticated(student))

	admin := &Principal{UserID: 2, Username: "a", Role: domain.RoleAdmin}
	assert.NoError(t, RequireAdmin(admin))
}
