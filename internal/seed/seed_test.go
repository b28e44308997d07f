package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/app/repositories/memory"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/auth"
)

func TestCreateDefaultAdmin(t *testing.T) {
	ctx := context.Background()
	users, _, _ := memory.NewStore().Repositories()
	admin := Admin{Username: "admin", Email: "Admin@Campus.edu", Password: "admin123"}

	require.NoError(t, CreateDefaultAdmin(ctx, users, admin, zerolog.Nop()))

	u, err := users.GetByEmail(ctx, "admin@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, auth.CheckPassword(u.Password, "admin123"))

	// idempotent
	require.NoError(t, CreateDefaultAdmin(ctx, users, admin, zerolog.Nop()))
	taken, err := users.UsernameExists(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestCreateDefaultAdminSkips(t *testing.T) {
	ctx := context.Background()
	users, _, _ := memory.NewStore().Repositories()

	require.NoError(t, CreateDefaultAdmin(ctx, users, Admin{Username: "admin", Email: "admin@campus.edu"}, zerolog.Nop()))
	exists, err := users.EmailExists(ctx, "admin@campus.edu")
	require.NoError(t, err)
	assert.False(t, exists, "no password means no seeding")

	require.NoError(t, users.Create(ctx, &models.User{Username: "admin", Email: "someone@campus.edu", Password: "x", Role: domain.RoleStudent}))
	require.NoError(t, CreateDefaultAdmin(ctx, users, Admin{Username: "admin", Email: "admin@campus.edu", Password: "admin123"}, zerolog.Nop()))
	exists, err = users.EmailExists(ctx, "admin@campus.edu")
	require.NoError(t, err)
	assert.False(t, exists, "a taken username is left alone")
}
