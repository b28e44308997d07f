package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/app/repositories"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
)

func seedUser(t *testing.T, users *UserRepository, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@campus.edu", Password: "x"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestUserUniqueness(t *testing.T) {
	users, _, _ := NewStore().Repositories()
	seedUser(t, users, "dana")

	err := users.Create(context.Background(), &models.User{Username: "other", Email: "dana@campus.edu"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	err = users.Create(context.Background(), &models.User{Username: "dana", Email: "new@campus.edu"})
	assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)

	_, err = users.GetByEmail(context.Background(), "nobody@campus.edu")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUpdateStatusCompareAndSet(t *testing.T) {
	ctx := context.Background()
	users, requests, _ := NewStore().Repositories()
	u := seedUser(t, users, "erin")

	pr := &models.PrintRequest{UserID: u.ID, PrintType: domain.PrintTypeBW, Copies: 1, Pages: 1, TotalCost: 5}
	require.NoError(t, requests.Create(ctx, pr))
	assert.Equal(t, "erin", pr.Username)

	at := time.Now().UTC()
	require.NoError(t, requests.UpdateStatus(ctx, pr.ID, domain.StatusPending, domain.StatusPrinting, at))

	err := requests.UpdateStatus(ctx, pr.ID, domain.StatusPending, domain.StatusCompleted, at)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	err = requests.UpdateStatus(ctx, 999, domain.StatusPending, domain.StatusPrinting, at)
	assert.ErrorIs(t, err, apperrors.ErrPrintRequestNotFound)
}

func TestListAllPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	users, requests, _ := NewStore().Repositories()
	u := seedUser(t, users, "finn")

	for i := 0; i < 5; i++ {
		require.NoError(t, requests.Create(ctx, &models.PrintRequest{UserID: u.ID, PrintType: domain.PrintTypeBW, Copies: 1, Pages: 1}))
	}

	page, err := requests.ListAll(ctx, repositories.ListParams{Page: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(5), page[0].ID)
	assert.Equal(t, int64(4), page[1].ID)

	last, err := requests.ListAll(ctx, repositories.ListParams{Page: 3, Size: 2})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, int64(1), last[0].ID)

	beyond, err := requests.ListAll(ctx, repositories.ListParams{Page: 9, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestRotateTokenRevokesOld(t *testing.T) {
	ctx := context.Background()
	_, _, tokens := NewStore().Repositories()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, tokens.CreateToken(ctx, "old", 1, exp))
	userID, err := tokens.RotateToken(ctx, "old", "new", exp)
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)

	_, err = tokens.GetToken(ctx, "old")
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	_, err = tokens.GetToken(ctx, "new")
	assert.NoError(t, err)

	_, err = tokens.RotateToken(ctx, "old", "newer", exp)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestExpiredTokenIsRejectedAndCleaned(t *testing.T) {
	ctx := context.Background()
	_, _, tokens := NewStore().Repositories()

	require.NoError(t, tokens.CreateToken(ctx, "stale", 1, time.Now().Add(-time.Minute)))
	_, err := tokens.GetToken(ctx, "stale")
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	n, err := tokens.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
