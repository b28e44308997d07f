package repositories

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/domain"
)

func TestListAllQueryFiltersAndPaginates(t *testing.T) {
	repo := NewPrintRequestRepository(nil)
	status := domain.StatusPrinting

	sql, args, err := repo.listAllQuery(ListParams{Status: &status, Page: 2, Size: 20}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM print_requests pr JOIN users u ON u.id = pr.user_id")
	assert.Contains(t, sql, "WHERE pr.status = $1")
	assert.Contains(t, sql, "ORDER BY pr.created_at DESC, pr.id DESC")
	assert.Contains(t, sql, "LIMIT 20 OFFSET 20")
	assert.Equal(t, []interface{}{"printing"}, args)
}

func TestListAllQueryWithoutFilter(t *testing.T) {
	sql, args, err := NewPrintRequestRepository(nil).listAllQuery(ListParams{}).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "LIMIT 20 OFFSET 0")
	assert.Empty(t, args)
}

func TestListByUserQueryNewestFirst(t *testing.T) {
	sql, args, err := NewPrintRequestRepository(nil).listByUserQuery(9).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE pr.user_id = $1 ORDER BY pr.created_at DESC")
	assert.Equal(t, []interface{}{int64(9)}, args)
}

func TestUpdateStatusQueryIsConditional(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sql, args, err := NewPrintRequestRepository(nil).
		updateStatusQuery(7, domain.StatusPending, domain.StatusPrinting, at).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE print_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4", sql)
	assert.Equal(t, []interface{}{"printing", at, int64(7), "pending"}, args)
}

func TestInsertQueryStoresBlankOptionalsAsNull(t *testing.T) {
	pr := &models.PrintRequest{
		UserID: 1, Filename: "abc_doc.pdf", OriginalFilename: "doc.pdf", FilePath: "/u/abc_doc.pdf",
		PrintType: domain.PrintTypeColor, Copies: 2, Pages: 3, TotalCost: 120, Status: domain.StatusPending,
	}
	sql, args, err := NewPrintRequestRepository(nil).insertQuery(pr).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO print_requests")
	assert.Contains(t, sql, "RETURNING id, created_at, updated_at")
	require.Len(t, args, 12)
	assert.Equal(t, "color", args[4])
	assert.Nil(t, mustValue(t, args[7]))
	assert.Nil(t, mustValue(t, args[8]))
	assert.Equal(t, "pending", args[11])
}

func TestStatsQueryAggregatesInOneStatement(t *testing.T) {
	sql, args, err := NewPrintRequestRepository(nil).statsQuery(4).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "COALESCE(SUM(total_cost), 0)")
	assert.Contains(t, sql, "FILTER (WHERE status = 'completed')")
	assert.Equal(t, []interface{}{int64(4)}, args)
}

func TestTokenCleanupQuery(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sql, args, err := NewTokenRepository(nil).cleanupQuery(now).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "DELETE FROM refresh_tokens WHERE")
	assert.Contains(t, sql, "expiry_date < $1 OR")
	require.Len(t, args, 3)
	assert.Equal(t, now, args[0])
	assert.Equal(t, now.Add(-30*24*time.Hour), args[2])
}

func mustValue(t *testing.T, v interface{}) interface{} {
	t.Helper()
	valuer, ok := v.(interface {
		Value() (driver.Value, error)
	})
	require.True(t, ok, "expected a driver.Valuer, got %T", v)
	out, err := valuer.Value()
	require.NoError(t, err)
	return out
}
