package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
	"github.com/yigit/campusprint/internal/pkg/helpers"
	"github.com/yigit/campusprint/internal/pkg/logger"
)

var printRequestColumns = []string{
	"pr.id", "pr.user_id", "pr.filename", "pr.original_filename", "pr.file_path",
	"pr.print_type", "pr.copies", "pr.double_sided", "pr.binding", "pr.notes",
	"pr.pages", "pr.total_cost", "pr.status", "pr.created_at", "pr.updated_at", "u.username",
}

// PrintRequestRepository handles print request database operations
type PrintRequestRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPrintRequestRepository creates a new PrintRequestRepository
func NewPrintRequestRepository(db *pgxpool.Pool) *PrintRequestRepository {
	return &PrintRequestRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new request in pending status
func (r *PrintRequestRepository) Create(ctx context.Context, pr *models.PrintRequest) error {
	pr.Status = domain.StatusPending

	sql, args, err := r.insertQuery(pr).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create print request SQL")
		return fmt.Errorf("failed to build create print request query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&pr.ID, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("userID", pr.UserID).Msg("Error executing create print request query")
		return fmt.Errorf("error creating print request: %w", err)
	}
	return nil
}

func (r *PrintRequestRepository) insertQuery(pr *models.PrintRequest) squirrel.InsertBuilder {
	return r.sb.Insert("print_requests").
		Columns("user_id", "filename", "original_filename", "file_path", "print_type",
			"copies", "double_sided", "binding", "notes", "pages", "total_cost", "status").
		Values(pr.UserID, pr.Filename, pr.OriginalFilename, pr.FilePath, string(pr.PrintType),
			pr.Copies, pr.DoubleSided, helpers.GetContentNullString(pr.Binding), helpers.GetContentNullString(pr.Notes),
			pr.Pages, pr.TotalCost, string(pr.Status)).
		Suffix("RETURNING id, created_at, updated_at")
}

func (r *PrintRequestRepository) selectQuery() squirrel.SelectBuilder {
	return r.sb.Select(printRequestColumns...).
		From("print_requests pr").
		Join("users u ON u.id = pr.user_id")
}

// GetByID retrieves a print request by ID
func (r *PrintRequestRepository) GetByID(ctx context.Context, id int64) (*models.PrintRequest, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"pr.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get print request SQL")
		return nil, fmt.Errorf("failed to build get print request query: %w", err)
	}

	pr, err := scanPrintRequest(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPrintRequestNotFound
		}
		logger.Error().Err(err).Int64("requestID", id).Msg("Error scanning print request row")
		return nil, fmt.Errorf("error retrieving print request: %w", err)
	}
	return pr, nil
}

// ListByUser returns every request of a user, newest first
func (r *PrintRequestRepository) ListByUser(ctx context.Context, userID int64) ([]*models.PrintRequest, error) {
	return r.list(ctx, r.listByUserQuery(userID))
}

func (r *PrintRequestRepository) listByUserQuery(userID int64) squirrel.SelectBuilder {
	return r.selectQuery().
		Where(squirrel.Eq{"pr.user_id": userID}).
		OrderBy("pr.created_at DESC", "pr.id DESC")
}

// ListAll returns one page of all requests, newest first
func (r *PrintRequestRepository) ListAll(ctx context.Context, params ListParams) ([]*models.PrintRequest, error) {
	return r.list(ctx, r.listAllQuery(params))
}

func (r *PrintRequestRepository) listAllQuery(params ListParams) squirrel.SelectBuilder {
	offset, limit := helpers.CalculateOffsetLimit(params.Page, params.Size)
	q := r.selectQuery()
	if params.Status != nil {
		q = q.Where(squirrel.Eq{"pr.status": string(*params.Status)})
	}
	return q.OrderBy("pr.created_at DESC", "pr.id DESC").Limit(limit).Offset(offset)
}

func (r *PrintRequestRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.PrintRequest, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list print requests SQL")
		return nil, fmt.Errorf("failed to build list print requests query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list print requests query")
		return nil, fmt.Errorf("error listing print requests: %w", err)
	}
	defer rows.Close()

	items := make([]*models.PrintRequest, 0)
	for rows.Next() {
		pr, err := scanPrintRequest(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning print request row")
			return nil, fmt.Errorf("error scanning print request: %w", err)
		}
		items = append(items, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating print requests: %w", err)
	}
	return items, nil
}

// CountAll counts every request
func (r *PrintRequestRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, nil)
}

// CountByStatus counts requests in one status
func (r *PrintRequestRepository) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	return r.count(ctx, squirrel.Eq{"status": string(status)})
}

func (r *PrintRequestRepository) count(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	q := r.sb.Select("COUNT(*)").From("print_requests")
	if where != nil {
		q = q.Where(where)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Msg("Error counting print requests")
		return 0, fmt.Errorf("error counting print requests: %w", err)
	}
	return n, nil
}

// UpdateStatus moves a request from one status to another in a single conditional update.
// Zero affected rows means the request is gone or its status changed concurrently.
func (r *PrintRequestRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.Status, at time.Time) error {
	sql, args, err := r.updateStatusQuery(id, from, to, at).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update status SQL")
		return fmt.Errorf("failed to build update status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("requestID", id).Msg("Error executing update status query")
		return fmt.Errorf("error updating print request status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	logger.Warn().Int64("requestID", id).Str("expected", string(from)).Msg("Print request status changed concurrently")
	return apperrors.NewConflictError("print request status changed, reload and retry")
}

func (r *PrintRequestRepository) updateStatusQuery(id int64, from, to domain.Status, at time.Time) squirrel.UpdateBuilder {
	return r.sb.Update("print_requests").
		Set("status", string(to)).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": string(from)})
}

// StatsByUser aggregates a user's requests in one query
func (r *PrintRequestRepository) StatsByUser(ctx context.Context, userID int64) (*models.PrintRequestStats, error) {
	sql, args, err := r.statsQuery(userID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}

	stats := &models.PrintRequestStats{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&stats.TotalRequests, &stats.TotalSpent, &stats.Pending, &stats.Printing, &stats.Completed)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error computing print request stats")
		return nil, fmt.Errorf("error computing print request stats: %w", err)
	}
	return stats, nil
}

func (r *PrintRequestRepository) statsQuery(userID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"COUNT(*)",
		"COALESCE(SUM(total_cost), 0)",
		"COUNT(*) FILTER (WHERE status = 'pending')",
		"COUNT(*) FILTER (WHERE status = 'printing')",
		"COUNT(*) FILTER (WHERE status = 'completed')",
	).From("print_requests").Where(squirrel.Eq{"user_id": userID})
}

func scanPrintRequest(row pgx.Row) (*models.PrintRequest, error) {
	pr := &models.PrintRequest{}
	var printType, status string
	var binding, notes sql.NullString

	err := row.Scan(
		&pr.ID, &pr.UserID, &pr.Filename, &pr.OriginalFilename, &pr.FilePath,
		&printType, &pr.Copies, &pr.DoubleSided, &binding, &notes,
		&pr.Pages, &pr.TotalCost, &status, &pr.CreatedAt, &pr.UpdatedAt, &pr.Username)
	if err != nil {
		return nil, err
	}

	pr.PrintType = domain.PrintType(printType)
	pr.Status = domain.Status(status)
	pr.Binding = helpers.StringFromNull(binding)
	pr.Notes = helpers.StringFromNull(notes)
	return pr, nil
}
