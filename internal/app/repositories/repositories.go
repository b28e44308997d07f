package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/domain"
)

// IUserRepository defines the account directory operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
}

// ListParams selects a page of print requests, optionally filtered by status
type ListParams struct {
	Status *domain.Status
	Page   int
	Size   int
}

// IPrintRequestRepository defines the request store operations
type IPrintRequestRepository interface {
	Create(ctx context.Context, pr *models.PrintRequest) error
	GetByID(ctx context.Context, id int64) (*models.PrintRequest, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.PrintRequest, error)
	ListAll(ctx context.Context, params ListParams) ([]*models.PrintRequest, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.Status) (int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.Status, at time.Time) error
	StatsByUser(ctx context.Context, userID int64) (*models.PrintRequestStats, error)
}

// ITokenRepository defines refresh token persistence
type ITokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RotateToken(ctx context.Context, oldToken, newToken string, expiryDate time.Time) (int64, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         IUserRepository
	PrintRequestRepository IPrintRequestRepository
	TokenRepository        ITokenRepository
}

// NewRepositories initializes the postgres repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		PrintRequestRepository: NewPrintRequestRepository(db),
		TokenRepository:        NewTokenRepository(db),
	}
}
