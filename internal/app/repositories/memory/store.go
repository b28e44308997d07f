// Package memory provides in-process implementations of the repository
// interfaces. It backs the "memory" database driver and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/app/repositories"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
	"github.com/yigit/campusprint/internal/pkg/helpers"
)

// Store holds every table behind one lock
type Store struct {
	mu       sync.RWMutex
	users    map[int64]*models.User
	requests map[int64]*models.PrintRequest
	tokens   map[string]*models.RefreshToken
	nextUser int64
	nextReq  int64
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:    make(map[int64]*models.User),
		requests: make(map[int64]*models.PrintRequest),
		tokens:   make(map[string]*models.RefreshToken),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Repositories returns all repositories backed by s
func (s *Store) Repositories() (*UserRepository, *PrintRequestRepository, *TokenRepository) {
	return &UserRepository{s}, &PrintRequestRepository{s}, &TokenRepository{s}
}

// UserRepository implements repositories.IUserRepository
type UserRepository struct{ s *Store }

var _ repositories.IUserRepository = (*UserRepository)(nil)

// Create inserts a user, enforcing unique email and username
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if u.Username == user.Username {
			return apperrors.ErrUsernameAlreadyExists
		}
	}
	if user.Role == "" {
		user.Role = domain.RoleStudent
	}

	r.s.nextUser++
	now := r.s.now()
	user.ID = r.s.nextUser
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

// UsernameExists checks if a username is already taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

// UpdateLastLogin records a successful login
func (r *UserRepository) UpdateLastLogin(_ context.Context, userID int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[userID]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

// PrintRequestRepository implements repositories.IPrintRequestRepository
type PrintRequestRepository struct{ s *Store }

var _ repositories.IPrintRequestRepository = (*PrintRequestRepository)(nil)

// Create inserts a pending request
func (r *PrintRequestRepository) Create(_ context.Context, pr *models.PrintRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner, ok := r.s.users[pr.UserID]
	if !ok {
		return apperrors.ErrUserNotFound
	}

	r.s.nextReq++
	now := r.s.now()
	pr.ID = r.s.nextReq
	pr.Status = domain.StatusPending
	pr.CreatedAt, pr.UpdatedAt = now, now
	pr.Username = owner.Username
	cp := *pr
	r.s.requests[pr.ID] = &cp
	return nil
}

// GetByID retrieves a request by ID
func (r *PrintRequestRepository) GetByID(_ context.Context, id int64) (*models.PrintRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	pr, ok := r.s.requests[id]
	if !ok {
		return nil, apperrors.ErrPrintRequestNotFound
	}
	cp := *pr
	return &cp, nil
}

func (r *PrintRequestRepository) sorted(match func(*models.PrintRequest) bool) []*models.PrintRequest {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.PrintRequest, 0)
	for _, pr := range r.s.requests {
		if match(pr) {
			cp := *pr
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// ListByUser returns a user's requests, newest first
func (r *PrintRequestRepository) ListByUser(_ context.Context, userID int64) ([]*models.PrintRequest, error) {
	return r.sorted(func(pr *models.PrintRequest) bool { return pr.UserID == userID }), nil
}

// ListAll returns one page of requests, newest first
func (r *PrintRequestRepository) ListAll(_ context.Context, params repositories.ListParams) ([]*models.PrintRequest, error) {
	all := r.sorted(func(pr *models.PrintRequest) bool {
		return params.Status == nil || pr.Status == *params.Status
	})
	offset, limit := helpers.CalculateOffsetLimit(params.Page, params.Size)
	if offset >= uint64(len(all)) {
		return []*models.PrintRequest{}, nil
	}
	end := offset + limit
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}
	return all[offset:end], nil
}

// CountAll counts every request
func (r *PrintRequestRepository) CountAll(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.requests)), nil
}

// CountByStatus counts requests in one status
func (r *PrintRequestRepository) CountByStatus(_ context.Context, status domain.Status) (int64, error) {
	return int64(len(r.sorted(func(pr *models.PrintRequest) bool { return pr.Status == status }))), nil
}

// UpdateStatus applies the change only while the stored status still equals from
func (r *PrintRequestRepository) UpdateStatus(_ context.Context, id int64, from, to domain.Status, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pr, ok := r.s.requests[id]
	if !ok {
		return apperrors.ErrPrintRequestNotFound
	}
	if pr.Status != from {
		return apperrors.NewConflictError("print request status changed, reload and retry")
	}
	pr.Status = to
	pr.UpdatedAt = at
	return nil
}

// StatsByUser aggregates a user's requests
func (r *PrintRequestRepository) StatsByUser(ctx context.Context, userID int64) (*models.PrintRequestStats, error) {
	items, _ := r.ListByUser(ctx, userID)
	stats := &models.PrintRequestStats{TotalRequests: int64(len(items))}
	for _, pr := range items {
		stats.TotalSpent += pr.TotalCost
		switch pr.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusPrinting:
			stats.Printing++
		case domain.StatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

// TokenRepository implements repositories.ITokenRepository
type TokenRepository struct{ s *Store }

var _ repositories.ITokenRepository = (*TokenRepository)(nil)

// CreateToken stores a refresh token
func (r *TokenRepository) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insertLocked(token, userID, expiryDate)
}

func (r *TokenRepository) insertLocked(token string, userID int64, expiryDate time.Time) error {
	if _, dup := r.s.tokens[token]; dup {
		return apperrors.ErrTokenInvalid
	}
	r.s.tokens[token] = &models.RefreshToken{
		Token:      token,
		UserID:     userID,
		ExpiryDate: expiryDate,
		CreatedAt:  r.s.now(),
	}
	return nil
}

func (r *TokenRepository) usableLocked(token string) (*models.RefreshToken, error) {
	rt, ok := r.s.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	if rt.IsRevoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if !rt.Valid(r.s.now()) {
		return nil, apperrors.ErrTokenExpired
	}
	return rt, nil
}

// GetToken returns a usable token
func (r *TokenRepository) GetToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rt, err := r.usableLocked(token)
	if err != nil {
		return nil, err
	}
	cp := *rt
	return &cp, nil
}

// RotateToken revokes oldToken and stores newToken under one lock
func (r *TokenRepository) RotateToken(_ context.Context, oldToken, newToken string, expiryDate time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rt, err := r.usableLocked(oldToken)
	if err != nil {
		return 0, err
	}
	if err := r.insertLocked(newToken, rt.UserID, expiryDate); err != nil {
		return 0, err
	}
	rt.IsRevoked = true
	return rt.UserID, nil
}

// RevokeToken revokes a token
func (r *TokenRepository) RevokeToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rt, ok := r.s.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	rt.IsRevoked = true
	return nil
}

// RevokeAllUserTokens revokes every token of a user
func (r *TokenRepository) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rt := range r.s.tokens {
		if rt.UserID == userID {
			rt.IsRevoked = true
		}
	}
	return nil
}

// CleanupExpiredTokens drops expired and old revoked tokens
func (r *TokenRepository) CleanupExpiredTokens(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	var deleted int64
	for key, rt := range r.s.tokens {
		if rt.ExpiryDate.Before(now) || (rt.IsRevoked && rt.CreatedAt.Before(now.Add(-30*24*time.Hour))) {
			delete(r.s.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}
