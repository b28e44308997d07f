package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/campusprint/internal/app/auth"
	"github.com/yigit/campusprint/internal/app/models"
	"github.com/yigit/campusprint/internal/app/models/dto"
	"github.com/yigit/campusprint/internal/app/repositories"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
	"github.com/yigit/campusprint/internal/pkg/auth"
	"github.com/yigit/campusprint/internal/pkg/validation"
)

// Landing pages returned with a successful login
const (
	RedirectAdmin   = "/admin"
	RedirectStudent = "/upload"
)

// AuthService handles registration, login and refresh token rotation
type AuthService struct {
	userRepo   repositories.IUserRepository
	tokenRepo  repositories.ITokenRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
	hashCost   int
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		logger:     logger,
		hashCost:   auth.BcryptCost,
		now:        time.Now,
	}
}

// WithHashCost overrides the bcrypt cost used for new passwords
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateRegistration checks the request in the order a user would fix it
func validateRegistration(req *dto.RegisterRequest) error {
	if req.Username == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return apperrors.NewValidationError(nil, "All fields are required")
	}
	if req.Password != req.ConfirmPassword {
		return apperrors.NewValidationError(apperrors.ErrPasswordMismatch, "Passwords do not match")
	}
	if !validation.ValidUsername(req.Username) {
		return apperrors.NewValidationError(nil,
			fmt.Sprintf("Username must be %d-%d characters of letters, digits, '.', '_' or '-'",
				validation.UsernameMinLength, validation.UsernameMaxLength))
	}
	if !validation.ValidEmail(req.Email) {
		return apperrors.NewValidationError(nil, "Invalid email format")
	}
	if !validation.ValidPassword(req.Password) {
		return apperrors.NewValidationError(nil,
			fmt.Sprintf("Password must be at least %d characters long", validation.PasswordMinLength))
	}
	return nil
}

// Register creates a student account
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)

	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	exists, err = s.userRepo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error checking if username exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrUsernameAlreadyExists
	}

	hashed, err := auth.HashPasswordWithCost(req.Password, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Role:     domain.RoleStudent,
	}
	// The unique constraints still catch a concurrent registration that passed the pre-checks
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("User registered")
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// VerifyCredential reports whether plaintext matches the user's stored hash
func (s *AuthService) VerifyCredential(user *models.User, plaintext string) bool {
	return user != nil && auth.CheckPassword(user.Password, plaintext)
}

// Login authenticates by email and password
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError(nil, "Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !s.VerifyCredential(user, req.Password) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		// last_login_at is best effort
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record last login")
	}

	token, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:      *token,
		User:       dto.NewUserResponse(user),
		RedirectTo: RedirectFor(user.Role),
	}, nil
}

// RedirectFor returns the landing page for a role
func RedirectFor(role domain.Role) string {
	if role.IsAdmin() {
		return RedirectAdmin
	}
	return RedirectStudent
}

// RefreshToken exchanges a refresh token for a new token pair, revoking the old one
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	current, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error loading token owner: %w", err)
	}

	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if _, err := s.tokenRepo.RotateToken(ctx, refreshToken, pair.RefreshToken, pair.RefreshExpiry); err != nil {
		return nil, err
	}

	return tokenResponse(pair), nil
}

// Logout revokes one of the caller's refresh tokens, or all of them when all
// is set. Access tokens expire on their own.
func (s *AuthService) Logout(ctx context.Context, principal *appauth.Principal, refreshToken string, all bool) error {
	if err := appauth.RequireAuthenticated(principal); err != nil {
		return err
	}

	if all {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, principal.UserID); err != nil {
			return err
		}
		s.logger.Info().Int64("userID", principal.UserID).Msg("All refresh tokens revoked")
		return nil
	}

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return apperrors.ErrTokenInvalid
	}
	current, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if current.UserID != principal.UserID {
		return apperrors.NewForbiddenError("refresh token belongs to another user")
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", principal.UserID).Msg("Refresh token revoked")
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return tokenResponse(pair), nil
}

func tokenResponse(pair *auth.TokenPair) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             pair.ExpiresIn,
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: pair.RefreshExpiresIn,
	}
}
