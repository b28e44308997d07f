package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/campusprint/internal/app/models"
	appRepos "github.com/yigit/campusprint/internal/app/repositories"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
	"github.com/yigit/campusprint/internal/pkg/auth"
)

// Admin describes the default administrator account
type Admin struct {
	Username string
	Email    string
	Password string
}

// CreateDefaultAdmin creates the administrator account if no user owns its
// email or username. An empty password disables seeding.
func CreateDefaultAdmin(ctx context.Context, userRepo appRepos.IUserRepository, admin Admin, lgr zerolog.Logger) error {
	if admin.Password == "" {
		lgr.Info().Msg("Admin password not configured, skipping default admin creation")
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(admin.Email))

	lgr.Info().Str("email", email).Msg("Checking/Creating default admin user...")

	existing, err := userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin() {
			lgr.Warn().Int64("userID", existing.ID).Msg("Admin email belongs to a non-admin account, leaving it unchanged")
		} else {
			lgr.Info().Msg("Admin user already exists, skipping creation")
		}
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return fmt.Errorf("error looking up admin user: %w", err)
	}

	owner, err := userRepo.GetByUsername(ctx, admin.Username)
	switch {
	case err == nil:
		lgr.Warn().Int64("userID", owner.ID).Str("username", admin.Username).Msg("Admin username already taken, skipping creation")
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return fmt.Errorf("error checking admin username: %w", err)
	}

	hashedPassword, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	user := &appModels.User{
		Username: admin.Username,
		Email:    email,
		Password: hashedPassword,
		Role:     domain.RoleAdmin,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		// another instance won the race
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) || errors.Is(err, apperrors.ErrUsernameAlreadyExists) {
			lgr.Info().Msg("Admin user created concurrently, skipping")
			return nil
		}
		return fmt.Errorf("error creating admin user: %w", err)
	}

	lgr.Info().Int64("adminID", user.ID).Msg("Default admin user created successfully")
	return nil
}
