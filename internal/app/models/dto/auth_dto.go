package dto

import "github.com/yigit/campusprint/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RegisterRequest represents a student registration
type RegisterRequest struct {
	Username        string `json:"username" form:"username" binding:"required,min=3,max=64"`
	Email           string `json:"email" form:"email" binding:"required,email,max=120"`
	Password        string `json:"password" form:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" form:"confirm_password" binding:"required"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest carries the refresh token to revoke. All revokes every session of the caller.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required_without=All"`
	All          bool   `json:"all"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthResponse represents successful authentication
type AuthResponse struct {
	Token      TokenResponse `json:"token"`
	User       UserResponse  `json:"user"`
	RedirectTo string        `json:"redirectTo" example:"/upload"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message" example:"Registration successful! You can now login."`
}

// NewUserResponse converts a user model into its public shape
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}
