package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusprint/internal/app/auth"
	"github.com/yigit/campusprint/internal/app/models/dto"
	"github.com/yigit/campusprint/internal/domain"
	jwtauth "github.com/yigit/campusprint/internal/pkg/auth"
)

// Gin context keys set by JWTAuth
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextRole     = "role"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *jwtauth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *jwtauth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// tokenFromRequest reads the access token from the Authorization header,
// with or without the Bearer prefix
func tokenFromRequest(c *gin.Context) (string, error) {
	header := strings.Trim(strings.TrimSpace(c.GetHeader("Authorization")), "\"'")
	return jwtauth.ExtractBearerToken(header)
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*jwtauth.Claims, *dto.ErrorDetail) {
	tokenString, err := tokenFromRequest(c)
	if err != nil {
		return nil, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("Authorization header missing")
	}

	claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed").WithDetails("Invalid token")
		if errors.Is(err, jwtauth.ErrExpiredToken) {
			detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Authentication failed").WithDetails("Token has expired")
		}
		return nil, detail
	}
	return claims, nil
}

// attach stores the principal on both the gin context and the request context
func attach(c *gin.Context, claims *jwtauth.Claims) {
	p := auth.Principal{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}
	c.Set(ContextUserID, p.UserID)
	c.Set(ContextUsername, p.Username)
	c.Set(ContextRole, p.Role)
	c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
}

// JWTAuth rejects requests without a valid access token
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, detail := m.authenticate(c)
		if detail != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}
		attach(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is present and never rejects
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, detail := m.authenticate(c); detail == nil {
			attach(c, claims)
		}
		c.Next()
	}
}

// RoleRequired middleware to check if user has required role, must run after JWTAuth
func (m *AuthMiddleware) RoleRequired(requiredRole domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.PrincipalFromContext(c.Request.Context())
		if !ok {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("User role not found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		if p.Role != requiredRole {
			detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
			return
		}

		c.Next()
	}
}

// PrincipalFrom returns the request principal, or nil for anonymous requests
func PrincipalFrom(c *gin.Context) *auth.Principal {
	p, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		return nil
	}
	return &p
}
