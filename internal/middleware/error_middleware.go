package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusprint/internal/app/models/dto"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
	"github.com/yigit/campusprint/internal/pkg/logger"
)

// statusFor maps an error to its HTTP status and error code
func statusFor(err error) (int, dto.ErrorCode, string) {
	switch {
	case errors.Is(err, apperrors.ErrEmailAlreadyExists),
		errors.Is(err, apperrors.ErrUsernameAlreadyExists),
		errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeConflict, "Conflict"
	case errors.Is(err, apperrors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, dto.ErrorCodeFileTooLarge, "File too large"
	case errors.Is(err, apperrors.ErrInvalidFileType):
		return http.StatusBadRequest, dto.ErrorCodeInvalidFileType, "Invalid file type"
	case apperrors.IsValidation(err):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"
	case errors.Is(err, apperrors.ErrPrintRequestNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"
	case errors.Is(err, apperrors.ErrTokenInvalid),
		errors.Is(err, apperrors.ErrTokenRevoked),
		errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
	}
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, code, message := statusFor(err)

	detail := dto.NewErrorDetail(code, message)
	if status != http.StatusInternalServerError {
		detail = detail.WithDetails(detailsFor(err))
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("requestID", c.GetString(ContextRequestID)).
			Msg("Unhandled error")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// detailsFor returns the client-facing details of a non-internal error
func detailsFor(err error) interface{} {
	var ce *apperrors.CustomError
	if !errors.As(err, &ce) || ce.Message == "" {
		return err.Error()
	}
	if len(ce.Details) == 0 {
		return ce.Message
	}

	details := map[string]interface{}{"message": ce.Message}
	for k, v := range ce.Details {
		details[k] = v
	}
	return details
}
