package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/yigit/campusprint/internal/app/models/dto"
)

// ContextRequestID is the gin context key holding the request id
const ContextRequestID = "requestID"

// HeaderRequestID carries the request id in both directions
const HeaderRequestID = "X-Request-ID"

// RequestLogger assigns a request id and logs every completed request
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}
		if userID, ok := c.Get(ContextUserID); ok {
			event = event.Interface("userID", userID)
		}
		event.
			Str("requestID", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("clientIP", c.ClientIP()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	}
}

// Recovery turns a panic into a 500 response and logs it
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("requestID", c.GetString(ContextRequestID)).
					Str("path", c.Request.URL.Path).
					Str("method", c.Request.Method).
					Msg("Panic recovered")
				detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
			}
		}()
		c.Next()
	}
}

// SecurityHeaders sets the response headers browsers use to restrict the page
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "same-origin")
		c.Next()
	}
}

// CORS wraps an http.Handler with the cross-origin policy. No origins means any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", HeaderRequestID},
		ExposedHeaders:   []string{HeaderRequestID, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: allowedOrigins[0] != "*",
		MaxAge:           86400,
	})
	return c.Handler
}
