package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/campusprint/internal/app/controllers"
	"github.com/yigit/campusprint/internal/domain"
	"github.com/yigit/campusprint/internal/middleware"
)

// Controllers groups every handler mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	PrintRequest *controllers.PrintRequestController
	Admin        *controllers.AdminController
	Health       *controllers.HealthController
}

// SetupRouter configures all application routes. authLimit throttles the
// credential endpoints and may be nil.
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimit gin.HandlerFunc,
) {
	router.GET("/health", ctrl.Health.Health)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", ctrl.Health.Health)

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if authLimit == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{authLimit, h}
	}

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", limited(ctrl.Auth.Register)...)
		auth.POST("/login", limited(ctrl.Auth.Login)...)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
		auth.POST("/logout", authMiddleware.JWTAuth(), ctrl.Auth.Logout)
	}

	// Upload form is public, with the caller's history when signed in
	v1.GET("/upload", authMiddleware.OptionalAuth(), ctrl.PrintRequest.UploadForm)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/upload", ctrl.PrintRequest.Submit)
		authenticated.GET("/profile", ctrl.PrintRequest.Profile)
		authenticated.POST("/calculate-price", ctrl.PrintRequest.CalculatePrice)

		admin := authenticated.Group("")
		admin.Use(authMiddleware.RoleRequired(domain.RoleAdmin))
		{
			admin.GET("/admin", ctrl.Admin.Dashboard)
			admin.POST("/update-request-status", ctrl.Admin.UpdateStatus)
		}
	}

	// Legacy endpoints kept for existing frontends
	legacy := router.Group("/api")
	legacy.Use(authMiddleware.JWTAuth())
	{
		legacy.POST("/calculate_price", ctrl.PrintRequest.LegacyCalculatePrice)
		legacy.POST("/update_request_status", authMiddleware.RoleRequired(domain.RoleAdmin), ctrl.Admin.LegacyUpdateStatus)
	}
}
