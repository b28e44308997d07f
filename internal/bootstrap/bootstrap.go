package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/campusprint/internal/app/controllers"
	appMigrations "github.com/yigit/campusprint/internal/app/migrations"
	"github.com/yigit/campusprint/internal/app/models/dto"
	appRepos "github.com/yigit/campusprint/internal/app/repositories"
	"github.com/yigit/campusprint/internal/app/repositories/memory"
	appRoutes "github.com/yigit/campusprint/internal/app/routes"
	appServices "github.com/yigit/campusprint/internal/app/services"
	"github.com/yigit/campusprint/internal/config"
	"github.com/yigit/campusprint/internal/db"
	appMiddleware "github.com/yigit/campusprint/internal/middleware"
	pkgAuth "github.com/yigit/campusprint/internal/pkg/auth"
	"github.com/yigit/campusprint/internal/pkg/filestorage"
	"github.com/yigit/campusprint/internal/pkg/helpers"
	"github.com/yigit/campusprint/internal/pkg/logger"
	"github.com/yigit/campusprint/internal/seed"
)

// Database drivers accepted in database.driver
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Database       *db.PostgresDB // nil for the memory driver
	Redis          *redis.Client  // nil when redis is disabled or unreachable
	FileStorage    *filestorage.LocalStorage
	JWTService     *pkgAuth.JWTService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// Close releases the database pool and the redis client
func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Error closing redis client")
		}
	}
	if d.Database != nil {
		d.Database.Close()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the store selected by database.driver. For postgres it
// also applies pending migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, *db.PostgresDB, error) {
	switch strings.ToLower(cfg.Database.Driver) {
	case DriverMemory:
		lgr.Warn().Msg("Using in-memory store, data is lost on restart")
		users, requests, tokens := memory.NewStore().Repositories()
		return &appRepos.Repositories{
			UserRepository:         users,
			PrintRequestRepository: requests,
			TokenRepository:        tokens,
		}, nil, nil

	case DriverPostgres:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, nil, err
		}

		migrationsDir := config.GetEnv("MIGRATIONS_DIR", "migrations")
		if _, err := os.Stat(migrationsDir); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database.Pool, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		return appRepos.NewRepositories(database.Pool), database, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// SetupRedis connects to redis when enabled. A failed ping disables it so the
// rate limiter falls back to process memory.
func SetupRedis(cfg *config.Config, lgr zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, using in-process rate limiting")
		_ = client.Close()
		return nil
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connected")
	return client
}

// SeedData creates the default admin and drops stale refresh tokens
func SeedData(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	admin := seed.Admin{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}
	if err := seed.CreateDefaultAdmin(ctx, repos.UserRepository, admin, lgr); err != nil {
		return err
	}

	removed, err := repos.TokenRepository.CleanupExpiredTokens(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		lgr.Info().Int64("removed", removed).Msg("Expired refresh tokens cleaned up")
	}
	return nil
}

// BuildDependencies initializes services and controllers on top of repos.
// database and rdb may be nil.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, database *db.PostgresDB, rdb *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Database: database, Redis: rdb, Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.MaxUploadBytes)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	authService := appServices.NewAuthService(repos.UserRepository, repos.TokenRepository, deps.JWTService, lgr)
	printService := appServices.NewPrintRequestService(repos.PrintRequestRepository, deps.FileStorage, lgr)
	adminService := appServices.NewAdminService(repos.PrintRequestRepository, lgr)

	var pinger appControllers.Pinger
	if deps.Database != nil {
		pinger = deps.Database
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(authService, lgr),
		PrintRequest: appControllers.NewPrintRequestController(printService, cfg.Server.MaxUploadBytes, lgr),
		Admin:        appControllers.NewAdminController(adminService, printService, lgr),
		Health:       appControllers.NewHealthController(pinger),
	}

	return deps, nil
}

// authRateLimit builds the limiter for the credential endpoints, or nil when disabled
func authRateLimit(cfg *config.Config, rdb *redis.Client, lgr zerolog.Logger) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	local := appMiddleware.NewLocalLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	if rdb == nil {
		return appMiddleware.RateLimit(local, nil, cfg.RateLimit.Prefix, lgr)
	}
	shared := appMiddleware.NewRedisLimiter(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	return appMiddleware.RateLimit(shared, local, cfg.RateLimit.Prefix, lgr)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	router.Use(
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Recovery(lgr),
		appMiddleware.SecurityHeaders(),
	)

	router.NoRoute(func(c *gin.Context) {
		detail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Route not found")
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(detail))
	})

	if !cfg.IsProduction() {
		appRoutes.SetupSwagger(router)
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, authRateLimit(cfg, deps.Redis, lgr))

	return router
}
