// Package bootstrap wires configuration, storage, services and the HTTP
// router together.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yigit/campus/internal/app/codegen"
	appControllers "github.com/yigit/campus/internal/app/controllers"
	appMigrations "github.com/yigit/campus/internal/app/migrations"
	"github.com/yigit/campus/internal/app/repositories"
	"github.com/yigit/campus/internal/app/repositories/inmem"
	"github.com/yigit/campus/internal/app/repositories/postgres"
	appRoutes "github.com/yigit/campus/internal/app/routes"
	appServices "github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/config"
	"github.com/yigit/campus/internal/db"
	appMiddleware "github.com/yigit/campus/internal/middleware"
	pkgAuth "github.com/yigit/campus/internal/pkg/auth"
	"github.com/yigit/campus/internal/pkg/helpers"
	"github.com/yigit/campus/internal/pkg/logger"
	"github.com/yigit/campus/internal/pkg/metrics"
	"github.com/yigit/campus/internal/pkg/validation"
	"github.com/yigit/campus/internal/pkg/websocket"
	"github.com/yigit/campus/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store          repositories.Store
	SeatHub        *websocket.Hub
	JWTService     *pkgAuth.JWTService
	AuthService    *appServices.AuthService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Str("store", cfg.Store).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the pool and applies pending migrations.
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}

	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, cfg.Database.MigrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	return database, nil
}

// OpenStore returns the configured store and a function releasing it. The
// in-memory store starts with the demo data, since it has nothing else.
func OpenStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (repositories.Store, func(), error) {
	seedOpts := seed.Options{Password: cfg.Seed.Password, BcryptCost: cfg.Seed.BcryptCost}

	if cfg.Store == config.StoreMemory {
		store := inmem.NewStore()
		if err := seed.CreateDefaultData(ctx, store, seedOpts, lgr); err != nil {
			return nil, nil, err
		}
		lgr.Warn().Msg("Using the in-memory store, data is lost on restart")
		return store, func() {}, nil
	}

	database, err := ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, err
	}
	store := postgres.NewStore(database)
	if err := seed.CreateDefaultData(ctx, store, seedOpts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
	return store, database.Close, nil
}

// NewJWTService builds the token service from configuration.
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		Issuer:         cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes services and controllers on top of store.
func BuildDependencies(cfg *config.Config, store repositories.Store, lgr zerolog.Logger) (*Dependencies, error) {
	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	deps := &Dependencies{
		Store:   store,
		SeatHub: websocket.NewHub(lgr),
		Logger:  lgr,
	}
	deps.JWTService = NewJWTService(cfg)
	deps.AuthService = appServices.NewAuthService(store.Users(), deps.JWTService)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	codes := codegen.New(cfg.Scheduling.CodeAttempts)
	semesterService := appServices.NewSemesterService(store)
	offeringService := appServices.NewOfferingService(store)
	sectionService := appServices.NewSectionService(store, codes, deps.SeatHub)
	assignmentService := appServices.NewAssignmentService(store)
	enrollmentService := appServices.NewEnrollmentService(store, deps.SeatHub, cfg.Scheduling.BatchEnrollLimit)

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService),
		Semester:   appControllers.NewSemesterController(semesterService),
		Offering:   appControllers.NewOfferingController(offeringService, assignmentService),
		Section:    appControllers.NewSectionController(sectionService, deps.SeatHub),
		Assignment: appControllers.NewAssignmentController(assignmentService),
		Enrollment: appControllers.NewEnrollmentController(enrollmentService),
		Form:       appControllers.NewFormController(appServices.NewFormService()),
	}
	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(), appMiddleware.Recovery(), appMiddleware.Metrics())

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	return router
}
