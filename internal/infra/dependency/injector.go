// Package dependency provides dependency injection for the application.
package dependency

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/client/config"
	"github.com/finance-tracker/client/internal/application/adapter"
	"github.com/finance-tracker/client/internal/application/session"
	"github.com/finance-tracker/client/internal/application/store"
	"github.com/finance-tracker/client/internal/application/usecase/auth"
	"github.com/finance-tracker/client/internal/application/usecase/transaction"
	"github.com/finance-tracker/client/internal/infra/server/router"
	"github.com/finance-tracker/client/internal/integration/docstore/gormstore"
	"github.com/finance-tracker/client/internal/integration/docstore/rediscache"
	"github.com/finance-tracker/client/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/client/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/client/internal/integration/identity"
	"github.com/finance-tracker/client/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config  *config.Config
	DB      *gorm.DB
	Router  *router.Router
	Session *session.Controller
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB, healthChecker func() bool) *Injector {
	// Create the document store, optionally fronted by a Redis cache.
	var docs adapter.DocumentStore = gormstore.NewStore(db)
	if cfg.Redis.Enabled {
		if opt, err := redis.ParseURL(cfg.Redis.URL); err != nil {
			slog.Warn("Invalid Redis URL, document cache disabled", "error", err)
		} else {
			docs = rediscache.New(docs, redis.NewClient(opt), cfg.Redis.TTL)
			slog.Info("Document cache enabled", "ttl", cfg.Redis.TTL)
		}
	}

	// Create the identity service and repositories.
	identityService := identity.NewService(
		docs,
		cfg.Auth.SessionSecret,
		cfg.Auth.FederatedSecret,
		cfg.Auth.SessionTokenExpiry,
	)
	userRepo := persistence.NewUserRepository(docs)
	transactionRepo := persistence.NewTransactionRepository(docs)

	// Create the transaction store and session controller. The controller
	// subscribes once Start is called from main.
	txStore := store.NewTransactionStore(transactionRepo)
	sessionController := session.NewController(identityService, userRepo, txStore)

	// Create use cases
	signUpUseCase := auth.NewSignUpUseCase(identityService, userRepo, identityService)
	signInUseCase := auth.NewSignInUseCase(identityService, userRepo, identityService)
	providerSignInUseCase := auth.NewProviderSignInUseCase(identityService, userRepo, identityService)
	signOutUseCase := auth.NewSignOutUseCase(identityService)
	submitUseCase := transaction.NewSubmitTransactionUseCase(transactionRepo, txStore)

	// Create controllers
	healthController := controller.NewHealthController(healthChecker)
	authController := controller.NewAuthController(
		signUpUseCase,
		signInUseCase,
		providerSignInUseCase,
		signOutUseCase,
	)
	sessionHTTPController := controller.NewSessionController(sessionController)
	transactionController := controller.NewTransactionController(submitUseCase, txStore)
	dashboardController := controller.NewDashboardController(txStore)

	// Create middleware
	// Use higher rate limits for test environments to prevent flaky tests
	var loginRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "test" {
		loginRateLimiter = middleware.NewRateLimiterWithConfig(1000, 1*time.Minute)
	} else {
		loginRateLimiter = middleware.NewRateLimiter()
	}
	authMiddleware := middleware.NewAuthMiddleware(identityService)

	r := router.NewRouter(
		healthController,
		authController,
		sessionHTTPController,
		transactionController,
		dashboardController,
		loginRateLimiter,
		authMiddleware,
	)

	return &Injector{
		Config:  cfg,
		DB:      db,
		Router:  r,
		Session: sessionController,
	}
}
