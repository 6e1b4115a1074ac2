package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/expense-share/internal/api/http"
	"github.com/spec-kit/expense-share/internal/api/http/handlers"
	"github.com/spec-kit/expense-share/internal/auth"
	"github.com/spec-kit/expense-share/internal/config"
	"github.com/spec-kit/expense-share/internal/events"
	"github.com/spec-kit/expense-share/internal/observability"
	"github.com/spec-kit/expense-share/internal/persistence"
	"github.com/spec-kit/expense-share/internal/repository"
	"github.com/spec-kit/expense-share/internal/service"
	"github.com/spec-kit/expense-share/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// A signing key that cannot be decoded must stop the process before it
	// serves a single request.
	tokenManager, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("invalid jwt signing key", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userAccessRepo := repository.NewUserAccessRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	expenseRepo := repository.NewExpenseRepository(pool)

	throttle := persistence.NewLoginThrottle(redis, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginAttemptWindow())
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(userAccessRepo, tokenManager, throttle, cfg.Auth.BcryptCost, logger)
	groupService := service.NewGroupService(groupRepo, dispatcher)
	expenseService := service.NewExpenseService(expenseRepo, groupRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	resolver := auth.NewResolver(tokenManager, userAccessRepo, logger)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:     handlers.NewAuthHandler(authService),
		Groups:   handlers.NewGroupsHandler(groupService),
		Expenses: handlers.NewExpensesHandler(expenseService),
		Resolver: resolver,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
