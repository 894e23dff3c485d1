package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sweetshop/internal/api/http"
	"github.com/spec-kit/sweetshop/internal/api/http/handlers"
	"github.com/spec-kit/sweetshop/internal/auth"
	"github.com/spec-kit/sweetshop/internal/broadcast"
	"github.com/spec-kit/sweetshop/internal/config"
	"github.com/spec-kit/sweetshop/internal/events"
	"github.com/spec-kit/sweetshop/internal/observability"
	"github.com/spec-kit/sweetshop/internal/persistence"
	"github.com/spec-kit/sweetshop/internal/repository"
	"github.com/spec-kit/sweetshop/internal/service"
	"github.com/spec-kit/sweetshop/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userRepo, sweetRepo, storageCheck, closeStorage := openStorage(ctx, cfg, logger)
	defer closeStorage()

	checks := []handlers.DependencyCheck{storageCheck}
	var revoker auth.Revoker = auth.NoopRevoker{}
	if cfg.Auth.TokenRevocation {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		revoker = auth.NewRedisRevoker(redis.Client)
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Pinger: redis})
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: userRepo,
		Revoker:  revoker,
		Logger:   logger,
	})
	if err := authService.EnsureBootstrapAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword); err != nil {
		logger.Fatal("failed to ensure bootstrap admin", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	hub := broadcast.NewHub(logger)
	notificationService := service.NewNotificationService(dispatcher, hub, logger, 0)
	workerDone := worker.StartNotificationWorker(ctx, notificationService)

	inventoryService := service.NewInventoryService(service.InventoryDependencies{
		SweetRepo:  sweetRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, checks...),
		Users:          handlers.NewUsersHandler(authService),
		Sweets:         handlers.NewSweetsHandler(inventoryService),
		WS:             handlers.NewWSHandler(hub, cfg.Broadcast.WriteTimeout(), logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	<-workerDone
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.UserRepository, repository.SweetRepository, handlers.DependencyCheck, func()) {
	if cfg.Database.Driver == config.DriverPostgres {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		pool := pg.PoolHandle()
		return repository.NewUserRepository(pool), repository.NewSweetRepository(pool),
			handlers.DependencyCheck{Name: "postgres", Pinger: pg}, pg.Close
	}

	store, err := persistence.NewSQLite(cfg.SQLite, logger)
	if err != nil {
		logger.Fatal("failed to open sqlite", zap.Error(err))
	}
	if err := repository.AutoMigrate(store.DB); err != nil {
		logger.Fatal("failed to migrate sqlite", zap.Error(err))
	}
	return repository.NewGormUserRepository(store.DB), repository.NewGormSweetRepository(store.DB),
		handlers.DependencyCheck{Name: "sqlite", Pinger: store}, store.Close
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
