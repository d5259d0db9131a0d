package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/ratelimit"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/repository/memstore"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

type stores struct {
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	history    repository.ComplaintHistoryRepository
}

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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := openStores(pg)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: repos.users,
		Hasher:   auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Limiter:  ratelimit.NewRedis(redis.Client, cfg.RateLimit.LoginWindow(), logger),
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	if err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: repos.complaints,
		HistoryRepo:   repos.history,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})

	notifications := service.NewNotificationService(logger, cfg.Notification)
	workerCtx, stopWorker := context.WithCancel(ctx)
	notificationWorker := worker.StartNotificationWorker(workerCtx, dispatcher, notifications, logger, 256)

	authMiddleware := auth.NewAuthMiddleware(auth.NewSessionResolver(authService.Tokens()))

	app := httptransport.NewApp(cfg.App, logger, metrics, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.CookieSecure),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	stopWorker()
	notificationWorker.Wait()
}

func openStores(pg *persistence.Postgres) stores {
	if pg.Enabled() {
		return stores{
			users:      repository.NewUserRepository(pg.Pool),
			complaints: repository.NewComplaintRepository(pg.Pool),
			history:    repository.NewComplaintHistoryRepository(pg.Pool),
		}
	}
	mem := memstore.New()
	return stores{users: mem.Users(), complaints: mem.Complaints(), history: mem.History()}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
