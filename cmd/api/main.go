package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/lifebridge/internal/api/http"
	"github.com/spec-kit/lifebridge/internal/api/http/handlers"
	"github.com/spec-kit/lifebridge/internal/auth"
	"github.com/spec-kit/lifebridge/internal/config"
	"github.com/spec-kit/lifebridge/internal/events"
	"github.com/spec-kit/lifebridge/internal/mail"
	"github.com/spec-kit/lifebridge/internal/observability"
	"github.com/spec-kit/lifebridge/internal/persistence"
	"github.com/spec-kit/lifebridge/internal/repository"
	"github.com/spec-kit/lifebridge/internal/service"
	"github.com/spec-kit/lifebridge/internal/worker"
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

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewBloodRequestRepository(pool)
	pickupRepo := repository.NewPickupRepository(pool)
	notificationLogRepo := repository.NewNotificationLogRepository(pool)
	viewCounter := repository.NewViewCounter(redis.Client)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	mailer := mail.NewSMTPMailer(cfg.Mail, cfg.Frontend.Origin, logger)

	authService := service.NewAuthService(*cfg, userRepo)
	profileService := service.NewProfileService(userRepo)
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo:         requestRepo,
		UserRepo:            userRepo,
		NotificationLogRepo: notificationLogRepo,
		Views:               viewCounter,
		Dispatcher:          dispatcher,
	})
	pickupService := service.NewPickupService(service.PickupDependencies{
		PickupRepo:          pickupRepo,
		RequestRepo:         requestRepo,
		UserRepo:            userRepo,
		NotificationLogRepo: notificationLogRepo,
		Mailer:              mailer,
		Dispatcher:          dispatcher,
		Logger:              logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		UserRepo:            userRepo,
		NotificationLogRepo: notificationLogRepo,
		Mailer:              mailer,
		Dispatcher:          dispatcher,
		Logger:              logger,
		Metrics:             metrics,
		FrontendOrigin:      cfg.Frontend.Origin,
	})
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		AllowOrigin: cfg.Frontend.Origin,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Profile:        handlers.NewProfileHandler(profileService, requestService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Pickups:        handlers.NewPickupsHandler(pickupService),
		AuthMiddleware: authMiddleware,
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
