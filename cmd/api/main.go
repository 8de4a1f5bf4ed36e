package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/hubly/helpdesk-service/internal/api/http"
	"github.com/hubly/helpdesk-service/internal/api/http/handlers"
	"github.com/hubly/helpdesk-service/internal/auth"
	"github.com/hubly/helpdesk-service/internal/config"
	"github.com/hubly/helpdesk-service/internal/events"
	"github.com/hubly/helpdesk-service/internal/freshness"
	"github.com/hubly/helpdesk-service/internal/observability"
	"github.com/hubly/helpdesk-service/internal/persistence"
	"github.com/hubly/helpdesk-service/internal/repository"
	"github.com/hubly/helpdesk-service/internal/service"
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
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	settingsRepo := repository.NewCachedSettingsRepository(
		repository.NewSettingsRepository(pool), redis.ClientHandle(), logger)

	dispatcher := events.NewInMemoryDispatcher()
	events.NewAuditLogger(logger).Register(dispatcher)

	authService := service.NewAuthService(userRepo, cfg.Auth, logger)
	if err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		logger.Fatal("failed to seed admin user", zap.Error(err))
	}

	settingsService := service.NewSettingsService(settingsRepo)
	reconciler := freshness.NewReconciler(ticketRepo, dispatcher, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		UserRepo:    userRepo,
		Settings:    settingsService,
		Reconciler:  reconciler,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	messageService := service.NewMessageService(ticketRepo, messageRepo, dispatcher, logger)
	analyticsService := service.NewAnalyticsService(ticketRepo, messageRepo, settingsService, logger)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Messages:       handlers.NewMessagesHandler(messageService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Settings:       handlers.NewSettingsHandler(settingsService),
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
