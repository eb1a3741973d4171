package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/securohelp/case-service/internal/api/http"
	"github.com/securohelp/case-service/internal/api/http/handlers"
	"github.com/securohelp/case-service/internal/auth"
	"github.com/securohelp/case-service/internal/config"
	"github.com/securohelp/case-service/internal/events"
	"github.com/securohelp/case-service/internal/observability"
	"github.com/securohelp/case-service/internal/persistence"
	"github.com/securohelp/case-service/internal/repository"
	"github.com/securohelp/case-service/internal/repository/memory"
	"github.com/securohelp/case-service/internal/service"
	"github.com/securohelp/case-service/internal/worker"
)

var rootCmd = &cobra.Command{
	Use:   "case-service",
	Short: "Case lifecycle API for the SecuroHelp office",
	RunE:  runServe,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
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

	var store repository.Store
	if pool := pg.PoolHandle(); pool != nil {
		store = repository.NewPostgresStore(pool)
	} else {
		logger.Warn("running with in-memory store; data will not survive restarts")
		store = memory.NewStore()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	caseService := service.NewCaseService(store, dispatcher)
	statusService := service.NewStatusService(store)
	clientService := service.NewClientService(store)
	referenceService := service.NewReferenceService(store)
	dashboardService := service.NewDashboardService(store, redis.Client, cfg.Redis.DashboardTTL(), logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, store.Users())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Cases:          handlers.NewCasesHandler(caseService, dashboardService),
		CaseStatuses:   handlers.NewCaseStatusesHandler(statusService),
		Clients:        handlers.NewClientsHandler(clientService),
		Reference:      handlers.NewReferenceHandler(referenceService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	return app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
