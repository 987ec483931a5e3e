package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/sojus/helpdesk/internal/api/http"
	"github.com/sojus/helpdesk/internal/api/http/handlers"
	"github.com/sojus/helpdesk/internal/auth"
	"github.com/sojus/helpdesk/internal/config"
	"github.com/sojus/helpdesk/internal/events"
	"github.com/sojus/helpdesk/internal/lookup"
	"github.com/sojus/helpdesk/internal/observability"
	"github.com/sojus/helpdesk/internal/persistence"
	"github.com/sojus/helpdesk/internal/service"
)

func main() {
	envFiles := pflag.StringSlice("env-file", nil, "dotenv files to load before reading the environment (default .env)")
	pflag.Parse()

	cfg, err := config.Load(*envFiles...)
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

	store, err := persistence.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.Error(err))
	}
	defer store.Close()

	var names lookup.NameResolver = lookup.NewDirectoryNames(store.Repositories().Directory)
	var nameCache *persistence.NameCache
	if cfg.Redis.Addr != "" {
		nameCache = persistence.OpenNameCache(ctx, cfg.Redis, logger)
		defer nameCache.Close()
		names = lookup.NewCachedNames(nameCache.Client(), names, nameCache.TTL(), logger.Named("names"))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	dispatcher := events.NewInMemoryDispatcher()
	metrics.RegisterLifecycleHandlers(dispatcher)

	projector := service.NewProjector(cfg.App.Location())
	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Names:      names,
		Projector:  projector,
		Dispatcher: dispatcher,
		Rejections: metrics,
		Logger:     logger.Named("tickets"),
	})
	auditService := service.NewAuditService(store.Repositories().Audit, projector)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, store.Repositories().Directory)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	dependencies := map[string]handlers.Pinger{"store": store}
	if nameCache != nil {
		dependencies["redis"] = nameCache
	}
	routes := httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Audit:          handlers.NewAuditHandler(auditService),
		AuthMiddleware: authMiddleware,
	}
	if cfg.Metrics.Enabled {
		routes.MetricsGatherer = registry
		routes.MetricsPath = cfg.Metrics.Path
	}
	httptransport.RegisterRoutes(app, routes)

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
