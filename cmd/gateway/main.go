package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/contestapp/gateway/internal/audit"
	"github.com/contestapp/gateway/internal/auth"
	"github.com/contestapp/gateway/internal/config"
	"github.com/contestapp/gateway/internal/logging"
	"github.com/contestapp/gateway/internal/proxy"
	"github.com/contestapp/gateway/internal/refresh"
	"github.com/contestapp/gateway/internal/revocation"
	"github.com/contestapp/gateway/internal/server"
	"github.com/contestapp/gateway/internal/token"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	routesPath := flag.String("routes", "", "path to route table file (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *routesPath != "" {
		cfg.Routes.File = *routesPath
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)
	logger = logger.With(logging.Service("gateway"))

	table, err := config.LoadRouteTable(cfg.Routes.File)
	if err != nil {
		log.Fatalf("Failed to load route table: %v", err)
	}

	store, err := revocation.NewRedisStore(cfg.Redis.URL, logger)
	if err != nil {
		log.Fatalf("Failed to connect to revocation store: %v", err)
	}
	defer store.Close()

	refresher := refresh.NewClient(cfg.Auth.ServiceURL, cfg.Auth.RefreshPath, cfg.Auth.CookieName, cfg.Auth.RefreshTimeout)
	authenticator := auth.NewAuthenticator(
		token.NewValidator(cfg.Auth.JWTSecret),
		store,
		refresher,
		cfg.Auth.CookieName,
		logger,
	)
	forwarder := proxy.NewForwarder(cfg.Proxy.Timeout, logger)

	var publisher audit.Publisher = audit.NopPublisher{}
	if cfg.NATS.Enabled {
		natsPublisher, err := audit.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logger.Warn("audit bus unavailable, decisions will only be logged", logging.Error(err))
		} else {
			publisher = natsPublisher
			defer natsPublisher.Close()
		}
	}

	gateway := server.NewGateway(table, authenticator, forwarder, publisher, logger)
	handler := server.NewRouter(server.RouterConfig{
		Gateway:        gateway,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
		MetricsEnabled: true,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("gateway listening",
			"addr", srv.Addr,
			"auth_service", cfg.Auth.ServiceURL,
			"routes", len(table.Routes),
			"exemptions", len(table.Exemptions),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", logging.Error(err))
	}
}
